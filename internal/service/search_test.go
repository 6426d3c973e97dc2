package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/apollo"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/repository"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

func cachedRows(n int) []entity.CachedEmployee {
	rows := make([]entity.CachedEmployee, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, entity.CachedEmployee{
			ApolloPersonID: fmt.Sprintf("cached-%d", i),
			Name:           fmt.Sprintf("Cached Person %d", i),
		})
	}
	return rows
}

func providerPeople(ids ...string) []apollo.Person {
	people := make([]apollo.Person, 0, len(ids))
	for _, id := range ids {
		people = append(people, apollo.Person{ID: id, Name: "Person " + id})
	}
	return people
}

func TestSearchEmployees_EmptyFilterRejected(t *testing.T) {
	repo := &mockEmployeesRepo{
		search: func(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error) {
			t.Fatalf("no cache access expected on invalid input")
			return nil, nil
		},
	}
	svc := newTestService(repo, nil, nil, defaultOptions())

	_, err := svc.SearchEmployees(context.Background(), testTenant, dto.EmployeeFilter{Page: 1, PerPage: 20})
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSearchEmployees_FullPageFromCache(t *testing.T) {
	repo := &mockEmployeesRepo{
		search: func(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error) {
			return cachedRows(5), nil
		},
	}
	provider := &mockProvider{}
	cache := &mockSearchCache{}
	svc := newTestService(repo, cache, provider, defaultOptions())

	result, err := svc.SearchEmployees(context.Background(), testTenant, dto.EmployeeFilter{
		Titles:  []string{"CTO"},
		PerPage: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceCache || result.Count != 5 || result.Cost != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if provider.searchCalls != 0 {
		t.Fatalf("provider must not be called when the cache fills the page")
	}
	if len(cache.history) != 1 || cache.history[0].Source != SourceCache {
		t.Fatalf("expected one cache-sourced history entry, got %+v", cache.history)
	}
}

func TestSearchEmployees_ProviderFill(t *testing.T) {
	repo := &mockEmployeesRepo{
		search: func(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error) {
			return cachedRows(2), nil
		},
	}
	var persisted []entity.CachedEmployee
	repo.bulkUpsert = func(ctx context.Context, tc tenant.Context, employees []entity.CachedEmployee) repository.BulkUpsertResult {
		persisted = employees
		return repository.BulkUpsertResult{Inserted: len(employees), Total: len(employees)}
	}
	provider := &mockProvider{
		searchPeopl: func(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
			if req.PerPage != apollo.MaxSearchPageSize {
				t.Fatalf("expected a max-size provider page, got %d", req.PerPage)
			}
			if len(req.PersonTitles) != 1 || req.PersonTitles[0] != "CTO" {
				t.Fatalf("unexpected titles %v", req.PersonTitles)
			}
			// cached-0 duplicates a cache row, skip-me is caller-excluded.
			return &apollo.SearchResponse{
				People: providerPeople("fresh-1", "cached-0", "skip-me", "fresh-2", "fresh-3"),
			}, nil
		},
	}
	svc := newTestService(repo, &mockSearchCache{}, provider, defaultOptions())

	result, err := svc.SearchEmployees(context.Background(), testTenant, dto.EmployeeFilter{
		Titles:     []string{"CTO"},
		ExcludeIDs: []string{"skip-me"},
		PerPage:    4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceMixed {
		t.Fatalf("expected mixed source, got %q", result.Source)
	}
	if result.Count != 4 {
		t.Fatalf("expected a full page of 4, got %d", result.Count)
	}
	if result.Cost != 1 {
		t.Fatalf("expected search cost charged, got %d", result.Cost)
	}
	if provider.searchCalls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.searchCalls)
	}

	// Everything qualifying is persisted, including rows beyond the page.
	ids := make(map[string]bool, len(persisted))
	for _, row := range persisted {
		ids[row.ApolloPersonID] = true
	}
	if ids["skip-me"] {
		t.Fatalf("excluded person must not be persisted")
	}
	for _, want := range []string{"fresh-1", "cached-0", "fresh-2", "fresh-3"} {
		if !ids[want] {
			t.Fatalf("expected %s persisted, got %v", want, persisted)
		}
	}

	// Cached rows first, then fresh ones without duplicates.
	if result.Employees[0].PersonID != "cached-0" || result.Employees[1].PersonID != "cached-1" {
		t.Fatalf("cached rows must lead the page: %+v", result.Employees)
	}
	seen := make(map[string]bool)
	for _, e := range result.Employees {
		if seen[e.PersonID] {
			t.Fatalf("duplicate person %s in page", e.PersonID)
		}
		seen[e.PersonID] = true
	}
}

func TestSearchEmployees_ProviderDown_ServesCache(t *testing.T) {
	repo := &mockEmployeesRepo{
		search: func(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error) {
			return cachedRows(3), nil
		},
	}
	provider := &mockProvider{
		searchPeopl: func(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
			return nil, apollo.NewAPIError(503, "upstream down")
		},
	}
	svc := newTestService(repo, &mockSearchCache{}, provider, defaultOptions())

	result, err := svc.SearchEmployees(context.Background(), testTenant, dto.EmployeeFilter{
		Titles:  []string{"CTO"},
		PerPage: 20,
	})
	if err != nil {
		t.Fatalf("provider outage must not fail the search: %v", err)
	}
	if result.Count != 3 || result.Source != SourceCache {
		t.Fatalf("expected cached fallback, got %+v", result)
	}
	if result.Warning == "" {
		t.Fatalf("expected a degraded-provider warning")
	}
	if result.Cost != 0 {
		t.Fatalf("failed provider call must not charge, got %d", result.Cost)
	}
}

func TestSearchEmployees_SearchCacheHit_IsFree(t *testing.T) {
	raw, _ := json.Marshal(apollo.SearchResponse{People: providerPeople("fresh-1", "fresh-2")})
	cache := &mockSearchCache{
		lookup: func(ctx context.Context, tc tenant.Context, queryHash string) (*entity.SearchCacheEntry, error) {
			return &entity.SearchCacheEntry{QueryHash: queryHash, Response: raw}, nil
		},
	}
	provider := &mockProvider{}
	svc := newTestService(&mockEmployeesRepo{}, cache, provider, defaultOptions())

	result, err := svc.SearchEmployees(context.Background(), testTenant, dto.EmployeeFilter{
		Titles:  []string{"CTO"},
		PerPage: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.searchCalls != 0 {
		t.Fatalf("fresh stored response must prevent a provider call")
	}
	if result.Cost != 0 {
		t.Fatalf("stored response is free, got cost %d", result.Cost)
	}
	if result.Count != 2 || result.Source != SourceProvider {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSearchEmployees_BulkUpsertFailures_Warn(t *testing.T) {
	repo := &mockEmployeesRepo{
		bulkUpsert: func(ctx context.Context, tc tenant.Context, employees []entity.CachedEmployee) repository.BulkUpsertResult {
			return repository.BulkUpsertResult{Inserted: len(employees) - 1, Failed: 1, Total: len(employees)}
		},
	}
	provider := &mockProvider{
		searchPeopl: func(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
			return &apollo.SearchResponse{People: providerPeople("fresh-1", "fresh-2")}, nil
		},
	}
	svc := newTestService(repo, &mockSearchCache{}, provider, defaultOptions())

	result, err := svc.SearchEmployees(context.Background(), testTenant, dto.EmployeeFilter{
		Titles:  []string{"CTO"},
		PerPage: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Warning == "" {
		t.Fatalf("expected a partial-persistence warning")
	}
	if result.Count != 2 {
		t.Fatalf("persistence failures must not drop page rows, got %d", result.Count)
	}
}

func TestSearchEmployees_CacheReadFailure_Degrades(t *testing.T) {
	repo := &mockEmployeesRepo{
		search: func(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error) {
			return nil, errors.New("relation does not exist")
		},
	}
	provider := &mockProvider{
		searchPeopl: func(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
			return &apollo.SearchResponse{People: providerPeople("fresh-1")}, nil
		},
	}
	svc := newTestService(repo, &mockSearchCache{}, provider, defaultOptions())

	result, err := svc.SearchEmployees(context.Background(), testTenant, dto.EmployeeFilter{
		Titles:  []string{"CTO"},
		PerPage: 20,
	})
	if err != nil {
		t.Fatalf("cache read failure must degrade, not fail: %v", err)
	}
	if result.Count != 1 || result.Source != SourceProvider {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestFilterHash_OrderAndCaseInsensitive(t *testing.T) {
	a, _ := filterHash(dto.EmployeeFilter{Titles: []string{"CTO", "VP Engineering"}, Locations: []string{"Berlin"}})
	b, _ := filterHash(dto.EmployeeFilter{Titles: []string{"vp engineering", " cto "}, Locations: []string{"berlin"}})
	if a != b {
		t.Fatalf("hashes differ for equivalent filters: %s vs %s", a, b)
	}

	c, _ := filterHash(dto.EmployeeFilter{Titles: []string{"CTO"}, Locations: []string{"Berlin"}})
	if a == c {
		t.Fatalf("distinct filters must hash differently")
	}

	// Pagination never participates in the key.
	d, _ := filterHash(dto.EmployeeFilter{Titles: []string{"CTO"}, Locations: []string{"Berlin"}, Page: 7, PerPage: 50})
	if c != d {
		t.Fatalf("pagination must not change the hash")
	}
}
