package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/apollo"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/repository"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

var testTenant = tenant.New(uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"), "tenant_acme")

type mockEmployeesRepo struct {
	findByPersonID func(ctx context.Context, tc tenant.Context, personID string) (*entity.CachedEmployee, error)
	findByName     func(ctx context.Context, tc tenant.Context, name string) (*entity.CachedEmployee, error)
	search         func(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error)
	upsert         func(ctx context.Context, tc tenant.Context, employee *entity.CachedEmployee) (bool, error)
	bulkUpsert     func(ctx context.Context, tc tenant.Context, employees []entity.CachedEmployee) repository.BulkUpsertResult
	updateContact  func(ctx context.Context, tc tenant.Context, personID string, email, phone *string) (bool, error)
}

func (m *mockEmployeesRepo) FindByPersonID(ctx context.Context, tc tenant.Context, personID string) (*entity.CachedEmployee, error) {
	if m.findByPersonID != nil {
		return m.findByPersonID(ctx, tc, personID)
	}
	return nil, repository.ErrEmployeeNotFound
}

func (m *mockEmployeesRepo) FindByName(ctx context.Context, tc tenant.Context, name string) (*entity.CachedEmployee, error) {
	if m.findByName != nil {
		return m.findByName(ctx, tc, name)
	}
	return nil, repository.ErrEmployeeNotFound
}

func (m *mockEmployeesRepo) Search(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error) {
	if m.search != nil {
		return m.search(ctx, tc, filter)
	}
	return nil, nil
}

func (m *mockEmployeesRepo) List(ctx context.Context, tc tenant.Context, page, perPage int) ([]entity.CachedEmployee, error) {
	return nil, nil
}

func (m *mockEmployeesRepo) Upsert(ctx context.Context, tc tenant.Context, employee *entity.CachedEmployee) (bool, error) {
	if m.upsert != nil {
		return m.upsert(ctx, tc, employee)
	}
	return true, nil
}

func (m *mockEmployeesRepo) BulkUpsert(ctx context.Context, tc tenant.Context, employees []entity.CachedEmployee) repository.BulkUpsertResult {
	if m.bulkUpsert != nil {
		return m.bulkUpsert(ctx, tc, employees)
	}
	return repository.BulkUpsertResult{Inserted: len(employees), Total: len(employees)}
}

func (m *mockEmployeesRepo) UpdateContact(ctx context.Context, tc tenant.Context, personID string, email, phone *string) (bool, error) {
	if m.updateContact != nil {
		return m.updateContact(ctx, tc, personID, email, phone)
	}
	return true, nil
}

func (m *mockEmployeesRepo) SoftDelete(ctx context.Context, tc tenant.Context, personID string) (bool, error) {
	return false, nil
}

type mockSearchCache struct {
	lookup  func(ctx context.Context, tc tenant.Context, queryHash string) (*entity.SearchCacheEntry, error)
	store   func(ctx context.Context, tc tenant.Context, queryHash string, filters, response json.RawMessage, resultCount int) error
	history []entity.SearchHistoryEntry
}

func (m *mockSearchCache) Lookup(ctx context.Context, tc tenant.Context, queryHash string) (*entity.SearchCacheEntry, error) {
	if m.lookup != nil {
		return m.lookup(ctx, tc, queryHash)
	}
	return nil, repository.ErrSearchCacheMiss
}

func (m *mockSearchCache) Store(ctx context.Context, tc tenant.Context, queryHash string, filters, response json.RawMessage, resultCount int) error {
	if m.store != nil {
		return m.store(ctx, tc, queryHash, filters, response, resultCount)
	}
	return nil
}

func (m *mockSearchCache) RecordHistory(ctx context.Context, tc tenant.Context, entry entity.SearchHistoryEntry) error {
	m.history = append(m.history, entry)
	return nil
}

type mockProvider struct {
	match       func(ctx context.Context, req apollo.MatchRequest) (*apollo.Person, error)
	searchPeopl func(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error)
	matchCalls  int
	searchCalls int
}

func (m *mockProvider) MatchPerson(ctx context.Context, req apollo.MatchRequest) (*apollo.Person, error) {
	m.matchCalls++
	if m.match != nil {
		return m.match(ctx, req)
	}
	return nil, errors.New("match not implemented")
}

func (m *mockProvider) SearchPeople(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
	m.searchCalls++
	if m.searchPeopl != nil {
		return m.searchPeopl(ctx, req)
	}
	return nil, errors.New("search not implemented")
}

func defaultOptions() Options {
	return Options{
		APIKey:        "test-key",
		Production:    true,
		DefaultSchema: "public",
		Costs:         Costs{RevealEmail: 1, RevealPhone: 8, Search: 1},
	}
}

func newTestService(repo *mockEmployeesRepo, cache *mockSearchCache, provider *mockProvider, opts Options) *LeadsService {
	if repo == nil {
		repo = &mockEmployeesRepo{}
	}
	if provider == nil {
		provider = &mockProvider{}
	}
	if cache == nil {
		return NewLeadsService(repo, nil, provider, nil, opts)
	}
	return NewLeadsService(repo, cache, provider, nil, opts)
}

func strPtr(value string) *string {
	return &value
}
