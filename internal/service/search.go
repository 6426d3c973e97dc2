package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/apollo"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/repository"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

// Search result sources.
const (
	SourceCache    = "cache"
	SourceProvider = "provider"
	SourceMixed    = "mixed"
)

// SearchResult is the outcome of an employee search.
type SearchResult struct {
	Success   bool           `json:"success"`
	Employees []dto.Employee `json:"employees"`
	Count     int            `json:"count"`
	Source    string         `json:"source"`
	Cost      int            `json:"cost"`
	Warning   string         `json:"warning,omitempty"`
}

// SearchEmployees returns up to PerPage employees matching the filter,
// serving from cache when it holds enough rows and otherwise filling the gap
// from the provider and persisting what came back.
func (s *LeadsService) SearchEmployees(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) (SearchResult, error) {
	if filter.Empty() {
		return SearchResult{}, ValidationError{Message: "at least one of titles, locations or industries is required"}
	}

	tc, err := s.resolveTenant(tc)
	if err != nil {
		return SearchResult{}, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > apollo.MaxSearchPageSize {
		filter.PerPage = apollo.MaxSearchPageSize
	}

	cached, err := s.employees.Search(ctx, tc, filter)
	if err != nil {
		// A failed cache read degrades to an empty cache, not a failed search.
		log.Printf("tenant=%s cache search degraded: %v", tc.TenantID, err)
		cached = nil
	}

	// Inclusive threshold: a full page from cache skips the provider even if
	// more rows might exist upstream.
	if len(cached) >= filter.PerPage {
		rows := cached[:filter.PerPage]
		s.recordHistory(ctx, tc, filter, len(rows), SourceCache)
		return SearchResult{
			Success:   true,
			Employees: toEmployees(rows),
			Count:     len(rows),
			Source:    SourceCache,
		}, nil
	}

	resp, cost, warning := s.fetchSearchPage(ctx, tc, filter)
	if resp == nil {
		// Provider unavailable: silently serve whatever the cache had.
		s.recordHistory(ctx, tc, filter, len(cached), SourceCache)
		return SearchResult{
			Success:   true,
			Employees: toEmployees(cached),
			Count:     len(cached),
			Source:    SourceCache,
			Warning:   warning,
		}, nil
	}

	excluded := make(map[string]struct{}, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(cached))
	for _, row := range cached {
		seen[row.ApolloPersonID] = struct{}{}
	}

	var fresh []entity.CachedEmployee
	for _, person := range resp.People {
		if person.ID == "" {
			continue
		}
		if _, skip := excluded[person.ID]; skip {
			continue
		}
		fresh = append(fresh, s.formatPerson(person, entity.DataSourceProvider))
	}

	if len(fresh) > 0 {
		result := s.employees.BulkUpsert(ctx, tc, fresh)
		if result.Failed > 0 {
			log.Printf("tenant=%s search persistence degraded: %d of %d rows failed", tc.TenantID, result.Failed, result.Total)
			if warning == "" {
				warning = "some results were not cached"
			}
		}
	}

	combined := cached
	for _, row := range fresh {
		if len(combined) >= filter.PerPage {
			break
		}
		if _, dup := seen[row.ApolloPersonID]; dup {
			continue
		}
		seen[row.ApolloPersonID] = struct{}{}
		combined = append(combined, row)
	}

	source := SourceProvider
	if len(cached) > 0 {
		source = SourceMixed
	}
	s.recordHistory(ctx, tc, filter, len(combined), source)

	return SearchResult{
		Success:   true,
		Employees: toEmployees(combined),
		Count:     len(combined),
		Source:    source,
		Cost:      cost,
		Warning:   warning,
	}, nil
}

// fetchSearchPage serves the provider fill, preferring a fresh raw response
// from the search cache (free) over a live call (charged). A nil response
// means the provider path failed entirely.
func (s *LeadsService) fetchSearchPage(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) (*apollo.SearchResponse, int, string) {
	hash, canonical := filterHash(filter)

	if s.searchCache != nil {
		entry, err := s.searchCache.Lookup(ctx, tc, hash)
		if err == nil {
			var resp apollo.SearchResponse
			if jsonErr := json.Unmarshal(entry.Response, &resp); jsonErr == nil {
				return &resp, 0, ""
			}
			log.Printf("tenant=%s stored search response unreadable, refetching", tc.TenantID)
		} else if !errors.Is(err, repository.ErrSearchCacheMiss) {
			log.Printf("tenant=%s search cache lookup degraded: %v", tc.TenantID, err)
		}
	}

	// Always request the maximum page size to maximize future cache coverage.
	resp, err := s.provider.SearchPeople(ctx, apollo.SearchRequest{
		PersonTitles:           filter.Titles,
		OrganizationLocations:  filter.Locations,
		OrganizationIndustries: filter.Industries,
		Page:                   1,
		PerPage:                s.opts.ProviderPageSize,
	})
	if err != nil {
		log.Printf("tenant=%s provider search failed: %v", tc.TenantID, err)
		return nil, 0, "provider unavailable, served cached results"
	}

	if s.searchCache != nil {
		raw, marshalErr := json.Marshal(resp)
		if marshalErr == nil {
			if storeErr := s.searchCache.Store(ctx, tc, hash, canonical, raw, len(resp.People)); storeErr != nil {
				log.Printf("tenant=%s search cache store degraded: %v", tc.TenantID, storeErr)
			}
		}
	}

	return resp, s.opts.Costs.Search, ""
}

func (s *LeadsService) recordHistory(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter, count int, source string) {
	if s.searchCache == nil {
		return
	}
	_, canonical := filterHash(filter)
	entry := entity.SearchHistoryEntry{
		TenantID:    tc.TenantID,
		Filters:     canonical,
		ResultCount: count,
		Source:      source,
	}
	if err := s.searchCache.RecordHistory(ctx, tc, entry); err != nil {
		log.Printf("tenant=%s search history degraded: %v", tc.TenantID, err)
	}
}

// filterHash builds the canonical key for a filter set: groups sorted and
// lowercased so ordering and casing differences hash identically.
func filterHash(filter dto.EmployeeFilter) (string, json.RawMessage) {
	canon := struct {
		Titles     []string `json:"titles"`
		Locations  []string `json:"locations"`
		Industries []string `json:"industries"`
	}{
		Titles:     normalizeGroup(filter.Titles),
		Locations:  normalizeGroup(filter.Locations),
		Industries: normalizeGroup(filter.Industries),
	}
	data, _ := json.Marshal(canon)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), data
}

func normalizeGroup(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func toEmployees(rows []entity.CachedEmployee) []dto.Employee {
	out := make([]dto.Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.EmployeeFromEntity(row))
	}
	return out
}
