package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

// ErrSearchCacheMiss indicates no fresh entry exists for the query hash.
var ErrSearchCacheMiss = errors.New("search cache miss")

// SearchFreshnessWindow is how long a stored provider search response may
// substitute for a live call.
const SearchFreshnessWindow = "24 hours"

// SearchCacheRepository persists raw provider search responses and the audit
// trail of past searches.
type SearchCacheRepository interface {
	Lookup(ctx context.Context, tc tenant.Context, queryHash string) (*entity.SearchCacheEntry, error)
	Store(ctx context.Context, tc tenant.Context, queryHash string, filters, response json.RawMessage, resultCount int) error
	RecordHistory(ctx context.Context, tc tenant.Context, entry entity.SearchHistoryEntry) error
}

// PGXSearchCacheRepository implements SearchCacheRepository using pgx.
type PGXSearchCacheRepository struct {
	pool pgxPool
}

// NewPGXSearchCacheRepository wires a pgx backed repository.
func NewPGXSearchCacheRepository(pool *pgxpool.Pool) *PGXSearchCacheRepository {
	return &PGXSearchCacheRepository{pool: pool}
}

// Lookup returns the stored response for the query hash when it is still
// inside the freshness window, bumping its hit counter in the same statement.
func (r *PGXSearchCacheRepository) Lookup(ctx context.Context, tc tenant.Context, queryHash string) (*entity.SearchCacheEntry, error) {
	query := fmt.Sprintf(`UPDATE %s SET hit_count = hit_count + 1
        WHERE tenant_id = $1 AND query_hash = $2 AND updated_at > NOW() - INTERVAL '%s'
        RETURNING id, tenant_id, query_hash, filters, response, result_count, hit_count, created_at, updated_at`,
		tc.Table("apollo_search_cache"), SearchFreshnessWindow)

	var (
		entry    entity.SearchCacheEntry
		filters  []byte
		response []byte
	)
	err := r.pool.QueryRow(ctx, query, tc.TenantID, queryHash).Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.QueryHash,
		&filters,
		&response,
		&entry.ResultCount,
		&entry.HitCount,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSearchCacheMiss
		}
		return nil, fmt.Errorf("lookup search cache: %w", err)
	}

	entry.Filters = json.RawMessage(filters)
	entry.Response = json.RawMessage(response)
	return &entry, nil
}

// Store saves (or refreshes) the raw response for a query hash, resetting the
// freshness window and the hit counter.
func (r *PGXSearchCacheRepository) Store(ctx context.Context, tc tenant.Context, queryHash string, filters, response json.RawMessage, resultCount int) error {
	if len(filters) == 0 {
		filters = json.RawMessage("{}")
	}
	if len(response) == 0 {
		response = json.RawMessage("{}")
	}

	query := fmt.Sprintf(`INSERT INTO %s (tenant_id, query_hash, filters, response, result_count, hit_count, updated_at)
        VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, 0, NOW())
        ON CONFLICT (tenant_id, query_hash) DO UPDATE SET
            filters = EXCLUDED.filters,
            response = EXCLUDED.response,
            result_count = EXCLUDED.result_count,
            hit_count = 0,
            updated_at = NOW();`,
		tc.Table("apollo_search_cache"))

	if _, err := r.pool.Exec(ctx, query, tc.TenantID, queryHash, string(filters), string(response), resultCount); err != nil {
		return fmt.Errorf("store search cache entry: %w", err)
	}
	return nil
}

// RecordHistory appends one audit row for a completed search operation.
func (r *PGXSearchCacheRepository) RecordHistory(ctx context.Context, tc tenant.Context, entry entity.SearchHistoryEntry) error {
	filters := entry.Filters
	if len(filters) == 0 {
		filters = json.RawMessage("{}")
	}

	query := fmt.Sprintf(`INSERT INTO %s (tenant_id, filters, result_count, source) VALUES ($1, $2::jsonb, $3, $4)`,
		tc.Table("apollo_search_history"))

	if _, err := r.pool.Exec(ctx, query, tc.TenantID, string(filters), entry.ResultCount, entry.Source); err != nil {
		return fmt.Errorf("record search history: %w", err)
	}
	return nil
}
