package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SearchCacheEntry stores a raw provider search response keyed by a hash of
// the filter set, so identical searches within the freshness window reuse the
// stored payload instead of spending another provider call.
type SearchCacheEntry struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	QueryHash   string          `json:"query_hash"`
	Filters     json.RawMessage `json:"filters"`
	Response    json.RawMessage `json:"response"`
	ResultCount int             `json:"result_count"`
	HitCount    int             `json:"hit_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SearchHistoryEntry is one audit row per search operation.
type SearchHistoryEntry struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Filters     json.RawMessage `json:"filters"`
	ResultCount int             `json:"result_count"`
	Source      string          `json:"source"`
	CreatedAt   time.Time       `json:"created_at"`
}
