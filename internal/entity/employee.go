package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DataSourceProvider tags rows created from a live provider response.
const DataSourceProvider = "external_provider"

// DataSourceWebhook tags rows whose phone number arrived through the
// asynchronous delivery callback.
const DataSourceWebhook = "provider_webhook"

// CachedEmployee is a row in a tenant's employees_cache table: the durable
// record of a person previously fetched from the lead-data provider.
type CachedEmployee struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	ApolloPersonID string          `json:"apollo_person_id"`
	Name           string          `json:"name"`
	Title          *string         `json:"title,omitempty"`
	Email          *string         `json:"email,omitempty"`
	Phone          *string         `json:"phone,omitempty"`
	LinkedinURL    *string         `json:"linkedin_url,omitempty"`
	PhotoURL       *string         `json:"photo_url,omitempty"`
	Headline       *string         `json:"headline,omitempty"`
	City           *string         `json:"city,omitempty"`
	State          *string         `json:"state,omitempty"`
	Country        *string         `json:"country,omitempty"`
	CompanyID      *string         `json:"company_id,omitempty"`
	CompanyName    *string         `json:"company_name,omitempty"`
	CompanyDomain  *string         `json:"company_domain,omitempty"`
	EmployeeData   json.RawMessage `json:"employee_data"`
	DataSource     string          `json:"data_source"`
	IsDeleted      bool            `json:"is_deleted"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
