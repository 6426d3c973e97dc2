package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/apollo"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/repository"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

// Provider is the slice of the lead-data client the service depends on.
type Provider interface {
	MatchPerson(ctx context.Context, req apollo.MatchRequest) (*apollo.Person, error)
	SearchPeople(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error)
}

// Costs are the per-operation credit prices, supplied by configuration.
type Costs struct {
	RevealEmail int
	RevealPhone int
	Search      int
}

// Options configures the leads service.
type Options struct {
	// APIKey is only inspected for presence; the client holds the real key.
	APIKey string
	// WebhookURL, when set, switches phone reveals to asynchronous delivery.
	WebhookURL string
	// WebhookToken is the shared secret echoed back on webhook deliveries.
	WebhookToken string
	// Production makes a missing tenant context a hard error instead of
	// falling back to the default schema.
	Production    bool
	DefaultSchema string
	Costs         Costs
	// ProviderPageSize is the page size requested on every provider search.
	ProviderPageSize int
}

// LeadsService implements contact reveal and employee search with the
// cache-first, provider-fallback, write-back contract.
type LeadsService struct {
	employees   repository.EmployeesRepository
	searchCache repository.SearchCacheRepository
	provider    Provider
	policy      *ContactPolicy
	opts        Options
}

// NewLeadsService wires the service. A nil policy gets the defaults.
func NewLeadsService(employees repository.EmployeesRepository, searchCache repository.SearchCacheRepository, provider Provider, policy *ContactPolicy, opts Options) *LeadsService {
	if policy == nil {
		policy = NewContactPolicy(nil, "")
	}
	if opts.ProviderPageSize <= 0 {
		opts.ProviderPageSize = apollo.MaxSearchPageSize
	}
	return &LeadsService{
		employees:   employees,
		searchCache: searchCache,
		provider:    provider,
		policy:      policy,
		opts:        opts,
	}
}

// resolveTenant enforces the tenant requirement. Outside production an
// invalid context degrades to the configured default schema.
func (s *LeadsService) resolveTenant(tc tenant.Context) (tenant.Context, error) {
	if tc.Valid() {
		return tc, nil
	}
	if !s.opts.Production && s.opts.DefaultSchema != "" {
		return tenant.Context{TenantID: tc.TenantID, Schema: s.opts.DefaultSchema}, nil
	}
	return tenant.Context{}, TenantContextError{Message: "no tenant context for operation"}
}

// lookupCached probes the cache by person id, falling back to an exact name
// match. Cache read failures are logged and treated as a miss.
func (s *LeadsService) lookupCached(ctx context.Context, tc tenant.Context, personID, employeeName string) *entity.CachedEmployee {
	var (
		cached *entity.CachedEmployee
		err    error
	)
	switch {
	case strings.TrimSpace(personID) != "":
		cached, err = s.employees.FindByPersonID(ctx, tc, personID)
	case strings.TrimSpace(employeeName) != "":
		cached, err = s.employees.FindByName(ctx, tc, employeeName)
	default:
		return nil
	}
	if err != nil {
		if !errors.Is(err, repository.ErrEmployeeNotFound) {
			log.Printf("tenant=%s cache read degraded: %v", tc.TenantID, err)
		}
		return nil
	}
	return cached
}

// formatPerson maps a provider person record to the cache row shape. The
// promoted email is dropped when it matches the placeholder deny-list so fake
// contact data never becomes a cache hit.
func (s *LeadsService) formatPerson(person apollo.Person, dataSource string) entity.CachedEmployee {
	e := entity.CachedEmployee{
		ApolloPersonID: person.ID,
		Name:           strings.TrimSpace(person.Name),
		Title:          optional(person.Title),
		LinkedinURL:    optional(person.LinkedinURL),
		PhotoURL:       optional(person.PhotoURL),
		Headline:       optional(person.Headline),
		City:           optional(person.City),
		State:          optional(person.State),
		Country:        optional(person.Country),
		DataSource:     dataSource,
	}
	if e.Name == "" {
		e.Name = strings.TrimSpace(strings.TrimSpace(person.FirstName) + " " + strings.TrimSpace(person.LastName))
	}
	if s.policy.ValidEmail(person.Email) {
		e.Email = optional(person.Email)
	}
	if len(person.PhoneNumbers) > 0 {
		if phone := s.policy.NormalizePhone(person.PhoneNumbers[0].RawNumber); phone != "" {
			e.Phone = &phone
		}
	}
	if org := person.Organization; org != nil {
		e.CompanyID = optional(org.ID)
		e.CompanyName = optional(org.Name)
		e.CompanyDomain = optional(org.PrimaryDomain)
	}
	if len(person.Raw) > 0 {
		e.EmployeeData = person.Raw
	} else {
		e.EmployeeData = json.RawMessage("{}")
	}
	return e
}

// writeBack persists a revealed contact best-effort. Failures are logged and
// reported as a warning on the otherwise-successful result, never as errors.
func (s *LeadsService) writeBack(ctx context.Context, tc tenant.Context, employee entity.CachedEmployee) string {
	if _, err := s.employees.Upsert(ctx, tc, &employee); err != nil {
		log.Printf("tenant=%s person=%s cache write degraded: %v", tc.TenantID, employee.ApolloPersonID, err)
		return "result was not cached"
	}
	return ""
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
