package handler

import (
	"context"
	"encoding/json"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/apollo"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/repository"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/service"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

type stubEmployeesRepo struct {
	byPersonID    map[string]*entity.CachedEmployee
	searchRows    []entity.CachedEmployee
	listRows      []entity.CachedEmployee
	listErr       error
	upserted      []entity.CachedEmployee
	contactUpdate bool
	softDeleted   []string
	deleteHit     bool
}

func (s *stubEmployeesRepo) FindByPersonID(ctx context.Context, tc tenant.Context, personID string) (*entity.CachedEmployee, error) {
	if e, ok := s.byPersonID[personID]; ok {
		return e, nil
	}
	return nil, repository.ErrEmployeeNotFound
}

func (s *stubEmployeesRepo) FindByName(ctx context.Context, tc tenant.Context, name string) (*entity.CachedEmployee, error) {
	return nil, repository.ErrEmployeeNotFound
}

func (s *stubEmployeesRepo) Search(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error) {
	return s.searchRows, nil
}

func (s *stubEmployeesRepo) List(ctx context.Context, tc tenant.Context, page, perPage int) ([]entity.CachedEmployee, error) {
	return s.listRows, s.listErr
}

func (s *stubEmployeesRepo) Upsert(ctx context.Context, tc tenant.Context, employee *entity.CachedEmployee) (bool, error) {
	s.upserted = append(s.upserted, *employee)
	return true, nil
}

func (s *stubEmployeesRepo) BulkUpsert(ctx context.Context, tc tenant.Context, employees []entity.CachedEmployee) repository.BulkUpsertResult {
	s.upserted = append(s.upserted, employees...)
	return repository.BulkUpsertResult{Inserted: len(employees), Total: len(employees)}
}

func (s *stubEmployeesRepo) UpdateContact(ctx context.Context, tc tenant.Context, personID string, email, phone *string) (bool, error) {
	return s.contactUpdate, nil
}

func (s *stubEmployeesRepo) SoftDelete(ctx context.Context, tc tenant.Context, personID string) (bool, error) {
	s.softDeleted = append(s.softDeleted, personID)
	return s.deleteHit, nil
}

type stubProvider struct {
	person    *apollo.Person
	personErr error
	search    *apollo.SearchResponse
	searchErr error
}

func (s *stubProvider) MatchPerson(ctx context.Context, req apollo.MatchRequest) (*apollo.Person, error) {
	return s.person, s.personErr
}

func (s *stubProvider) SearchPeople(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
	return s.search, s.searchErr
}

func newStubLeadsService(repo *stubEmployeesRepo, provider *stubProvider, opts service.Options) *service.LeadsService {
	if repo == nil {
		repo = &stubEmployeesRepo{}
	}
	if provider == nil {
		provider = &stubProvider{}
	}
	if opts.APIKey == "" {
		opts.APIKey = "test-key"
	}
	if opts.Costs == (service.Costs{}) {
		opts.Costs = service.Costs{RevealEmail: 1, RevealPhone: 8, Search: 1}
	}
	opts.Production = true
	return service.NewLeadsService(repo, nil, provider, nil, opts)
}

func decodeEnvelope(body []byte) (APIResponse, error) {
	var envelope APIResponse
	err := json.Unmarshal(body, &envelope)
	return envelope, err
}
