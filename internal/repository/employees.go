package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

// ErrEmployeeNotFound indicates no cache row matched the lookup.
var ErrEmployeeNotFound = errors.New("cached employee not found")

// EmployeesRepository describes persistence operations for the
// employees_cache table. Every operation is scoped by the tenant context.
type EmployeesRepository interface {
	FindByPersonID(ctx context.Context, tc tenant.Context, personID string) (*entity.CachedEmployee, error)
	FindByName(ctx context.Context, tc tenant.Context, name string) (*entity.CachedEmployee, error)
	Search(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error)
	List(ctx context.Context, tc tenant.Context, page, perPage int) ([]entity.CachedEmployee, error)
	Upsert(ctx context.Context, tc tenant.Context, employee *entity.CachedEmployee) (inserted bool, err error)
	BulkUpsert(ctx context.Context, tc tenant.Context, employees []entity.CachedEmployee) BulkUpsertResult
	UpdateContact(ctx context.Context, tc tenant.Context, personID string, email, phone *string) (bool, error)
	SoftDelete(ctx context.Context, tc tenant.Context, personID string) (bool, error)
}

// BulkUpsertResult summarises a batch write. Failed records are skipped, never
// abort the batch.
type BulkUpsertResult struct {
	Inserted int
	Updated  int
	Failed   int
	Total    int
}

// PGXEmployeesRepository implements EmployeesRepository using pgx.
type PGXEmployeesRepository struct {
	pool pgxPool
}

// NewPGXEmployeesRepository wires a pgx backed repository.
func NewPGXEmployeesRepository(pool *pgxpool.Pool) *PGXEmployeesRepository {
	return &PGXEmployeesRepository{pool: pool}
}

const employeeColumns = `
            id,
            tenant_id,
            apollo_person_id,
            name,
            title,
            email,
            phone,
            linkedin_url,
            photo_url,
            headline,
            city,
            state,
            country,
            company_id,
            company_name,
            company_domain,
            employee_data,
            data_source,
            is_deleted,
            created_at,
            updated_at`

// FindByPersonID fetches the cache row for a provider person id.
func (r *PGXEmployeesRepository) FindByPersonID(ctx context.Context, tc tenant.Context, personID string) (*entity.CachedEmployee, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE tenant_id = $1 AND apollo_person_id = $2 AND is_deleted = FALSE LIMIT 1`,
		employeeColumns, tc.Table("employees_cache"))
	return r.findOne(ctx, query, tc.TenantID, personID)
}

// FindByName fetches the most recently created cache row with an exact
// case-insensitive name match. Used when a reveal call carries no person id.
func (r *PGXEmployeesRepository) FindByName(ctx context.Context, tc tenant.Context, name string) (*entity.CachedEmployee, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE tenant_id = $1 AND LOWER(name) = LOWER($2) AND is_deleted = FALSE ORDER BY created_at DESC LIMIT 1`,
		employeeColumns, tc.Table("employees_cache"))
	return r.findOne(ctx, query, tc.TenantID, name)
}

func (r *PGXEmployeesRepository) findOne(ctx context.Context, query string, args ...any) (*entity.CachedEmployee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cached employee: %w", err)
	}
	defer rows.Close()

	employees, err := scanEmployees(rows)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, ErrEmployeeNotFound
	}
	return &employees[0], nil
}

// Search returns cache rows matching the filter groups. Within a group the
// values combine with OR, the groups combine with AND; every predicate is
// tenant-scoped and excludes soft-deleted rows.
func (r *PGXEmployeesRepository) Search(ctx context.Context, tc tenant.Context, filter dto.EmployeeFilter) ([]entity.CachedEmployee, error) {
	var (
		clauses = []string{"tenant_id = $1", "is_deleted = FALSE"}
		args    = []any{tc.TenantID}
		idx     = 2
	)

	if group := buildGroup(filter.Titles, &args, &idx,
		"title ILIKE $%d", "employee_data->>'title' ILIKE $%d"); group != "" {
		clauses = append(clauses, group)
	}
	if group := buildGroup(filter.Locations, &args, &idx,
		"city ILIKE $%d", "state ILIKE $%d", "country ILIKE $%d",
		"employee_data#>>'{organization,raw_address}' ILIKE $%d"); group != "" {
		clauses = append(clauses, group)
	}
	if group := buildGroup(filter.Industries, &args, &idx,
		"company_name ILIKE $%d",
		"employee_data#>>'{organization,industry}' ILIKE $%d",
		"employee_data#>>'{organization,name}' ILIKE $%d",
		"(employee_data#>'{organization,keywords}')::text ILIKE $%d",
		"employee_data#>>'{organization,short_description}' ILIKE $%d"); group != "" {
		clauses = append(clauses, group)
	}

	if len(filter.ExcludeIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("NOT (apollo_person_id = ANY($%d))", idx))
		args = append(args, filter.ExcludeIDs)
		idx++
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		employeeColumns, tc.Table("employees_cache"), strings.Join(clauses, " AND "), idx, idx+1)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search cached employees: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

// buildGroup produces one parenthesised OR-group: each value is matched as a
// case-insensitive substring against every field template. The same numbered
// arg is reused across the templates of one value.
func buildGroup(values []string, args *[]any, idx *int, fieldTemplates ...string) string {
	var perValue []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		var fields []string
		for _, tmpl := range fieldTemplates {
			fields = append(fields, fmt.Sprintf(tmpl, *idx))
		}
		perValue = append(perValue, "("+strings.Join(fields, " OR ")+")")
		*args = append(*args, fmt.Sprintf("%%%s%%", value))
		*idx++
	}
	if len(perValue) == 0 {
		return ""
	}
	return "(" + strings.Join(perValue, " OR ") + ")"
}

// List returns a tenant's cache rows, most recent first.
func (r *PGXEmployeesRepository) List(ctx context.Context, tc tenant.Context, page, perPage int) ([]entity.CachedEmployee, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE tenant_id = $1 AND is_deleted = FALSE ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		employeeColumns, tc.Table("employees_cache"))

	rows, err := r.pool.Query(ctx, query, tc.TenantID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("list cached employees: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

const upsertEmployeeSQL = `
        INSERT INTO %s (
            tenant_id,
            apollo_person_id,
            name,
            title,
            email,
            phone,
            linkedin_url,
            photo_url,
            headline,
            city,
            state,
            country,
            company_id,
            company_name,
            company_domain,
            employee_data,
            data_source,
            updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16::jsonb,$17,NOW())
        ON CONFLICT (tenant_id, company_id, apollo_person_id) DO UPDATE SET
            name = EXCLUDED.name,
            title = EXCLUDED.title,
            employee_data = EXCLUDED.employee_data,
            email = COALESCE(EXCLUDED.email, employees_cache.email),
            phone = COALESCE(EXCLUDED.phone, employees_cache.phone),
            linkedin_url = COALESCE(EXCLUDED.linkedin_url, employees_cache.linkedin_url),
            photo_url = COALESCE(EXCLUDED.photo_url, employees_cache.photo_url),
            headline = COALESCE(EXCLUDED.headline, employees_cache.headline),
            city = COALESCE(EXCLUDED.city, employees_cache.city),
            state = COALESCE(EXCLUDED.state, employees_cache.state),
            country = COALESCE(EXCLUDED.country, employees_cache.country),
            company_name = COALESCE(EXCLUDED.company_name, employees_cache.company_name),
            company_domain = COALESCE(EXCLUDED.company_domain, employees_cache.company_domain),
            data_source = EXCLUDED.data_source,
            is_deleted = FALSE,
            updated_at = NOW()
        RETURNING xmax = 0;
    `

// Upsert inserts or updates the row keyed by (tenant_id, company_id,
// apollo_person_id). Name, title and the raw blob are always refreshed;
// contact, location and company fields keep their stored value when the new
// one is absent. Returns whether the row was inserted.
func (r *PGXEmployeesRepository) Upsert(ctx context.Context, tc tenant.Context, employee *entity.CachedEmployee) (bool, error) {
	if employee == nil {
		return false, fmt.Errorf("employee payload is nil")
	}
	if strings.TrimSpace(employee.ApolloPersonID) == "" {
		return false, fmt.Errorf("employee is missing a person id")
	}

	raw := employee.EmployeeData
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	// company_id participates in the conflict target, so NULL is stored as ''.
	companyID := ""
	if employee.CompanyID != nil {
		companyID = *employee.CompanyID
	}

	dataSource := employee.DataSource
	if dataSource == "" {
		dataSource = entity.DataSourceProvider
	}

	query := fmt.Sprintf(upsertEmployeeSQL, tc.Table("employees_cache"))

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		tc.TenantID,
		employee.ApolloPersonID,
		employee.Name,
		employee.Title,
		employee.Email,
		employee.Phone,
		employee.LinkedinURL,
		employee.PhotoURL,
		employee.Headline,
		employee.City,
		employee.State,
		employee.Country,
		companyID,
		employee.CompanyName,
		employee.CompanyDomain,
		string(raw),
		dataSource,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert employee %q: %w", employee.ApolloPersonID, err)
	}
	return inserted, nil
}

// BulkUpsert writes a batch of records one statement at a time (auto-commit);
// a failing record is counted and skipped so partial progress survives.
func (r *PGXEmployeesRepository) BulkUpsert(ctx context.Context, tc tenant.Context, employees []entity.CachedEmployee) BulkUpsertResult {
	var result BulkUpsertResult
	for i := range employees {
		result.Total++
		inserted, err := r.Upsert(ctx, tc, &employees[i])
		if err != nil {
			result.Failed++
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	return result
}

// UpdateContact coalesces a revealed email or phone onto an existing cache
// row. Returns false when no row exists for the person.
func (r *PGXEmployeesRepository) UpdateContact(ctx context.Context, tc tenant.Context, personID string, email, phone *string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET
            email = COALESCE($3, email),
            phone = COALESCE($4, phone),
            updated_at = NOW()
        WHERE tenant_id = $1 AND apollo_person_id = $2 AND is_deleted = FALSE`,
		tc.Table("employees_cache"))

	tag, err := r.pool.Exec(ctx, query, tc.TenantID, personID, email, phone)
	if err != nil {
		return false, fmt.Errorf("update contact for %q: %w", personID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SoftDelete hides a row from every read without removing it.
func (r *PGXEmployeesRepository) SoftDelete(ctx context.Context, tc tenant.Context, personID string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = TRUE, updated_at = NOW() WHERE tenant_id = $1 AND apollo_person_id = $2 AND is_deleted = FALSE`,
		tc.Table("employees_cache"))

	tag, err := r.pool.Exec(ctx, query, tc.TenantID, personID)
	if err != nil {
		return false, fmt.Errorf("soft delete employee %q: %w", personID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanEmployees(rows pgx.Rows) ([]entity.CachedEmployee, error) {
	var employees []entity.CachedEmployee
	for rows.Next() {
		var (
			e             entity.CachedEmployee
			title         sql.NullString
			email         sql.NullString
			phone         sql.NullString
			linkedinURL   sql.NullString
			photoURL      sql.NullString
			headline      sql.NullString
			city          sql.NullString
			state         sql.NullString
			country       sql.NullString
			companyID     sql.NullString
			companyName   sql.NullString
			companyDomain sql.NullString
			raw           []byte
		)

		err := rows.Scan(
			&e.ID,
			&e.TenantID,
			&e.ApolloPersonID,
			&e.Name,
			&title,
			&email,
			&phone,
			&linkedinURL,
			&photoURL,
			&headline,
			&city,
			&state,
			&country,
			&companyID,
			&companyName,
			&companyDomain,
			&raw,
			&e.DataSource,
			&e.IsDeleted,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}

		e.Title = nullStringToPtr(title)
		e.Email = nullStringToPtr(email)
		e.Phone = nullStringToPtr(phone)
		e.LinkedinURL = nullStringToPtr(linkedinURL)
		e.PhotoURL = nullStringToPtr(photoURL)
		e.Headline = nullStringToPtr(headline)
		e.City = nullStringToPtr(city)
		e.State = nullStringToPtr(state)
		e.Country = nullStringToPtr(country)
		e.CompanyName = nullStringToPtr(companyName)
		e.CompanyDomain = nullStringToPtr(companyDomain)

		// '' company_id is the stored form of "unknown".
		if companyID.Valid && companyID.String != "" {
			val := companyID.String
			e.CompanyID = &val
		}

		if len(raw) > 0 {
			e.EmployeeData = json.RawMessage(raw)
		} else {
			e.EmployeeData = json.RawMessage("{}")
		}

		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}
