package tenant

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Context identifies the tenant an operation runs on behalf of. It is passed
// explicitly to every service and repository call; nothing in this module
// resolves a tenant from ambient state.
type Context struct {
	TenantID uuid.UUID
	Schema   string
}

// New builds a tenant context, defaulting the schema when none is supplied.
func New(tenantID uuid.UUID, schema string) Context {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "public"
	}
	return Context{TenantID: tenantID, Schema: schema}
}

// Valid reports whether the context carries a usable tenant scope.
func (t Context) Valid() bool {
	return t.TenantID != uuid.Nil && t.Schema != ""
}

// Table returns the schema-qualified, quoted identifier for a table inside the
// tenant's schema, safe to splice into SQL text.
func (t Context) Table(name string) string {
	schema := t.Schema
	if schema == "" {
		schema = "public"
	}
	return pgx.Identifier{schema, name}.Sanitize()
}
