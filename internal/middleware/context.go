package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyTenant    = "tenant_context"
	ContextKeyRequestID = "request_id"
)

// TenantFromContext extracts the tenant scope stored by the JWT middleware.
func TenantFromContext(c echo.Context) (tenant.Context, bool) {
	tc, ok := c.Get(ContextKeyTenant).(tenant.Context)
	return tc, ok
}
