package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/apollo"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/service"
)

// translateError maps service and provider error kinds onto user-facing HTTP
// responses. Cache errors never reach this point; the service degrades them.
func translateError(c echo.Context, err error) error {
	var (
		tenantErr     service.TenantContextError
		validationErr service.ValidationError
		configErr     service.ConfigurationError
	)
	switch {
	case errors.As(err, &tenantErr):
		return Error(c, http.StatusUnauthorized, tenantErr.Message)
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &configErr):
		return Error(c, http.StatusInternalServerError, configErr.Message)
	case errors.Is(err, apollo.ErrNotFound):
		return Error(c, http.StatusNotFound, "person not found")
	case errors.Is(err, apollo.ErrRateLimited):
		return Error(c, http.StatusTooManyRequests, "provider rate limit exceeded, try again later")
	case errors.Is(err, apollo.ErrUnauthorized), errors.Is(err, apollo.ErrForbidden), errors.Is(err, apollo.ErrServer):
		return Error(c, http.StatusBadGateway, "lead data provider request failed")
	default:
		return Error(c, http.StatusInternalServerError, "operation failed")
	}
}
