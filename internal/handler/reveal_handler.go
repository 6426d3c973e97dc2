package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	middlewarepkg "github.com/techiemaya-admin/lad-feature-apollo-leads/internal/middleware"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/service"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

// RevealHandler exposes the metered contact reveal endpoints.
type RevealHandler struct {
	leads *service.LeadsService
}

// NewRevealHandler creates a new handler instance.
func NewRevealHandler(leads *service.LeadsService) *RevealHandler {
	return &RevealHandler{leads: leads}
}

// RevealEmail handles POST /reveal/email requests.
func (h *RevealHandler) RevealEmail(c echo.Context) error {
	req, tc, bindErr := bindRevealRequest(c)
	if bindErr != nil {
		return bindErr
	}

	result, err := h.leads.RevealEmail(c.Request().Context(), tc, req.PersonID, req.EmployeeName)
	if err != nil {
		return translateError(c, err)
	}
	return Success(c, http.StatusOK, "email reveal completed", result)
}

// RevealPhone handles POST /reveal/phone requests.
func (h *RevealHandler) RevealPhone(c echo.Context) error {
	req, tc, bindErr := bindRevealRequest(c)
	if bindErr != nil {
		return bindErr
	}

	result, err := h.leads.RevealPhone(c.Request().Context(), tc, req.PersonID, req.EmployeeName)
	if err != nil {
		return translateError(c, err)
	}
	return Success(c, http.StatusOK, "phone reveal completed", result)
}

func bindRevealRequest(c echo.Context) (dto.RevealRequest, tenant.Context, error) {
	var req dto.RevealRequest
	if err := c.Bind(&req); err != nil {
		return req, tenant.Context{}, Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	req.PersonID = strings.TrimSpace(req.PersonID)
	req.EmployeeName = strings.TrimSpace(req.EmployeeName)
	if req.PersonID == "" && req.EmployeeName == "" {
		return req, tenant.Context{}, Error(c, http.StatusBadRequest, "person_id or employee_name is required")
	}

	tc, _ := middlewarepkg.TenantFromContext(c)
	return req, tc, nil
}
