package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	middlewarepkg "github.com/techiemaya-admin/lad-feature-apollo-leads/internal/middleware"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/repository"
)

// AdminHandler exposes cache inspection endpoints for operators.
type AdminHandler struct {
	employees repository.EmployeesRepository
}

// NewAdminHandler creates a new handler instance.
func NewAdminHandler(employees repository.EmployeesRepository) *AdminHandler {
	return &AdminHandler{employees: employees}
}

// ListEmployees handles GET /admin/employees requests.
func (h *AdminHandler) ListEmployees(c echo.Context) error {
	tc, ok := middlewarepkg.TenantFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "no tenant context")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	perPage := parseIntDefault(c.QueryParam("per_page"), 20)

	rows, err := h.employees.List(c.Request().Context(), tc, page, perPage)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list cached employees")
	}

	employees := make([]dto.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, dto.EmployeeFromEntity(row))
	}
	return Success(c, http.StatusOK, "cached employees retrieved", employees)
}

// DeleteEmployee handles DELETE /admin/employees/:person_id requests with
// soft-delete semantics; the row stays for audit but leaves every read path.
func (h *AdminHandler) DeleteEmployee(c echo.Context) error {
	tc, ok := middlewarepkg.TenantFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "no tenant context")
	}

	personID := strings.TrimSpace(c.Param("person_id"))
	if personID == "" {
		return Error(c, http.StatusBadRequest, "person_id is required")
	}

	deleted, err := h.employees.SoftDelete(c.Request().Context(), tc, personID)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to delete cached employee")
	}
	if !deleted {
		return Error(c, http.StatusNotFound, "cached employee not found")
	}
	return Success(c, http.StatusOK, "cached employee deleted", map[string]any{"person_id": personID})
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
