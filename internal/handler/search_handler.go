package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	middlewarepkg "github.com/techiemaya-admin/lad-feature-apollo-leads/internal/middleware"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/service"
)

// SearchHandler exposes the cache-first employee search endpoint.
type SearchHandler struct {
	leads *service.LeadsService
}

// NewSearchHandler creates a new handler instance.
func NewSearchHandler(leads *service.LeadsService) *SearchHandler {
	return &SearchHandler{leads: leads}
}

// Search handles POST /employees/search requests.
func (h *SearchHandler) Search(c echo.Context) error {
	var req dto.SearchEmployeesRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	filter := dto.EmployeeFilter{
		Titles:     trimAll(req.Titles),
		Locations:  trimAll(req.Locations),
		Industries: trimAll(req.Industries),
		ExcludeIDs: trimAll(req.ExcludeIDs),
		Page:       req.Page,
		PerPage:    req.PerPage,
	}

	tc, _ := middlewarepkg.TenantFromContext(c)
	result, err := h.leads.SearchEmployees(c.Request().Context(), tc, filter)
	if err != nil {
		return translateError(c, err)
	}
	return Success(c, http.StatusOK, "employees retrieved", result)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
