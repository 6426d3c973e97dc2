package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	middlewarepkg "github.com/techiemaya-admin/lad-feature-apollo-leads/internal/middleware"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/service"
)

func newSearchContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/employees/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middlewarepkg.ContextKeyTenant, handlerTenant)
	return c, rec
}

func TestSearchHandler_ServesFromCache(t *testing.T) {
	e := echo.New()
	repo := &stubEmployeesRepo{
		searchRows: []entity.CachedEmployee{
			{ApolloPersonID: "p-1", Name: "Jane Doe"},
			{ApolloPersonID: "p-2", Name: "John Roe"},
		},
	}
	handler := NewSearchHandler(newStubLeadsService(repo, nil, service.Options{}))

	c, rec := newSearchContext(e, `{"titles":["CTO"],"per_page":2}`)
	if err := handler.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	envelope, err := decodeEnvelope(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, _ := envelope.Data.(map[string]any)
	if data["source"] != "cache" || data["count"] != float64(2) {
		t.Fatalf("unexpected data: %v", envelope.Data)
	}
	if data["cost"] != float64(0) {
		t.Fatalf("cache page must be free, got %v", data["cost"])
	}
}

func TestSearchHandler_EmptyFilters(t *testing.T) {
	e := echo.New()
	handler := NewSearchHandler(newStubLeadsService(nil, nil, service.Options{}))

	c, rec := newSearchContext(e, `{"titles":["   "]}`)
	_ = handler.Search(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSearchHandler_InvalidJSON(t *testing.T) {
	e := echo.New()
	handler := NewSearchHandler(newStubLeadsService(nil, nil, service.Options{}))

	c, rec := newSearchContext(e, `{"titles":`)
	_ = handler.Search(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
