package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/dto"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/service"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

// WebhookHandler receives asynchronous phone deliveries from the provider.
// The reveal flow registered the callback URL with tenant scope and person id
// as query parameters; this handler rebuilds the tenant context from them and
// hands the number to the same upsert path the synchronous reveal uses.
type WebhookHandler struct {
	leads *service.LeadsService
}

// NewWebhookHandler wires a new WebhookHandler instance.
func NewWebhookHandler(leads *service.LeadsService) *WebhookHandler {
	return &WebhookHandler{leads: leads}
}

// PhoneDelivered persists the POSTed phone payload.
func (h *WebhookHandler) PhoneDelivered(c echo.Context) error {
	if !h.leads.VerifyWebhookToken(c.QueryParam("token")) {
		return Error(c, http.StatusUnauthorized, "invalid webhook token")
	}

	tenantID, err := uuid.Parse(c.QueryParam("tenant_id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid tenant_id")
	}
	tc := tenant.New(tenantID, c.QueryParam("schema"))

	var payload dto.PhoneWebhookPayload
	if err := c.Bind(&payload); err != nil {
		return Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	personID, phone := extractDelivery(c.QueryParam("person_id"), payload)
	if personID == "" || phone == "" {
		return Error(c, http.StatusBadRequest, "delivery carries no person or phone number")
	}

	if err := h.leads.SavePhoneDelivery(c.Request().Context(), tc, personID, phone); err != nil {
		return translateError(c, err)
	}
	return Success(c, http.StatusOK, "phone number stored", map[string]any{"person_id": personID})
}

// extractDelivery tolerates the payload shapes the provider has been seen to
// send: a flat person_id + phone_numbers pair or a people list.
func extractDelivery(queryPersonID string, payload dto.PhoneWebhookPayload) (string, string) {
	personID := strings.TrimSpace(payload.PersonID)
	if personID == "" {
		personID = strings.TrimSpace(queryPersonID)
	}
	if phone := firstNumber(payload.PhoneNumbers); phone != "" {
		return personID, phone
	}
	for _, person := range payload.People {
		if phone := firstNumber(person.PhoneNumbers); phone != "" {
			if id := strings.TrimSpace(person.ID); id != "" {
				return id, phone
			}
			return personID, phone
		}
	}
	return personID, ""
}

func firstNumber(entries []dto.WebhookPhoneEntry) string {
	for _, entry := range entries {
		if phone := strings.TrimSpace(entry.RawNumber); phone != "" {
			return phone
		}
		if phone := strings.TrimSpace(entry.SanitizedNumber); phone != "" {
			return phone
		}
	}
	return ""
}
