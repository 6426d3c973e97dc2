package dto

// RevealRequest is the JSON payload for the reveal endpoints.
type RevealRequest struct {
	PersonID     string `json:"person_id"`
	EmployeeName string `json:"employee_name,omitempty"`
}

// PhoneWebhookPayload is the out-of-band delivery posted by the provider once
// an asynchronously requested phone number becomes available.
type PhoneWebhookPayload struct {
	PersonID     string              `json:"person_id,omitempty"`
	People       []WebhookPerson     `json:"people,omitempty"`
	PhoneNumbers []WebhookPhoneEntry `json:"phone_numbers,omitempty"`
}

// WebhookPerson mirrors the person object inside a webhook delivery.
type WebhookPerson struct {
	ID           string              `json:"id"`
	Name         string              `json:"name,omitempty"`
	PhoneNumbers []WebhookPhoneEntry `json:"phone_numbers,omitempty"`
}

// WebhookPhoneEntry is a single delivered phone number.
type WebhookPhoneEntry struct {
	RawNumber       string `json:"raw_number"`
	SanitizedNumber string `json:"sanitized_number,omitempty"`
	Type            string `json:"type,omitempty"`
}
