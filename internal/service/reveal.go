package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/apollo"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/tenant"
)

// RevealResult is the structured outcome of a reveal operation. "No data
// available" is reported through Error with the cost still charged; only
// infrastructure failures surface as Go errors.
type RevealResult struct {
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	FromCache  bool    `json:"from_cache"`
	Cost       int     `json:"cost"`
	Processing bool    `json:"processing,omitempty"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
	Warning    string  `json:"warning,omitempty"`
}

// RevealEmail resolves an email for a person, preferring the cache at zero
// cost and falling back to the provider's person-match endpoint.
func (s *LeadsService) RevealEmail(ctx context.Context, tc tenant.Context, personID, employeeName string) (RevealResult, error) {
	tc, err := s.resolveTenant(tc)
	if err != nil {
		return RevealResult{}, err
	}

	if cached := s.lookupCached(ctx, tc, personID, employeeName); cached != nil && cached.Email != nil && s.policy.ValidEmail(*cached.Email) {
		email := *cached.Email
		return RevealResult{Email: &email, FromCache: true}, nil
	}

	if strings.TrimSpace(personID) == "" {
		return RevealResult{}, ValidationError{Message: "person_id is required to reveal an email"}
	}
	if s.opts.APIKey == "" {
		return RevealResult{}, ConfigurationError{Message: "provider API key is not configured"}
	}

	person, err := s.provider.MatchPerson(ctx, apollo.MatchRequest{
		PersonID:             personID,
		RevealPersonalEmails: true,
	})
	if err != nil {
		return RevealResult{Cost: s.chargeOnError(err, s.opts.Costs.RevealEmail)}, err
	}

	email := s.pickEmail(person)
	if email == "" {
		// The provider call was made, so the cost stands.
		return RevealResult{Cost: s.opts.Costs.RevealEmail, Error: "email not available"}, nil
	}

	record := s.formatPerson(*person, entity.DataSourceProvider)
	record.Email = &email

	result := RevealResult{Email: &email, Cost: s.opts.Costs.RevealEmail}
	result.Warning = s.writeBack(ctx, tc, record)
	return result, nil
}

// RevealPhone mirrors RevealEmail for phone numbers. With a webhook URL
// configured the provider delivers asynchronously and this call reports a
// pending state; the delivery handler completes the write-back later.
func (s *LeadsService) RevealPhone(ctx context.Context, tc tenant.Context, personID, employeeName string) (RevealResult, error) {
	tc, err := s.resolveTenant(tc)
	if err != nil {
		return RevealResult{}, err
	}

	if cached := s.lookupCached(ctx, tc, personID, employeeName); cached != nil && cached.Phone != nil && s.policy.ValidPhone(*cached.Phone) {
		phone := strings.TrimSpace(*cached.Phone)
		return RevealResult{Phone: &phone, FromCache: true}, nil
	}

	if strings.TrimSpace(personID) == "" {
		return RevealResult{}, ValidationError{Message: "person_id is required to reveal a phone number"}
	}
	if s.opts.APIKey == "" {
		return RevealResult{}, ConfigurationError{Message: "provider API key is not configured"}
	}

	req := apollo.MatchRequest{
		PersonID:          personID,
		RevealPhoneNumber: true,
	}
	async := s.opts.WebhookURL != ""
	if async {
		req.WebhookURL = s.webhookCallbackURL(tc, personID)
	}

	person, err := s.provider.MatchPerson(ctx, req)
	if err != nil {
		return RevealResult{Cost: s.chargeOnError(err, s.opts.Costs.RevealPhone)}, err
	}

	if async {
		// The provider accepted the request; the number arrives out of band.
		return RevealResult{
			Processing: true,
			Cost:       s.opts.Costs.RevealPhone,
			Message:    "phone number will be delivered asynchronously",
		}, nil
	}

	phone := s.pickPhone(person)
	if phone == "" {
		return RevealResult{Cost: s.opts.Costs.RevealPhone, Error: "phone not available"}, nil
	}

	record := s.formatPerson(*person, entity.DataSourceProvider)
	record.Phone = &phone

	result := RevealResult{Phone: &phone, Cost: s.opts.Costs.RevealPhone}
	result.Warning = s.writeBack(ctx, tc, record)
	return result, nil
}

// SavePhoneDelivery is phase two of an asynchronous phone reveal: the webhook
// handler hands over the delivered number and it lands on the same cache row
// the synchronous path would have written. Here the write is the whole point,
// so a cache failure propagates.
func (s *LeadsService) SavePhoneDelivery(ctx context.Context, tc tenant.Context, personID, rawPhone string) error {
	tc, err := s.resolveTenant(tc)
	if err != nil {
		return err
	}
	if strings.TrimSpace(personID) == "" {
		return ValidationError{Message: "person_id is required"}
	}
	phone := s.policy.NormalizePhone(rawPhone)
	if phone == "" {
		return ValidationError{Message: "phone number is empty"}
	}

	updated, err := s.employees.UpdateContact(ctx, tc, personID, nil, &phone)
	if err != nil {
		return CacheError{Op: "phone delivery update", Err: err}
	}
	if !updated {
		record := entity.CachedEmployee{
			ApolloPersonID: personID,
			Phone:          &phone,
			DataSource:     entity.DataSourceWebhook,
		}
		if _, err := s.employees.Upsert(ctx, tc, &record); err != nil {
			return CacheError{Op: "phone delivery upsert", Err: err}
		}
	}
	return nil
}

// VerifyWebhookToken checks the delivery's shared secret.
func (s *LeadsService) VerifyWebhookToken(token string) bool {
	return s.opts.WebhookToken != "" && constantTimeEqual(token, s.opts.WebhookToken)
}

func (s *LeadsService) chargeOnError(err error, cost int) int {
	if apollo.Chargeable(err) {
		return cost
	}
	return 0
}

// pickEmail prefers the work email and falls back to the first valid entry of
// the personal-emails list.
func (s *LeadsService) pickEmail(person *apollo.Person) string {
	if s.policy.ValidEmail(person.Email) {
		return strings.ToLower(strings.TrimSpace(person.Email))
	}
	for _, candidate := range person.PersonalEmails {
		if s.policy.ValidEmail(candidate) {
			return strings.ToLower(strings.TrimSpace(candidate))
		}
	}
	return ""
}

func (s *LeadsService) pickPhone(person *apollo.Person) string {
	for _, entry := range person.PhoneNumbers {
		if s.policy.ValidPhone(entry.RawNumber) {
			return s.policy.NormalizePhone(entry.RawNumber)
		}
		if s.policy.ValidPhone(entry.SanitizedNumber) {
			return s.policy.NormalizePhone(entry.SanitizedNumber)
		}
	}
	return ""
}

// webhookCallbackURL appends the tenant scope and person id so the delivery
// handler can rebuild the tenant context for the phase-two upsert.
func (s *LeadsService) webhookCallbackURL(tc tenant.Context, personID string) string {
	parsed, err := url.Parse(s.opts.WebhookURL)
	if err != nil {
		return s.opts.WebhookURL
	}
	q := parsed.Query()
	if s.opts.WebhookToken != "" {
		q.Set("token", s.opts.WebhookToken)
	}
	q.Set("tenant_id", tc.TenantID.String())
	q.Set("schema", tc.Schema)
	q.Set("person_id", personID)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
