package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the provider's v1 API root.
const DefaultBaseURL = "https://api.apollo.io/v1"

// MaxSearchPageSize is the largest page the provider serves. The search
// fallback always requests this size to maximize future cache coverage.
const MaxSearchPageSize = 100

const defaultTimeout = 120 * time.Second

// PhoneNumber is one entry of a person's phone_numbers list.
type PhoneNumber struct {
	RawNumber       string `json:"raw_number"`
	SanitizedNumber string `json:"sanitized_number,omitempty"`
	Type            string `json:"type,omitempty"`
}

// Organization is the nested employer object on a person record.
type Organization struct {
	ID               string   `json:"id,omitempty"`
	Name             string   `json:"name,omitempty"`
	WebsiteURL       string   `json:"website_url,omitempty"`
	PrimaryDomain    string   `json:"primary_domain,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	RawAddress       string   `json:"raw_address,omitempty"`
}

// Person is a provider person record. Raw holds the untouched JSON object so
// fields not promoted here survive into the cache blob.
type Person struct {
	ID             string        `json:"id"`
	Name           string        `json:"name,omitempty"`
	FirstName      string        `json:"first_name,omitempty"`
	LastName       string        `json:"last_name,omitempty"`
	Title          string        `json:"title,omitempty"`
	Email          string        `json:"email,omitempty"`
	PersonalEmails []string      `json:"personal_emails,omitempty"`
	PhoneNumbers   []PhoneNumber `json:"phone_numbers,omitempty"`
	LinkedinURL    string        `json:"linkedin_url,omitempty"`
	PhotoURL       string        `json:"photo_url,omitempty"`
	Headline       string        `json:"headline,omitempty"`
	City           string        `json:"city,omitempty"`
	State          string        `json:"state,omitempty"`
	Country        string        `json:"country,omitempty"`
	Organization   *Organization `json:"organization,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// MatchRequest asks the person-match endpoint to resolve a person and reveal
// the requested contact channel.
type MatchRequest struct {
	PersonID             string `json:"id"`
	RevealPersonalEmails bool   `json:"reveal_personal_emails,omitempty"`
	RevealPhoneNumber    bool   `json:"reveal_phone_number,omitempty"`
	WebhookURL           string `json:"webhook_url,omitempty"`
}

// SearchRequest is the people-search payload.
type SearchRequest struct {
	PersonTitles           []string `json:"person_titles,omitempty"`
	OrganizationLocations  []string `json:"organization_locations,omitempty"`
	OrganizationIndustries []string `json:"organization_industries,omitempty"`
	Page                   int      `json:"page"`
	PerPage                int      `json:"per_page"`
}

// Pagination mirrors the provider's paging envelope.
type Pagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

// SearchResponse is the people-search result set.
type SearchResponse struct {
	People     []Person   `json:"people"`
	Pagination Pagination `json:"pagination"`
}

// Client calls the lead-data provider over HTTPS with an API-key header.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewClient builds a provider client. A nil http.Client gets a default with a
// generous timeout; provider calls are never retried, they run to completion
// or time out.
func NewClient(client *http.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{client: client, baseURL: baseURL, apiKey: apiKey}
}

// MatchPerson resolves a single person, optionally revealing email or phone.
func (c *Client) MatchPerson(ctx context.Context, req MatchRequest) (*Person, error) {
	body, err := c.postJSON(ctx, "/people/match", req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Person json.RawMessage `json:"person"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode match response: %w", err)
	}
	if len(envelope.Person) == 0 || string(envelope.Person) == "null" {
		return nil, NewAPIError(http.StatusNotFound, "no person in match response")
	}

	var person Person
	if err := json.Unmarshal(envelope.Person, &person); err != nil {
		return nil, fmt.Errorf("decode person: %w", err)
	}
	person.Raw = envelope.Person
	return &person, nil
}

// SearchPeople runs a people search with the given filters and paging.
func (c *Client) SearchPeople(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	body, err := c.postJSON(ctx, "/mixed_people/search", req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		People     []json.RawMessage `json:"people"`
		Pagination Pagination        `json:"pagination"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	resp := &SearchResponse{Pagination: envelope.Pagination}
	for _, raw := range envelope.People {
		var person Person
		if err := json.Unmarshal(raw, &person); err != nil {
			return nil, fmt.Errorf("decode person in search response: %w", err)
		}
		person.Raw = raw
		resp.People = append(resp.People, person)
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.apiKey == "" {
		return nil, NewAPIError(http.StatusUnauthorized, "no API key configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal provider payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if rid := requestIDFrom(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, NewAPIError(resp.StatusCode, extractErrorMessage(data))
	}
	return data, nil
}

func extractErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(body)
}
