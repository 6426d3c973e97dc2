package service

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

const defaultPhoneRegion = "US"

// DefaultFakeEmailPatterns are the substrings that mark a stored or provider
// email as placeholder data rather than a real contact. The check is a
// heuristic filter, not a grammar.
var DefaultFakeEmailPatterns = []string{
	"noemail",
	"no-email",
	"noreply",
	"no-reply",
	"email_not_unlocked",
	"example.com",
	"domain.com",
	"test@",
	"info@",
	"contact@",
	"sales@",
	"support@",
	"admin@",
	"hello@",
	"office@",
}

// ContactPolicy decides which contact values count as real data.
type ContactPolicy struct {
	fakePatterns []string
	phoneRegion  string
}

// NewContactPolicy builds a policy. Empty arguments fall back to the default
// deny-list and phone region.
func NewContactPolicy(fakePatterns []string, phoneRegion string) *ContactPolicy {
	if len(fakePatterns) == 0 {
		fakePatterns = DefaultFakeEmailPatterns
	}
	region := strings.ToUpper(strings.TrimSpace(phoneRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	lowered := make([]string, 0, len(fakePatterns))
	for _, p := range fakePatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &ContactPolicy{fakePatterns: lowered, phoneRegion: region}
}

// ValidEmail reports whether the email is non-empty and matches none of the
// placeholder patterns. The domain is punycode-normalized first so unicode
// lookalike domains cannot slip past the deny-list.
func (p *ContactPolicy) ValidEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return false
	}

	if at := strings.LastIndex(email, "@"); at >= 0 && at < len(email)-1 {
		if ascii, err := idna.Lookup.ToASCII(email[at+1:]); err == nil {
			email = email[:at+1] + ascii
		}
	}

	for _, pattern := range p.fakePatterns {
		if strings.Contains(email, pattern) {
			return false
		}
	}
	return true
}

// ValidPhone reports whether the phone carries any content after trimming.
func (p *ContactPolicy) ValidPhone(phone string) bool {
	return strings.TrimSpace(phone) != ""
}

// NormalizePhone formats a phone number as E.164 when it parses; otherwise it
// returns the trimmed input unchanged.
func (p *ContactPolicy) NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, p.phoneRegion)
	if err != nil {
		return raw
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
