package models

import (
	"unicode/utf8"

	"portfolio/internal/validator"
	dErrors "portfolio/pkg/domain-errors"
)

// MaxUserAgentLength caps the client-reported user agent.
const MaxUserAgentLength = 512

// CheckConsentRequest is the body of POST /check-consent.
type CheckConsentRequest struct {
	UserAgent    string        `json:"userAgent"`
	Timestamp    string        `json:"timestamp"`
	LocalConsent *LocalConsent `json:"localConsent,omitempty"`
}

func (r *CheckConsentRequest) Validate() error {
	if utf8.RuneCountInString(r.UserAgent) > MaxUserAgentLength {
		r.UserAgent = string([]rune(r.UserAgent)[:MaxUserAgentLength])
	}
	if r.LocalConsent != nil && (validator.Suspicious(r.LocalConsent.Name) ||
		validator.Suspicious(r.LocalConsent.Company) ||
		validator.Suspicious(r.LocalConsent.Email)) {
		return dErrors.New(dErrors.CodeSuspiciousInput, "Invalid input detected")
	}
	return nil
}

// RegisterVisitorRequest is the body of POST /visitor-consent. Timestamp is
// accepted for compatibility; the server clock decides GrantedAt.
type RegisterVisitorRequest struct {
	Name      string `json:"name"`
	Company   string `json:"company"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Consent   bool   `json:"consent"`

	validated validator.ValidatedRegistration
}

// Validate runs the registration rules and keeps the normalized result.
func (r *RegisterVisitorRequest) Validate() error {
	out, errs := validator.ValidateRegistration(validator.RegistrationInput{
		Name:    r.Name,
		Company: r.Company,
		Email:   r.Email,
		Consent: r.Consent,
	})
	if len(errs) > 0 {
		return errs.ToDomainError()
	}
	if utf8.RuneCountInString(r.UserAgent) > MaxUserAgentLength {
		r.UserAgent = string([]rune(r.UserAgent)[:MaxUserAgentLength])
	}
	r.validated = out
	return nil
}

// Validated returns the normalized registration. Only meaningful after Validate succeeded.
func (r *RegisterVisitorRequest) Validated() validator.ValidatedRegistration {
	return r.validated
}
