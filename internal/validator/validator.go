// Package validator normalizes and checks the free-text fields submitted by
// site visitors. The rules are a fixed policy: length caps (values are cut,
// not rejected), the email shape, a markup blocklist applied to every field
// and a spam keyword list applied to contact messages.
package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"portfolio/pkg/email"
)

// Contact form limits, in characters.
const (
	MaxContactName    = 100
	MaxContactSubject = 200
	MaxContactMessage = 2000
	MaxContactCompany = 100
	MaxContactPhone   = 20
)

// Visitor registration limits, in characters.
const (
	MaxVisitorName    = 50
	MaxVisitorCompany = 100
)

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)<iframe`),
	regexp.MustCompile(`(?i)<object`),
	regexp.MustCompile(`(?i)<embed`),
}

var spamKeywords = []string{"viagra", "casino", "loan", "credit", "debt", "free money", "lottery", "winner"}

// ContactInput is the raw contact form as decoded from the request.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
	Company string
	Phone   string
}

// ValidatedContactMessage is a contact form that passed every rule. Fields are
// trimmed and the email is lower-cased. Company and Phone may be empty.
type ValidatedContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
	Company string
	Phone   string
}

// RegistrationInput is the raw visitor registration.
type RegistrationInput struct {
	Name    string
	Company string
	Email   string
	Consent bool
}

// ValidatedRegistration is a visitor registration that passed every rule.
type ValidatedRegistration struct {
	Name    string
	Company string
	Email   string
}

type field struct {
	name     string
	value    string
	required bool
}

// ValidateContact checks a contact form. Every field is trimmed and cut to
// its cap before the content rules run. On failure the returned message is
// the zero value and Errors lists every problem found.
func ValidateContact(in ContactInput) (ValidatedContactMessage, Errors) {
	out := ValidatedContactMessage{
		Name:    capRunes(strings.TrimSpace(in.Name), MaxContactName),
		Email:   capRunes(email.Normalize(in.Email), email.MaxLength),
		Subject: capRunes(strings.TrimSpace(in.Subject), MaxContactSubject),
		Message: capRunes(strings.TrimSpace(in.Message), MaxContactMessage),
		Company: capRunes(strings.TrimSpace(in.Company), MaxContactCompany),
		Phone:   capRunes(strings.TrimSpace(in.Phone), MaxContactPhone),
	}

	fields := []field{
		{name: "name", value: out.Name, required: true},
		{name: "email", value: out.Email, required: true},
		{name: "subject", value: out.Subject, required: true},
		{name: "message", value: out.Message, required: true},
		{name: "company", value: out.Company},
		{name: "phone", value: out.Phone},
	}

	errs := checkFields(fields)
	errs = append(errs, checkSpam(fields)...)
	if len(errs) > 0 {
		return ValidatedContactMessage{}, errs
	}
	return out, nil
}

// ValidateRegistration checks a visitor registration. Consent must be given.
func ValidateRegistration(in RegistrationInput) (ValidatedRegistration, Errors) {
	out := ValidatedRegistration{
		Name:    capRunes(strings.TrimSpace(in.Name), MaxVisitorName),
		Company: capRunes(strings.TrimSpace(in.Company), MaxVisitorCompany),
		Email:   capRunes(email.Normalize(in.Email), email.MaxLength),
	}

	errs := checkFields([]field{
		{name: "name", value: out.Name, required: true},
		{name: "company", value: out.Company, required: true},
		{name: "email", value: out.Email, required: true},
	})
	if !in.Consent {
		errs = append(errs, FieldError{Field: "consent", Reason: ReasonConsentRequired})
	}
	if len(errs) > 0 {
		return ValidatedRegistration{}, errs
	}
	return out, nil
}

// capRunes cuts s to at most max characters.
func capRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// Suspicious reports whether s contains any disqualifying markup.
func Suspicious(s string) bool {
	for _, p := range suspiciousPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Prohibited reports whether s contains a spam keyword.
func Prohibited(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range spamKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func checkFields(fields []field) Errors {
	var errs Errors
	for _, f := range fields {
		if f.value == "" {
			if f.required {
				errs = append(errs, FieldError{Field: f.name, Reason: ReasonMissing})
			}
			continue
		}
		if f.name == "email" && !email.Valid(f.value) {
			errs = append(errs, FieldError{Field: f.name, Reason: ReasonInvalidEmail})
		}
		if Suspicious(f.value) {
			errs = append(errs, FieldError{Field: f.name, Reason: ReasonSuspicious})
		}
	}
	return errs
}

func checkSpam(fields []field) Errors {
	var errs Errors
	for _, f := range fields {
		if f.value != "" && Prohibited(f.value) {
			errs = append(errs, FieldError{Field: f.name, Reason: ReasonProhibited})
		}
	}
	return errs
}
