package validator

import (
	"strings"

	dErrors "portfolio/pkg/domain-errors"
)

// Reason classifies why a field was rejected.
type Reason string

const (
	ReasonMissing         Reason = "missing"
	ReasonInvalidEmail    Reason = "invalid_email"
	ReasonConsentRequired Reason = "consent_required"
	ReasonSuspicious      Reason = "suspicious"
	ReasonProhibited      Reason = "prohibited"
)

// FieldError names one rejected field.
type FieldError struct {
	Field  string `json:"field"`
	Reason Reason `json:"reason"`
}

// Errors is the full list of problems found in one input. A nil Errors means
// the input was accepted.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+string(fe.Reason))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Has reports whether any field failed for reason.
func (e Errors) Has(reason Reason) bool {
	for _, fe := range e {
		if fe.Reason == reason {
			return true
		}
	}
	return false
}

// Message is the single client-facing explanation. Structural problems are
// reported before content problems.
func (e Errors) Message() string {
	switch {
	case e.Has(ReasonMissing):
		return "Missing required fields"
	case e.Has(ReasonConsentRequired):
		return "Consent is required"
	case e.Has(ReasonInvalidEmail):
		return "Invalid email format"
	case e.Has(ReasonSuspicious):
		return "Invalid input detected"
	case e.Has(ReasonProhibited):
		return "Message contains prohibited content"
	}
	return "Invalid input"
}

// ToDomainError converts the list into a coded error for the transport layer.
func (e Errors) ToDomainError() error {
	if len(e) == 0 {
		return nil
	}
	code := dErrors.CodeValidation
	message := e.Message()
	switch message {
	case "Invalid input detected":
		code = dErrors.CodeSuspiciousInput
	case "Message contains prohibited content":
		code = dErrors.CodeProhibited
	}
	return dErrors.Wrap(e, code, message)
}
