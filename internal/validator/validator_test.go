package validator

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "portfolio/pkg/domain-errors"
)

func validContact() ContactInput {
	return ContactInput{
		Name:    "  Ada Lovelace ",
		Email:   " Ada@Example.COM ",
		Subject: "Hello",
		Message: "I would like to talk about a project.",
	}
}

func TestValidateContact(t *testing.T) {
	t.Run("accepts and normalizes a valid message", func(t *testing.T) {
		out, errs := ValidateContact(validContact())
		require.Nil(t, errs)
		assert.Equal(t, "Ada Lovelace", out.Name)
		assert.Equal(t, "ada@example.com", out.Email)
		assert.Empty(t, out.Company)
		assert.Empty(t, out.Phone)
	})

	t.Run("missing required fields", func(t *testing.T) {
		in := validContact()
		in.Subject = "   "
		_, errs := ValidateContact(in)
		require.NotNil(t, errs)
		assert.True(t, errs.Has(ReasonMissing))
		assert.Equal(t, "Missing required fields", errs.Message())
	})

	t.Run("invalid email", func(t *testing.T) {
		in := validContact()
		in.Email = "not-an-email"
		_, errs := ValidateContact(in)
		assert.Equal(t, "Invalid email format", errs.Message())
	})

	t.Run("over-length message is truncated to the cap", func(t *testing.T) {
		in := validContact()
		in.Message = strings.Repeat("a", MaxContactMessage+500)
		out, errs := ValidateContact(in)
		require.Nil(t, errs)
		assert.Equal(t, strings.Repeat("a", MaxContactMessage), out.Message)
	})

	t.Run("truncation counts characters not bytes", func(t *testing.T) {
		in := validContact()
		in.Name = strings.Repeat("é", MaxContactName+10)
		out, errs := ValidateContact(in)
		require.Nil(t, errs)
		assert.Equal(t, MaxContactName, utf8.RuneCountInString(out.Name))
	})

	t.Run("content rules see only the truncated value", func(t *testing.T) {
		in := validContact()
		in.Message = strings.Repeat("a", MaxContactMessage) + " viagra"
		_, errs := ValidateContact(in)
		assert.Nil(t, errs)
	})

	t.Run("message at the cap is accepted", func(t *testing.T) {
		in := validContact()
		in.Message = strings.Repeat("a", MaxContactMessage)
		_, errs := ValidateContact(in)
		assert.Nil(t, errs)
	})

	t.Run("optional fields are still capped and scanned", func(t *testing.T) {
		in := validContact()
		in.Phone = strings.Repeat("1", MaxContactPhone+1)
		out, errs := ValidateContact(in)
		require.Nil(t, errs)
		assert.Len(t, out.Phone, MaxContactPhone)

		in = validContact()
		in.Company = "<iframe src=x>"
		_, errs = ValidateContact(in)
		assert.Equal(t, "Invalid input detected", errs.Message())
	})

	t.Run("markup patterns disqualify", func(t *testing.T) {
		for _, payload := range []string{
			"<SCRIPT>alert(1)</script>",
			"JavaScript:void(0)",
			"<img onerror = x>",
			"data:text/html;base64,xx",
			"vbscript:msgbox",
			"<object data=x>",
			"<embed src=x>",
		} {
			in := validContact()
			in.Message = payload
			_, errs := ValidateContact(in)
			assert.True(t, errs.Has(ReasonSuspicious), payload)
		}
	})

	t.Run("spam keywords disqualify", func(t *testing.T) {
		in := validContact()
		in.Message = "buy viagra now"
		_, errs := ValidateContact(in)
		require.NotNil(t, errs)
		assert.Equal(t, "Message contains prohibited content", errs.Message())

		err := errs.ToDomainError()
		assert.True(t, dErrors.Is(err, dErrors.CodeProhibited))
	})

	t.Run("spam match is case-insensitive", func(t *testing.T) {
		in := validContact()
		in.Subject = "You are a WINNER"
		_, errs := ValidateContact(in)
		assert.True(t, errs.Has(ReasonProhibited))
	})
}

func TestValidateRegistration(t *testing.T) {
	valid := RegistrationInput{Name: "Grace", Company: "Navy", Email: "grace@navy.mil", Consent: true}

	t.Run("accepts a valid registration", func(t *testing.T) {
		out, errs := ValidateRegistration(valid)
		require.Nil(t, errs)
		assert.Equal(t, ValidatedRegistration{Name: "Grace", Company: "Navy", Email: "grace@navy.mil"}, out)
	})

	t.Run("consent must be given", func(t *testing.T) {
		in := valid
		in.Consent = false
		_, errs := ValidateRegistration(in)
		assert.True(t, errs.Has(ReasonConsentRequired))
		assert.True(t, dErrors.Is(errs.ToDomainError(), dErrors.CodeValidation))
	})

	t.Run("name cap is tighter than the contact form", func(t *testing.T) {
		in := valid
		in.Name = strings.Repeat("n", MaxContactName)
		out, errs := ValidateRegistration(in)
		require.Nil(t, errs)
		assert.Equal(t, strings.Repeat("n", MaxVisitorName), out.Name)
	})

	t.Run("spam keywords are not applied to registrations", func(t *testing.T) {
		in := valid
		in.Company = "Credit Union"
		_, errs := ValidateRegistration(in)
		assert.Nil(t, errs)
	})

	t.Run("markup is rejected", func(t *testing.T) {
		in := valid
		in.Name = "<script>"
		_, errs := ValidateRegistration(in)
		assert.True(t, dErrors.Is(errs.ToDomainError(), dErrors.CodeSuspiciousInput))
	})
}
