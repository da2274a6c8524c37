package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	valid := []string{
		"ada@example.com",
		"first.last+tag@sub.example.co",
		"a_b%c-d@host-1.io",
	}
	for _, addr := range valid {
		assert.True(t, Valid(addr), addr)
	}

	invalid := []string{
		"",
		"plain",
		"@example.com",
		"ada@example",
		"ada@example.c",
		"ada example@example.com",
		"ada@exa mple.com",
		"ada@@example.com",
		strings.Repeat("a", 250) + "@example.com",
	}
	for _, addr := range invalid {
		assert.False(t, Valid(addr), addr)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ada@example.com", Normalize("  Ada@Example.COM "))
}
