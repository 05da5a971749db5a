package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@example.com", NormalizeEmail("  A@Example.COM "))
	assert.Equal(t, "", NormalizeEmail(""))
}

func TestHashEmail_CaseInsensitive(t *testing.T) {
	assert.Equal(t, HashEmail("a@example.com"), HashEmail("A@Example.com"))
	assert.NotEqual(t, HashEmail("a@example.com"), HashEmail("b@example.com"))
	assert.Len(t, HashEmail("a@example.com"), 64)
}

func TestClientIDFromEmail(t *testing.T) {
	id := ClientIDFromEmail("a@example.com")

	assert.Regexp(t, `^\d+\.\d+$`, id)
	// Stable for the same subscriber regardless of casing
	assert.Equal(t, id, ClientIDFromEmail("A@EXAMPLE.COM"))
	assert.NotEqual(t, id, ClientIDFromEmail("b@example.com"))
}

func TestExtractDomainFromEmail(t *testing.T) {
	assert.Equal(t, "example.com", ExtractDomainFromEmail("a@Example.Com"))
	assert.Equal(t, "example.com", ExtractDomainFromEmail("Ada <a@example.com>"))
	assert.Equal(t, "", ExtractDomainFromEmail("no-at-sign"))
	assert.Equal(t, "", ExtractDomainFromEmail(""))
}
