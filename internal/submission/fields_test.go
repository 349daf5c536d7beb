package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestExtractFields_AliasEquivalence(t *testing.T) {
	aliases := DefaultAliases()

	for _, key := range aliases[FieldEmail] {
		fields := map[string]any{key: "jane@example.com"}
		got := extractFields(fields, aliases, testNow)
		assert.Equal(t, "jane@example.com", got.Email, "alias %q", key)
	}

	for _, key := range aliases[FieldInvoiceNo] {
		fields := map[string]any{key: "INV-42"}
		got := extractFields(fields, aliases, testNow)
		assert.Equal(t, "42", got.InvoiceNo, "alias %q", key)
	}
}

func TestExtractFields_FirstAliasWins(t *testing.T) {
	aliases := DefaultAliases()
	fields := map[string]any{
		"q4_email4": "stadium@example.com",
		"email":     "generic@example.com",
	}

	got := extractFields(fields, aliases, testNow)
	assert.Equal(t, "stadium@example.com", got.Email)
}

func TestExtractFields_SkipsEmptyValues(t *testing.T) {
	aliases := DefaultAliases()
	fields := map[string]any{
		"q4_email4": "   ",
		"email":     "fallback@example.com",
	}

	got := extractFields(fields, aliases, testNow)
	assert.Equal(t, "fallback@example.com", got.Email)
}

func TestFlattenValue_NameShapes(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"plain string", "Jane Doe", "Jane Doe"},
		{"padded string", "  Jane Doe  ", "Jane Doe"},
		{"first last object", map[string]any{"first": "Jane", "last": "Doe"}, "Jane Doe"},
		{"first only", map[string]any{"first": "Jane", "last": ""}, "Jane"},
		{"full preferred", map[string]any{"first": "J", "last": "D", "full": "Jane Doe"}, "Jane Doe"},
		{"number", float64(411), "411"},
		{"unsupported shape", []any{"a"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, flattenValue(tc.value))
		})
	}
}

func TestStripInvoicePrefix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"# INV-123", "123"},
		{"# 123", "123"},
		{"INV-123", "123"},
		{"123", "123"},
		// Only one prefix application: "# INV-" matches first and the
		// remainder is kept verbatim.
		{"# INV-INV-123", "INV-123"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, stripInvoicePrefix(tc.in), "input %q", tc.in)
	}
}

func TestExtractFields_InvoicePlaceholder(t *testing.T) {
	got := extractFields(map[string]any{}, DefaultAliases(), testNow)
	assert.Equal(t, "INV-1773482400000", got.InvoiceNo)
}

func TestExtractFields_OptionalFieldsDefaultEmpty(t *testing.T) {
	fields := map[string]any{"q4_email4": "jane@example.com"}
	got := extractFields(fields, DefaultAliases(), testNow)

	assert.Equal(t, "jane@example.com", got.Email)
	assert.Empty(t, got.Phone)
	assert.Empty(t, got.Church)
	assert.Empty(t, got.EventName)
	assert.Empty(t, got.EventDate)
	assert.Empty(t, got.FormID)
}
