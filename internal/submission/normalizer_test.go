package submission

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/smallevents/gatekeeper/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	return &Normalizer{
		log:     zap.NewNop(),
		clock:   clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)),
		aliases: StaticAliases(DefaultAliases()),
	}
}

func stadiumFields() map[string]any {
	return map[string]any{
		"q3_name3":      map[string]any{"first": "Jane", "last": "Doe"},
		"q4_email4":     "jane@example.com",
		"q5_phoneNumber5": "0400 000 000",
		"q6_church6":    "Hillview",
		"q10_invoiceId": "# INV-1001",
		"q12_myProducts": "General Admission (Amount: 5.00 AUD, Quantity: 15)",
	}
}

func TestNormalize_FlatEnvelope(t *testing.T) {
	n := newTestNormalizer(t)

	payload := stadiumFields()
	payload["formID"] = "230984"

	parsed, err := n.Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", parsed.Email)
	assert.Equal(t, "Jane Doe", parsed.Name)
	assert.Equal(t, "1001", parsed.InvoiceNo)
	assert.Equal(t, "230984", parsed.FormID)
	assert.Equal(t, "0400 000 000", parsed.Phone)
	assert.Equal(t, "Hillview", parsed.Church)
	assert.Equal(t, 15, parsed.Quantity)
	assert.InDelta(t, 75.0, parsed.TotalAmount, 1e-9)
}

func TestNormalize_NestedEnvelopeMatchesFlat(t *testing.T) {
	n := newTestNormalizer(t)

	flat := stadiumFields()
	flat["formID"] = "230984"
	fromFlat, err := n.Normalize(flat)
	require.NoError(t, err)

	raw, err := json.Marshal(stadiumFields())
	require.NoError(t, err)
	nested := map[string]any{
		"formID":     "230984",
		"rawRequest": string(raw),
	}
	fromNested, err := n.Normalize(nested)
	require.NoError(t, err)

	assert.Equal(t, fromFlat, fromNested)
}

func TestNormalize_OuterFormIDOverridesInner(t *testing.T) {
	n := newTestNormalizer(t)

	inner := stadiumFields()
	inner["formID"] = "999999"
	raw, err := json.Marshal(inner)
	require.NoError(t, err)

	parsed, err := n.Normalize(map[string]any{
		"form_id":    "230984",
		"rawRequest": string(raw),
	})
	require.NoError(t, err)
	assert.Equal(t, "230984", parsed.FormID)
}

func TestNormalize_BrokenRawRequestFallsThroughToFlat(t *testing.T) {
	n := newTestNormalizer(t)

	payload := stadiumFields()
	payload["formID"] = "230984"
	payload["rawRequest"] = `{"q4_email4": "broken`

	parsed, err := n.Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", parsed.Email)
	assert.Equal(t, "230984", parsed.FormID)
}

func TestNormalize_NilPayload(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.Normalize(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNormalize_MalformedProductDegradesToDefaults(t *testing.T) {
	n := newTestNormalizer(t)

	payload := stadiumFields()
	payload["q12_myProducts"] = map[string]any{"paymentArray": `{"broken`}

	parsed, err := n.Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, 1, parsed.Quantity)
	assert.Empty(t, parsed.ProductDetails)
	assert.Zero(t, parsed.TotalAmount)
	// The rest of the submission still normalizes.
	assert.Equal(t, "jane@example.com", parsed.Email)
}

func TestNormalize_MissingRequiredsPropagateEmpty(t *testing.T) {
	n := newTestNormalizer(t)

	parsed, err := n.Normalize(map[string]any{"q6_church6": "Hillview"})
	require.NoError(t, err)
	assert.Empty(t, parsed.Email)
	assert.Empty(t, parsed.FormID)
	// Idempotency still gets a key.
	assert.Equal(t, "INV-1773482400000", parsed.InvoiceNo)
}
