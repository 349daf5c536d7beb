package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProduct_HumanReadableString(t *testing.T) {
	in := "General Admission (Amount: 5.00 AUD, Quantity: 15)"

	got, err := ParseProduct(in)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Quantity)
	assert.Equal(t, in, got.Details)
	assert.InDelta(t, 75.0, got.TotalAmount, 1e-9)
}

func TestParseProduct_StringWithoutMatches(t *testing.T) {
	got, err := ParseProduct("two tickets please")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, "two tickets please", got.Details)
	assert.Zero(t, got.TotalAmount)
}

func TestParseProduct_Nil(t *testing.T) {
	got, err := ParseProduct(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultProduct(), got)
}

func TestParseProduct_PaymentArray(t *testing.T) {
	in := map[string]any{
		"paymentArray": `{"product":["General Admission (Amount: 5.00 AUD, Quantity: 15)"],"total":"75.00"}`,
	}

	got, err := ParseProduct(in)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Quantity)
	assert.Equal(t, "General Admission (Amount: 5.00 AUD, Quantity: 15)", got.Details)
	assert.InDelta(t, 75.0, got.TotalAmount, 1e-9)
}

func TestParseProduct_PaymentArrayBadJSON(t *testing.T) {
	in := map[string]any{"paymentArray": `{"product": [`}

	got, err := ParseProduct(in)
	assert.ErrorIs(t, err, ErrMalformedProduct)
	assert.Equal(t, DefaultProduct(), got)
}

func TestParseProduct_PaymentArrayNumericTotal(t *testing.T) {
	in := map[string]any{
		"paymentArray": `{"product":["VIP (Quantity: 2)"],"total":50}`,
	}

	got, err := ParseProduct(in)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.InDelta(t, 50.0, got.TotalAmount, 1e-9)
}

func TestParseProduct_PaymentArrayNegativeTotal(t *testing.T) {
	in := map[string]any{
		"paymentArray": `{"product":["Refund adjustment (Quantity: 1)"],"total":"-75"}`,
	}

	got, err := ParseProduct(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.TotalAmount)
}

func TestParseProduct_NumericKeyItem(t *testing.T) {
	in := map[string]any{
		"1": `{"name":"General Admission","quantity":3,"price":12.5}`,
	}

	got, err := ParseProduct(in)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, "General Admission (Quantity: 3)", got.Details)
	assert.InDelta(t, 37.5, got.TotalAmount, 1e-9)
}

func TestParseProduct_NumericKeyItemDefaults(t *testing.T) {
	in := map[string]any{
		"1": `{"name":"General Admission"}`,
	}

	got, err := ParseProduct(in)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, "General Admission (Quantity: 1)", got.Details)
	assert.Zero(t, got.TotalAmount)
}

func TestParseProduct_UnknownShapes(t *testing.T) {
	for _, in := range []any{
		42,
		[]any{"x"},
		map[string]any{"unexpected": "shape"},
		map[string]any{"paymentArray": 9},
	} {
		got, err := ParseProduct(in)
		assert.ErrorIs(t, err, ErrMalformedProduct)
		assert.Equal(t, DefaultProduct(), got)
	}
}
