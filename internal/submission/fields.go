package submission

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// canonicalFields is the flat result of alias probing over one field
// mapping. ProductField keeps the raw value; its parsing has its own
// failure mode (see product.go).
type canonicalFields struct {
	Email         string
	Name          string
	Phone         string
	Church        string
	YouthMinistry string
	EventName     string
	EventDate     string
	InvoiceNo     string
	FormID        string
	ProductField  any
}

// invoicePrefixes are stripped from incoming invoice identifiers, longest
// first; at most one applies.
var invoicePrefixes = []string{"# INV-", "# ", "INV-"}

// extractFields probes the ordered alias keys for each canonical field and
// takes the first present, non-empty value. A missing invoice number falls
// back to a timestamp-derived placeholder so ticket idempotency always has
// a key.
func extractFields(fields map[string]any, aliases map[string][]string, now time.Time) canonicalFields {
	out := canonicalFields{
		Email:         probeString(fields, aliases[FieldEmail]),
		Name:          probeString(fields, aliases[FieldName]),
		Phone:         probeString(fields, aliases[FieldPhone]),
		Church:        probeString(fields, aliases[FieldChurch]),
		YouthMinistry: probeString(fields, aliases[FieldYouthMinistry]),
		EventName:     probeString(fields, aliases[FieldEventName]),
		EventDate:     probeString(fields, aliases[FieldEventDate]),
		FormID:        probeString(fields, aliases[FieldFormID]),
	}

	invoice := stripInvoicePrefix(probeString(fields, aliases[FieldInvoiceNo]))
	if invoice == "" {
		invoice = placeholderInvoice(now)
	}
	out.InvoiceNo = invoice

	if raw, ok := probeRaw(fields, aliases[FieldProducts]); ok {
		out.ProductField = raw
	}

	return out
}

// probeString returns the first alias key whose flattened value is
// non-empty.
func probeString(fields map[string]any, keys []string) string {
	for _, key := range keys {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if flat := flattenValue(value); flat != "" {
			return flat
		}
	}
	return ""
}

// probeRaw returns the first alias key present with a non-nil value,
// unflattened.
func probeRaw(fields map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

// flattenValue normalizes the shapes a form field value arrives in: plain
// strings, JSON numbers, and structured name/phone objects with
// first/last or full parts.
func flattenValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case map[string]any:
		if full := strings.TrimSpace(stringAt(v, "full")); full != "" {
			return full
		}
		first := strings.TrimSpace(stringAt(v, "first"))
		last := strings.TrimSpace(stringAt(v, "last"))
		return strings.TrimSpace(first + " " + last)
	default:
		return ""
	}
}

func stringAt(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// stripInvoicePrefix removes one known textual prefix from an invoice
// identifier; bare values pass through unchanged.
func stripInvoicePrefix(invoice string) string {
	for _, prefix := range invoicePrefixes {
		if strings.HasPrefix(invoice, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(invoice, prefix))
		}
	}
	return invoice
}

func placeholderInvoice(now time.Time) string {
	return fmt.Sprintf("INV-%d", now.UnixMilli())
}
