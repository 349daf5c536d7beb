package submission

import "errors"

// Canonical field names used by the alias tables. The webhook provider's
// form templates each use their own key conventions; extraction resolves
// them all to these names.
const (
	FieldEmail         = "email"
	FieldName          = "name"
	FieldPhone         = "phone"
	FieldChurch        = "church"
	FieldYouthMinistry = "youthMinistry"
	FieldEventName     = "eventName"
	FieldEventDate     = "eventDate"
	FieldInvoiceNo     = "invoiceNo"
	FieldProducts      = "products"
	FieldFormID        = "formId"
)

// ParsedSubmission is the canonical result of normalizing one webhook
// payload. Email, FormID and InvoiceNo are the only fields required
// downstream; the rest default when absent. It is built per request and
// never persisted as-is.
type ParsedSubmission struct {
	Email          string
	Name           string
	InvoiceNo      string
	FormID         string
	Phone          string
	Church         string
	YouthMinistry  string
	EventName      string
	EventDate      string
	Quantity       int
	ProductDetails string
	TotalAmount    float64
}

// AliasSource serves the current canonical-field alias tables. The live
// implementation is the hot-reloadable template registry in internal/config.
type AliasSource interface {
	Aliases() map[string][]string
}

// StaticAliases is a fixed AliasSource for tests.
type StaticAliases map[string][]string

func (s StaticAliases) Aliases() map[string][]string { return s }

var (
	// ErrInvalidPayload is the only error Normalize returns: the payload
	// was not a key-value mapping at all.
	ErrInvalidPayload = errors.New("invalid_payload")

	// ErrMalformedProduct marks a product field that could not be parsed.
	// It is absorbed at the normalizer boundary: the submission proceeds
	// with default product values and the error survives only in logs.
	ErrMalformedProduct = errors.New("malformed_product")
)

// DefaultAliases carries the compiled-in alias tables for the two known
// form templates ("stadium" q4/q5-style keys and "conference" q5/q6-style
// keys) plus generic fallbacks. Order matters: the first present,
// non-empty key wins. The hot-reloadable registry in internal/config
// overlays operator-provided tables on top of these.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		FieldEmail:         {"q4_email4", "q5_email", "q4_email", "email"},
		FieldName:          {"q3_name3", "q4_name", "q3_name", "name", "fullName"},
		FieldPhone:         {"q5_phoneNumber5", "q6_phoneNumber", "q5_phone", "phoneNumber", "phone"},
		FieldChurch:        {"q6_church6", "q7_church", "church"},
		FieldYouthMinistry: {"q7_youthMinistry7", "q8_youthMinistry", "youthMinistry", "youth_ministry"},
		FieldEventName:     {"q8_eventName", "q9_eventName", "eventName", "event_name"},
		FieldEventDate:     {"q9_eventDate", "q10_eventDate", "eventDate", "event_date"},
		FieldInvoiceNo:     {"q10_invoiceId", "q11_invoiceNumber", "invoiceId", "invoice_id", "invoiceNumber", "invoice_no"},
		FieldProducts:      {"q12_myProducts", "q13_products", "myProducts", "products"},
		FieldFormID:        {"formID", "form_id", "formId"},
	}
}

type envelopeKind int

const (
	envelopeFlat envelopeKind = iota
	envelopeNested
)

func (k envelopeKind) String() string {
	if k == envelopeNested {
		return "nested"
	}
	return "flat"
}

// envelope is the decoded outer payload shape: either the true field data
// sits nested in a rawRequest JSON string, or the payload itself is the
// flat field mapping.
type envelope struct {
	kind   envelopeKind
	formID string
	fields map[string]any
}
