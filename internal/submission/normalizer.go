package submission

import (
	"encoding/json"

	"github.com/smallevents/gatekeeper/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Aliases AliasSource
}

// Normalizer turns heterogeneous webhook payloads into one canonical
// ParsedSubmission. It is a total function over key-value payloads: parsing
// anomalies degrade to defaults with logged warnings, and required-field
// validation is deferred to the HTTP layer.
type Normalizer struct {
	log     *zap.Logger
	clock   clock.Clock
	aliases AliasSource
}

func New(p Params) *Normalizer {
	return &Normalizer{
		log:     p.Log.Named("submission.normalizer"),
		clock:   p.Clock,
		aliases: p.Aliases,
	}
}

// Normalize decodes the envelope, runs field extraction and product
// parsing, and applies the outer form identifier. It fails only when the
// payload is not a mapping at all.
func (n *Normalizer) Normalize(payload map[string]any) (ParsedSubmission, error) {
	if payload == nil {
		return ParsedSubmission{}, ErrInvalidPayload
	}

	env := n.decodeEnvelope(payload)
	aliases := n.aliases.Aliases()

	fields := extractFields(env.fields, aliases, n.clock.Now())

	parsed := ParsedSubmission{
		Email:         fields.Email,
		Name:          fields.Name,
		InvoiceNo:     fields.InvoiceNo,
		FormID:        fields.FormID,
		Phone:         fields.Phone,
		Church:        fields.Church,
		YouthMinistry: fields.YouthMinistry,
		EventName:     fields.EventName,
		EventDate:     fields.EventDate,
	}

	product, err := ParseProduct(fields.ProductField)
	if err != nil {
		// Product-detail ambiguity must not fail the whole submission.
		n.log.Warn("product field unparseable, using defaults",
			zap.String("invoice_no", parsed.InvoiceNo),
			zap.String("envelope", env.kind.String()),
			zap.Error(err),
		)
	}
	parsed.Quantity = product.Quantity
	parsed.ProductDetails = product.Details
	parsed.TotalAmount = product.TotalAmount

	// The outer payload's form identifier wins over anything extracted
	// from the inner mapping.
	if env.formID != "" {
		parsed.FormID = env.formID
	}

	return parsed, nil
}

// decodeEnvelope tries the nested shape first: a rawRequest property
// holding the true field mapping as a JSON-encoded string. A rawRequest
// that fails to parse falls through to flat mode rather than failing the
// submission.
func (n *Normalizer) decodeEnvelope(payload map[string]any) envelope {
	formID := outerFormID(payload)

	if raw, ok := payload["rawRequest"]; ok {
		if encoded, ok := raw.(string); ok && encoded != "" {
			var inner map[string]any
			if err := json.Unmarshal([]byte(encoded), &inner); err == nil {
				return envelope{kind: envelopeNested, formID: formID, fields: inner}
			} else {
				n.log.Warn("rawRequest did not parse, treating payload as flat",
					zap.Error(err),
				)
			}
		}
	}

	return envelope{kind: envelopeFlat, formID: formID, fields: payload}
}

// outerFormID probes the outer payload's form identifier keys; first match
// wins.
func outerFormID(payload map[string]any) string {
	for _, key := range []string{"formID", "form_id", "formId"} {
		if value, ok := payload[key]; ok {
			if flat := flattenValue(value); flat != "" {
				return flat
			}
		}
	}
	return ""
}
