package submission

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Product is the parsed "products purchased" portion of a submission.
type Product struct {
	Quantity    int
	Details     string
	TotalAmount float64
}

// DefaultProduct is what every unparseable or absent product field
// collapses to.
func DefaultProduct() Product {
	return Product{Quantity: 1, Details: "", TotalAmount: 0}
}

var (
	quantityPattern = regexp.MustCompile(`Quantity:\s*(\d+)`)
	amountPattern   = regexp.MustCompile(`Amount:\s*([\d.]+)`)
)

// paymentArrayBody is the JSON document nested inside a paymentArray
// property: {"product": ["General Admission (Amount: 5.00 AUD, Quantity: 15)"], "total": "75.00"}.
type paymentArrayBody struct {
	Product []string `json:"product"`
	Total   any      `json:"total"`
}

// itemBody is the JSON document nested under a numeric-string key:
// {"name": "General Admission", "quantity": 2, "price": 5}.
type itemBody struct {
	Name     string `json:"name"`
	Quantity any    `json:"quantity"`
	Price    any    `json:"price"`
}

// ParseProduct extracts quantity, a textual description and total amount
// from whichever of the known product-field shapes the submission carries.
// It never panics and never fails a submission: unknown shapes and broken
// sub-JSON return the defaults alongside ErrMalformedProduct, which the
// normalizer logs and discards.
func ParseProduct(value any) (Product, error) {
	switch field := value.(type) {
	case nil:
		return DefaultProduct(), nil
	case string:
		return parseProductString(field), nil
	case map[string]any:
		if raw, ok := field["paymentArray"]; ok {
			return parsePaymentArray(raw)
		}
		if raw, ok := field["1"]; ok {
			return parseProductItem(raw)
		}
		return DefaultProduct(), fmt.Errorf("%w: unrecognized product object", ErrMalformedProduct)
	default:
		return DefaultProduct(), fmt.Errorf("%w: unsupported product shape %T", ErrMalformedProduct, value)
	}
}

// parseProductString handles the human-readable summary, e.g.
// "General Admission (Amount: 5.00 AUD, Quantity: 15)". The amount is a
// unit price; the total is amount times quantity.
func parseProductString(s string) Product {
	product := DefaultProduct()
	if strings.TrimSpace(s) == "" {
		return product
	}

	product.Details = s
	product.Quantity = matchQuantity(s)
	unit := matchAmount(s)
	product.TotalAmount = unit * float64(product.Quantity)
	return product
}

func parsePaymentArray(raw any) (Product, error) {
	encoded, ok := raw.(string)
	if !ok {
		return DefaultProduct(), fmt.Errorf("%w: paymentArray is not a string", ErrMalformedProduct)
	}

	var body paymentArrayBody
	if err := json.Unmarshal([]byte(encoded), &body); err != nil {
		return DefaultProduct(), fmt.Errorf("%w: paymentArray: %v", ErrMalformedProduct, err)
	}

	product := DefaultProduct()
	if len(body.Product) > 0 {
		first := body.Product[0]
		product.Details = first
		product.Quantity = matchQuantity(first)
	}
	if body.Total != nil {
		total := toFloat(body.Total, 0)
		if total < 0 {
			total = 0
		}
		product.TotalAmount = total
	}
	return product, nil
}

func parseProductItem(raw any) (Product, error) {
	encoded, ok := raw.(string)
	if !ok {
		return DefaultProduct(), fmt.Errorf("%w: product item is not a string", ErrMalformedProduct)
	}

	var item itemBody
	if err := json.Unmarshal([]byte(encoded), &item); err != nil {
		return DefaultProduct(), fmt.Errorf("%w: product item: %v", ErrMalformedProduct, err)
	}

	product := DefaultProduct()
	quantity := int(toFloat(item.Quantity, 1))
	if quantity < 1 {
		quantity = 1
	}
	product.Quantity = quantity
	product.Details = fmt.Sprintf("%s (Quantity: %d)", item.Name, quantity)
	price := toFloat(item.Price, 0)
	if price < 0 {
		price = 0
	}
	product.TotalAmount = price * float64(quantity)
	return product, nil
}

func matchQuantity(s string) int {
	match := quantityPattern.FindStringSubmatch(s)
	if len(match) != 2 {
		return 1
	}
	quantity, err := strconv.Atoi(match[1])
	if err != nil || quantity < 1 {
		return 1
	}
	return quantity
}

func matchAmount(s string) float64 {
	match := amountPattern.FindStringSubmatch(s)
	if len(match) != 2 {
		return 0
	}
	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}

func toFloat(value any, def float64) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return def
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}
