// Package providerprotocol describes the "SMM Panel API v2" convention: a single
// endpoint that takes form-encoded POSTs keyed by an action and answers JSON.
package providerprotocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	ActionServices Action = "services"
	ActionBalance  Action = "balance"
	ActionAdd      Action = "add"
	ActionStatus   Action = "status"
	ActionRefill   Action = "refill"
	ActionCancel   Action = "cancel"
)

const (
	ParamKey      = "key"
	ParamAction   = "action"
	ParamService  = "service"
	ParamLink     = "link"
	ParamQuantity = "quantity"
	ParamOrder    = "order"
	ParamOrders   = "orders"
)

const (
	FieldError    = "error"
	FieldStatus   = "status"
	FieldCharge   = "charge"
	FieldOrder    = "order"
	FieldRefill   = "refill"
	FieldBalance  = "balance"
	FieldCurrency = "currency"
)

// MaxBatchOrders is the most identifiers a single multi-order status call accepts.
const MaxBatchOrders = 100

type Action string

// Payload is a provider JSON object returned as-is. Fields are interpreted by
// convention through the accessors below.
type Payload map[string]any

// String returns the field rendered as a string. Numbers keep their textual
// form. ok is false when the field is absent or null.
func (p Payload) String(field string) (value string, ok bool) {
	raw, found := p[field]
	if !found || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Decimal parses the field as a number, falling back to zero for anything
// that does not parse.
func (p Payload) Decimal(field string) decimal.Decimal {
	s, ok := p.String(field)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Error returns the provider-reported error message, if any.
func (p Payload) Error() (string, bool) {
	raw, found := p[FieldError]
	if !found || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, v != ""
	case bool:
		if !v {
			return "", false
		}
	}
	s := fmt.Sprint(raw)
	return s, s != ""
}

// Service is one catalog entry of the services action.
type Service struct {
	ID       json.Number     `json:"service"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Rate     decimal.Decimal `json:"rate"`
	Min      json.Number     `json:"min"`
	Max      json.Number     `json:"max"`
	Refill   bool            `json:"refill"`
	Cancel   bool            `json:"cancel"`
}

type Balance struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}
