package providerapi

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"smm-market/internal/common/providerprotocol"
)

const snippetLimit = 200

var (
	ErrTooManyOrders = fmt.Errorf("at most %d orders per batch", providerprotocol.MaxBatchOrders)
	ErrNoOrders      = errors.New("no orders given")
)

// APIError is a failure reported by the provider through the error field.
type APIError struct {
	Action  providerprotocol.Action
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// DecodeError means the provider answered with something that is not the
// expected JSON document.
type DecodeError struct {
	Action     providerprotocol.Action
	StatusCode int
	Snippet    string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON in %s response (HTTP %d): %q", e.Action, e.StatusCode, e.Snippet)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(action providerprotocol.Action, statusCode int, body []byte, err error) *DecodeError {
	return &DecodeError{
		Action:     action,
		StatusCode: statusCode,
		Snippet:    snippet(body),
		Err:        err,
	}
}

func snippet(body []byte) string {
	if utf8.RuneCount(body) <= snippetLimit {
		return string(body)
	}
	runes := []rune(string(body))
	return string(runes[:snippetLimit])
}
