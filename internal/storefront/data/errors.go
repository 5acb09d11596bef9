package data

import "errors"

var (
	ErrOrderNotFound             = errors.New("order not found")
	ErrProviderNotFound          = errors.New("provider not found")
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
)
