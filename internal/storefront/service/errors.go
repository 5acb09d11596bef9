package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProviderInactive   = errors.New("provider is inactive")
	ErrOrderAlreadyPlaced = errors.New("order is already placed upstream")
	ErrOrderNotPlaced     = errors.New("order is not placed upstream yet")
	ErrOrderBusy          = errors.New("order is being placed")
)
