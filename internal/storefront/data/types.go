package data

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	NullStatus       = Status("")
	PendingStatus    = Status("pending")
	ProcessingStatus = Status("processing")
	CompletedStatus  = Status("completed")
	CancelledStatus  = Status("cancelled")
	PartialStatus    = Status("partial")
)

// ReconcilableStatuses are the statuses an order is polled in.
var ReconcilableStatuses = []Status{PendingStatus, ProcessingStatus}

func (s Status) Valid() bool {
	switch s {
	case PendingStatus, ProcessingStatus, CompletedStatus, CancelledStatus, PartialStatus:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	switch s {
	case CompletedStatus, CancelledStatus, PartialStatus:
		return true
	}
	return false
}

type Order struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	UserID          string
	ServiceID       string
	ServiceName     string
	Link            string
	Quantity        int64
	Price           decimal.Decimal
	Status          Status
	ProviderID      string
	ExternalOrderID string
	ProviderStatus  string
	ProviderCharge  decimal.Decimal
}

// Reconcilable reports whether the order must be polled against its provider.
func (o *Order) Reconcilable() bool {
	return (o.Status == PendingStatus || o.Status == ProcessingStatus) &&
		o.ProviderID != "" &&
		o.ExternalOrderID != ""
}

// ChargeScale is the number of decimal places provider charges are stored
// with. Stores hold charges strictly below 10^(18-ChargeScale) in magnitude.
const ChargeScale = 6

var chargeLimit = decimal.New(1, 18-ChargeScale)

// NormalizeCharge fits a provider-reported charge into what the order stores
// can hold: rounded to ChargeScale places, zero when out of range.
func NormalizeCharge(charge decimal.Decimal) decimal.Decimal {
	if charge.Abs().Cmp(chargeLimit) >= 0 {
		return decimal.Zero
	}
	rounded := charge.Round(ChargeScale)
	if rounded.Abs().Cmp(chargeLimit) >= 0 {
		return decimal.Zero
	}
	return rounded
}

type Provider struct {
	CreatedAt time.Time
	ID        string
	Name      string
	URL       string
	APIKey    string
	Active    bool
}
