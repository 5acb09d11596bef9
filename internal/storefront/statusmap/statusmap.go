// Package statusmap translates provider status strings into order statuses.
package statusmap

import "smm-market/internal/storefront/data"

// Matching is exact and case-sensitive. Vendors disagree on the spelling of
// cancelled, so both spellings are listed.
var table = map[string]data.Status{
	"Completed":   data.CompletedStatus,
	"In progress": data.ProcessingStatus,
	"Processing":  data.ProcessingStatus,
	"Pending":     data.PendingStatus,
	"Partial":     data.PartialStatus,
	"Canceled":    data.CancelledStatus,
	"Cancelled":   data.CancelledStatus,
}

// Map returns the order status for a provider status. ok is false and the
// status is data.NullStatus when the provider string is not recognized.
func Map(providerStatus string) (status data.Status, ok bool) {
	status, ok = table[providerStatus]
	if !ok {
		return data.NullStatus, false
	}
	return status, true
}
