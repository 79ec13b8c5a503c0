// Package events defines the messages this service emits for downstream
// consumers (receipts, dashboards). An event is published at most once per
// payment reference, on the request that first wrote the ledger pair.
package events

import "time"

// DonationRecorded announces a first-time ledger write for a payment.
type DonationRecorded struct {
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transaction_id"`
	DonationID    string    `json:"donation_id"`
	Amount        string    `json:"amount"`
	DonorEmail    string    `json:"donor_email"`
	IsAnonymous   bool      `json:"is_anonymous"`
	Purpose       string    `json:"purpose"`
	RecordedAt    time.Time `json:"recorded_at"`
}
