package domain

import "time"

// Donation records who gave and why. It owns exactly one MonetaryTransaction
// and is always created in the same atomic unit as it.
type Donation struct {
	ID            string
	TransactionID string
	DonorName     string
	DonorEmail    string
	DonorPhone    string
	DonationType  string
	IsAnonymous   bool
	Purpose       string
	Notes         string
	CreatedAt     time.Time
}

// DonorInfo is the gateway-reported identity of the payer. Client-supplied
// donor details are never trusted over these.
type DonorInfo struct {
	Name  string
	Email string
	Phone string
}
