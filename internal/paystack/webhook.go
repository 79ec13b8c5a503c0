package paystack

import "encoding/json"

// EventChargeSuccess is the only webhook event type that triggers a ledger
// write; everything else is acknowledged and dropped.
const EventChargeSuccess = "charge.success"

// WebhookEvent is the JSON envelope Paystack posts to the webhook endpoint.
// Amount is in minor units (kobo).
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	Reference   string          `json:"reference"`
	AmountMinor int64           `json:"amount"`
	PaidAt      string          `json:"paid_at"`
	Customer    Customer        `json:"customer"`
	Metadata    json.RawMessage `json:"metadata"`
}

// Customer carries the gateway's view of the payer.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Metadata is the free-form payload the portal attaches when initializing a
// payment. Fields the reconciler understands are declared here; anything else
// rides along untouched.
type Metadata struct {
	DonorName    string  `json:"donor_name"`
	DonationType string  `json:"donation_type"`
	IsAnonymous  bool    `json:"is_anonymous"`
	Purpose      string  `json:"purpose"`
	Notes        string  `json:"notes"`
	BudgetID     *string `json:"budget_id"`
}

// ParseWebhookEvent decodes the raw webhook body. It only ever runs after the
// signature over those same bytes has been verified.
func ParseWebhookEvent(rawBody []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ParseMetadata decodes the known metadata fields, tolerating absence.
// Paystack serializes empty metadata as "" or null depending on the channel.
func ParseMetadata(raw json.RawMessage) Metadata {
	var md Metadata
	if len(raw) == 0 {
		return md
	}
	_ = json.Unmarshal(raw, &md)
	return md
}
