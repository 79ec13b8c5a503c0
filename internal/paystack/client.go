package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
)

// ErrMissingSecretKey indicates that the client was configured without credentials.
var ErrMissingSecretKey = errors.New("paystack: secret key is required")

// Status is the normalized outcome of a transaction verification call.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
	StatusUnknown   Status = "unknown"
)

// Options configures the Paystack API client.
type Options struct {
	SecretKey      string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs authenticated HTTP calls against the Paystack API.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// VerifiedPayment is the canonical transaction state reported by the gateway.
// AmountMinor is the settled amount in minor units; the ledger converts it to
// a major-unit decimal exactly once.
type VerifiedPayment struct {
	Status      Status
	Reference   string
	AmountMinor int64
	PaidAt      time.Time
	Customer    Customer
	Metadata    json.RawMessage
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status      string          `json:"status"`
		Reference   string          `json:"reference"`
		AmountMinor int64           `json:"amount"`
		PaidAt      string          `json:"paid_at"`
		Customer    Customer        `json:"customer"`
		Metadata    json.RawMessage `json:"metadata"`
	} `json:"data"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SecretKey) == "" {
		return nil, ErrMissingSecretKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		secretKey:  strings.TrimSpace(opts.SecretKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// VerifyTransaction fetches the canonical status of a payment reference from
// the gateway's verification endpoint. The call is idempotent on the gateway
// side but not cheap; callers should consult the ledger before reaching for it.
//
// Error mapping: transport failures wrap domain.ErrGatewayUnavailable (safe to
// retry later), non-2xx responses wrap domain.ErrGatewayRejected, and
// undecodable bodies wrap domain.ErrGatewayProtocol.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifiedPayment, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: reference is required", domain.ErrValidation)
	}
	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("paystack: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status_code", resp.StatusCode).
			Str("reference", reference).
			Msg("paystack: verify rejected")
		return nil, fmt.Errorf("%w: status %d", domain.ErrGatewayRejected, resp.StatusCode)
	}

	var decoded verifyResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrGatewayProtocol, err)
	}
	if !decoded.Status {
		return nil, fmt.Errorf("%w: %s", domain.ErrGatewayRejected, decoded.Message)
	}

	paidAt, _ := time.Parse(time.RFC3339, decoded.Data.PaidAt)
	payment := &VerifiedPayment{
		Status:      normalizeStatus(decoded.Data.Status),
		Reference:   decoded.Data.Reference,
		AmountMinor: decoded.Data.AmountMinor,
		PaidAt:      paidAt,
		Customer:    decoded.Data.Customer,
		Metadata:    decoded.Data.Metadata,
	}
	c.logger.Debug().
		Str("reference", reference).
		Str("gateway_status", decoded.Data.Status).
		Int64("amount_minor", payment.AmountMinor).
		Msg("paystack: transaction verified")
	return payment, nil
}

func normalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return StatusConfirmed
	case "pending", "ongoing", "processing", "queued", "send_otp", "pay_offline":
		return StatusPending
	case "failed", "abandoned", "reversed":
		return StatusFailed
	default:
		return StatusUnknown
	}
}
