package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrMissingSignature   = errors.New("missing signature")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrValidation         = errors.New("validation failure")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	ErrGatewayRejected    = errors.New("gateway rejected request")
	ErrGatewayProtocol    = errors.New("gateway protocol error")
)
