package handlers

import (
	"errors"
	"io"
	"net/http"

	"server/internal/domain"
	"server/internal/paystack"
	"server/internal/reconcile"
)

// PaymentsWebhook receives gateway webhook deliveries. The body must be kept
// as raw bytes until the signature over it has been checked; decoding first
// would re-serialize and break the HMAC.
func (a *App) PaymentsWebhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}
	signature := r.Header.Get(paystack.SignatureHeader)

	err = a.Reconciler.HandleWebhook(r.Context(), rawBody, signature)
	switch {
	case err == nil:
		a.json(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, domain.ErrMissingSignature):
		a.error(w, http.StatusBadRequest, "missing_signature", "signature header is required")
	case errors.Is(err, domain.ErrInvalidSignature):
		a.error(w, http.StatusUnauthorized, "invalid_signature", "signature verification failed")
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusUnprocessableEntity, "invalid_event", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("webhook processing failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to process event")
	}
}

// PaymentsVerify resolves a donor's verification poll for a payment reference.
func (a *App) PaymentsVerify(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "reference query parameter is required")
		return
	}

	result, err := a.Reconciler.HandleVerify(r.Context(), reference)
	switch {
	case err == nil:
		a.json(w, http.StatusOK, verifyResponse(result))
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrPaymentFailed):
		a.error(w, http.StatusNotFound, "payment_failed", "the gateway reports this payment as failed")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "no successful payment for this reference")
	case errors.Is(err, domain.ErrGatewayUnavailable):
		a.error(w, http.StatusServiceUnavailable, "gateway_unavailable", "payment gateway is unreachable, retry later")
	case errors.Is(err, domain.ErrGatewayRejected), errors.Is(err, domain.ErrGatewayProtocol):
		a.error(w, http.StatusNotFound, "not_confirmed", "the gateway could not confirm this payment")
	default:
		a.Logger.Error().Err(err).Str("reference", reference).Msg("verify failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to verify payment")
	}
}

func verifyResponse(result *reconcile.Result) map[string]any {
	resp := map[string]any{
		"status": result.Status,
		"source": result.Source,
	}
	if result.Status == reconcile.StatusConfirmed {
		resp["donation"] = map[string]any{
			"id":             result.Donation.ID,
			"transaction_id": result.Donation.TransactionID,
			"amount":         result.Transaction.Amount.StringFixed(2),
			"reference":      result.Transaction.Reference,
			"purpose":        result.Donation.Purpose,
			"is_anonymous":   result.Donation.IsAnonymous,
		}
	}
	return resp
}
