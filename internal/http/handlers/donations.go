package handlers

import (
	"net/http"
	"strconv"
)

const maxRecentDonations = 50

// DonationsRecent lists the newest non-anonymous donations for the portal's
// supporters page. Anonymous donations never leave the ledger through here.
func (a *App) DonationsRecent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxRecentDonations {
		limit = maxRecentDonations
	}

	pairs, err := a.Ledger.ListRecentDonations(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list donations")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load donations")
		return
	}

	items := make([]map[string]any, 0, len(pairs))
	for _, pair := range pairs {
		items = append(items, map[string]any{
			"id":            pair.Donation.ID,
			"donor_name":    pair.Donation.DonorName,
			"donation_type": pair.Donation.DonationType,
			"purpose":       pair.Donation.Purpose,
			"amount":        pair.Transaction.Amount.StringFixed(2),
			"created_at":    pair.Donation.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
