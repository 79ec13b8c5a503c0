package httpapi

import (
	"net/http"
	"time"

	"server/internal/http/handlers"
	"server/internal/infra"
	appmw "server/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		appmw.Logger(app.Logger),
	)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(appmw.CORS(cfg.AllowedOrigins))
	}

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/payments", func(r chi.Router) {
		// The gateway signs webhook deliveries; rate limiting only applies to
		// the donor-facing verify poll.
		r.Post("/webhook", app.PaymentsWebhook)
		r.With(appmw.RateLimit(cfg.RateLimitPerMin, time.Minute)).Get("/verify", app.PaymentsVerify)
	})

	r.Get("/v1/donations/recent", app.DonationsRecent)

	return r
}
