package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/ledger"
	"server/internal/reconcile"
)

type App struct {
	Ledger     *ledger.Writer
	Reconciler *reconcile.Coordinator
	Logger     zerolog.Logger
}

func NewApp(writer *ledger.Writer, coordinator *reconcile.Coordinator, logger zerolog.Logger) *App {
	return &App{Ledger: writer, Reconciler: coordinator, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{"error": map[string]string{"code": kind, "message": message}})
}
