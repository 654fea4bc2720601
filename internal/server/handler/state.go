package handler

import (
	"log/slog"
	"net/http"

	"github.com/jellychn/zentra-sub000/internal/store"
)

// State serves read-only views over the in-memory symbol store.
type State struct {
	store  *store.Store
	logger *slog.Logger
}

func NewState(st *store.Store, logger *slog.Logger) *State {
	return &State{
		store:  st,
		logger: logger.With(slog.String("component", "state_handler")),
	}
}

func (h *State) State(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}
	snap, ok := h.store.Snapshot(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *State) Metrics(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}
	metrics, ok := h.store.Metrics(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol")
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
