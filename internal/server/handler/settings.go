package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/settings"
)

// Settings applies user view selections. Absent fields are left untouched.
type Settings struct {
	settings *settings.Settings
	logger   *slog.Logger
}

func NewSettings(set *settings.Settings, logger *slog.Logger) *Settings {
	return &Settings{
		settings: set,
		logger:   logger.With(slog.String("component", "settings_handler")),
	}
}

type settingsRequest struct {
	Symbol                 *string `json:"symbol"`
	Timeframe              *string `json:"timeframe"`
	LiquidityWindowMinutes *int    `json:"liquidity_window_minutes"`
	View                   *string `json:"view"`
}

type settingsResponse struct {
	Symbol                 string `json:"symbol"`
	Timeframe              string `json:"timeframe"`
	LiquidityWindowMinutes int    `json:"liquidity_window_minutes"`
	View                   string `json:"view"`
}

func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.Symbol != nil {
		h.settings.SetSymbol(*req.Symbol)
	}
	if req.Timeframe != nil {
		if err := h.settings.SetTimeframe(domain.Interval(*req.Timeframe)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.LiquidityWindowMinutes != nil {
		window := time.Duration(*req.LiquidityWindowMinutes) * time.Minute
		if err := h.settings.SetLiquidityWindow(window); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.View != nil {
		if err := h.settings.SetView(settings.View(*req.View)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		Symbol:                 h.settings.Symbol(),
		Timeframe:              string(h.settings.Timeframe()),
		LiquidityWindowMinutes: int(h.settings.LiquidityWindow() / time.Minute),
		View:                   string(h.settings.View()),
	})
}
