package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shortearn/config"
	"shortearn/ledger"
	"shortearn/middleware"
	"shortearn/store"

	"github.com/rs/zerolog/log"
)

// LedgerHandler serves the derived dashboard and withdrawal views.
type LedgerHandler struct {
	store  *store.Store
	config config.Config
}

func NewLedgerHandler(st *store.Store, cfg config.Config) *LedgerHandler {
	return &LedgerHandler{store: st, config: cfg}
}

// DashboardResponse pairs the derived view with the current table page.
type DashboardResponse struct {
	*ledger.DashboardView
	Page      int      `json:"page"`
	PageDates []string `json:"pageDates"`
}

// GetDashboard handles GET /api/dashboard
// @Summary Dashboard view
// @Description Derived earnings view: stat table window, chart series, rolling sum, pagination. An optional page parameter selects the table page; out-of-range values keep page 1.
// @Tags Ledger
// @Security BearerAuth
// @Produce json
// @Success 200 {object} DashboardResponse "Dashboard view"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/dashboard [get]
func (dh *LedgerHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(dh.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	dashboard, err := dh.store.GetDashboard(ctx, emailKey)
	if errors.Is(err, store.ErrNotFound) {
		SendJSONError(w, http.StatusNotFound, err, "Dashboard not found")
		return
	} else if err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to load dashboard")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to load dashboard")
		return
	}

	cfg := dh.config.Ledger
	view := ledger.BuildDashboardView(dashboard, cfg.TableWindow, cfg.ChartWindow, cfg.PageSize)

	paginator := ledger.NewPaginator(len(view.Dates), cfg.PageSize)
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			paginator.SetPage(page)
		}
	}

	SendJSONSuccess(w, http.StatusOK, DashboardResponse{
		DashboardView: view,
		Page:          paginator.Page,
		PageDates:     paginator.Slice(view.Dates),
	})
}

// StreamDashboard handles GET /api/dashboard/stream
// @Summary Dashboard event stream
// @Description Server-sent events: emits the rebuilt dashboard view after every change to the user's record.
// @Tags Ledger
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 "SSE stream of dashboard views"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /api/dashboard/stream [get]
func (dh *LedgerHandler) StreamDashboard(w http.ResponseWriter, r *http.Request) {
	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		SendJSONError(w, http.StatusInternalServerError, errors.New("streaming unsupported"), "")
		return
	}

	// The stream stays open past the server's write timeout; clear the
	// deadline on this connection so it is not cut off mid-stream.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Warn().Err(err).Msg("Failed to clear write deadline for dashboard stream")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	cfg := dh.config.Ledger
	watcher := ledger.NewWatcher(dh.store, emailKey, cfg.TableWindow, cfg.ChartWindow, cfg.PageSize)

	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("email_key", emailKey).Msg("Dashboard watcher stopped")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case view := <-watcher.Updates():
			data, err := json.Marshal(view)
			if err != nil {
				log.Error().Err(err).Msg("Failed to encode dashboard view")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
