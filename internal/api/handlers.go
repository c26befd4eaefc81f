package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/igbo-calendar-api/internal/almanac"
	"github.com/zapponejosh/igbo-calendar-api/internal/calendar"
	"github.com/zapponejosh/igbo-calendar-api/internal/config"
	"github.com/zapponejosh/igbo-calendar-api/internal/database"
	"github.com/zapponejosh/igbo-calendar-api/internal/logger"
)

// Year indices accepted on the wire.
const (
	minYearIndex = 1
	maxYearIndex = 9999
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db      *database.DB
	service *almanac.Service
	now     func() time.Time
}

// NewHandlers creates a new Handlers instance.
// Handlers log through the logger stored in the request context.
func NewHandlers(db *database.DB, service *almanac.Service) *Handlers {
	return &Handlers{
		db:      db,
		service: service,
		now:     time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check database health
	if err := h.db.Health(ctx); err != nil {
		logger.Warn(ctx, "health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	seeds, err := h.db.CountSeeds(ctx)
	if err != nil {
		logger.Error(ctx, "count seeds", err)
		WriteInternalError(w, "Internal server error")
		return
	}
	cached, err := h.db.CountCachedYears(ctx)
	if err != nil {
		logger.Error(ctx, "count cached years", err)
		WriteInternalError(w, "Internal server error")
		return
	}

	builder := h.service.Builder()
	WriteSuccess(w, map[string]any{
		"status":          "healthy",
		"leap_anchor":     builder.LeapRule().AnchorYear,
		"leap_cycle":      builder.LeapRule().Cycle,
		"new_moon_window": builder.NewMoonWindow(),
		"seeds":           seeds,
		"cached_years":    cached,
	})
}

// =============================================================================
// Moon
// =============================================================================

type moonResponse struct {
	Date string `json:"date"`
	calendar.MoonPhaseInfo
}

// GetMoon handles GET /api/v1/moon/{date}
func (h *Handlers) GetMoon(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	WriteSuccess(w, moonResponse{
		Date:          calendar.FormatDate(date),
		MoonPhaseInfo: h.service.Moon(date),
	})
}

type newMoonResponse struct {
	Near    string                 `json:"near"`
	Window  int                    `json:"window"`
	NewMoon string                 `json:"new_moon"`
	Phase   calendar.MoonPhaseInfo `json:"phase"`
}

// GetNewMoon handles GET /api/v1/new-moon?near=YYYY-MM-DD&window=N
func (h *Handlers) GetNewMoon(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	near := h.now()
	if s := query.Get("near"); s != "" {
		d, err := calendar.ParseDateString(s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid near date: %s. Use YYYY-MM-DD", s))
			return
		}
		near = d
	}

	window := h.service.Builder().NewMoonWindow()
	if s := query.Get("window"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > config.MaxNewMoonWindow {
			WriteBadRequest(w, fmt.Sprintf("window must be an integer between 0 and %d", config.MaxNewMoonWindow))
			return
		}
		window = n
	}

	aligned := h.service.NewMoon(near, window)
	WriteSuccess(w, newMoonResponse{
		Near:    calendar.FormatDate(near),
		Window:  window,
		NewMoon: calendar.FormatDate(aligned),
		Phase:   h.service.Moon(aligned),
	})
}

// =============================================================================
// Years
// =============================================================================

// GetYear handles GET /api/v1/years/{index}?start=YYYY-MM-DD&market=Afo
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	index, ok := pathYearIndex(w, r)
	if !ok {
		return
	}

	req := almanac.YearRequest{YearIndex: index}
	query := r.URL.Query()

	if s := query.Get("start"); s != "" {
		start, err := calendar.ParseDateString(s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid start date: %s. Use YYYY-MM-DD", s))
			return
		}
		req.ApproxStart = &start
	}

	if s := query.Get("market"); s != "" {
		cycle := calendar.NewMarketCycle(h.service.Builder().Registry().MarketDays, "")
		if cycle.IndexOf(s) < 0 {
			WriteBadRequest(w, fmt.Sprintf("Unknown market day: %s", s))
			return
		}
		req.MarketDay = s
	}

	year, err := h.service.Year(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "failed to build year", err, slog.Int("year_index", index))
		return
	}

	WriteSuccess(w, year)
}

// GetYears handles GET /api/v1/years?from=2025&count=3
func (h *Handlers) GetYears(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := strconv.Atoi(query.Get("from"))
	if err != nil || from < minYearIndex || from > maxYearIndex {
		WriteBadRequest(w, "from must be a year index between 1 and 9999")
		return
	}

	count := 1
	if s := query.Get("count"); s != "" {
		count, err = strconv.Atoi(s)
		if err != nil {
			WriteBadRequest(w, "count must be an integer")
			return
		}
	}
	if from+count-1 > maxYearIndex {
		WriteBadRequest(w, "requested years run past 9999")
		return
	}

	years, err := h.service.Years(r.Context(), from, count)
	if err != nil {
		h.writeServiceError(w, r, "failed to build years", err, slog.Int("from", from), slog.Int("count", count))
		return
	}

	WriteSuccess(w, years)
}

// GetLeap handles GET /api/v1/years/{index}/leap
func (h *Handlers) GetLeap(w http.ResponseWriter, r *http.Request) {
	index, ok := pathYearIndex(w, r)
	if !ok {
		return
	}

	WriteSuccess(w, h.service.Leap(index))
}

// =============================================================================
// Positions
// =============================================================================

// GetLocate handles GET /api/v1/locate/{date}
func (h *Handlers) GetLocate(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	h.writePosition(w, r, date)
}

// GetToday handles GET /api/v1/today
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	h.writePosition(w, r, h.now())
}

type positionResponse struct {
	*almanac.Position
	Moon calendar.MoonPhaseInfo `json:"moon"`
}

func (h *Handlers) writePosition(w http.ResponseWriter, r *http.Request, date time.Time) {
	pos, err := h.service.Locate(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, "failed to locate date", err, slog.String("date", calendar.FormatDate(date)))
		return
	}

	WriteSuccess(w, positionResponse{
		Position: pos,
		Moon:     h.service.Moon(date),
	})
}

// =============================================================================
// Admin: seeds
// =============================================================================

// ListSeeds handles GET /api/v1/admin/seeds
func (h *Handlers) ListSeeds(w http.ResponseWriter, r *http.Request) {
	seeds, err := h.service.ListSeeds(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "failed to list seeds", err)
		return
	}

	WriteSuccess(w, seeds)
}

// SeedRequest is the body of PUT /api/v1/admin/seeds/{index}.
type SeedRequest struct {
	ApproxStart  string  `json:"approx_start"`
	MarketAnchor string  `json:"market_anchor,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// PutSeed handles PUT /api/v1/admin/seeds/{index}
func (h *Handlers) PutSeed(w http.ResponseWriter, r *http.Request) {
	index, ok := pathYearIndex(w, r)
	if !ok {
		return
	}

	var body SeedRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	seed := &database.YearSeed{
		YearIndex:    index,
		ApproxStart:  body.ApproxStart,
		MarketAnchor: body.MarketAnchor,
		Notes:        body.Notes,
	}
	if err := h.service.SaveSeed(r.Context(), seed); err != nil {
		h.writeServiceError(w, r, "failed to save seed", err, slog.Int("year_index", index))
		return
	}

	logger.Info(r.Context(), "year seed saved",
		slog.Int("year_index", index),
		slog.String("approx_start", seed.ApproxStart),
	)
	WriteSuccess(w, seed)
}

// DeleteSeed handles DELETE /api/v1/admin/seeds/{index}
func (h *Handlers) DeleteSeed(w http.ResponseWriter, r *http.Request) {
	index, ok := pathYearIndex(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSeed(r.Context(), index); err != nil {
		h.writeServiceError(w, r, "failed to delete seed", err, slog.Int("year_index", index))
		return
	}

	WriteSuccess(w, map[string]any{"deleted": index})
}

// =============================================================================
// Helpers
// =============================================================================

func pathDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := chi.URLParam(r, "date")
	if dateStr == "" {
		WriteBadRequest(w, "Date parameter is required")
		return time.Time{}, false
	}

	date, err := calendar.ParseDateString(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return time.Time{}, false
	}

	return date, true
}

func pathYearIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := chi.URLParam(r, "index")
	index, err := strconv.Atoi(s)
	if err != nil || index < minYearIndex || index > maxYearIndex {
		WriteBadRequest(w, fmt.Sprintf("Invalid year index: %s", s))
		return 0, false
	}
	return index, true
}

// writeServiceError maps service and database errors to HTTP statuses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error, attrs ...any) {
	switch {
	case errors.Is(err, almanac.ErrInvalidRequest):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, almanac.ErrDateNotCovered):
		WriteNotFound(w, err.Error())
	case database.IsNotFound(err):
		WriteNotFound(w, "Not found")
	default:
		logger.Error(r.Context(), msg, err, attrs...)
		WriteInternalError(w, "Internal server error")
	}
}
