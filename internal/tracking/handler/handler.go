// Package handler wires the tracking API onto the router. It is a thin
// translation layer: decode, delegate to the service, encode.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"stayledger/internal/tracking/models"
	id "stayledger/pkg/domain"
	dErrors "stayledger/pkg/domain-errors"
	"stayledger/pkg/platform/httputil"
	"stayledger/pkg/requestcontext"
)

// Service defines the tracking operations the handler depends on.
type Service interface {
	AddCountry(ctx context.Context, req models.AddCountryRequest) (*models.TrackedCountry, error)
	RemoveCountry(ctx context.Context, countryID id.CountryID) error
	UpdateSettings(ctx context.Context, countryID id.CountryID, req models.UpdateSettingsRequest) (*models.TrackedCountry, error)
	UpdateLimit(ctx context.Context, countryID id.CountryID, dayLimit int) (*models.TrackedCountry, error)
	ResetCountry(ctx context.Context, countryID id.CountryID) (*models.TrackedCountry, error)
	ToggleCountDays(ctx context.Context, countryID id.CountryID) (*models.TrackedCountry, error)
	AddStay(ctx context.Context, countryID id.CountryID, req models.AddStayRequest) (*models.TrackedCountry, error)
	RemoveStay(ctx context.Context, countryID id.CountryID, stayID id.StayID) (*models.TrackedCountry, error)
	GetCountry(ctx context.Context, countryID id.CountryID) (*models.TrackedCountry, error)
	ListCountries(ctx context.Context) ([]*models.TrackedCountry, error)
	CountResult(ctx context.Context, countryID id.CountryID, asOf *time.Time) (*models.CountResult, error)
	ProjectCountResult(ctx context.Context, countryID id.CountryID, date time.Time) (*models.CountResult, error)
}

// Handler wires tracking endpoints to the tracking service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a tracking handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the tracking endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/countries", func(r chi.Router) {
		r.Post("/", h.handleAddCountry)
		r.Get("/", h.handleListCountries)

		r.Route("/{countryID}", func(r chi.Router) {
			r.Get("/", h.handleGetCountry)
			r.Delete("/", h.handleRemoveCountry)
			r.Put("/settings", h.handleUpdateSettings)
			r.Put("/limit", h.handleUpdateLimit)
			r.Post("/reset", h.handleResetCountry)
			r.Post("/toggle", h.handleToggle)
			r.Post("/stays", h.handleAddStay)
			r.Delete("/stays/{stayID}", h.handleRemoveStay)
			r.Get("/count", h.handleCountResult)
			r.Get("/projection", h.handleProjection)
		})
	})
}

func (h *Handler) handleAddCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.AddCountryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	country, err := h.service.AddCountry(ctx, req)
	if err != nil {
		h.logError(ctx, "add country failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, country)
}

func (h *Handler) handleListCountries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countries, err := h.service.ListCountries(ctx)
	if err != nil {
		h.logError(ctx, "list countries failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, countries)
}

func (h *Handler) handleGetCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	country, err := h.service.GetCountry(ctx, countryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, country)
}

func (h *Handler) handleRemoveCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveCountry(ctx, countryID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	var req models.UpdateSettingsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	country, err := h.service.UpdateSettings(ctx, countryID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, country)
}

func (h *Handler) handleUpdateLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	var req models.UpdateLimitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	country, err := h.service.UpdateLimit(ctx, countryID, req.DayLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, country)
}

func (h *Handler) handleResetCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	country, err := h.service.ResetCountry(ctx, countryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, country)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	country, err := h.service.ToggleCountDays(ctx, countryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, country)
}

func (h *Handler) handleAddStay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	var req models.AddStayRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	country, err := h.service.AddStay(ctx, countryID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, country)
}

func (h *Handler) handleRemoveStay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	stayID, err := id.ParseStayID(chi.URLParam(r, "stayID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	country, err := h.service.RemoveStay(ctx, countryID, stayID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, country)
}

func (h *Handler) handleCountResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	var asOf *time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		asOf = &parsed
	}

	result, err := h.service.CountResult(ctx, countryID, asOf)
	if err != nil {
		h.logError(ctx, "count evaluation failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "count evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"country_id", countryID,
		"counted_days", result.CountedDays,
		"status", result.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countryID, ok := h.countryID(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "date query parameter is required"))
		return
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.ProjectCountResult(ctx, countryID, date)
	if err != nil {
		h.logError(ctx, "projection failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) countryID(w http.ResponseWriter, r *http.Request) (id.CountryID, bool) {
	countryID, err := id.ParseCountryID(chi.URLParam(r, "countryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CountryID{}, false
	}
	return countryID, true
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
