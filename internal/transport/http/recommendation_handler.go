package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"freightpulse/internal/booking"
	"freightpulse/internal/config"
	apierrors "freightpulse/internal/errors"
	"freightpulse/internal/services"
)

// RecommendationHandler serves booking recommendations and price
// forecasts.
type RecommendationHandler struct {
	service *services.RecommendationService
	logger  *slog.Logger
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(service *services.RecommendationService, logger *slog.Logger) *RecommendationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationHandler{service: service, logger: logger}
}

// RegisterRoutes registers the recommendation routes.
func (h *RecommendationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/recommendations", h.GetRecommendations)
	r.Get("/forecast", h.GetForecast)
	r.Get("/summaries", h.GetSeasonalSummaries)
}

// recommendationsResponse is the envelope for ranked recommendations.
type recommendationsResponse struct {
	Success         bool                     `json:"success"`
	ReadyDate       string                   `json:"ready_date"`
	RouteID         string                   `json:"route_id"`
	Criterion       string                   `json:"criterion"`
	Recommendations []booking.Recommendation `json:"recommendations"`
}

// GetRecommendations ranks booking candidates for one route.
// Query parameters: route (required), ready_date (default today),
// criterion (default tco).
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	routeID := strings.TrimSpace(r.URL.Query().Get("route"))
	if routeID == "" {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrMissingParameter))
		return
	}
	if !h.service.Ready() {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrModelNotReady))
		return
	}
	if !h.service.KnownRoute(routeID) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnknownRoute))
		return
	}

	criterionParam := r.URL.Query().Get("criterion")
	if criterionParam == "" {
		criterionParam = string(booking.CriterionTotalCost)
	}
	criterion, err := booking.ParseCriterion(criterionParam)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.InvalidParameter("criterion", err.Error())))
		return
	}

	readyDate, apiErr := parseDateParam(r, "ready_date", time.Now().UTC().Truncate(24*time.Hour))
	if apiErr != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apiErr))
		return
	}

	recommendations, err := h.service.Recommendations(ctx, readyDate, routeID, criterion)
	if err != nil {
		h.logger.ErrorContext(ctx, "ranking failed",
			"route", routeID,
			"criterion", string(criterion),
			"error", err,
		)
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}

	render.JSON(w, r, recommendationsResponse{
		Success:         true,
		ReadyDate:       readyDate.Format(config.DateLayout),
		RouteID:         routeID,
		Criterion:       string(criterion),
		Recommendations: recommendations,
	})
}

// GetForecast returns a recursive multi-day forecast for one carrier and
// route. Query parameters: carrier, route (required), start (default
// today), horizon (default configured horizon).
func (h *RecommendationHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	carrierID := strings.TrimSpace(r.URL.Query().Get("carrier"))
	routeID := strings.TrimSpace(r.URL.Query().Get("route"))
	if carrierID == "" || routeID == "" {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrMissingParameter))
		return
	}
	if !h.service.Ready() {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrModelNotReady))
		return
	}
	if !h.service.KnownRoute(routeID) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnknownRoute))
		return
	}

	start, apiErr := parseDateParam(r, "start", time.Now().UTC().Truncate(24*time.Hour))
	if apiErr != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apiErr))
		return
	}

	horizon := 0
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.InvalidParameter("horizon", "must be a positive integer")))
			return
		}
		horizon = parsed
	}

	points, err := h.service.Forecast(ctx, carrierID, routeID, start, horizon)
	if err != nil {
		if strings.Contains(err.Error(), "unknown carrier") {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnknownCarrier))
			return
		}
		h.logger.ErrorContext(ctx, "forecast failed",
			"carrier", carrierID,
			"route", routeID,
			"error", err,
		)
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"success":    true,
		"carrier_id": carrierID,
		"route_id":   routeID,
		"forecast":   points,
	})
}

// GetSeasonalSummaries returns the seasonal forecast table for one month.
// Query parameters: month (1-12, required), year (default next year).
func (h *RecommendationHandler) GetSeasonalSummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	monthRaw := r.URL.Query().Get("month")
	monthNum, err := strconv.Atoi(monthRaw)
	if err != nil || monthNum < 1 || monthNum > 12 {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.InvalidParameter("month", "must be an integer between 1 and 12")))
		return
	}

	year := time.Now().UTC().Year() + 1
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.InvalidParameter("year", "must be an integer")))
			return
		}
		year = parsed
	}

	if !h.service.Ready() {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrModelNotReady))
		return
	}

	summaries, err := h.service.SeasonalSummaries(time.Month(monthNum), year)
	if err != nil {
		h.logger.ErrorContext(ctx, "seasonal summary failed", "month", monthNum, "error", err)
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"success":   true,
		"month":     monthNum,
		"year":      year,
		"summaries": summaries,
	})
}

func parseDateParam(r *http.Request, name string, fallback time.Time) (time.Time, *apierrors.APIError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	date, err := time.Parse(config.DateLayout, raw)
	if err != nil {
		return time.Time{}, apierrors.InvalidParameter(name, "must be formatted YYYY-MM-DD")
	}
	return date, nil
}
