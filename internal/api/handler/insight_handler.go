package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
)

// InsightHandler serves stored insights and the computed pipeline aggregates.
type InsightHandler struct {
	service ports.InsightService
}

func NewInsightHandler(service ports.InsightService) *InsightHandler {
	return &InsightHandler{service: service}
}

// List handles GET /api/insights.
//
// @Summary      List stored insights
// @Tags         insights
// @Produce      json
// @Security     BearerAuth
// @Param        type   query     string  false  "trend, forecast, recommendation or alert"
// @Param        limit  query     int     false  "Maximum insights (default 20, max 100)"
// @Success      200    {object}  insightListResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /insights [get]
func (h *InsightHandler) List(c echo.Context) error {
	var (
		insightType string
		limit       int
	)
	if err := echo.QueryParamsBinder(c).
		String("type", &insightType).
		Int("limit", &limit).
		BindError(); err != nil {
		return queryError(err)
	}

	insights, err := h.service.ListInsights(c.Request().Context(), insightType, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, insightListResponse{
		Success: true,
		Count:   len(insights),
		Data:    nonNil(insights),
	})
}

// Create handles POST /api/insights. Mounted behind RBAC for admin and manager.
//
// @Summary      Publish an insight
// @Tags         insights
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInsightRequest  true  "Insight"
// @Success      201   {object}  insightEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /insights [post]
func (h *InsightHandler) Create(c echo.Context) error {
	var req createInsightRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	insight, err := h.service.CreateInsight(c.Request().Context(), toCreateInsightInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, insightEnvelope{Success: true, Data: insight})
}

// Trends handles GET /api/insights/trends.
//
// @Summary      Monthly trends over the last 12 months
// @Tags         insights
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  trendsResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /insights/trends [get]
func (h *InsightHandler) Trends(c echo.Context) error {
	points, err := h.service.Trends(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trendsResponse{
		Success:     true,
		InsightType: domain.InsightTrend,
		Data:        toTrendResponses(points),
	})
}

// Forecast handles GET /api/insights/forecast.
//
// @Summary      Open pipeline by stage
// @Tags         insights
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  forecastResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /insights/forecast [get]
func (h *InsightHandler) Forecast(c echo.Context) error {
	buckets, err := h.service.Forecast(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, forecastResponse{
		Success:     true,
		InsightType: domain.InsightForecast,
		Data:        nonNil(buckets),
	})
}

// TopPerformers handles GET /api/insights/top-performers.
//
// @Summary      Top salesmen by owned deal value
// @Tags         insights
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  performersResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /insights/top-performers [get]
func (h *InsightHandler) TopPerformers(c echo.Context) error {
	performers, err := h.service.TopPerformers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, performersResponse{
		Success:     true,
		InsightType: domain.InsightRecommendation,
		Data:        nonNil(performers),
	})
}

// Dashboard handles GET /api/dashboard.
//
// @Summary      Dashboard summary
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /dashboard [get]
func (h *InsightHandler) Dashboard(c echo.Context) error {
	summary, err := h.service.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Success:  true,
		Stats:    summary.Stats,
		Trends:   toTrendResponses(summary.Trends),
		Forecast: nonNil(summary.Forecast),
	})
}
