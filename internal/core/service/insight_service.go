package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
)

const (
	DefaultInsightLimit = 20
	MaxInsightLimit     = 100

	// TrendWindowMonths is how far back the trend aggregate looks.
	TrendWindowMonths  = 12
	TopPerformersLimit = 10
)

type InsightService struct {
	insights ports.InsightRepository
	sales    ports.SalesRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewInsightService(insights ports.InsightRepository, sales ports.SalesRepository, logger zerolog.Logger) *InsightService {
	return &InsightService{insights: insights, sales: sales, logger: logger, now: time.Now}
}

func (s *InsightService) ListInsights(ctx context.Context, insightType string, limit int) ([]*domain.Insight, error) {
	t := domain.InsightType(strings.TrimSpace(insightType))
	if t != "" && !t.Valid() {
		return nil, domain.NewValidationError("Invalid insight type %q", insightType)
	}

	list, err := s.insights.List(ctx, t, clampLimit(limit, DefaultInsightLimit, MaxInsightLimit))
	if err != nil {
		s.logger.Error().Err(err).Msg("list insights failed")
		return nil, domain.Unexpected("Failed to fetch insights", err)
	}
	return list, nil
}

func (s *InsightService) CreateInsight(ctx context.Context, input ports.CreateInsightInput) (*domain.Insight, error) {
	t := domain.InsightType(strings.TrimSpace(input.Type))
	switch {
	case !t.Valid():
		return nil, domain.NewValidationError("Invalid insight type %q", input.Type)
	case strings.TrimSpace(input.Title) == "":
		return nil, domain.NewValidationError("title is required")
	case len(input.Data) > 0 && !json.Valid(input.Data):
		return nil, domain.NewValidationError("data must be valid JSON")
	}

	data := input.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	created, err := s.insights.Create(ctx, &domain.Insight{
		Type:        t,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Data:        data,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("create insight failed")
		return nil, domain.Unexpected("Failed to create insight", err)
	}
	return created, nil
}

// Trends covers the last TrendWindowMonths months.
func (s *InsightService) Trends(ctx context.Context) ([]domain.TrendPoint, error) {
	points, err := s.insights.Trends(ctx, s.trendSince())
	if err != nil {
		s.logger.Error().Err(err).Msg("trend insights failed")
		return nil, domain.Unexpected("Failed to fetch trend insights", err)
	}
	return points, nil
}

func (s *InsightService) Forecast(ctx context.Context) ([]domain.ForecastBucket, error) {
	buckets, err := s.insights.Forecast(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("forecast insights failed")
		return nil, domain.Unexpected("Failed to fetch forecast insights", err)
	}
	return buckets, nil
}

func (s *InsightService) TopPerformers(ctx context.Context) ([]domain.Performer, error) {
	performers, err := s.insights.TopPerformers(ctx, TopPerformersLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("top performers failed")
		return nil, domain.Unexpected("Failed to fetch top performers", err)
	}
	return performers, nil
}

// Dashboard runs the stats, trend and forecast aggregates concurrently and
// fails on the first error.
func (s *InsightService) Dashboard(ctx context.Context) (*ports.DashboardSummary, error) {
	var summary ports.DashboardSummary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.sales.Stats(gctx)
		summary.Stats = stats
		return err
	})
	g.Go(func() error {
		points, err := s.insights.Trends(gctx, s.trendSince())
		summary.Trends = points
		return err
	})
	g.Go(func() error {
		buckets, err := s.insights.Forecast(gctx)
		summary.Forecast = buckets
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("dashboard aggregates failed")
		return nil, domain.Unexpected("Failed to load dashboard", err)
	}
	return &summary, nil
}

func (s *InsightService) trendSince() time.Time {
	return s.now().UTC().AddDate(0, -TrendWindowMonths, 0)
}
