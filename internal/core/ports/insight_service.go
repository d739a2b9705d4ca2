package ports

import (
	"context"
	"encoding/json"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// CreateInsightInput carries a new insight from the transport layer.
type CreateInsightInput struct {
	Type        string
	Title       string
	Description string
	Data        json.RawMessage
}

// DashboardSummary bundles the aggregates the dashboard renders on load.
type DashboardSummary struct {
	Stats    *domain.SalesStats
	Trends   []domain.TrendPoint
	Forecast []domain.ForecastBucket
}

type InsightService interface {
	ListInsights(ctx context.Context, insightType string, limit int) ([]*domain.Insight, error)
	CreateInsight(ctx context.Context, input CreateInsightInput) (*domain.Insight, error)
	Trends(ctx context.Context) ([]domain.TrendPoint, error)
	Forecast(ctx context.Context) ([]domain.ForecastBucket, error)
	TopPerformers(ctx context.Context) ([]domain.Performer, error)
	Dashboard(ctx context.Context) (*DashboardSummary, error)
}
