package ports

import (
	"context"
	"time"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// InsightRepository stores published insights and runs the pipeline aggregates.
type InsightRepository interface {
	// List returns insights newest first; an empty insightType matches all.
	List(ctx context.Context, insightType domain.InsightType, limit int) ([]*domain.Insight, error)
	Create(ctx context.Context, insight *domain.Insight) (*domain.Insight, error)

	// Trends groups records with close_date >= since by calendar month, newest month first.
	Trends(ctx context.Context, since time.Time) ([]domain.TrendPoint, error)
	// Forecast groups records in non-closed stages by stage, highest weighted value first.
	Forecast(ctx context.Context) ([]domain.ForecastBucket, error)
	// TopPerformers ranks salesman-role users by total owned deal value.
	TopPerformers(ctx context.Context, limit int) ([]domain.Performer, error)
}
