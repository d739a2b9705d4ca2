package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/metrics"
)

type InsightRepository struct {
	db DBTX
}

func NewInsightRepository(db DBTX) *InsightRepository {
	return &InsightRepository{db: db}
}

func (r *InsightRepository) List(ctx context.Context, insightType domain.InsightType, limit int) ([]*domain.Insight, error) {
	defer metrics.ObserveQuery("insights_list", time.Now())

	query := `SELECT id, insight_type, title, description, data, created_at FROM sales_insights`
	args := []any{}
	if insightType != "" {
		query += ` WHERE insight_type = $1`
		args = append(args, string(insightType))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.Insight, 0)
	for rows.Next() {
		var (
			in   domain.Insight
			kind string
			data []byte
		)
		if err := rows.Scan(&in.ID, &kind, &in.Title, &in.Description, &data, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		in.Type = domain.InsightType(kind)
		in.Data = json.RawMessage(data)
		list = append(list, &in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *InsightRepository) Create(ctx context.Context, insight *domain.Insight) (*domain.Insight, error) {
	defer metrics.ObserveQuery("insights_create", time.Now())

	query :=
		`INSERT INTO sales_insights (insight_type, title, description, data)
		 VALUES ($1, $2, $3, $4::jsonb)
		 RETURNING id, created_at`

	out := *insight
	err := r.db.QueryRowContext(ctx, query,
		string(insight.Type), insight.Title, insight.Description, string(insight.Data),
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &out, nil
}

func (r *InsightRepository) Trends(ctx context.Context, since time.Time) ([]domain.TrendPoint, error) {
	defer metrics.ObserveQuery("insights_trends", time.Now())

	query :=
		`SELECT
			DATE_TRUNC('month', close_date)::date AS month,
			COUNT(*),
			COALESCE(SUM(amount), 0)::float8,
			COALESCE(AVG(probability), 0)::float8
		 FROM sales_data
		 WHERE close_date >= $1
		 GROUP BY DATE_TRUNC('month', close_date)
		 ORDER BY month DESC`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	points := make([]domain.TrendPoint, 0)
	for rows.Next() {
		var p domain.TrendPoint
		if err := rows.Scan(&p.Month, &p.OpportunityCount, &p.TotalValue, &p.AvgProbability); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return points, nil
}

func (r *InsightRepository) Forecast(ctx context.Context) ([]domain.ForecastBucket, error) {
	defer metrics.ObserveQuery("insights_forecast", time.Now())

	query :=
		`SELECT
			stage,
			COUNT(*),
			COALESCE(SUM(amount), 0)::float8,
			COALESCE(SUM(amount * probability / 100), 0)::float8 AS weighted_value
		 FROM sales_data
		 WHERE stage NOT IN ('Closed Won', 'Closed Lost')
		 GROUP BY stage
		 ORDER BY weighted_value DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	buckets := make([]domain.ForecastBucket, 0)
	for rows.Next() {
		var b domain.ForecastBucket
		if err := rows.Scan(&b.Stage, &b.Count, &b.TotalValue, &b.WeightedValue); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return buckets, nil
}

// TopPerformers includes salesmen without deals; they rank last with zero value.
func (r *InsightRepository) TopPerformers(ctx context.Context, limit int) ([]domain.Performer, error) {
	defer metrics.ObserveQuery("insights_top_performers", time.Now())

	query :=
		`SELECT
			u.name,
			u.email,
			COUNT(sd.id),
			COALESCE(SUM(sd.amount), 0)::float8 AS total_value,
			COUNT(CASE WHEN sd.stage = 'Closed Won' THEN 1 END)
		 FROM users u
		 LEFT JOIN sales_data sd ON u.id = sd.owner_id
		 WHERE u.role = 'salesman'
		 GROUP BY u.id, u.name, u.email
		 ORDER BY total_value DESC
		 LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	performers := make([]domain.Performer, 0)
	for rows.Next() {
		var p domain.Performer
		if err := rows.Scan(&p.Name, &p.Email, &p.DealsCount, &p.TotalValue, &p.WonCount); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		performers = append(performers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return performers, nil
}
