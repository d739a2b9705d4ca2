package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/metrics"
)

// InsightRepository stores insights and runs the pipeline aggregates over the
// sales and users collections.
type InsightRepository struct {
	insights *mongo.Collection
	sales    *mongo.Collection
	users    *mongo.Collection
}

func NewInsightRepository(db *mongo.Database) *InsightRepository {
	return &InsightRepository{
		insights: db.Collection(collectionInsights),
		sales:    db.Collection(collectionSales),
		users:    db.Collection(collectionUsers),
	}
}

// insightDoc keeps the free-form payload as JSON text so any JSON value
// round-trips unchanged.
type insightDoc struct {
	ID          string    `bson:"_id"`
	Type        string    `bson:"insight_type"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Data        string    `bson:"data"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d insightDoc) toDomain() *domain.Insight {
	data := json.RawMessage(d.Data)
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	return &domain.Insight{
		ID:          d.ID,
		Type:        domain.InsightType(d.Type),
		Title:       d.Title,
		Description: d.Description,
		Data:        data,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func (r *InsightRepository) List(ctx context.Context, insightType domain.InsightType, limit int) ([]*domain.Insight, error) {
	defer metrics.ObserveQuery("insights_list", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if insightType != "" {
		filter["insight_type"] = string(insightType)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))

	cur, err := r.insights.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find insights: %w", err)
	}
	defer cur.Close(ctx)

	list := make([]*domain.Insight, 0)
	for cur.Next(ctx) {
		var doc insightDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode insight: %w", err)
		}
		list = append(list, doc.toDomain())
	}
	return list, cur.Err()
}

func (r *InsightRepository) Create(ctx context.Context, insight *domain.Insight) (*domain.Insight, error) {
	defer metrics.ObserveQuery("insights_create", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := insightDoc{
		ID:          uuid.NewString(),
		Type:        string(insight.Type),
		Title:       insight.Title,
		Description: insight.Description,
		Data:        string(insight.Data),
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.insights.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert insight: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *InsightRepository) Trends(ctx context.Context, since time.Time) ([]domain.TrendPoint, error) {
	defer metrics.ObserveQuery("insights_trends", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "close_date", Value: bson.D{{Key: "$gte", Value: since}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateTrunc", Value: bson.D{
				{Key: "date", Value: "$close_date"},
				{Key: "unit", Value: "month"},
			}}}},
			{Key: "opportunity_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_value", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "avg_probability", Value: bson.D{{Key: "$avg", Value: "$probability"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}

	var rows []struct {
		Month            time.Time `bson:"_id"`
		OpportunityCount int64     `bson:"opportunity_count"`
		TotalValue       float64   `bson:"total_value"`
		AvgProbability   float64   `bson:"avg_probability"`
	}
	if err := r.aggregate(ctx, r.sales, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("aggregate trends: %w", err)
	}

	points := make([]domain.TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.TrendPoint{
			Month:            row.Month.UTC(),
			OpportunityCount: row.OpportunityCount,
			TotalValue:       row.TotalValue,
			AvgProbability:   row.AvgProbability,
		})
	}
	return points, nil
}

func (r *InsightRepository) Forecast(ctx context.Context) ([]domain.ForecastBucket, error) {
	defer metrics.ObserveQuery("insights_forecast", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "stage", Value: bson.D{
			{Key: "$nin", Value: bson.A{domain.StageClosedWon, domain.StageClosedLost}},
		}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$stage"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_value", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "weighted_value", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$divide", Value: bson.A{
				bson.D{{Key: "$multiply", Value: bson.A{"$amount", "$probability"}}}, 100,
			}}}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "weighted_value", Value: -1}}}},
	}

	var rows []struct {
		Stage         string  `bson:"_id"`
		Count         int64   `bson:"count"`
		TotalValue    float64 `bson:"total_value"`
		WeightedValue float64 `bson:"weighted_value"`
	}
	if err := r.aggregate(ctx, r.sales, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("aggregate forecast: %w", err)
	}

	buckets := make([]domain.ForecastBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, domain.ForecastBucket(row))
	}
	return buckets, nil
}

func (r *InsightRepository) TopPerformers(ctx context.Context, limit int) ([]domain.Performer, error) {
	defer metrics.ObserveQuery("insights_top_performers", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "role", Value: domain.RoleSalesman}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionSales},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "owner_id"},
			{Key: "as", Value: "deals"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "email", Value: 1},
			{Key: "deals_count", Value: bson.D{{Key: "$size", Value: "$deals"}}},
			{Key: "total_value", Value: bson.D{{Key: "$sum", Value: "$deals.amount"}}},
			{Key: "won_count", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: "$deals"},
				{Key: "cond", Value: bson.D{{Key: "$eq", Value: bson.A{"$$this.stage", domain.StageClosedWon}}}},
			}}}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_value", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	var rows []struct {
		Name       string  `bson:"name"`
		Email      string  `bson:"email"`
		DealsCount int64   `bson:"deals_count"`
		TotalValue float64 `bson:"total_value"`
		WonCount   int64   `bson:"won_count"`
	}
	if err := r.aggregate(ctx, r.users, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("aggregate top performers: %w", err)
	}

	performers := make([]domain.Performer, 0, len(rows))
	for _, row := range rows {
		performers = append(performers, domain.Performer(row))
	}
	return performers, nil
}

// EnsureIndexes creates the type and recency index used by List.
func (r *InsightRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.insights.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "insight_type", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *InsightRepository) aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out any) error {
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}
