package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
	"github.com/salesintel/sales-intelligence-api/internal/metrics"
)

type SalesRepository struct {
	coll *mongo.Collection
}

func NewSalesRepository(db *mongo.Database) *SalesRepository {
	return &SalesRepository{coll: db.Collection(collectionSales)}
}

type salesDoc struct {
	ID              string     `bson:"_id"`
	OpportunityID   string     `bson:"opportunity_id"`
	AccountName     string     `bson:"account_name"`
	OpportunityName string     `bson:"opportunity_name"`
	Stage           string     `bson:"stage"`
	Amount          float64    `bson:"amount"`
	CloseDate       *time.Time `bson:"close_date"`
	Probability     int        `bson:"probability"`
	OwnerID         string     `bson:"owner_id"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

func (d salesDoc) toDomain() *domain.SalesRecord {
	rec := &domain.SalesRecord{
		ID:              d.ID,
		OpportunityID:   d.OpportunityID,
		AccountName:     d.AccountName,
		OpportunityName: d.OpportunityName,
		Stage:           d.Stage,
		Amount:          d.Amount,
		Probability:     d.Probability,
		OwnerID:         d.OwnerID,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
	if d.CloseDate != nil {
		cd := d.CloseDate.UTC()
		rec.CloseDate = &cd
	}
	return rec
}

// salesFilter translates the list filter into a query document.
func salesFilter(f ports.SalesFilter) bson.M {
	q := bson.M{}
	if f.Stage != "" {
		q["stage"] = f.Stage
	}
	closeDate := bson.M{}
	if !f.StartDate.IsZero() {
		closeDate["$gte"] = f.StartDate
	}
	if !f.EndDate.IsZero() {
		closeDate["$lte"] = f.EndDate
	}
	if len(closeDate) > 0 {
		q["close_date"] = closeDate
	}
	return q
}

func (r *SalesRepository) List(ctx context.Context, filter ports.SalesFilter) ([]*domain.SalesRecord, error) {
	defer metrics.ObserveQuery("sales_list", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(filter.Limit))

	cur, err := r.coll.Find(ctx, salesFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find sales: %w", err)
	}
	defer cur.Close(ctx)

	records := make([]*domain.SalesRecord, 0)
	for cur.Next(ctx) {
		var doc salesDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode sales: %w", err)
		}
		records = append(records, doc.toDomain())
	}
	return records, cur.Err()
}

func (r *SalesRepository) FindByID(ctx context.Context, id string) (*domain.SalesRecord, error) {
	defer metrics.ObserveQuery("sales_find_by_id", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc salesDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSalesRecordNotFound
		}
		return nil, fmt.Errorf("find sales record: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SalesRepository) Create(ctx context.Context, record *domain.SalesRecord) (*domain.SalesRecord, error) {
	defer metrics.ObserveQuery("sales_create", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := salesDoc{
		ID:              uuid.NewString(),
		OpportunityID:   record.OpportunityID,
		AccountName:     record.AccountName,
		OpportunityName: record.OpportunityName,
		Stage:           record.Stage,
		Amount:          record.Amount,
		CloseDate:       record.CloseDate,
		Probability:     record.Probability,
		OwnerID:         record.OwnerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert sales record: %w", err)
	}

	metrics.SalesRecordsCreatedTotal.WithLabelValues(domain.StageLabel(doc.Stage)).Inc()
	return doc.toDomain(), nil
}

func (r *SalesRepository) Stats(ctx context.Context) (*domain.SalesStats, error) {
	defer metrics.ObserveQuery("sales_stats", time.Now())
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_opportunities", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_value", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "avg_deal_size", Value: bson.D{{Key: "$avg", Value: "$amount"}}},
			{Key: "avg_probability", Value: bson.D{{Key: "$avg", Value: "$probability"}}},
			{Key: "won_count", Value: countStage(domain.StageClosedWon)},
			{Key: "lost_count", Value: countStage(domain.StageClosedLost)},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales stats: %w", err)
	}
	defer cur.Close(ctx)

	var out struct {
		TotalOpportunities int64   `bson:"total_opportunities"`
		TotalValue         float64 `bson:"total_value"`
		AvgDealSize        float64 `bson:"avg_deal_size"`
		AvgProbability     float64 `bson:"avg_probability"`
		WonCount           int64   `bson:"won_count"`
		LostCount          int64   `bson:"lost_count"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&out); err != nil {
			return nil, fmt.Errorf("decode sales stats: %w", err)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return &domain.SalesStats{
		TotalOpportunities: out.TotalOpportunities,
		TotalValue:         out.TotalValue,
		AvgDealSize:        out.AvgDealSize,
		AvgProbability:     out.AvgProbability,
		WonCount:           out.WonCount,
		LostCount:          out.LostCount,
	}, nil
}

// EnsureIndexes creates indexes on the filtered and sorted fields.
func (r *SalesRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "stage", Value: 1}}},
		{Keys: bson.D{{Key: "close_date", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// countStage is a $sum accumulator counting documents in stage.
func countStage(stage string) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$stage", stage}}}, 1, 0,
	}}}}}
}
