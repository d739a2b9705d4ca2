package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
	"github.com/salesintel/sales-intelligence-api/internal/metrics"
)

const salesColumns = `id, opportunity_id, account_name, opportunity_name, stage, amount::float8,
		close_date, probability, COALESCE(owner_id::text, ''), created_at, updated_at`

type SalesRepository struct {
	db DBTX
}

func NewSalesRepository(db DBTX) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) List(ctx context.Context, filter ports.SalesFilter) ([]*domain.SalesRecord, error) {
	defer metrics.ObserveQuery("sales_list", time.Now())

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + salesColumns + ` FROM sales_data WHERE 1=1`)

	if filter.Stage != "" {
		args = append(args, filter.Stage)
		fmt.Fprintf(&sb, " AND stage = $%d", len(args))
	}
	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		fmt.Fprintf(&sb, " AND close_date >= $%d", len(args))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		fmt.Fprintf(&sb, " AND close_date <= $%d", len(args))
	}
	args = append(args, filter.Limit)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.SalesRecord, 0)
	for rows.Next() {
		rec, err := scanSalesRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return records, nil
}

func (r *SalesRepository) FindByID(ctx context.Context, id string) (*domain.SalesRecord, error) {
	defer metrics.ObserveQuery("sales_find_by_id", time.Now())

	row := r.db.QueryRowContext(ctx, `SELECT `+salesColumns+` FROM sales_data WHERE id = $1`, id)
	rec, err := scanSalesRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSalesRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *SalesRepository) Create(ctx context.Context, record *domain.SalesRecord) (*domain.SalesRecord, error) {
	defer metrics.ObserveQuery("sales_create", time.Now())

	query :=
		`INSERT INTO sales_data
		 (opportunity_id, account_name, opportunity_name, stage, amount, close_date, probability, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`

	out := *record
	err := r.db.QueryRowContext(ctx, query,
		record.OpportunityID, record.AccountName, record.OpportunityName, record.Stage,
		record.Amount, nullableDate(record.CloseDate), record.Probability, record.OwnerID,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	metrics.SalesRecordsCreatedTotal.WithLabelValues(domain.StageLabel(out.Stage)).Inc()
	return &out, nil
}

func (r *SalesRepository) Stats(ctx context.Context) (*domain.SalesStats, error) {
	defer metrics.ObserveQuery("sales_stats", time.Now())

	query :=
		`SELECT
			COUNT(*),
			COALESCE(SUM(amount), 0)::float8,
			COALESCE(AVG(amount), 0)::float8,
			COALESCE(AVG(probability), 0)::float8,
			COUNT(CASE WHEN stage = 'Closed Won' THEN 1 END),
			COUNT(CASE WHEN stage = 'Closed Lost' THEN 1 END)
		 FROM sales_data`

	s := &domain.SalesStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TotalOpportunities, &s.TotalValue, &s.AvgDealSize, &s.AvgProbability, &s.WonCount, &s.LostCount,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSalesRecord(s scanner) (*domain.SalesRecord, error) {
	var (
		rec       domain.SalesRecord
		closeDate sql.NullTime
	)
	err := s.Scan(&rec.ID, &rec.OpportunityID, &rec.AccountName, &rec.OpportunityName, &rec.Stage,
		&rec.Amount, &closeDate, &rec.Probability, &rec.OwnerID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if closeDate.Valid {
		d := closeDate.Time
		rec.CloseDate = &d
	}
	return &rec, nil
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
