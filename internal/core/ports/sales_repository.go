package ports

import (
	"context"
	"time"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// SalesFilter carries the optional list filters. Zero values mean "no filter";
// Limit is always set by the service.
type SalesFilter struct {
	Stage     string
	StartDate time.Time // close_date >= StartDate
	EndDate   time.Time // close_date <= EndDate
	Limit     int
}

// SalesRepository defines persistence and aggregate queries over sales records.
type SalesRepository interface {
	// List returns records matching filter, newest first.
	List(ctx context.Context, filter SalesFilter) ([]*domain.SalesRecord, error)
	// FindByID returns domain.ErrSalesRecordNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.SalesRecord, error)
	Create(ctx context.Context, record *domain.SalesRecord) (*domain.SalesRecord, error)
	Stats(ctx context.Context) (*domain.SalesStats, error)
}
