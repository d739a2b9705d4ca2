package ports

import (
	"context"
	"time"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// ListSalesInput carries the raw list parameters from the transport layer.
type ListSalesInput struct {
	Stage     string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// CreateSalesInput carries all data needed to create a sales record. OwnerID
// always comes from the authenticated identity, never from the payload.
type CreateSalesInput struct {
	OpportunityID   string
	AccountName     string
	OpportunityName string
	Stage           string
	Amount          float64
	CloseDate       *time.Time
	Probability     int
	OwnerID         string
}

// SalesService defines use-case operations for sales records.
type SalesService interface {
	ListSales(ctx context.Context, input ListSalesInput) ([]*domain.SalesRecord, error)
	GetSales(ctx context.Context, id string) (*domain.SalesRecord, error)
	CreateSales(ctx context.Context, input CreateSalesInput) (*domain.SalesRecord, error)
	Stats(ctx context.Context) (*domain.SalesStats, error)
}
