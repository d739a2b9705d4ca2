package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
)

const (
	DefaultSalesLimit = 100
	MaxSalesLimit     = 1000
)

type SalesService struct {
	repo   ports.SalesRepository
	logger zerolog.Logger
}

func NewSalesService(repo ports.SalesRepository, logger zerolog.Logger) *SalesService {
	return &SalesService{repo: repo, logger: logger}
}

// ListSales returns records newest first. Limit falls back to
// DefaultSalesLimit when unset and is capped at MaxSalesLimit.
func (s *SalesService) ListSales(ctx context.Context, input ports.ListSalesInput) ([]*domain.SalesRecord, error) {
	if !input.StartDate.IsZero() && !input.EndDate.IsZero() && input.StartDate.After(input.EndDate) {
		return nil, domain.NewValidationError("start_date must not be after end_date")
	}

	records, err := s.repo.List(ctx, ports.SalesFilter{
		Stage:     strings.TrimSpace(input.Stage),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Limit:     clampLimit(input.Limit, DefaultSalesLimit, MaxSalesLimit),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("list sales failed")
		return nil, domain.Unexpected("Failed to fetch sales data", err)
	}
	return records, nil
}

// GetSales returns ErrSalesRecordNotFound for unknown ids, including ids that
// are not UUIDs.
func (s *SalesService) GetSales(ctx context.Context, id string) (*domain.SalesRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSalesRecordNotFound
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSalesRecordNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("id", id).Msg("get sales record failed")
		return nil, domain.Unexpected("Failed to fetch sales data", err)
	}
	return record, nil
}

func (s *SalesService) CreateSales(ctx context.Context, input ports.CreateSalesInput) (*domain.SalesRecord, error) {
	if err := validateSalesInput(input); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.SalesRecord{
		OpportunityID:   strings.TrimSpace(input.OpportunityID),
		AccountName:     strings.TrimSpace(input.AccountName),
		OpportunityName: strings.TrimSpace(input.OpportunityName),
		Stage:           strings.TrimSpace(input.Stage),
		Amount:          input.Amount,
		CloseDate:       input.CloseDate,
		Probability:     input.Probability,
		OwnerID:         input.OwnerID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", input.OwnerID).Msg("create sales record failed")
		return nil, domain.Unexpected("Failed to create sales record", err)
	}

	s.logger.Info().Str("id", created.ID).Str("stage", created.Stage).Msg("sales record created")
	return created, nil
}

func (s *SalesService) Stats(ctx context.Context) (*domain.SalesStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("sales stats failed")
		return nil, domain.Unexpected("Failed to fetch sales statistics", err)
	}
	return stats, nil
}

func validateSalesInput(input ports.CreateSalesInput) error {
	switch {
	case input.OwnerID == "":
		return domain.NewAuthError(domain.AuthMissingToken, nil)
	case strings.TrimSpace(input.AccountName) == "":
		return domain.NewValidationError("account_name is required")
	case strings.TrimSpace(input.OpportunityName) == "":
		return domain.NewValidationError("opportunity_name is required")
	case strings.TrimSpace(input.Stage) == "":
		return domain.NewValidationError("stage is required")
	case input.Amount < 0:
		return domain.NewValidationError("amount must not be negative")
	case input.Probability < 0 || input.Probability > 100:
		return domain.NewValidationError("probability must be between 0 and 100")
	}
	return nil
}

// clampLimit applies def to non-positive values and caps at max.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
