package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
	"github.com/salesintel/sales-intelligence-api/internal/mocks"
)

const testRecordID = "6f0c2a4e-1b7d-4c1e-9a55-2f3b8d1c7e10"

func newSalesService(t *testing.T) (*mocks.MockSalesRepository, *SalesService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockSalesRepository(ctrl)
	return repo, NewSalesService(repo, zerolog.Nop())
}

func TestSalesService_ListSales_Limits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{"default when unset", 0, DefaultSalesLimit},
		{"default when negative", -5, DefaultSalesLimit},
		{"passes through", 25, 25},
		{"capped", 5000, MaxSalesLimit},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo, svc := newSalesService(t)
			ctx := context.Background()

			repo.EXPECT().
				List(ctx, ports.SalesFilter{Stage: "Proposal", Limit: tc.want}).
				Return([]*domain.SalesRecord{{ID: testRecordID}}, nil)

			got, err := svc.ListSales(ctx, ports.ListSalesInput{Stage: " Proposal ", Limit: tc.limit})
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestSalesService_ListSales_RejectsInvertedRange(t *testing.T) {
	t.Parallel()
	_, svc := newSalesService(t)

	_, err := svc.ListSales(context.Background(), ports.ListSalesInput{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSalesService_ListSales_StoreErrorIsUnexpected(t *testing.T) {
	t.Parallel()
	repo, svc := newSalesService(t)

	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("pq: relation does not exist"))

	_, err := svc.ListSales(context.Background(), ports.ListSalesInput{})
	var ue *domain.UnexpectedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Failed to fetch sales data", ue.Message)
}

func TestSalesService_GetSales(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		repo, svc := newSalesService(t)
		want := &domain.SalesRecord{ID: testRecordID, AccountName: "Acme"}
		repo.EXPECT().FindByID(gomock.Any(), testRecordID).Return(want, nil)

		got, err := svc.GetSales(context.Background(), testRecordID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		repo, svc := newSalesService(t)
		repo.EXPECT().FindByID(gomock.Any(), testRecordID).Return(nil, domain.ErrSalesRecordNotFound)

		_, err := svc.GetSales(context.Background(), testRecordID)
		assert.ErrorIs(t, err, domain.ErrSalesRecordNotFound)
	})

	t.Run("non uuid id never reaches the store", func(t *testing.T) {
		t.Parallel()
		_, svc := newSalesService(t)

		_, err := svc.GetSales(context.Background(), "42")
		assert.ErrorIs(t, err, domain.ErrSalesRecordNotFound)
	})
}

func TestSalesService_CreateSales(t *testing.T) {
	t.Parallel()
	repo, svc := newSalesService(t)
	ctx := context.Background()
	closeDate := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r *domain.SalesRecord) (*domain.SalesRecord, error) {
			assert.Equal(t, "owner-1", r.OwnerID)
			assert.Equal(t, "Acme", r.AccountName)
			assert.Equal(t, &closeDate, r.CloseDate)
			out := *r
			out.ID = testRecordID
			return &out, nil
		})

	got, err := svc.CreateSales(ctx, ports.CreateSalesInput{
		OpportunityID:   "OPP-1",
		AccountName:     " Acme ",
		OpportunityName: "Renewal",
		Stage:           domain.StageProposal,
		Amount:          1200.5,
		CloseDate:       &closeDate,
		Probability:     60,
		OwnerID:         "owner-1",
	})
	require.NoError(t, err)
	assert.Equal(t, testRecordID, got.ID)
}

func TestSalesService_CreateSales_Validation(t *testing.T) {
	t.Parallel()
	_, svc := newSalesService(t)

	valid := ports.CreateSalesInput{AccountName: "Acme", OpportunityName: "Deal", Stage: "Proposal", OwnerID: "owner-1"}

	noAccount := valid
	noAccount.AccountName = ""
	negative := valid
	negative.Amount = -1
	overProbable := valid
	overProbable.Probability = 101

	for _, input := range []ports.CreateSalesInput{noAccount, negative, overProbable} {
		_, err := svc.CreateSales(context.Background(), input)
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
	}
}

func TestSalesService_Stats(t *testing.T) {
	t.Parallel()
	repo, svc := newSalesService(t)

	want := &domain.SalesStats{TotalOpportunities: 3, TotalValue: 3000, AvgDealSize: 1000, WonCount: 1}
	repo.EXPECT().Stats(gomock.Any()).Return(want, nil)

	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
