package service

import (
	"context"
	"encoding/json"
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

var fixedNow = time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)

func newInsightService(t *testing.T) (*mocks.MockInsightRepository, *mocks.MockSalesRepository, *InsightService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	insights := mocks.NewMockInsightRepository(ctrl)
	sales := mocks.NewMockSalesRepository(ctrl)
	svc := NewInsightService(insights, sales, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return insights, sales, svc
}

func TestInsightService_ListInsights(t *testing.T) {
	t.Parallel()
	insights, _, svc := newInsightService(t)

	insights.EXPECT().List(gomock.Any(), domain.InsightAlert, MaxInsightLimit).Return([]*domain.Insight{{ID: "i-1"}}, nil)
	insights.EXPECT().List(gomock.Any(), domain.InsightType(""), DefaultInsightLimit).Return(nil, nil)

	got, err := svc.ListInsights(context.Background(), "alert", 500)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListInsights(context.Background(), "", 0)
	require.NoError(t, err)
}

func TestInsightService_ListInsights_UnknownType(t *testing.T) {
	t.Parallel()
	_, _, svc := newInsightService(t)

	_, err := svc.ListInsights(context.Background(), "gossip", 10)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestInsightService_CreateInsight(t *testing.T) {
	t.Parallel()
	insights, _, svc := newInsightService(t)

	insights.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *domain.Insight) (*domain.Insight, error) {
			assert.Equal(t, domain.InsightRecommendation, in.Type)
			assert.JSONEq(t, `{}`, string(in.Data))
			out := *in
			out.ID = "i-2"
			return &out, nil
		})

	got, err := svc.CreateInsight(context.Background(), ports.CreateInsightInput{Type: "recommendation", Title: "Focus on renewals"})
	require.NoError(t, err)
	assert.Equal(t, "i-2", got.ID)
}

func TestInsightService_CreateInsight_Validation(t *testing.T) {
	t.Parallel()
	_, _, svc := newInsightService(t)

	inputs := []ports.CreateInsightInput{
		{Type: "nope", Title: "x"},
		{Type: "alert", Title: "  "},
		{Type: "alert", Title: "x", Data: json.RawMessage(`{broken`)},
	}
	for _, in := range inputs {
		_, err := svc.CreateInsight(context.Background(), in)
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
	}
}

func TestInsightService_Trends_UsesTwelveMonthWindow(t *testing.T) {
	t.Parallel()
	insights, _, svc := newInsightService(t)

	since := fixedNow.AddDate(0, -12, 0)
	insights.EXPECT().Trends(gomock.Any(), since).Return([]domain.TrendPoint{{OpportunityCount: 4}}, nil)

	got, err := svc.Trends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), got[0].OpportunityCount)
}

func TestInsightService_TopPerformers_LimitsToTen(t *testing.T) {
	t.Parallel()
	insights, _, svc := newInsightService(t)

	insights.EXPECT().TopPerformers(gomock.Any(), TopPerformersLimit).Return([]domain.Performer{{Name: "Ana"}}, nil)

	got, err := svc.TopPerformers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", got[0].Name)
}

func TestInsightService_Forecast_StoreError(t *testing.T) {
	t.Parallel()
	insights, _, svc := newInsightService(t)

	insights.EXPECT().Forecast(gomock.Any()).Return(nil, errors.New("boom"))

	_, err := svc.Forecast(context.Background())
	var ue *domain.UnexpectedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Failed to fetch forecast insights", ue.Message)
}

func TestInsightService_Dashboard(t *testing.T) {
	t.Parallel()
	insights, sales, svc := newInsightService(t)

	stats := &domain.SalesStats{TotalOpportunities: 10}
	sales.EXPECT().Stats(gomock.Any()).Return(stats, nil)
	insights.EXPECT().Trends(gomock.Any(), gomock.Any()).Return([]domain.TrendPoint{{OpportunityCount: 2}}, nil)
	insights.EXPECT().Forecast(gomock.Any()).Return([]domain.ForecastBucket{{Stage: "Proposal"}}, nil)

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, got.Stats)
	assert.Len(t, got.Trends, 1)
	assert.Len(t, got.Forecast, 1)
}

func TestInsightService_Dashboard_FailsOnFirstError(t *testing.T) {
	t.Parallel()
	insights, sales, svc := newInsightService(t)

	sales.EXPECT().Stats(gomock.Any()).Return(nil, errors.New("stats down"))
	insights.EXPECT().Trends(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	insights.EXPECT().Forecast(gomock.Any()).Return(nil, nil).AnyTimes()

	_, err := svc.Dashboard(context.Background())
	var ue *domain.UnexpectedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Failed to load dashboard", ue.Message)
}
