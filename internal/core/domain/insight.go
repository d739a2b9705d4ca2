package domain

import (
	"encoding/json"
	"time"
)

// InsightType is the category of a published insight.
type InsightType string

const (
	InsightTrend          InsightType = "trend"
	InsightForecast       InsightType = "forecast"
	InsightRecommendation InsightType = "recommendation"
	InsightAlert          InsightType = "alert"
)

func (t InsightType) Valid() bool {
	switch t {
	case InsightTrend, InsightForecast, InsightRecommendation, InsightAlert:
		return true
	}
	return false
}

// Insight is a stored, human-authored observation about the pipeline.
type Insight struct {
	ID          string          `json:"id"`
	Type        InsightType     `json:"insight_type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TrendPoint aggregates opportunities closing in one calendar month.
type TrendPoint struct {
	Month            time.Time `json:"month"`
	OpportunityCount int64     `json:"opportunity_count"`
	TotalValue       float64   `json:"total_value"`
	AvgProbability   float64   `json:"avg_probability"`
}

// ForecastBucket aggregates the open pipeline for one stage. WeightedValue is
// the sum of amount * probability / 100.
type ForecastBucket struct {
	Stage         string  `json:"stage"`
	Count         int64   `json:"count"`
	TotalValue    float64 `json:"total_value"`
	WeightedValue float64 `json:"weighted_value"`
}

// Performer ranks a salesman by the value of the deals they own.
type Performer struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	DealsCount int64   `json:"deals_count"`
	TotalValue float64 `json:"total_value"`
	WonCount   int64   `json:"won_count"`
}
