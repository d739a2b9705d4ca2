package handler

import (
	"encoding/json"
	"time"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// dateLayout is the wire format for close_date and the list date filters.
const dateLayout = "2006-01-02"

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin salesman manager"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type meResponse struct {
	User domain.Identity `json:"user"`
}

// --- Sales ---

type createSalesRequest struct {
	OpportunityID   string  `json:"opportunity_id"`
	AccountName     string  `json:"account_name" validate:"required"`
	OpportunityName string  `json:"opportunity_name" validate:"required"`
	Stage           string  `json:"stage" validate:"required"`
	Amount          float64 `json:"amount" validate:"gte=0"`
	CloseDate       string  `json:"close_date" validate:"omitempty,datetime=2006-01-02"`
	Probability     int     `json:"probability" validate:"gte=0,lte=100"`
}

type salesRecordResponse struct {
	ID              string    `json:"id"`
	OpportunityID   string    `json:"opportunity_id"`
	AccountName     string    `json:"account_name"`
	OpportunityName string    `json:"opportunity_name"`
	Stage           string    `json:"stage"`
	Amount          float64   `json:"amount"`
	CloseDate       *string   `json:"close_date"`
	Probability     int       `json:"probability"`
	OwnerID         string    `json:"owner_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type salesListResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Data    []salesRecordResponse `json:"data"`
}

type salesRecordEnvelope struct {
	Success bool                `json:"success"`
	Data    salesRecordResponse `json:"data"`
}

type salesStatsResponse struct {
	Success bool               `json:"success"`
	Stats   *domain.SalesStats `json:"stats"`
}

// --- Insights ---

type createInsightRequest struct {
	InsightType string          `json:"insight_type" validate:"required,oneof=trend forecast recommendation alert"`
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data" swaggertype:"object"`
}

type insightListResponse struct {
	Success bool              `json:"success"`
	Count   int               `json:"count"`
	Data    []*domain.Insight `json:"data"`
}

type insightEnvelope struct {
	Success bool            `json:"success"`
	Data    *domain.Insight `json:"data"`
}

type trendPointResponse struct {
	Month            string  `json:"month"`
	OpportunityCount int64   `json:"opportunity_count"`
	TotalValue       float64 `json:"total_value"`
	AvgProbability   float64 `json:"avg_probability"`
}

type trendsResponse struct {
	Success     bool                 `json:"success"`
	InsightType domain.InsightType   `json:"insight_type"`
	Data        []trendPointResponse `json:"data"`
}

type forecastResponse struct {
	Success     bool                    `json:"success"`
	InsightType domain.InsightType      `json:"insight_type"`
	Data        []domain.ForecastBucket `json:"data"`
}

type performersResponse struct {
	Success     bool               `json:"success"`
	InsightType domain.InsightType `json:"insight_type"`
	Data        []domain.Performer `json:"data"`
}

type dashboardResponse struct {
	Success  bool                    `json:"success"`
	Stats    *domain.SalesStats      `json:"stats"`
	Trends   []trendPointResponse    `json:"trends"`
	Forecast []domain.ForecastBucket `json:"forecast"`
}

// --- Health ---

type livenessResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}
