package handler

import (
	"time"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	}
}

// toCreateSalesInput assumes req passed validation, so CloseDate is either
// empty or a valid date.
func toCreateSalesInput(req createSalesRequest, ownerID string) ports.CreateSalesInput {
	in := ports.CreateSalesInput{
		OpportunityID:   req.OpportunityID,
		AccountName:     req.AccountName,
		OpportunityName: req.OpportunityName,
		Stage:           req.Stage,
		Amount:          req.Amount,
		Probability:     req.Probability,
		OwnerID:         ownerID,
	}
	if req.CloseDate != "" {
		if d, err := time.Parse(dateLayout, req.CloseDate); err == nil {
			in.CloseDate = &d
		}
	}
	return in
}

func toCreateInsightInput(req createInsightRequest) ports.CreateInsightInput {
	return ports.CreateInsightInput{
		Type:        req.InsightType,
		Title:       req.Title,
		Description: req.Description,
		Data:        req.Data,
	}
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{Token: res.Token, User: toUserResponse(res.User)}
}

func toSalesRecordResponse(r *domain.SalesRecord) salesRecordResponse {
	resp := salesRecordResponse{
		ID:              r.ID,
		OpportunityID:   r.OpportunityID,
		AccountName:     r.AccountName,
		OpportunityName: r.OpportunityName,
		Stage:           r.Stage,
		Amount:          r.Amount,
		Probability:     r.Probability,
		OwnerID:         r.OwnerID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.CloseDate != nil {
		s := r.CloseDate.Format(dateLayout)
		resp.CloseDate = &s
	}
	return resp
}

func toSalesRecordResponses(records []*domain.SalesRecord) []salesRecordResponse {
	out := make([]salesRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toSalesRecordResponse(r))
	}
	return out
}

func toTrendResponses(points []domain.TrendPoint) []trendPointResponse {
	out := make([]trendPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointResponse{
			Month:            p.Month.Format("2006-01"),
			OpportunityCount: p.OpportunityCount,
			TotalValue:       p.TotalValue,
			AvgProbability:   p.AvgProbability,
		})
	}
	return out
}

// nonNil keeps empty result sets rendering as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
