package domain

import "time"

// Pipeline stages used by the aggregates. Other stage names are accepted as
// free text and counted as open.
const (
	StageProspecting   = "Prospecting"
	StageQualification = "Qualification"
	StageProposal      = "Proposal"
	StageNegotiation   = "Negotiation"
	StageClosedWon     = "Closed Won"
	StageClosedLost    = "Closed Lost"
)

// StageOther is the label reported for stages outside the known pipeline.
const StageOther = "other"

var knownStages = map[string]struct{}{
	StageProspecting:   {},
	StageQualification: {},
	StageProposal:      {},
	StageNegotiation:   {},
	StageClosedWon:     {},
	StageClosedLost:    {},
}

// StageLabel returns stage when it is one of the known pipeline stages and
// StageOther otherwise. Use it wherever a stage ends up in a bounded set such
// as a metric label.
func StageLabel(stage string) string {
	if _, ok := knownStages[stage]; ok {
		return stage
	}
	return StageOther
}

// SalesRecord is a single sales opportunity.
type SalesRecord struct {
	ID              string     `json:"id"`
	OpportunityID   string     `json:"opportunity_id"`
	AccountName     string     `json:"account_name"`
	OpportunityName string     `json:"opportunity_name"`
	Stage           string     `json:"stage"`
	Amount          float64    `json:"amount"`
	CloseDate       *time.Time `json:"close_date"`
	Probability     int        `json:"probability"`
	OwnerID         string     `json:"owner_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SalesStats is the whole-table summary shown on the dashboard cards.
type SalesStats struct {
	TotalOpportunities int64   `json:"total_opportunities"`
	TotalValue         float64 `json:"total_value"`
	AvgDealSize        float64 `json:"avg_deal_size"`
	AvgProbability     float64 `json:"avg_probability"`
	WonCount           int64   `json:"won_count"`
	LostCount          int64   `json:"lost_count"`
}
