package models

// ScoreBreakdown itemizes how a match score was earned. Components are
// already weighted; Total is their rounded, clamped sum.
type ScoreBreakdown struct {
	Price    float64 `json:"price"`
	Location float64 `json:"location"`
	Size     float64 `json:"size"`
	Type     float64 `json:"type"`
	Total    int     `json:"total"`
}

// ScoredProperty is a listing paired with its fit against a demand.
type ScoredProperty struct {
	Property  Property       `json:"property"`
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// MatchResult is the ranked output for one demand.
type MatchResult struct {
	DemandID string           `json:"demand_id"`
	Matches  []ScoredProperty `json:"matches"`
	Total    int              `json:"total"`
}
