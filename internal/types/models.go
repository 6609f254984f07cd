package types

import "time"

// SalesRecord is one row of the tidy fact table: a single day, branch and channel.
type SalesRecord struct {
	Date      time.Time `json:"date,omitempty"`
	DateLabel string    `json:"date_label"`
	Branch    string    `json:"branch"`
	Channel   string    `json:"channel"`
	Sales     float64   `json:"sales"`
}

// HasDate reports whether the date cell could be parsed into a calendar date.
func (r SalesRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// PlanMap holds monthly targets keyed by branch.
type PlanMap map[string]float64

// BranchStock is stock on hand for one branch.
type BranchStock struct {
	Total     float64            `json:"total"`
	ByChannel map[string]float64 `json:"by_channel"`
}

// StockMap holds stock on hand keyed by branch.
type StockMap map[string]BranchStock

// SheetSet names the sheets the loader picked for each role. Empty means not found.
type SheetSet struct {
	Fact  string `json:"fact"`
	Plan  string `json:"plan,omitempty"`
	Stock string `json:"stock,omitempty"`
}
