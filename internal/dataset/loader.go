package dataset

import (
	"errors"
	"fmt"
	"sort"

	"salespro-go/internal/config"
	"salespro-go/internal/logger"
	"salespro-go/internal/types"
)

var ErrNoData = errors.New("no sales records in fact sheet")

// Dataset is a parsed upload: the tidy fact table plus plans and stock.
type Dataset struct {
	Records []types.SalesRecord `json:"-"`
	Plans   types.PlanMap       `json:"plans"`
	Stock   types.StockMap      `json:"stock,omitempty"`
	Sheets  types.SheetSet      `json:"sheets"`
	Skipped int                 `json:"skipped_cells"`
}

// Load detects the sheet roles and parses every sheet that was found.
func Load(wb *Workbook, layout config.LayoutConfig) (*Dataset, error) {
	log := logger.Component("dataset.loader")

	sheets, err := DetectSheets(wb, layout)
	if err != nil {
		return nil, err
	}
	log.WithField("fact", sheets.Fact).WithField("plan", sheets.Plan).WithField("stock", sheets.Stock).
		Info("detected sheets")

	factSheet, _ := wb.Sheet(sheets.Fact)
	fact, err := ParseFact(factSheet, layout)
	if err != nil {
		return nil, fmt.Errorf("fact sheet %q: %w", sheets.Fact, err)
	}
	if len(fact.Records) == 0 {
		return nil, ErrNoData
	}

	ds := &Dataset{
		Records: fact.Records,
		Plans:   types.PlanMap{},
		Stock:   types.StockMap{},
		Sheets:  sheets,
		Skipped: fact.Skipped,
	}
	if sheets.Plan != "" {
		s, _ := wb.Sheet(sheets.Plan)
		ds.Plans = ParsePlan(s, layout)
	}
	if sheets.Stock != "" {
		s, _ := wb.Sheet(sheets.Stock)
		ds.Stock = ParseStock(s, layout)
	}

	log.WithField("records", len(ds.Records)).
		WithField("branches", len(ds.Branches())).
		WithField("plans", len(ds.Plans)).
		WithField("skipped_cells", ds.Skipped).
		Info("dataset parsed")
	return ds, nil
}

// Branches lists the distinct branches of the fact table, sorted.
func (d *Dataset) Branches() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range d.Records {
		if !seen[r.Branch] {
			seen[r.Branch] = true
			out = append(out, r.Branch)
		}
	}
	sort.Strings(out)
	return out
}

// HasBranch reports whether branch appears in the fact table.
func (d *Dataset) HasBranch(branch string) bool {
	for _, r := range d.Records {
		if r.Branch == branch {
			return true
		}
	}
	return false
}

// BranchRecords filters the fact table down to one branch.
func (d *Dataset) BranchRecords(branch string) []types.SalesRecord {
	var out []types.SalesRecord
	for _, r := range d.Records {
		if r.Branch == branch {
			out = append(out, r)
		}
	}
	return out
}
