package dataset

import (
	"errors"
	"strings"

	"salespro-go/internal/config"
	"salespro-go/internal/types"
)

var ErrNoFactSheet = errors.New("no fact sheet found")

// DetectSheets picks the plan, stock and fact sheets by tab name. The plan and
// stock sheets are the first whose name contains one of the configured keywords;
// the fact sheet is the first remaining one, falling back to the first tab.
func DetectSheets(wb *Workbook, layout config.LayoutConfig) (types.SheetSet, error) {
	var set types.SheetSet
	if wb == nil || len(wb.Sheets) == 0 {
		return set, ErrNoFactSheet
	}
	for _, s := range wb.Sheets {
		name := strings.ToLower(s.Name)
		switch {
		case set.Plan == "" && containsAny(name, layout.PlanKeywords):
			set.Plan = s.Name
		case set.Stock == "" && containsAny(name, layout.StockKeywords):
			set.Stock = s.Name
		}
	}
	for _, s := range wb.Sheets {
		if s.Name != set.Plan && s.Name != set.Stock {
			set.Fact = s.Name
			break
		}
	}
	if set.Fact == "" {
		set.Fact = wb.Sheets[0].Name
	}
	return set, nil
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
