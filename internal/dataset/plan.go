package dataset

import (
	"salespro-go/internal/config"
	"salespro-go/internal/types"
)

// ParsePlan reads monthly targets: row 0 branches, row 1 channels, row 2 values.
// Only total columns count; a later total column of the same branch wins.
func ParsePlan(sheet *Sheet, layout config.LayoutConfig) types.PlanMap {
	plans := types.PlanMap{}
	if sheet == nil || len(sheet.Rows) < 3 {
		return plans
	}
	total := normalize(layout.TotalLabel)
	values := sheet.Row(2)
	for _, c := range DecodeHeader(sheet.Row(0), sheet.Row(1), layout.FirstValueCol, layout.BranchMarker, layout.UnknownBranch) {
		if normalize(c.Channel) != total {
			continue
		}
		raw := cellAt(values, c.Index)
		if raw == "" {
			continue
		}
		if v, ok := ParseNumber(raw); ok {
			plans[c.Branch] = v
		}
	}
	return plans
}
