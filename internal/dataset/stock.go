package dataset

import (
	"salespro-go/internal/config"
	"salespro-go/internal/types"
)

// ParseStock reads stock on hand laid out like the plan sheet. Channel columns are
// kept per channel; the total column gives the branch total, otherwise the channel
// stocks are summed.
func ParseStock(sheet *Sheet, layout config.LayoutConfig) types.StockMap {
	stock := types.StockMap{}
	if sheet == nil || len(sheet.Rows) < 3 {
		return stock
	}
	allowed := channelSet(layout.Channels)
	total := normalize(layout.TotalLabel)
	values := sheet.Row(2)
	hasTotal := map[string]bool{}

	for _, c := range DecodeHeader(sheet.Row(0), sheet.Row(1), layout.FirstValueCol, layout.BranchMarker, layout.UnknownBranch) {
		ch := normalize(c.Channel)
		if ch != total && !allowed[ch] {
			continue
		}
		raw := cellAt(values, c.Index)
		if raw == "" {
			continue
		}
		v, ok := ParseNumber(raw)
		if !ok {
			continue
		}
		bs, found := stock[c.Branch]
		if !found {
			bs = types.BranchStock{ByChannel: map[string]float64{}}
		}
		if ch == total {
			bs.Total = v
			hasTotal[c.Branch] = true
		} else {
			bs.ByChannel[Capitalize(c.Channel)] += v
		}
		stock[c.Branch] = bs
	}

	for branch, bs := range stock {
		if hasTotal[branch] {
			continue
		}
		sum := 0.0
		for _, v := range bs.ByChannel {
			sum += v
		}
		bs.Total = sum
		stock[branch] = bs
	}
	return stock
}
