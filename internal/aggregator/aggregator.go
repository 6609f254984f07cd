package aggregator

import (
	"sort"
	"time"

	"salespro-go/internal/types"
)

type Insight struct {
	Total     float64            `json:"total"`
	ByChannel map[string]float64 `json:"by_channel"`
	ByBranch  map[string]float64 `json:"by_branch"`
	Trend     []types.DailyPoint `json:"trend"`
	// Days is the number of distinct date labels.
	Days int `json:"days"`
	// LastDate is the latest parsed date, zero when no date cell parsed.
	LastDate time.Time `json:"last_date,omitempty"`
	// MonthTotal and MonthByChannel only count dated records in LastDate's month.
	MonthTotal     float64            `json:"month_total"`
	MonthByChannel map[string]float64 `json:"month_by_channel"`
}

func Aggregate(records []types.SalesRecord) Insight {
	ins := Insight{
		ByChannel:      map[string]float64{},
		ByBranch:       map[string]float64{},
		MonthByChannel: map[string]float64{},
	}
	daily := map[string]*types.DailyPoint{}
	for _, r := range records {
		ins.Total += r.Sales
		ins.ByChannel[r.Channel] += r.Sales
		ins.ByBranch[r.Branch] += r.Sales

		p, ok := daily[r.DateLabel]
		if !ok {
			p = &types.DailyPoint{Date: r.Date, Label: r.DateLabel}
			daily[r.DateLabel] = p
		}
		p.Sales += r.Sales

		if r.HasDate() && r.Date.After(ins.LastDate) {
			ins.LastDate = r.Date
		}
	}

	for _, r := range records {
		if r.HasDate() && sameMonth(r.Date, ins.LastDate) {
			ins.MonthTotal += r.Sales
			ins.MonthByChannel[r.Channel] += r.Sales
		}
	}

	ins.Trend = make([]types.DailyPoint, 0, len(daily))
	for _, p := range daily {
		ins.Trend = append(ins.Trend, *p)
	}
	sort.Slice(ins.Trend, func(i, j int) bool {
		a, b := ins.Trend[i], ins.Trend[j]
		switch {
		case !a.Date.IsZero() && !b.Date.IsZero() && !a.Date.Equal(b.Date):
			return a.Date.Before(b.Date)
		case a.Date.IsZero() != b.Date.IsZero():
			// dated points first
			return !a.Date.IsZero()
		default:
			return a.Label < b.Label
		}
	})
	ins.Days = len(ins.Trend)
	return ins
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// ChannelShares orders channels by sales, largest first, with each channel's
// fraction of the total.
func ChannelShares(ins Insight) []types.ChannelShare {
	out := make([]types.ChannelShare, 0, len(ins.ByChannel))
	for ch, v := range ins.ByChannel {
		share := 0.0
		if ins.Total > 0 {
			share = v / ins.Total
		}
		out = append(out, types.ChannelShare{Channel: ch, Sales: v, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}
