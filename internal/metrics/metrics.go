// Package metrics turns aggregated sales into the dashboard KPIs: plan progress,
// a linear month-end forecast, an execution status and inventory health.
package metrics

import (
	"errors"
	"sort"
	"time"

	"salespro-go/internal/aggregator"
	"salespro-go/internal/config"
	"salespro-go/internal/dataset"
	"salespro-go/internal/types"
)

var ErrUnknownBranch = errors.New("unknown branch")

const (
	PlanFromSheet = "sheet"
	PlanManual    = "manual"
	PlanDefault   = "default"
)

const (
	MethodCalendar     = "calendar"
	MethodObservedDays = "observed_days"
)

// PlanProgress compares the actual total with the plan. Percent is 0 without a plan.
func PlanProgress(plan, fact float64) types.Progress {
	p := types.Progress{Plan: plan, Fact: fact, Delta: fact - plan}
	if plan > 0 {
		p.Percent = fact / plan * 100
	}
	return p
}

// Forecast extrapolates average daily sales to the whole month. With a parsed
// date only the sales of that date's month count, the elapsed days are its day
// of month and the month length is taken from the calendar. Otherwise all sales
// are spread over the distinct date labels and the month is defaultMonthDays long.
func Forecast(ins aggregator.Insight, plan float64, defaultMonthDays int) types.Forecast {
	f := types.Forecast{Method: MethodObservedDays, DaysElapsed: ins.Days, DaysInMonth: defaultMonthDays}
	sales := ins.Total
	if !ins.LastDate.IsZero() {
		f.Method = MethodCalendar
		f.DaysElapsed = ins.LastDate.Day()
		f.DaysInMonth = daysIn(ins.LastDate)
		sales = ins.MonthTotal
	}
	if f.DaysElapsed > 0 {
		f.AvgDaily = sales / float64(f.DaysElapsed)
		f.MonthEnd = f.AvgDaily * float64(f.DaysInMonth)
	}
	if plan > 0 {
		f.Percent = f.MonthEnd / plan * 100
	}
	return f
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Execution labels the forecast completion against the configured bands.
func Execution(f types.Forecast, plan float64, m config.MetricsConfig) string {
	switch {
	case plan <= 0:
		return types.ExecutionUnknown
	case f.Percent < m.DangerPercent:
		return types.ExecutionDanger
	case f.Percent < m.ExcellentPercent:
		return types.ExecutionNormal
	default:
		return types.ExecutionExcellent
	}
}

// Classify labels one stock position. avgDaily is sales per day, monthEnd the
// forecast sales for the month.
func Classify(stock, avgDaily, monthEnd float64, m config.MetricsConfig) types.StockHealth {
	h := types.StockHealth{Stock: stock, AvgDaily: avgDaily}
	if avgDaily > 0 {
		h.DaysOfStock = stock / avgDaily
	}
	if stock > 0 {
		h.TurnoverIndex = monthEnd / stock
	}
	switch {
	case stock <= 0:
		h.Status = types.StockShortage
	case avgDaily <= 0:
		// no sales: days of stock stays 0 rather than infinite
		h.Status = types.StockDead
	case h.DaysOfStock < m.ShortageDays:
		h.Status = types.StockShortage
	case h.DaysOfStock > m.OverstockDays || h.TurnoverIndex < m.MinTurnover:
		h.Status = types.StockOverstock
	default:
		h.Status = types.StockNormal
	}
	return h
}

// InventoryHealth classifies every stocked channel of a branch and the branch
// total (Channel ""), in that order. Channels are sorted by name.
func InventoryHealth(stock types.BranchStock, ins aggregator.Insight, f types.Forecast, m config.MetricsConfig) []types.StockHealth {
	channels := make([]string, 0, len(stock.ByChannel))
	for ch := range stock.ByChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	out := make([]types.StockHealth, 0, len(channels)+1)
	for _, ch := range channels {
		sales := ins.ByChannel[ch]
		if f.Method == MethodCalendar {
			sales = ins.MonthByChannel[ch]
		}
		avg, monthEnd := rate(sales, f)
		h := Classify(stock.ByChannel[ch], avg, monthEnd, m)
		h.Channel = ch
		out = append(out, h)
	}
	out = append(out, Classify(stock.Total, f.AvgDaily, f.MonthEnd, m))
	return out
}

func rate(sales float64, f types.Forecast) (avgDaily, monthEnd float64) {
	if f.DaysElapsed <= 0 {
		return 0, 0
	}
	avgDaily = sales / float64(f.DaysElapsed)
	return avgDaily, avgDaily * float64(f.DaysInMonth)
}

// ResolvePlan picks the branch plan: the plan sheet first, then a manual
// override, then the configured default.
func ResolvePlan(plans types.PlanMap, branch string, override, def float64) (float64, string) {
	if v := plans[branch]; v > 0 {
		return v, PlanFromSheet
	}
	if override > 0 {
		return override, PlanManual
	}
	return def, PlanDefault
}

// BranchKPI assembles the full dashboard report for one branch.
func BranchKPI(ds *dataset.Dataset, branch string, planOverride float64, cfg *config.Config) (types.BranchReport, error) {
	if !ds.HasBranch(branch) {
		return types.BranchReport{}, ErrUnknownBranch
	}
	ins := aggregator.Aggregate(ds.BranchRecords(branch))
	plan, source := ResolvePlan(ds.Plans, branch, planOverride, cfg.Metrics.DefaultPlan)

	// a monthly plan is compared with the latest month only
	fact := ins.Total
	if !ins.LastDate.IsZero() {
		fact = ins.MonthTotal
	}
	progress := PlanProgress(plan, fact)
	progress.PlanSource = source
	forecast := Forecast(ins, plan, cfg.Metrics.DefaultMonthDays)

	rep := types.BranchReport{
		Branch:    branch,
		Unit:      cfg.Metrics.Unit,
		Progress:  progress,
		Forecast:  forecast,
		Execution: Execution(forecast, plan, cfg.Metrics),
		Channels:  aggregator.ChannelShares(ins),
		Trend:     ins.Trend,
	}
	if !ins.LastDate.IsZero() {
		rep.LastDate = ins.LastDate.Format("2006-01-02")
	}
	if stock, ok := ds.Stock[branch]; ok {
		rep.Inventory = InventoryHealth(stock, ins, forecast, cfg.Metrics)
	}
	return rep, nil
}
