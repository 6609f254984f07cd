package types

import "time"

// --------------------------------------------
// Plan vs. actual
// --------------------------------------------
type Progress struct {
	Plan       float64 `json:"plan"`
	PlanSource string  `json:"plan_source"` // sheet, manual, default
	Fact       float64 `json:"fact"`
	Delta      float64 `json:"delta"`
	Percent    float64 `json:"percent"`
}

// --------------------------------------------
// Month-end forecast
// --------------------------------------------
type Forecast struct {
	Method      string  `json:"method"` // calendar, observed_days
	DaysElapsed int     `json:"days_elapsed"`
	DaysInMonth int     `json:"days_in_month"`
	AvgDaily    float64 `json:"avg_daily"`
	MonthEnd    float64 `json:"month_end"`
	Percent     float64 `json:"percent_of_plan"`
}

// --------------------------------------------
// Inventory health per channel (Channel == "" is the branch total)
// --------------------------------------------
type StockHealth struct {
	Channel       string  `json:"channel"`
	Stock         float64 `json:"stock"`
	AvgDaily      float64 `json:"avg_daily_sales"`
	DaysOfStock   float64 `json:"days_of_stock"`
	TurnoverIndex float64 `json:"turnover_index"`
	Status        string  `json:"status"`
}

const (
	StockNormal    = "normal"
	StockShortage  = "shortage"
	StockOverstock = "overstock"
	StockDead      = "dead_stock"
)

const (
	ExecutionDanger    = "danger"
	ExecutionNormal    = "normal"
	ExecutionExcellent = "excellent"
	ExecutionUnknown   = "unknown"
)

type DailyPoint struct {
	Date  time.Time `json:"date,omitempty"`
	Label string    `json:"label"`
	Sales float64   `json:"sales"`
}

type ChannelShare struct {
	Channel string  `json:"channel"`
	Sales   float64 `json:"sales"`
	Share   float64 `json:"share"`
}

// --------------------------------------------
// Everything the dashboard shows for one branch
// --------------------------------------------
type BranchReport struct {
	Branch    string         `json:"branch"`
	Unit      string         `json:"unit"`
	Progress  Progress       `json:"progress"`
	Forecast  Forecast       `json:"forecast"`
	Execution string         `json:"execution_status"`
	Channels  []ChannelShare `json:"channels"`
	Trend     []DailyPoint   `json:"trend"`
	Inventory []StockHealth  `json:"inventory,omitempty"`
	LastDate  string         `json:"last_date,omitempty"`
}

// WeakestChannel returns the channel with the smallest sales, or "" without channels.
func (r BranchReport) WeakestChannel() string {
	weakest := ""
	low := 0.0
	for i, c := range r.Channels {
		if i == 0 || c.Sales < low {
			low = c.Sales
			weakest = c.Channel
		}
	}
	return weakest
}

// Russian display names for stock and execution statuses.
var (
	StockStatusTitles = map[string]string{
		StockNormal:    "норма",
		StockShortage:  "дефицит",
		StockOverstock: "затоваривание",
		StockDead:      "нет движения",
	}
	ExecutionTitles = map[string]string{
		ExecutionDanger:    "Опасно",
		ExecutionNormal:    "Норма",
		ExecutionExcellent: "Отлично",
		ExecutionUnknown:   "Нет плана",
	}
)
