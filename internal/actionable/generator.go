package actionable

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"salespro-go/internal/types"
)

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Generate derives rule-based cards from a branch report: one for plan
// execution, one for the weakest channel and one per problematic stock line.
func Generate(r types.BranchReport) []ActionCard {
	cards := []ActionCard{execution(r)}

	if weak := r.WeakestChannel(); weak != "" && len(r.Channels) > 1 {
		share := 0.0
		for _, c := range r.Channels {
			if c.Channel == weak {
				share = c.Share
			}
		}
		if share < 0.2 {
			cards = append(cards, ActionCard{
				Insight: fmt.Sprintf("Канал «%s» даёт только %.0f%% продаж", weak, share*100),
				Action:  "Проверить ассортимент и активность торговых представителей в канале, запустить промо",
				Impact:  "Выравнивание структуры продаж",
			})
		}
	}

	for _, h := range r.Inventory {
		name := h.Channel
		if name == "" {
			name = "филиал в целом"
		}
		switch h.Status {
		case types.StockShortage:
			cards = append(cards, ActionCard{
				Insight: fmt.Sprintf("Дефицит: %s, запаса на %.1f дн.", name, h.DaysOfStock),
				Action:  "Срочно пополнить остатки, приоритизировать отгрузки",
				Impact:  "Предотвращение упущенных продаж",
			})
		case types.StockOverstock:
			cards = append(cards, ActionCard{
				Insight: fmt.Sprintf("Затоваривание: %s, оборачиваемость %.2f", name, h.TurnoverIndex),
				Action:  "Приостановить закупки, стимулировать отгрузки скидками",
				Impact:  "Высвобождение оборотного капитала",
			})
		case types.StockDead:
			cards = append(cards, ActionCard{
				Insight: fmt.Sprintf("Нет движения: %s, остаток %s", name, humanize.FormatFloat("#,###.", h.Stock)),
				Action:  "Проверить ликвидность остатка, рассмотреть перераспределение",
				Impact:  "Снижение риска списаний",
			})
		}
	}
	return cards
}

func execution(r types.BranchReport) ActionCard {
	gap := r.Progress.Plan - r.Forecast.MonthEnd
	switch r.Execution {
	case types.ExecutionDanger:
		daysLeft := r.Forecast.DaysInMonth - r.Forecast.DaysElapsed
		need := 0.0
		if daysLeft > 0 {
			need = (r.Progress.Plan - r.Progress.Fact) / float64(daysLeft)
		}
		return ActionCard{
			Insight: fmt.Sprintf("Прогноз %.1f%% плана, разрыв %s %s", r.Forecast.Percent, humanize.FormatFloat("#,###.", gap), r.Unit),
			Action:  fmt.Sprintf("Поднять средние дневные продажи до %s %s", humanize.FormatFloat("#,###.", need), r.Unit),
			Impact:  "Закрытие плана месяца",
		}
	case types.ExecutionNormal:
		return ActionCard{
			Insight: fmt.Sprintf("Прогноз %.1f%% плана", r.Forecast.Percent),
			Action:  "Удерживать текущий темп, контролировать слабые каналы",
			Impact:  "Выполнение плана без перегрева",
		}
	case types.ExecutionExcellent:
		return ActionCard{
			Insight: fmt.Sprintf("Прогноз %.1f%% плана", r.Forecast.Percent),
			Action:  "Проверить достаточность остатков под повышенный спрос",
			Impact:  "Перевыполнение плана",
		}
	}
	return ActionCard{
		Insight: "План не задан",
		Action:  "Указать план вручную для оценки выполнения",
		Impact:  "Низкое немедленное влияние",
	}
}
