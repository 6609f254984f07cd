package advisor

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"salespro-go/internal/types"
)

func num(v float64) string {
	return humanize.FormatFloat("#,###.", v)
}

// BuildPrompt renders the branch figures into the analyst prompt.
func BuildPrompt(r types.BranchReport) string {
	var channels []string
	for _, c := range r.Channels {
		channels = append(channels, fmt.Sprintf("%s: %s (%.1f%%)", c.Channel, num(c.Sales), c.Share*100))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Роль: старший бизнес-аналитик. Объект: %s.\n\n", r.Branch)
	b.WriteString("ВХОДНЫЕ ДАННЫЕ:\n")
	fmt.Fprintf(&b, "- План на месяц: %s %s\n", num(r.Progress.Plan), r.Unit)
	fmt.Fprintf(&b, "- Факт продаж: %s %s (выполнение: %.1f%%)\n", num(r.Progress.Fact), r.Unit, r.Progress.Percent)
	fmt.Fprintf(&b, "- Прогноз на конец месяца: %s %s (%.1f%% плана, день %d из %d)\n",
		num(r.Forecast.MonthEnd), r.Unit, r.Forecast.Percent, r.Forecast.DaysElapsed, r.Forecast.DaysInMonth)
	fmt.Fprintf(&b, "- Структура по каналам: %s\n", strings.Join(channels, "; "))
	if len(r.Inventory) > 0 {
		b.WriteString("- Складские остатки:\n")
		for _, h := range r.Inventory {
			name := h.Channel
			if name == "" {
				name = "Итого"
			}
			fmt.Fprintf(&b, "  - %s: остаток %s, запас %.1f дн., оборачиваемость %.2f, статус: %s\n",
				name, num(h.Stock), h.DaysOfStock, h.TurnoverIndex, types.StockStatusTitles[h.Status])
		}
	}
	b.WriteString(`
ЗАДАЧА:
Напиши стратегический отчёт в формате Markdown.
1. Статус выполнения (Опасно/Норма/Отлично).
2. Проблемная зона: какой канал тянет вниз, где риск по остаткам.
3. Три конкретных действия для менеджера, чтобы закрыть план.
Будь краток и конкретен, не придумывай цифры, которых нет во входных данных.
`)
	return b.String()
}
