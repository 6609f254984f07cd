package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"salespro-go/internal/types"
)

var (
	colorDanger    = lipgloss.Color("#e53935")
	colorNormal    = lipgloss.Color("#2196F3")
	colorExcellent = lipgloss.Color("#8BC34A")
	colorWarning   = lipgloss.Color("#FFC107")
	colorMuted     = lipgloss.Color("#8a94a6")

	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1).
			Width(20)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle = lipgloss.NewStyle().Bold(true)
)

func executionColor(status string) lipgloss.Color {
	switch status {
	case types.ExecutionDanger:
		return colorDanger
	case types.ExecutionExcellent:
		return colorExcellent
	case types.ExecutionNormal:
		return colorNormal
	}
	return colorMuted
}

func stockColor(status string) lipgloss.Color {
	switch status {
	case types.StockShortage, types.StockDead:
		return colorDanger
	case types.StockOverstock:
		return colorWarning
	}
	return colorExcellent
}

func card(label, value, note string) string {
	body := labelStyle.Render(label) + "\n" + valueStyle.Render(value)
	if note != "" {
		body += "\n" + note
	}
	return cardStyle.Render(body)
}

// Terminal renders KPI cards, channel and stock tables and the action list
// for a terminal.
func Terminal(p Page) string {
	r := p.Report
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.Branch))
	b.WriteString("\n")

	status := lipgloss.NewStyle().Bold(true).Foreground(executionColor(r.Execution)).Render(types.ExecutionTitles[r.Execution])
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("План", num(r.Progress.Plan)+" "+r.Unit, labelStyle.Render(r.Progress.PlanSource)),
		card("Факт", num(r.Progress.Fact)+" "+r.Unit, pct(r.Progress.Percent)),
		card("Отклонение", num(r.Progress.Delta)+" "+r.Unit, ""),
		card("Прогноз", num(r.Forecast.MonthEnd)+" "+r.Unit, pct(r.Forecast.Percent)),
		card("Статус", status, ""),
	))
	b.WriteString("\n\n")

	for _, c := range r.Channels {
		fmt.Fprintf(&b, "%-12s %14s  %s\n", c.Channel, num(c.Sales), pct(c.Share*100))
	}

	if len(r.Inventory) > 0 {
		b.WriteString("\n")
		for _, h := range r.Inventory {
			st := lipgloss.NewStyle().Foreground(stockColor(h.Status)).Render(types.StockStatusTitles[h.Status])
			fmt.Fprintf(&b, "%-12s %14s  %6.1f дн.  %s\n", channelName(h.Channel), num(h.Stock), h.DaysOfStock, st)
		}
	}

	if len(p.Actions) > 0 {
		b.WriteString("\n")
		for i, c := range p.Actions {
			fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, valueStyle.Render(c.Insight), c.Action)
		}
	}
	return b.String()
}
