// Package report renders a branch report as Markdown, HTML or a terminal view.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"salespro-go/internal/actionable"
	"salespro-go/internal/types"
)

// Page is everything one rendered branch report shows.
type Page struct {
	Report      types.BranchReport
	Actions     []actionable.ActionCard
	Advice      string // markdown from the advisor
	AdviceError string
	Provider    string
	Generated   time.Time
}

// md renders advisor markdown; raw HTML in the answer is dropped.
var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts markdown to HTML safe to embed in a page.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func num(v float64) string {
	return humanize.FormatFloat("#,###.", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func channelName(c string) string {
	if c == "" {
		return "Итого"
	}
	return c
}

// Markdown renders the whole page as a Markdown document.
func Markdown(p Page) string {
	r := p.Report
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Branch)
	if r.LastDate != "" {
		fmt.Fprintf(&b, "Данные по %s.\n\n", r.LastDate)
	}

	b.WriteString("## Выполнение плана\n\n")
	b.WriteString("| Показатель | Значение |\n|---|---|\n")
	fmt.Fprintf(&b, "| План | %s %s |\n", num(r.Progress.Plan), r.Unit)
	fmt.Fprintf(&b, "| Факт | %s %s |\n", num(r.Progress.Fact), r.Unit)
	fmt.Fprintf(&b, "| Отклонение | %s %s |\n", num(r.Progress.Delta), r.Unit)
	fmt.Fprintf(&b, "| Выполнение | %s |\n", pct(r.Progress.Percent))
	fmt.Fprintf(&b, "| Прогноз на конец месяца | %s %s (%s) |\n", num(r.Forecast.MonthEnd), r.Unit, pct(r.Forecast.Percent))
	fmt.Fprintf(&b, "| Статус | %s |\n\n", types.ExecutionTitles[r.Execution])

	if len(r.Channels) > 0 {
		b.WriteString("## Каналы\n\n| Канал | Продажи | Доля |\n|---|---|---|\n")
		for _, c := range r.Channels {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Channel, num(c.Sales), pct(c.Share*100))
		}
		b.WriteString("\n")
	}

	if len(r.Inventory) > 0 {
		b.WriteString("## Остатки\n\n| Канал | Остаток | Запас, дн. | Оборачиваемость | Статус |\n|---|---|---|---|---|\n")
		for _, h := range r.Inventory {
			fmt.Fprintf(&b, "| %s | %s | %.1f | %.2f | %s |\n",
				channelName(h.Channel), num(h.Stock), h.DaysOfStock, h.TurnoverIndex, types.StockStatusTitles[h.Status])
		}
		b.WriteString("\n")
	}

	if len(p.Actions) > 0 {
		b.WriteString("## Действия\n\n")
		for _, c := range p.Actions {
			fmt.Fprintf(&b, "- **%s.** %s _(%s)_\n", c.Insight, c.Action, c.Impact)
		}
		b.WriteString("\n")
	}

	switch {
	case p.Advice != "":
		b.WriteString("## Рекомендации\n\n")
		b.WriteString(strings.TrimSpace(p.Advice))
		b.WriteString("\n")
	case p.AdviceError != "":
		fmt.Fprintf(&b, "## Рекомендации\n\nНе удалось получить ответ: %s\n", p.AdviceError)
	}
	return b.String()
}
