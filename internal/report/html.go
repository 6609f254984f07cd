package report

import (
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"

	"salespro-go/internal/charts"
	"salespro-go/internal/logger"
	"salespro-go/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"num":     num,
	"pct":     pct,
	"share":   func(v float64) string { return pct(v * 100) },
	"channel": channelName,
	"stock":   func(s string) string { return types.StockStatusTitles[s] },
	"exec":    func(s string) string { return types.ExecutionTitles[s] },
}).ParseFS(templateFS, "templates/*.tmpl"))

type htmlView struct {
	Page
	TrendImg   template.URL
	ChannelImg template.URL
	AdviceHTML template.HTML
}

// HTML writes a standalone page with the charts inlined as data URIs.
func HTML(w io.Writer, p Page) error {
	log := logger.Component("report")
	v := htmlView{Page: p}

	var err error
	if v.TrendImg, err = dataURI(charts.Trend(p.Report.Trend, charts.PNG)); err != nil {
		log.WithError(err).Warn("trend chart skipped")
	}
	if v.ChannelImg, err = dataURI(charts.ChannelPie(p.Report.Channels, charts.PNG)); err != nil {
		log.WithError(err).Warn("channel chart skipped")
	}
	if p.Advice != "" {
		if v.AdviceHTML, err = RenderMarkdown(p.Advice); err != nil {
			return err
		}
	}

	if err := pageTmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render report page: %w", err)
	}
	return nil
}

func dataURI(img []byte, err error) (template.URL, error) {
	if errors.Is(err, charts.ErrNoData) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img)), nil
}
