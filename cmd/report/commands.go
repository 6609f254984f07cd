package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"salespro-go/internal/advisor"
	"salespro-go/internal/charts"
	"salespro-go/internal/config"
	"salespro-go/internal/dataset"
	"salespro-go/internal/logger"
	"salespro-go/internal/metrics"
	"salespro-go/internal/processor"
	"salespro-go/internal/report"
)

var (
	kpiFormat   string
	outPath     string
	withAdvice  bool
	concurrency int
	chartKind   string
	chartFmt    string
)

var branchesCmd = &cobra.Command{
	Use:   "branches <workbook>",
	Short: "List the branches found in the workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranches,
}

var kpiCmd = &cobra.Command{
	Use:   "kpi <workbook>",
	Short: "Show plan execution, forecast and inventory health",
	Args:  cobra.ExactArgs(1),
	RunE:  runKPI,
}

var adviseCmd = &cobra.Command{
	Use:   "advise <workbook>",
	Short: "Ask the configured language model for recommendations",
	Long: `Ask the configured language model for recommendations.

Without --branch every branch is sent, llm.concurrency requests at a time.
The answers are printed as Markdown reports.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdvise,
}

var htmlCmd = &cobra.Command{
	Use:   "html <workbook>",
	Short: "Write a standalone HTML report for one branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runHTML,
}

var chartCmd = &cobra.Command{
	Use:   "chart <workbook>",
	Short: "Render the trend or channel chart for one branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runChart,
}

func init() {
	kpiCmd.Flags().StringVarP(&kpiFormat, "format", "f", "text", "Output format: text, json or md")
	adviseCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel provider requests (default: llm.concurrency)")
	htmlCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	htmlCmd.Flags().BoolVar(&withAdvice, "ai", false, "Include language-model recommendations")
	chartCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	chartCmd.Flags().StringVar(&chartKind, "kind", "trend", "Chart kind: trend or channels")
	chartCmd.Flags().StringVar(&chartFmt, "format", "png", "Image format: png or svg")
}

// setup loads config, logging and the workbook.
func setup(path string) (*config.Config, *dataset.Dataset, error) {
	if configPath == "" {
		configPath = config.Path()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger.Setup(level, cfg.Environment)
	logger.SetOutput(os.Stderr)

	wb, err := dataset.OpenWorkbook(path)
	if err != nil {
		return nil, nil, err
	}
	ds, err := dataset.Load(wb, cfg.Layout)
	if err != nil {
		return nil, nil, err
	}
	return cfg, ds, nil
}

// newProcessor builds a processor, with the configured advisor when advice is
// requested. A provider without a key is not an error; advice then reports it.
func newProcessor(cfg *config.Config, needAdvice bool) (*processor.Processor, error) {
	if !needAdvice {
		return processor.New(cfg, nil), nil
	}
	adv, err := advisor.New(cfg.LLM)
	if err != nil && !errors.Is(err, advisor.ErrNotConfigured) {
		return nil, err
	}
	return processor.New(cfg, adv), nil
}

// targetBranch returns --branch or the first branch of the workbook.
func targetBranch(ds *dataset.Dataset) string {
	if branchName != "" {
		return branchName
	}
	return ds.Branches()[0]
}

func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outPath == "" || outPath == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func runBranches(cmd *cobra.Command, args []string) error {
	_, ds, err := setup(args[0])
	if err != nil {
		return err
	}
	for _, b := range ds.Branches() {
		fmt.Fprintln(cmd.OutOrStdout(), b)
	}
	return nil
}

func runKPI(cmd *cobra.Command, args []string) error {
	cfg, ds, err := setup(args[0])
	if err != nil {
		return err
	}
	branches := ds.Branches()
	if branchName != "" {
		branches = []string{branchName}
	}

	proc := processor.New(cfg, nil)
	var results []processor.Result
	for _, b := range branches {
		res, err := proc.Analyze(cmd.Context(), ds, b, processor.Options{PlanOverride: planValue})
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	switch kpiFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "md":
		for _, res := range results {
			fmt.Fprintln(cmd.OutOrStdout(), report.Markdown(res.Page()))
		}
	case "text":
		for _, res := range results {
			fmt.Fprintln(cmd.OutOrStdout(), report.Terminal(res.Page()))
		}
	default:
		return fmt.Errorf("unknown format %q (want text, json or md)", kpiFormat)
	}
	return nil
}

func runAdvise(cmd *cobra.Command, args []string) error {
	cfg, ds, err := setup(args[0])
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.LLM.Concurrency = concurrency
	}
	proc, err := newProcessor(cfg, true)
	if err != nil {
		return err
	}

	opts := processor.Options{PlanOverride: planValue, WithAdvice: true}
	var results []processor.Result
	if branchName != "" {
		res, err := proc.Analyze(cmd.Context(), ds, branchName, opts)
		if err != nil {
			return err
		}
		results = []processor.Result{res}
	} else if results, err = proc.AnalyzeAll(cmd.Context(), ds, opts); err != nil {
		return err
	}

	for _, res := range results {
		fmt.Fprintln(cmd.OutOrStdout(), report.Markdown(res.Page()))
	}
	return nil
}

func runHTML(cmd *cobra.Command, args []string) error {
	cfg, ds, err := setup(args[0])
	if err != nil {
		return err
	}
	proc, err := newProcessor(cfg, withAdvice)
	if err != nil {
		return err
	}
	res, err := proc.Analyze(cmd.Context(), ds, targetBranch(ds), processor.Options{
		PlanOverride: planValue,
		WithAdvice:   withAdvice,
	})
	if err != nil {
		return err
	}

	w, done, err := output(cmd)
	if err != nil {
		return err
	}
	if err := report.HTML(w, res.Page()); err != nil {
		done()
		return err
	}
	return done()
}

func runChart(cmd *cobra.Command, args []string) error {
	format, err := charts.ParseFormat(chartFmt)
	if err != nil {
		return err
	}
	cfg, ds, err := setup(args[0])
	if err != nil {
		return err
	}
	rep, err := metrics.BranchKPI(ds, targetBranch(ds), planValue, cfg)
	if err != nil {
		return err
	}

	var img []byte
	switch chartKind {
	case "trend":
		img, err = charts.Trend(rep.Trend, format)
	case "channels":
		img, err = charts.ChannelPie(rep.Channels, format)
	default:
		return fmt.Errorf("unknown chart kind %q (want trend or channels)", chartKind)
	}
	if err != nil {
		return err
	}

	w, done, err := output(cmd)
	if err != nil {
		return err
	}
	if _, err := w.Write(img); err != nil {
		done()
		return err
	}
	return done()
}
