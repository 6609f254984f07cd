// Package processor runs the per-branch analysis: KPIs, action cards and the
// optional language-model recommendation.
package processor

import (
	"context"
	"time"

	"salespro-go/internal/actionable"
	"salespro-go/internal/advisor"
	"salespro-go/internal/config"
	"salespro-go/internal/dataset"
	"salespro-go/internal/logger"
	"salespro-go/internal/metrics"
	"salespro-go/internal/report"
	"salespro-go/internal/types"
)

// Options tune a single analysis.
type Options struct {
	PlanOverride float64 // used when the plan sheet has no value for the branch
	WithAdvice   bool
}

// Result is returned by /api/uploads/{id}/branches/{branch}/advice and the CLI.
type Result struct {
	Report      types.BranchReport      `json:"report"`
	Actions     []actionable.ActionCard `json:"actions"`
	Provider    string                  `json:"provider,omitempty"`
	Advice      string                  `json:"advice,omitempty"`
	AdviceError string                  `json:"advice_error,omitempty"`
	DurationMs  int64                   `json:"duration_ms"`
}

// Page converts the result for rendering.
func (r Result) Page() report.Page {
	return report.Page{
		Report:      r.Report,
		Actions:     r.Actions,
		Advice:      r.Advice,
		AdviceError: r.AdviceError,
		Provider:    r.Provider,
		Generated:   time.Now(),
	}
}

type Processor struct {
	cfg     *config.Config
	advisor advisor.Advisor // nil when no provider is configured
}

// New returns a processor. adv may be nil; advice requests then report
// advisor.ErrNotConfigured in the result instead of failing.
func New(cfg *config.Config, adv advisor.Advisor) *Processor {
	return &Processor{cfg: cfg, advisor: adv}
}

// Analyze computes the branch report. Advice failures are recorded in
// Result.AdviceError; only a bad branch fails the call.
func (p *Processor) Analyze(ctx context.Context, ds *dataset.Dataset, branch string, opts Options) (Result, error) {
	log := logger.Component("processor").WithField("branch", branch)
	start := time.Now()

	rep, err := metrics.BranchKPI(ds, branch, opts.PlanOverride, p.cfg)
	if err != nil {
		return Result{}, err
	}
	res := Result{Report: rep, Actions: actionable.Generate(rep)}

	if opts.WithAdvice {
		p.advise(ctx, &res)
	}

	res.DurationMs = time.Since(start).Milliseconds()
	log.WithField("duration_ms", res.DurationMs).
		WithField("execution", rep.Execution).
		Info("branch analyzed")
	return res, nil
}

func (p *Processor) advise(ctx context.Context, res *Result) {
	if p.advisor == nil {
		res.AdviceError = advisor.ErrNotConfigured.Error()
		return
	}
	res.Provider = p.advisor.Name()

	ctx, cancel := context.WithTimeout(ctx, p.adviceTimeout())
	defer cancel()

	advice, err := p.advisor.Advise(ctx, res.Report)
	if err != nil {
		logger.Component("processor").WithField("branch", res.Report.Branch).WithError(err).Warn("advice failed")
		res.AdviceError = err.Error()
		return
	}
	res.Advice = advice
}

// adviceTimeout bounds one advice call including retries.
func (p *Processor) adviceTimeout() time.Duration {
	if p.cfg.LLM.MaxRetryTime > 0 {
		return p.cfg.LLM.MaxRetryTime + p.cfg.LLM.Timeout
	}
	return 60 * time.Second
}

// AnalyzeAll analyzes every branch in the dataset. With advice enabled the
// provider calls run concurrently, bounded by llm.concurrency.
func (p *Processor) AnalyzeAll(ctx context.Context, ds *dataset.Dataset, opts Options) ([]Result, error) {
	branches := ds.Branches()
	out := make([]Result, 0, len(branches))
	for _, b := range branches {
		res, err := p.Analyze(ctx, ds, b, Options{PlanOverride: opts.PlanOverride})
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if !opts.WithAdvice {
		return out, nil
	}

	if p.advisor == nil {
		for i := range out {
			out[i].AdviceError = advisor.ErrNotConfigured.Error()
		}
		return out, nil
	}

	reports := make([]types.BranchReport, len(out))
	for i, r := range out {
		reports[i] = r.Report
	}
	ctx, cancel := context.WithTimeout(ctx, p.adviceTimeout()*time.Duration(len(reports)))
	defer cancel()

	for i, a := range advisor.AdviseAll(ctx, p.advisor, reports, p.cfg.LLM.Concurrency) {
		out[i].Provider = p.advisor.Name()
		out[i].Advice = a.Advice
		out[i].AdviceError = a.Error
		out[i].DurationMs += a.DurationMs
	}
	return out, nil
}
