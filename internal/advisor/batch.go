package advisor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"salespro-go/internal/logger"
	"salespro-go/internal/types"
)

// BranchAdvice is the outcome for one branch of AdviseAll.
type BranchAdvice struct {
	Branch     string `json:"branch"`
	Advice     string `json:"advice,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// AdviseAll asks for advice on every report with at most limit requests in
// flight. Per-branch failures are recorded in the result, never returned; the
// output keeps the order of reports.
func AdviseAll(ctx context.Context, a Advisor, reports []types.BranchReport, limit int) []BranchAdvice {
	log := logger.Component("advisor.batch").WithField("provider", a.Name())
	if limit <= 0 {
		limit = 1
	}
	out := make([]BranchAdvice, len(reports))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, r := range reports {
		g.Go(func() error {
			start := time.Now()
			advice, err := a.Advise(gctx, r)
			res := BranchAdvice{Branch: r.Branch, Advice: advice, DurationMs: time.Since(start).Milliseconds()}
			if err != nil {
				res.Error = err.Error()
				log.WithField("branch", r.Branch).WithError(err).Warn("branch advice failed")
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return out
}
