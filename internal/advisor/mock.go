package advisor

import (
	"context"
	"fmt"
	"strings"

	"salespro-go/internal/actionable"
	"salespro-go/internal/types"
)

// Mock answers offline from the rule-based action cards (USE_MOCK_LLM=true).
type Mock struct{}

func (Mock) Name() string { return "mock" }

func (Mock) Advise(_ context.Context, r types.BranchReport) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "### Статус выполнения: %s\n\n", types.ExecutionTitles[r.Execution])
	if weak := r.WeakestChannel(); weak != "" {
		fmt.Fprintf(&b, "**Проблемная зона:** канал «%s».\n\n", weak)
	}
	b.WriteString("**Действия:**\n\n")
	for i, c := range actionable.Generate(r) {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Insight, c.Action)
	}
	return b.String(), nil
}
