package signals

import (
	"sort"
	"strings"

	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
)

// #region producer

// Producer derives execution signals from recorded tool calls.
type Producer struct {
	config ProducerConfig
}

// NewProducer creates a Producer.
func NewProducer(config ProducerConfig) *Producer {
	return &Producer{config: config}
}

// #endregion producer

// #region analyze

// Analyze scans calls in order. The first failed call that is critical stops
// the scan and marks the run BLOCKED; criticalTools names tools whose failure
// is always critical.
func (p *Producer) Analyze(calls []Call, criticalTools []string) Analysis {
	a := Analysis{BlockingStep: -1, TotalCalls: len(calls)}
	failures := make(map[string]struct{})
	critical := toSet(criticalTools)
	criticalSeen := false

	for i, c := range calls {
		op := operation(c)
		isCritical := p.isCriticalOp(op) || has(critical, c.Tool)
		failed := p.failed(c)

		if p.isCriticalOp(op) {
			a.CriticalOps = append(a.CriticalOps, CriticalOp{Tool: c.Tool, Operation: op, Success: !failed})
		}
		if !failed {
			continue
		}

		a.Cascade = append(a.Cascade, CascadeStep{
			Step:                   i,
			Tool:                   c.Tool,
			Operation:              op,
			Error:                  errorText(c),
			IsCritical:             isCritical,
			CausedByEarlierFailure: criticalSeen && !isCritical,
		})
		if isCritical {
			criticalSeen = true
		}

		if a.EarlyStopped {
			continue
		}
		a.FailedCalls++
		if op != "" {
			failures[c.Tool+":"+op] = struct{}{}
		} else {
			failures[c.Tool] = struct{}{}
		}
		if isCritical {
			a.BlockingStep = i
			a.EarlyStopped = true
		}
	}

	a.Failures = sortedKeys(failures)
	a.Status = status(a)
	return a
}

func status(a Analysis) RunStatus {
	switch {
	case a.EarlyStopped:
		return StatusBlocked
	case a.TotalCalls == 0:
		return StatusEmpty
	case a.FailedCalls == 0:
		return StatusSuccess
	case a.FailedCalls == a.TotalCalls:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// #endregion analyze

// #region status

// Status builds the classifier input for a candidate run. MissingTools lists
// baseline tool names accepted by keep that the candidate never called.
func (p *Producer) Status(baseline, candidate []Call, keep toolcall.Predicate, criticalTools []string) (eval.ExecutionStatus, Analysis) {
	a := p.Analyze(candidate, criticalTools)

	called := make(map[string]struct{}, len(candidate))
	for _, c := range candidate {
		called[c.Tool] = struct{}{}
	}
	missing := make(map[string]struct{})
	for _, c := range baseline {
		if keep != nil && !keep(toolcall.Invocation{Name: c.Tool, Args: c.Args}) {
			continue
		}
		if _, ok := called[c.Tool]; !ok {
			missing[c.Tool] = struct{}{}
		}
	}

	return eval.ExecutionStatus{
		HadError:         a.FailedCalls > 0,
		MissingTools:     sortedKeys(missing),
		CriticalOpFailed: a.EarlyStopped,
	}, a
}

// #endregion status

// #region helpers

func (p *Producer) failed(c Call) bool {
	if c.Error != "" || c.IsError {
		return true
	}
	if !p.config.InspectResponses || c.Response == "" {
		return false
	}
	text := strings.ToLower(c.Response)
	for _, kw := range p.config.ErrorKeywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (p *Producer) isCriticalOp(op string) bool {
	if op == "" {
		return false
	}
	op = strings.ToLower(op)
	for _, k := range p.config.CriticalOperations {
		if k != "" && strings.Contains(op, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// operation returns args["operation"] when it is a string.
func operation(c Call) string {
	v, ok := c.Args["operation"]
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

func errorText(c Call) string {
	if c.Error != "" {
		return c.Error
	}
	return "Tool returned error"
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func has(set map[string]struct{}, k string) bool {
	_, ok := set[k]
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// #endregion helpers
