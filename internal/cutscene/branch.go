package cutscene

import (
	"github.com/hollowpine/StorylineEngine/internal/events"
)

// ConditionFunc evaluates a single-condition branch against the graph's
// parameters. It must be pure with respect to engine state.
type ConditionFunc func(ctx *ParamContext) bool

// SelectorFunc picks one of a multi-way branch's outcomes by index.
type SelectorFunc func(ctx *ParamContext) int

// CheckAction is the single-condition branch: the condition result selects
// one of two authored outcomes. The result is cached so a skip replay reuses
// the decision the real-time run made, even if the condition has since
// changed (see Skip).
type CheckAction struct {
	ActionBase
	Condition ConditionFunc
	WhenTrue  Outcome
	WhenFalse Outcome

	ctx *ParamContext
}

func NewCheckAction(label string, cond ConditionFunc, whenTrue, whenFalse Outcome) *CheckAction {
	return &CheckAction{
		ActionBase: NewActionBase(label),
		Condition:  cond,
		WhenTrue:   whenTrue,
		WhenFalse:  whenFalse,
	}
}

func (a *CheckAction) AssignValues(ctx *ParamContext) { a.ctx = ctx }

func (a *CheckAction) Run() float64 {
	a.evaluate()
	return 0
}

// Skip re-evaluates only when the real-time run never reached this action.
// A cached result from the run being replayed is reused so a time-varying
// condition cannot diverge between the run and its fast-forward.
func (a *CheckAction) Skip() {
	if !a.HasResult() {
		a.evaluate()
	}
}

func (a *CheckAction) End() Outcome {
	if !a.HasResult() {
		a.evaluate()
	}
	if a.LastResult() == 0 {
		return a.WhenTrue
	}
	return a.WhenFalse
}

func (a *CheckAction) evaluate() {
	if a.Condition == nil {
		events.Emit("warning", "action.error", "check action has no condition", map[string]interface{}{
			"index": a.Index,
			"label": a.Label,
		})
		a.SetLastResult(1)
		return
	}
	if a.Condition(a.ctx) {
		a.SetLastResult(0)
	} else {
		a.SetLastResult(1)
	}
}

// SwitchAction is the multi-way branch: the selector result picks one of N
// authored outcomes. A result outside the declared range degrades to Stop
// with a warning.
type SwitchAction struct {
	ActionBase
	Selector SelectorFunc
	Outcomes []Outcome

	ctx *ParamContext
}

func NewSwitchAction(label string, sel SelectorFunc, outcomes []Outcome) *SwitchAction {
	return &SwitchAction{
		ActionBase: NewActionBase(label),
		Selector:   sel,
		Outcomes:   outcomes,
	}
}

func (a *SwitchAction) AssignValues(ctx *ParamContext) { a.ctx = ctx }

func (a *SwitchAction) Run() float64 {
	a.evaluate()
	return 0
}

func (a *SwitchAction) Skip() {
	if !a.HasResult() {
		a.evaluate()
	}
}

func (a *SwitchAction) End() Outcome {
	if !a.HasResult() {
		a.evaluate()
	}
	r := a.LastResult()
	if r < 0 || r >= len(a.Outcomes) {
		events.Emit("warning", "action.error", "switch result out of range", map[string]interface{}{
			"index":    a.Index,
			"label":    a.Label,
			"result":   r,
			"outcomes": len(a.Outcomes),
		})
		return Stop()
	}
	return a.Outcomes[r]
}

func (a *SwitchAction) evaluate() {
	if a.Selector == nil {
		events.Emit("warning", "action.error", "switch action has no selector", map[string]interface{}{
			"index": a.Index,
			"label": a.Label,
		})
		a.SetLastResult(len(a.Outcomes))
		return
	}
	a.SetLastResult(a.Selector(a.ctx))
}
