package cutscene

// ParallelAction resolves all of its authored outcomes at once; the
// interpreter dispatches each as an independent continuation.
type ParallelAction struct {
	ActionBase
	Outcomes []Outcome
}

func NewParallelAction(label string, outcomes []Outcome) *ParallelAction {
	return &ParallelAction{
		ActionBase: NewActionBase(label),
		Outcomes:   outcomes,
	}
}

// EndAll returns every authored outcome.
func (a *ParallelAction) EndAll() []Outcome {
	out := make([]Outcome, len(a.Outcomes))
	copy(out, a.Outcomes)
	return out
}

// End exists to satisfy the Action contract; the interpreter prefers EndAll.
func (a *ParallelAction) End() Outcome {
	if len(a.Outcomes) > 0 {
		return a.Outcomes[0]
	}
	return Continue()
}
