// Package cutscene implements the graph execution engine: actions, branch
// resolution, the tick-driven interpreter, and skip replay.
package cutscene

// WaitUntilFinished is the sentinel an action returns from Run to request an
// open-ended wait. The interpreter polls the action's running flag each tick
// until it clears.
const WaitUntilFinished = -1.0

// ResultNone is the lastResult value before a branch action has evaluated.
// Cache presence is tracked by a separate flag, so any selector output,
// negative values included, can be cached for skip replay.
const ResultNone = -1

// Action is one step of a graph. Index identity lives in ActionBase; the
// interpreter discovers extra behavior (parallel fan-out) through capability
// interfaces rather than concrete types.
type Action interface {
	Base() *ActionBase

	// AssignValues resolves parameter-bound fields to runtime values before
	// execution. It must not affect control flow.
	AssignValues(ctx *ParamContext)

	// Run performs the action's effect once. It returns 0 for instantaneous
	// actions, a positive duration in seconds for timed actions, or
	// WaitUntilFinished for an open-ended wait on the running flag.
	Run() float64

	// Skip produces the same end state a full real-time Run would have,
	// without incurring real time.
	Skip()

	// End resolves the action's outcome. Plain actions always continue.
	End() Outcome

	// Reset clears transient run state. It does not clear the cached branch
	// result; Graph.Run does that at the start of each fresh run.
	Reset()
}

// MultiEnder is implemented by actions that resolve several simultaneous
// outcomes instead of one (parallel fan-out).
type MultiEnder interface {
	EndAll() []Outcome
}

// ActionBase carries the state shared by every action kind and provides the
// no-op defaults of the Action contract.
type ActionBase struct {
	Index   int
	Label   string
	Enabled bool

	running    bool
	lastResult int
	resolved   bool
}

// NewActionBase returns an enabled base with no cached result.
func NewActionBase(label string) ActionBase {
	return ActionBase{Label: label, Enabled: true, lastResult: ResultNone}
}

func (b *ActionBase) Base() *ActionBase { return b }

// IsRunning reports whether an open-ended wait is outstanding.
func (b *ActionBase) IsRunning() bool { return b.running }

// SetRunning sets the open-ended wait flag.
func (b *ActionBase) SetRunning(v bool) { b.running = v }

// LastResult returns the cached branch result, or ResultNone.
func (b *ActionBase) LastResult() int { return b.lastResult }

// HasResult reports whether a branch result has been cached.
func (b *ActionBase) HasResult() bool { return b.resolved }

// SetLastResult caches a branch result for skip replay.
func (b *ActionBase) SetLastResult(r int) {
	b.lastResult = r
	b.resolved = true
}

// ClearResult discards the cached branch result.
func (b *ActionBase) ClearResult() {
	b.lastResult = ResultNone
	b.resolved = false
}

func (b *ActionBase) AssignValues(ctx *ParamContext) {}

func (b *ActionBase) Run() float64 { return 0 }

func (b *ActionBase) Skip() {}

func (b *ActionBase) End() Outcome { return Continue() }

func (b *ActionBase) Reset() { b.running = false }
