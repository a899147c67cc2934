package cutscene

import (
	"fmt"
	"strconv"

	"github.com/hollowpine/StorylineEngine/internal/events"
)

// RunState is the lifecycle state of a graph.
type RunState string

const (
	StateIdle     RunState = "idle"
	StateRunning  RunState = "running"
	StatePaused   RunState = "paused"
	StateFinished RunState = "finished"
)

// DefaultSkipGuardMultiplier bounds skip replay (and same-tick instant
// chains) at multiplier * actionCount steps.
const DefaultSkipGuardMultiplier = 3

// continuation is one pending execution path: an action index plus its wait
// state. Parallel fan-out produces several continuations at once.
type continuation struct {
	index     int
	started   bool
	wait      float64
	openEnded bool
	reapply   bool // resume path: re-apply cached outcome, no re-run
}

// Graph is an ordered table of actions plus parameter bindings. It owns the
// interpreter loop: real-time execution driven by Tick, instantaneous Skip
// replay, pause/resume, and kill.
//
// Action indices double as jump targets. Positions are not stable identities
// across authoring edits; jumps always resolve through the current table.
type Graph struct {
	ID            int    // stable numeric identity for scene-resident graphs
	AssetName     string // set when instantiated from an asset template
	SceneID       string
	Name          string
	Actions       []Action
	Params        []*Parameter
	Skippable     bool
	BlockGameplay bool
	StartDelay    float64

	// SkipGuardMultiplier overrides DefaultSkipGuardMultiplier when > 0.
	SkipGuardMultiplier int

	// Globals backs shared parameters. May be nil.
	Globals *Store

	tracker        Tracker
	state          RunState
	startIndex     int
	delayRemaining float64
	pending        []*continuation
	pausePending   bool
	resumeIndices  []int
	linkedGraph    string
	trace          []int
	chainSteps     int
	stopped        bool
}

// NewGraph builds a graph and assigns each action its table index.
func NewGraph(name string, actions []Action) *Graph {
	g := &Graph{
		Name:    name,
		Actions: actions,
		state:   StateIdle,
	}
	for i, a := range actions {
		a.Base().Index = i
	}
	return g
}

// Key returns the identity used in events and save records: the numeric ID
// for scene-resident graphs, the asset name for asset-sourced ones.
func (g *Graph) Key() string {
	if g.AssetName != "" {
		return g.AssetName
	}
	return strconv.Itoa(g.ID)
}

func (g *Graph) State() RunState { return g.state }

// IsRunning reports whether the interpreter loop is live.
func (g *Graph) IsRunning() bool { return g.state == StateRunning }

// StartIndex returns the index the current run began from.
func (g *Graph) StartIndex() int { return g.startIndex }

// SetStartIndex primes the start index when rebuilding from save data.
func (g *Graph) SetStartIndex(i int) { g.startIndex = i }

// ResumeIndices returns the recorded resume targets of a paused graph.
func (g *Graph) ResumeIndices() []int {
	out := make([]int, len(g.resumeIndices))
	copy(out, g.resumeIndices)
	return out
}

// Trace returns the action indices visited by the current or most recent
// walk, in execution order.
func (g *Graph) Trace() []int {
	out := make([]int, len(g.trace))
	copy(out, g.trace)
	return out
}

// LinkedGraph returns the asset this graph handed off to, if any.
func (g *Graph) LinkedGraph() string { return g.linkedGraph }

// SetLinkedGraph primes the handoff target when rebuilding from save data.
func (g *Graph) SetLinkedGraph(name string) { g.linkedGraph = name }

func (g *Graph) stepLimit() int {
	mult := g.SkipGuardMultiplier
	if mult <= 0 {
		mult = DefaultSkipGuardMultiplier
	}
	n := len(g.Actions)
	if n == 0 {
		n = 1
	}
	return mult * n
}

func (g *Graph) paramContext() *ParamContext {
	return &ParamContext{Local: g.Params, Global: g.Globals}
}

func (g *Graph) emit(level, name, msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["graph"] = g.Key()
	events.Emit(level, name, msg, fields)
}

// Run starts real-time execution from startIndex. A running graph restarts.
// Without a tracker the run aborts; other graphs are unaffected.
func (g *Graph) Run(tracker Tracker, startIndex int) error {
	if tracker == nil {
		g.emit("error", "cutscene.error", "no run registry available", nil)
		return fmt.Errorf("graph %s: no run registry available", g.Key())
	}
	if startIndex < 0 || startIndex >= len(g.Actions) {
		startIndex = 0
	}
	if g.state == StateRunning || g.state == StatePaused {
		g.resetRun()
	}

	g.tracker = tracker
	g.state = StateRunning
	g.startIndex = startIndex
	g.trace = nil
	g.resumeIndices = nil
	g.pausePending = false
	g.linkedGraph = ""
	g.stopped = false

	// Fresh run: clear per-run skip caches so replay determinism is scoped
	// to this run only.
	for _, a := range g.Actions {
		a.Reset()
		a.Base().ClearResult()
	}

	tracker.Register(g, g.Skippable, startIndex)
	g.emit("info", "cutscene.started", "", map[string]interface{}{"start_index": startIndex})

	if len(g.Actions) == 0 {
		g.finishRun()
		return nil
	}
	if g.StartDelay > 0 {
		g.delayRemaining = g.StartDelay
		return nil
	}
	g.begin(startIndex)
	return nil
}

// Tick advances pending waits by one frame. Gameplay-blocking graphs run on
// real time; background graphs run on scaled time.
func (g *Graph) Tick(realDt, scaledDt float64) {
	if g.state != StateRunning {
		return
	}
	dt := scaledDt
	if g.BlockGameplay {
		dt = realDt
	}

	if g.delayRemaining > 0 {
		g.delayRemaining -= dt
		if g.delayRemaining > 0 {
			return
		}
		g.delayRemaining = 0
		g.begin(g.startIndex)
		return
	}

	g.chainSteps = 0
	queue := g.pending
	g.pending = nil
	for _, c := range queue {
		if g.state != StateRunning {
			return
		}
		if g.delayRemaining > 0 {
			// A self-handoff restarted the graph mid-tick; stale
			// continuations are dropped.
			break
		}
		if !c.started {
			if c.reapply {
				g.reapply(c.index)
			} else {
				g.runFrom(c.index)
			}
			continue
		}

		a := g.Actions[c.index]
		done := false
		if c.openEnded {
			done = !a.Base().IsRunning()
		} else {
			c.wait -= dt
			done = c.wait <= 0
		}
		if !done {
			g.pending = append(g.pending, c)
			continue
		}

		g.emit("info", "action.completed", "", map[string]interface{}{"index": c.index})
		g.resolveAndAdvance(c.index, a)
	}
	g.settle()
}

// begin kicks off a synchronous chain from index i and settles afterwards.
func (g *Graph) begin(i int) {
	g.chainSteps = 0
	g.runFrom(i)
	g.settle()
}

// runFrom executes actions starting at i, chaining instantaneous outcomes
// synchronously within the current tick. Timed and open-ended actions
// suspend into a continuation; the chain-length guard defers pathological
// instant cycles by one frame instead of growing the stack.
func (g *Graph) runFrom(i int) {
	for {
		if g.state != StateRunning || g.delayRemaining > 0 {
			return
		}
		if i < 0 {
			g.emit("warning", "cutscene.error", "jump target out of range", map[string]interface{}{"target": i})
			return
		}
		if i >= len(g.Actions) {
			// End of the table finalizes this path.
			return
		}
		if g.pausePending {
			g.recordResume(i)
			return
		}

		g.chainSteps++
		if g.chainSteps > g.stepLimit() {
			g.emit("warning", "cutscene.error", "instant chain exceeded step bound, deferring a frame", map[string]interface{}{
				"index": i,
				"limit": g.stepLimit(),
			})
			g.pending = append(g.pending, &continuation{index: i})
			return
		}

		a := g.Actions[i]
		if !a.Base().Enabled {
			i++
			continue
		}

		g.trace = append(g.trace, i)
		g.emit("info", "action.started", "", map[string]interface{}{"index": i})
		a.AssignValues(g.paramContext())

		wait := a.Run()
		if wait == 0 {
			g.emit("info", "action.completed", "", map[string]interface{}{"index": i})
			next, ok := g.resolveNext(i, a)
			if !ok {
				return
			}
			i = next
			continue
		}

		c := &continuation{index: i, started: true}
		if wait < 0 {
			c.openEnded = true
		} else {
			c.wait = wait
		}
		g.pending = append(g.pending, c)
		return
	}
}

// resolveAndAdvance resolves a completed action's outcome(s) and continues
// each resulting path.
func (g *Graph) resolveAndAdvance(i int, a Action) {
	next, ok := g.resolveNext(i, a)
	if ok {
		g.runFrom(next)
	}
}

// resolveNext computes the successor index for the action at i. For
// parallel actions every outcome but the first spawns its own path; the
// first continuing outcome is returned for tail-continuation. ok is false
// when no path continues from here.
func (g *Graph) resolveNext(i int, a Action) (int, bool) {
	if me, ok := a.(MultiEnder); ok {
		tail := -1
		haveTail := false
		for _, oc := range me.EndAll() {
			next, cont := g.applyOutcome(i, oc)
			if !cont {
				continue
			}
			if !haveTail {
				tail, haveTail = next, true
				continue
			}
			g.runFrom(next)
		}
		return tail, haveTail
	}
	return g.applyOutcome(i, a.End())
}

// applyOutcome maps an outcome to the next index of this path. ok is false
// when the path does not continue synchronously (stop, handoff, deferral).
func (g *Graph) applyOutcome(from int, oc Outcome) (int, bool) {
	switch oc.Action {
	case ResultContinue:
		return from + 1, true

	case ResultJump:
		to := oc.JumpTo
		if to == from {
			// A self-jump resolved during callback processing defers one
			// tick; recursing here would grow the stack without bound.
			g.pending = append(g.pending, &continuation{index: to})
			return 0, false
		}
		if to < 0 {
			g.emit("warning", "cutscene.error", "jump target out of range", map[string]interface{}{"from": from, "target": to})
			return 0, false
		}
		if to >= len(g.Actions) {
			g.emit("warning", "cutscene.error", "jump target clamped", map[string]interface{}{"from": from, "target": to})
			to = len(g.Actions) - 1
		}
		return to, true

	case ResultRunOther:
		g.handOff(from, oc.Target)
		return 0, false

	case ResultStop:
		g.stopped = true
		return 0, false
	}
	return 0, false
}

// handOff delegates execution to another graph asset. A self-target with a
// start delay restarts this graph through the delayed path; otherwise the
// target begins its own run and this graph terminates normally.
func (g *Graph) handOff(from int, target string) {
	if target == "" {
		g.emit("warning", "cutscene.error", "handoff with empty target", map[string]interface{}{"from": from})
		return
	}
	if g.AssetName != "" && target == g.AssetName && g.StartDelay > 0 {
		g.restartDelayed()
		return
	}
	g.linkedGraph = target
	if g.tracker == nil {
		g.emit("error", "cutscene.error", "no run registry for handoff", map[string]interface{}{"target": target})
		return
	}
	if err := g.tracker.Launch(target, g); err != nil {
		g.emit("warning", "cutscene.error", "handoff target failed to start", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
	}
}

// restartDelayed begins a fresh delayed run of this graph in place.
func (g *Graph) restartDelayed() {
	g.pending = nil
	g.trace = nil
	g.resumeIndices = nil
	for _, a := range g.Actions {
		a.Reset()
		a.Base().ClearResult()
	}
	g.delayRemaining = g.StartDelay
	g.stopped = false
	g.emit("info", "cutscene.started", "restarted via self handoff", map[string]interface{}{"start_index": g.startIndex})
}

// settle completes the tick: transitions to Paused once in-flight work has
// drained, or finishes the run when nothing remains.
func (g *Graph) settle() {
	if g.state != StateRunning {
		return
	}
	if g.pausePending {
		if g.delayRemaining > 0 {
			g.recordResume(g.startIndex)
			g.delayRemaining = 0
		}
		if len(g.pending) > 0 {
			return
		}
		g.pausePending = false
		g.state = StatePaused
		g.emit("info", "cutscene.paused", "", map[string]interface{}{"resume_indices": g.ResumeIndices()})
		if g.tracker != nil {
			g.tracker.Paused(g)
		}
		return
	}
	if g.delayRemaining > 0 || len(g.pending) > 0 {
		return
	}
	g.finishRun()
}

func (g *Graph) recordResume(i int) {
	for _, r := range g.resumeIndices {
		if r == i {
			return
		}
	}
	g.resumeIndices = append(g.resumeIndices, i)
}

func (g *Graph) finishRun() {
	if g.state != StateRunning {
		return
	}
	g.state = StateFinished
	g.pending = nil
	for _, a := range g.Actions {
		a.Reset() // running flags only; branch caches stay for skip replay
	}
	finale := "cutscene.completed"
	if g.stopped {
		// A stop outcome ended the walk early, as opposed to running off the
		// end of the table.
		finale = "cutscene.stopped"
	}
	g.emit("info", finale, "", map[string]interface{}{"visited": g.Trace()})
	if g.tracker != nil {
		g.tracker.Finished(g)
	}
}

// Pause requests a pause. In-flight actions complete normally over the next
// ticks; each resolved-but-unapplied target index is recorded for resume,
// and the graph halts once nothing is in flight.
func (g *Graph) Pause() {
	if g.state != StateRunning {
		return
	}
	g.pausePending = true
	g.settle()
}

// Settle forces an immediate pause for save-on-demand: actions still
// mid-wait record their own index and re-execute from scratch on resume.
func (g *Graph) Settle() {
	if g.state != StateRunning {
		return
	}
	g.pausePending = true
	for _, c := range g.pending {
		g.recordResume(c.index)
	}
	g.pending = nil
	g.settle()
}

// Resume continues a paused (or freshly restored) graph. Each resume index
// either re-executes from scratch or, when rerun is false, re-applies its
// cached outcome without repeating side effects.
func (g *Graph) Resume(tracker Tracker, indices []int, rerun bool) error {
	if tracker == nil {
		g.emit("error", "cutscene.error", "no run registry available", nil)
		return fmt.Errorf("graph %s: no run registry available", g.Key())
	}
	g.tracker = tracker
	g.state = StateRunning
	g.pausePending = false
	g.resumeIndices = nil

	tracker.Register(g, g.Skippable, g.startIndex)
	g.emit("info", "cutscene.resumed", "", map[string]interface{}{
		"resume_indices": indices,
		"rerun":          rerun,
	})

	for _, i := range indices {
		if i < 0 || i >= len(g.Actions) {
			g.emit("warning", "cutscene.error", "resume index out of range", map[string]interface{}{"index": i})
			continue
		}
		g.pending = append(g.pending, &continuation{index: i, reapply: !rerun})
	}
	// Dispatch immediately rather than waiting a frame.
	g.Tick(0, 0)
	return nil
}

// reapply resolves an action's outcome from its cached state without
// re-running its side effects.
func (g *Graph) reapply(i int) {
	if i < 0 || i >= len(g.Actions) {
		return
	}
	a := g.Actions[i]
	a.AssignValues(g.paramContext())
	g.resolveAndAdvance(i, a)
}

// Skip replays the graph's control flow instantaneously from its start
// index: every reached action's Skip() runs, no durations are waited, and
// branch actions reuse results cached by the just-completed real-time run.
// A runaway guard aborts after stepLimit steps so cyclic jump graphs
// terminate.
func (g *Graph) Skip() {
	// Abandon in-flight real-time state without completion side effects.
	g.pending = nil
	g.pausePending = false
	g.delayRemaining = 0
	g.resumeIndices = nil
	g.state = StateRunning
	g.trace = nil
	g.stopped = false

	limit := g.stepLimit()
	steps := 0
	worklist := []int{g.startIndex}

	for len(worklist) > 0 && steps <= limit {
		i := worklist[0]
		worklist = worklist[1:]

		for i >= 0 && i < len(g.Actions) {
			steps++
			if steps > limit {
				g.emit("warning", "cutscene.error", "skip step guard tripped, aborting replay", map[string]interface{}{
					"limit": limit,
				})
				worklist = nil
				break
			}

			a := g.Actions[i]
			if !a.Base().Enabled {
				i++
				continue
			}

			g.trace = append(g.trace, i)
			a.AssignValues(g.paramContext())
			a.Skip()
			g.emit("info", "action.skipped", "", map[string]interface{}{"index": i})

			next, more := g.skipNext(i, a, &worklist)
			if !more {
				break
			}
			i = next
		}
	}

	g.emit("info", "cutscene.skipped", "", map[string]interface{}{"visited": g.Trace()})
	g.finishRun()
}

// skipNext resolves outcomes during a skip walk. Parallel fan-out pushes
// extra paths onto the worklist; self-jumps proceed directly (the step guard
// bounds them).
func (g *Graph) skipNext(i int, a Action, worklist *[]int) (int, bool) {
	if me, ok := a.(MultiEnder); ok {
		tail := -1
		haveTail := false
		for _, oc := range me.EndAll() {
			next, cont := g.skipOutcome(i, oc)
			if !cont {
				continue
			}
			if !haveTail {
				tail, haveTail = next, true
				continue
			}
			*worklist = append(*worklist, next)
		}
		return tail, haveTail
	}
	return g.skipOutcome(i, a.End())
}

func (g *Graph) skipOutcome(from int, oc Outcome) (int, bool) {
	switch oc.Action {
	case ResultContinue:
		return from + 1, true

	case ResultJump:
		to := oc.JumpTo
		if to < 0 {
			g.emit("warning", "cutscene.error", "jump target out of range", map[string]interface{}{"from": from, "target": to})
			return 0, false
		}
		if to >= len(g.Actions) {
			g.emit("warning", "cutscene.error", "jump target clamped", map[string]interface{}{"from": from, "target": to})
			to = len(g.Actions) - 1
		}
		return to, true

	case ResultRunOther:
		// The handoff target is a fresh run, not part of the flow being
		// replayed; it starts normally.
		g.handOff(from, oc.Target)
		return 0, false

	case ResultStop:
		g.stopped = true
		return 0, false
	}
	return 0, false
}

// Kill stops the graph unconditionally and clears node state. Idempotent.
func (g *Graph) Kill() {
	wasActive := g.state == StateRunning || g.state == StatePaused
	g.resetRun()
	if wasActive {
		g.emit("info", "cutscene.killed", "", nil)
	}
}

// KillQuiet clears run state in isolation, with no events and no tracker
// notification. Used by skip-all for lists that only just started.
func (g *Graph) KillQuiet() {
	g.resetRun()
}

func (g *Graph) resetRun() {
	g.pending = nil
	g.pausePending = false
	g.delayRemaining = 0
	g.resumeIndices = nil
	g.state = StateIdle
	g.stopped = false
	for _, a := range g.Actions {
		a.Reset()
		a.Base().ClearResult()
	}
}
