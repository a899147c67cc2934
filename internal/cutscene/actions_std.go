package cutscene

import (
	"fmt"

	"github.com/hollowpine/StorylineEngine/internal/events"
)

// CueSender publishes a show-control cue to an external system.
type CueSender interface {
	SendCue(channel, signal string, payload interface{}) error
}

// CommentAction is an instantaneous no-op used for authoring notes.
type CommentAction struct {
	ActionBase
	Text string
}

func NewCommentAction(text string) *CommentAction {
	return &CommentAction{ActionBase: NewActionBase("comment"), Text: text}
}

// WaitAction suspends the graph for a declared duration. The duration may be
// bound to a parameter, resolved in AssignValues.
type WaitAction struct {
	ActionBase
	Seconds      float64
	SecondsParam int // parameter ID, 0 = unbound
}

func NewWaitAction(seconds float64) *WaitAction {
	return &WaitAction{ActionBase: NewActionBase("wait"), Seconds: seconds}
}

func (a *WaitAction) AssignValues(ctx *ParamContext) {
	if a.SecondsParam == 0 {
		return
	}
	if v, ok := ctx.GetFloat(a.SecondsParam); ok {
		a.Seconds = v
	}
}

func (a *WaitAction) Run() float64 {
	if a.Seconds < 0 {
		return 0
	}
	return a.Seconds
}

// WaitSignalAction is an open-ended wait released by an external Finish call
// (an animation ending, a dialogue line completing, a cue acknowledgment).
type WaitSignalAction struct {
	ActionBase
	Signal string
}

func NewWaitSignalAction(signal string) *WaitSignalAction {
	return &WaitSignalAction{ActionBase: NewActionBase("wait_signal"), Signal: signal}
}

func (a *WaitSignalAction) Run() float64 {
	a.SetRunning(true)
	return WaitUntilFinished
}

func (a *WaitSignalAction) Skip() {
	a.SetRunning(false)
}

// Finish releases the wait. Safe to call when the action is not waiting.
func (a *WaitSignalAction) Finish() {
	if !a.IsRunning() {
		return
	}
	a.SetRunning(false)
	events.Emit("info", "signal.received", "", map[string]interface{}{
		"signal": a.Signal,
		"index":  a.Index,
	})
}

// SetParamAction writes a value into the graph's parameter table (or the
// global store for shared parameters). Skipping applies the same write, so
// the skipped graph ends in the state the real run would have produced.
type SetParamAction struct {
	ActionBase
	ParamID int
	Value   interface{}

	ctx *ParamContext
}

func NewSetParamAction(paramID int, value interface{}) *SetParamAction {
	return &SetParamAction{ActionBase: NewActionBase("set_param"), ParamID: paramID, Value: value}
}

func (a *SetParamAction) AssignValues(ctx *ParamContext) { a.ctx = ctx }

func (a *SetParamAction) Run() float64 {
	a.apply()
	return 0
}

func (a *SetParamAction) Skip() { a.apply() }

func (a *SetParamAction) apply() {
	if a.ctx == nil {
		return
	}
	a.ctx.Set(a.ParamID, a.Value)
}

// CueAction publishes a show-control cue. A missing sender or publish error
// logs a warning and the action behaves as a no-op continue; a broken cue
// never aborts the graph.
type CueAction struct {
	ActionBase
	Channel string
	Signal  string
	Payload interface{}
	Sender  CueSender
}

func NewCueAction(channel, signal string, payload interface{}, sender CueSender) *CueAction {
	return &CueAction{
		ActionBase: NewActionBase(fmt.Sprintf("cue %s/%s", channel, signal)),
		Channel:    channel,
		Signal:     signal,
		Payload:    payload,
		Sender:     sender,
	}
}

func (a *CueAction) Run() float64 {
	a.send()
	return 0
}

// Skip still publishes: cues are edge-triggered and the skipped show needs
// its end state (lights on, music playing) as if the scene had played out.
func (a *CueAction) Skip() { a.send() }

func (a *CueAction) send() {
	if a.Sender == nil {
		events.Emit("warning", "action.error", "cue action has no sender", map[string]interface{}{
			"index":   a.Index,
			"channel": a.Channel,
			"signal":  a.Signal,
		})
		return
	}
	if err := a.Sender.SendCue(a.Channel, a.Signal, a.Payload); err != nil {
		events.Emit("warning", "action.error", "cue publish failed", map[string]interface{}{
			"index":   a.Index,
			"channel": a.Channel,
			"signal":  a.Signal,
			"error":   err.Error(),
		})
	}
}

// RunGraphAction hands execution off to another graph asset.
type RunGraphAction struct {
	ActionBase
	Target string
}

func NewRunGraphAction(target string) *RunGraphAction {
	return &RunGraphAction{ActionBase: NewActionBase("run " + target), Target: target}
}

func (a *RunGraphAction) End() Outcome {
	return RunOther(a.Target)
}
