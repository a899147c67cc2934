package runlist

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hollowpine/StorylineEngine/internal/clock"
	"github.com/hollowpine/StorylineEngine/internal/cutscene"
	"github.com/hollowpine/StorylineEngine/internal/events"
	"github.com/hollowpine/StorylineEngine/internal/gamestate"
)

// Library resolves asset names to fresh graph instances.
type Library interface {
	Instantiate(name string) (*cutscene.Graph, error)
}

// SaveStore persists the registry save string under named slots.
type SaveStore interface {
	SaveState(slot, data string) error
	LoadState(slot string) (string, error)
}

// DefaultSlot is the save slot used by remote save/load commands that name
// no slot.
const DefaultSlot = "autosave"

type command struct {
	name string
	slot string
}

// Registry is the process-wide table of executing graph instances. It
// implements cutscene.Tracker and owns the frame pump: Tick drains queued
// remote commands, advances every running graph, and garbage-collects
// settled records.
//
// Graph methods are never invoked while the registry mutex is held; the
// callbacks they fire (Finished, Paused, Register) re-enter safely.
type Registry struct {
	mu       sync.Mutex
	records  []*Record
	scenes   map[int]*cutscene.Graph
	commands []command
	blocked  bool

	library Library
	store   SaveStore
	state   *gamestate.Manager
	clk     *clock.Clock
}

func New(state *gamestate.Manager, clk *clock.Clock) *Registry {
	return &Registry{
		scenes: make(map[int]*cutscene.Graph),
		state:  state,
		clk:    clk,
	}
}

// SetLibrary wires the asset resolver used for handoffs and load.
func (r *Registry) SetLibrary(lib Library) { r.library = lib }

// SetSaveStore wires the persistence backend for save/load commands.
func (r *Registry) SetSaveStore(store SaveStore) { r.store = store }

// RegisterScene makes a scene-resident graph addressable by its stable
// numeric ID when rebuilding save data.
func (r *Registry) RegisterScene(g *cutscene.Graph) {
	r.mu.Lock()
	r.scenes[g.ID] = g
	r.mu.Unlock()
}

// Register implements cutscene.Tracker. Any existing record for the same
// graph is replaced; skip-queue membership requires the cutscene context
// (the graph blocks gameplay, or one already does).
func (r *Registry) Register(g *cutscene.Graph, addToSkipQueue bool, startIndex int) {
	inCutscene := r.state != nil && r.state.InCutscene()

	r.mu.Lock()
	r.removeLocked(g)
	r.records = append(r.records, &Record{
		Graph:       g,
		StartIndex:  startIndex,
		InSkipQueue: addToSkipQueue && (g.BlockGameplay || inCutscene),
		IsRunning:   true,
	})
	r.recomputeLocked()
	r.mu.Unlock()
}

// Finished implements cutscene.Tracker.
func (r *Registry) Finished(g *cutscene.Graph) {
	r.mu.Lock()
	if rec := r.findLocked(g); rec != nil {
		rec.IsRunning = false
		rec.InSkipQueue = false
	}
	r.gcLocked()
	r.recomputeLocked()
	r.mu.Unlock()
}

// Paused implements cutscene.Tracker: snapshot resume state into the record
// so the instance survives serialization.
func (r *Registry) Paused(g *cutscene.Graph) {
	indices := g.ResumeIndices()
	snapshot := g.SerializeParams()
	linked := g.LinkedGraph()

	r.mu.Lock()
	if rec := r.findLocked(g); rec != nil {
		rec.IsRunning = false
		rec.ResumeIndices = indices
		rec.ParamSnapshot = snapshot
		rec.LinkedGraph = linked
	}
	r.recomputeLocked()
	r.mu.Unlock()
}

// Launch implements cutscene.Tracker: start another graph asset by name.
func (r *Registry) Launch(target string, from *cutscene.Graph) error {
	if r.library == nil {
		return fmt.Errorf("no asset library configured")
	}
	g, err := r.library.Instantiate(target)
	if err != nil {
		return fmt.Errorf("failed to instantiate %s: %w", target, err)
	}
	return g.Run(r, 0)
}

// Tick advances one frame: drain remote commands, tick every running graph,
// then settle the record table.
func (r *Registry) Tick(realDt float64) {
	realElapsed, scaled := realDt, realDt
	if r.clk != nil {
		realElapsed, scaled = r.clk.Step(realDt)
	}

	for _, cmd := range r.drainCommands() {
		r.execute(cmd)
	}

	for _, rec := range r.runningSnapshot() {
		rec.Graph.Tick(realElapsed, scaled)
	}

	r.mu.Lock()
	r.gcLocked()
	r.recomputeLocked()
	r.mu.Unlock()
}

// IsGameplayBlocked reports whether any registered, running graph has
// pause-gameplay mode enabled (excluding ignore), or the game is in a
// scripted cutscene.
func (r *Registry) IsGameplayBlocked(ignore *cutscene.Graph) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.Graph == ignore {
			continue
		}
		if rec.IsRunning && rec.Graph.BlockGameplay {
			return true
		}
	}
	return r.state != nil && r.state.InCutscene()
}

// SkipAll fast-forwards the current cutscene. Records already in the skip
// queue replay through Skip; freshly skippable lists that only just started
// are reset in isolation instead, so unrelated logic is not replayed.
func (r *Registry) SkipAll() {
	events.Emit("info", "registry.skip_all", "", nil)

	r.mu.Lock()
	var queued, fresh []*Record
	for _, rec := range r.records {
		switch {
		case rec.InSkipQueue:
			queued = append(queued, rec)
		case rec.IsRunning && rec.Graph.Skippable:
			fresh = append(fresh, rec)
		}
	}
	r.mu.Unlock()

	for _, rec := range fresh {
		rec.Graph.KillQuiet()
	}
	r.mu.Lock()
	for _, rec := range fresh {
		rec.IsRunning = false
		rec.InSkipQueue = false
		rec.ResumeIndices = nil
	}
	r.mu.Unlock()

	for _, rec := range queued {
		rec.Graph.Skip()
	}

	r.mu.Lock()
	r.gcLocked()
	r.recomputeLocked()
	r.mu.Unlock()
}

// PauseAll requests a pause on every running graph; each settles once its
// in-flight action completes.
func (r *Registry) PauseAll() {
	for _, rec := range r.runningSnapshot() {
		rec.Graph.Pause()
	}
}

// KillAll terminates every instance unconditionally (scene transition).
func (r *Registry) KillAll() {
	events.Emit("info", "registry.kill_all", "", nil)
	r.killMatching(func(*Record) bool { return true })
}

// KillAllFromScene terminates every instance belonging to the scene.
func (r *Registry) KillAllFromScene(sceneID string) {
	events.Emit("info", "registry.kill_all", "", map[string]interface{}{"scene": sceneID})
	r.killMatching(func(rec *Record) bool { return rec.Graph.SceneID == sceneID })
}

func (r *Registry) killMatching(match func(*Record) bool) {
	r.mu.Lock()
	var doomed []*Record
	kept := r.records[:0]
	for _, rec := range r.records {
		if match(rec) {
			doomed = append(doomed, rec)
		} else {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	r.mu.Unlock()

	for _, rec := range doomed {
		rec.Graph.Kill()
	}

	r.mu.Lock()
	r.recomputeLocked()
	r.mu.Unlock()
}

// SaveData serializes every necessary record, pipe-delimited.
func (r *Registry) SaveData() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		if !rec.necessary() && !rec.IsRunning {
			continue
		}
		parts = append(parts, rec.Serialize())
	}
	return strings.Join(parts, "|")
}

// LoadData replaces the registry contents with the deserialized save data.
// A malformed record is dropped with a warning; the rest still load.
func (r *Registry) LoadData(data string) {
	r.killMatching(func(*Record) bool { return true })

	if data == "" {
		events.Emit("info", "save.loaded", "", map[string]interface{}{"records": 0})
		return
	}

	loaded := 0
	for _, part := range strings.Split(data, "|") {
		if part == "" {
			continue
		}
		rec, err := ParseRecord(part)
		if err != nil {
			events.Emit("warning", "save.dropped", "malformed save record", map[string]interface{}{
				"record": part,
				"error":  err.Error(),
			})
			continue
		}
		if err := r.restoreRecord(rec); err != nil {
			events.Emit("warning", "save.dropped", "failed to restore record", map[string]interface{}{
				"record": rec.ID,
				"error":  err.Error(),
			})
			continue
		}
		loaded++
	}
	events.Emit("info", "save.loaded", "", map[string]interface{}{"records": loaded})
}

func (r *Registry) restoreRecord(rec *SavedRecord) error {
	var g *cutscene.Graph
	if rec.IsNumeric {
		r.mu.Lock()
		g = r.scenes[rec.NumericID]
		r.mu.Unlock()
		if g == nil {
			return fmt.Errorf("unknown scene graph id %d", rec.NumericID)
		}
	} else {
		if r.library == nil {
			return fmt.Errorf("no asset library configured")
		}
		var err error
		g, err = r.library.Instantiate(rec.ID)
		if err != nil {
			return err
		}
	}

	g.SetStartIndex(rec.StartIndex)
	g.SetLinkedGraph(rec.LinkedGraph)
	g.RestoreParams(rec.ParamData)

	switch {
	case len(rec.ResumeIndices) > 0:
		// Branch caches are not persisted, so restored resume nodes always
		// re-execute from scratch.
		if err := g.Resume(r, rec.ResumeIndices, true); err != nil {
			return err
		}
	case rec.IsRunning:
		if err := g.Run(r, rec.StartIndex); err != nil {
			return err
		}
	default:
		r.mu.Lock()
		r.removeLocked(g)
		r.records = append(r.records, &Record{
			Graph:       g,
			StartIndex:  rec.StartIndex,
			InSkipQueue: rec.InSkipQueue,
			LinkedGraph: rec.LinkedGraph,
		})
		r.mu.Unlock()
		return nil
	}

	r.mu.Lock()
	if live := r.findLocked(g); live != nil {
		live.StartIndex = rec.StartIndex
		live.InSkipQueue = rec.InSkipQueue
		live.LinkedGraph = rec.LinkedGraph
	}
	r.mu.Unlock()
	return nil
}

// SaveToSlot settles every running graph, serializes the registry, and
// persists it under the slot.
func (r *Registry) SaveToSlot(slot string) error {
	if slot == "" {
		slot = DefaultSlot
	}
	for _, rec := range r.runningSnapshot() {
		rec.Graph.Settle()
	}
	data := r.SaveData()

	if r.store == nil {
		events.Emit("warning", "save.error", "no save store configured", map[string]interface{}{"slot": slot})
		return fmt.Errorf("no save store configured")
	}
	if err := r.store.SaveState(slot, data); err != nil {
		events.Emit("error", "save.error", "save failed", map[string]interface{}{
			"slot":  slot,
			"error": err.Error(),
		})
		return err
	}
	events.Emit("info", "save.created", "", map[string]interface{}{
		"slot":    slot,
		"records": len(strings.Split(data, "|")),
	})
	return nil
}

// LoadFromSlot loads a persisted save slot back into the registry.
func (r *Registry) LoadFromSlot(slot string) error {
	if slot == "" {
		slot = DefaultSlot
	}
	if r.store == nil {
		events.Emit("warning", "save.error", "no save store configured", map[string]interface{}{"slot": slot})
		return fmt.Errorf("no save store configured")
	}
	data, err := r.store.LoadState(slot)
	if err != nil {
		events.Emit("error", "save.error", "load failed", map[string]interface{}{
			"slot":  slot,
			"error": err.Error(),
		})
		return err
	}
	r.LoadData(data)
	return nil
}

// EnqueueCommand queues a remote command (from MQTT or the API) for the next
// frame, preserving single-writer-per-tick semantics.
func (r *Registry) EnqueueCommand(name, slot string) error {
	switch name {
	case "skip_all", "pause_all", "kill_all", "save", "load":
	default:
		return fmt.Errorf("unknown command: %s", name)
	}
	r.mu.Lock()
	r.commands = append(r.commands, command{name: name, slot: slot})
	r.mu.Unlock()
	return nil
}

func (r *Registry) drainCommands() []command {
	r.mu.Lock()
	cmds := r.commands
	r.commands = nil
	r.mu.Unlock()
	return cmds
}

func (r *Registry) execute(cmd command) {
	events.Emit("info", "command.received", "", map[string]interface{}{
		"command": cmd.name,
		"slot":    cmd.slot,
	})
	switch cmd.name {
	case "skip_all":
		r.SkipAll()
	case "pause_all":
		r.PauseAll()
	case "kill_all":
		r.KillAll()
	case "save":
		r.SaveToSlot(cmd.slot)
	case "load":
		r.LoadFromSlot(cmd.slot)
	}
}

// Status returns a JSON-serializable snapshot for the diagnostic API.
func (r *Registry) Status() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	lists := make([]map[string]interface{}, 0, len(r.records))
	for _, rec := range r.records {
		lists = append(lists, map[string]interface{}{
			"graph":          rec.Graph.Key(),
			"state":          string(rec.Graph.State()),
			"start_index":    rec.StartIndex,
			"in_skip_queue":  rec.InSkipQueue,
			"is_running":     rec.IsRunning,
			"resume_indices": rec.ResumeIndices,
			"trace":          rec.Graph.Trace(),
		})
	}

	mode := ""
	if r.state != nil {
		mode = string(r.state.Mode())
	}
	return map[string]interface{}{
		"mode":    mode,
		"blocked": r.blocked,
		"lists":   lists,
	}
}

// Records returns a snapshot of the current records (for tests).
func (r *Registry) Records() []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Registry) runningSnapshot() []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Record
	for _, rec := range r.records {
		if rec.IsRunning {
			out = append(out, rec)
		}
	}
	return out
}

func (r *Registry) findLocked(g *cutscene.Graph) *Record {
	for _, rec := range r.records {
		if rec.Graph == g {
			return rec
		}
	}
	return nil
}

func (r *Registry) removeLocked(g *cutscene.Graph) {
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.Graph != g {
			kept = append(kept, rec)
		}
	}
	r.records = kept
}

// gcLocked drops records that are neither running nor queued nor holding
// resume data. Iterate-and-compact keeps removal index-safe.
func (r *Registry) gcLocked() {
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.necessary() {
			kept = append(kept, rec)
		}
	}
	r.records = kept
}

// recomputeLocked refreshes the global blocked flag and raises or lowers
// cutscene mode. Runs synchronously after every registration change so
// IsGameplayBlocked always reflects the latest set.
func (r *Registry) recomputeLocked() {
	blocked := false
	for _, rec := range r.records {
		if rec.IsRunning && rec.Graph.BlockGameplay {
			blocked = true
			break
		}
	}
	if blocked == r.blocked {
		return
	}
	r.blocked = blocked

	if blocked {
		events.Emit("info", "registry.blocked", "", nil)
	} else {
		events.Emit("info", "registry.unblocked", "", nil)
	}

	if r.state == nil {
		return
	}
	if blocked {
		if r.state.Mode() == gamestate.ModeNormal {
			r.state.SetMode(gamestate.ModeCutscene)
		}
	} else if r.state.Mode() == gamestate.ModeCutscene {
		r.state.SetMode(gamestate.ModeNormal)
	}
}
