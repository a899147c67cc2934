// Package gamestate tracks the global game mode the engine is running under.
package gamestate

import (
	"sync"

	"github.com/hollowpine/StorylineEngine/internal/events"
)

// Mode is the global game mode.
type Mode string

const (
	ModeNormal        Mode = "normal"
	ModeCutscene      Mode = "cutscene"
	ModePaused        Mode = "paused"
	ModeDialogOptions Mode = "dialog_options"
)

// Manager holds the current game mode. The run registry raises and lowers
// ModeCutscene as blocking graphs start and finish; ModePaused and
// ModeDialogOptions are set by the surrounding game.
type Manager struct {
	mu   sync.RWMutex
	mode Mode
}

func NewManager() *Manager {
	return &Manager{mode: ModeNormal}
}

// Mode returns the current game mode.
func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// SetMode changes the game mode and emits mode.changed on transitions.
func (m *Manager) SetMode(mode Mode) {
	m.mu.Lock()
	prev := m.mode
	m.mode = mode
	m.mu.Unlock()

	if prev != mode {
		events.Emit("info", "mode.changed", "", map[string]interface{}{
			"from": string(prev),
			"to":   string(mode),
		})
	}
}

// InCutscene returns true while a blocking cutscene holds the mode.
func (m *Manager) InCutscene() bool {
	return m.Mode() == ModeCutscene
}

// GameplayPaused returns true while the surrounding game is paused.
// Background graphs advance on scaled time, which freezes in this state.
func (m *Manager) GameplayPaused() bool {
	return m.Mode() == ModePaused
}
