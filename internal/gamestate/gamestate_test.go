package gamestate

import "testing"

func TestModeTransitions(t *testing.T) {
	m := NewManager()
	if m.Mode() != ModeNormal {
		t.Fatalf("expected normal mode initially, got %s", m.Mode())
	}

	m.SetMode(ModeCutscene)
	if !m.InCutscene() {
		t.Error("expected InCutscene after entering cutscene mode")
	}
	if m.GameplayPaused() {
		t.Error("cutscene mode is not paused mode")
	}

	m.SetMode(ModePaused)
	if !m.GameplayPaused() {
		t.Error("expected GameplayPaused in paused mode")
	}

	m.SetMode(ModeNormal)
	if m.InCutscene() || m.GameplayPaused() {
		t.Error("expected clean normal mode")
	}
}
