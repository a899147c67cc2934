package cutscene

import "testing"

func TestCheckActionSelectsBranch(t *testing.T) {
	a := NewCheckAction("gate", func(*ParamContext) bool { return true }, Jump(5), Stop())
	a.Run()
	if oc := a.End(); oc.Action != ResultJump || oc.JumpTo != 5 {
		t.Errorf("expected true branch jump 5, got %+v", oc)
	}

	b := NewCheckAction("gate", func(*ParamContext) bool { return false }, Jump(5), Stop())
	b.Run()
	if oc := b.End(); oc.Action != ResultStop {
		t.Errorf("expected false branch stop, got %+v", oc)
	}
}

func TestCheckActionSkipReusesCache(t *testing.T) {
	flag := true
	a := NewCheckAction("gate", func(*ParamContext) bool { return flag }, Continue(), Stop())

	a.Run()
	flag = false
	a.Skip()
	if oc := a.End(); oc.Action != ResultContinue {
		t.Errorf("skip must reuse the run's decision, got %+v", oc)
	}
}

func TestCheckActionSkipEvaluatesWhenNeverRun(t *testing.T) {
	a := NewCheckAction("gate", func(*ParamContext) bool { return false }, Continue(), Jump(3))
	a.Skip()
	if oc := a.End(); oc.Action != ResultJump || oc.JumpTo != 3 {
		t.Errorf("unreached branch should evaluate during skip, got %+v", oc)
	}
}

func TestCheckActionWithoutConditionTakesFalseBranch(t *testing.T) {
	a := NewCheckAction("gate", nil, Continue(), Stop())
	a.Run()
	if oc := a.End(); oc.Action != ResultStop {
		t.Errorf("missing condition should take the false branch, got %+v", oc)
	}
}

func TestSwitchActionSelectsOutcome(t *testing.T) {
	a := NewSwitchAction("pick", func(*ParamContext) int { return 1 },
		[]Outcome{Jump(10), Jump(20), Jump(30)})
	a.Run()
	if oc := a.End(); oc.Action != ResultJump || oc.JumpTo != 20 {
		t.Errorf("expected outcome 1 (jump 20), got %+v", oc)
	}
}

func TestSwitchActionOutOfRangeStops(t *testing.T) {
	a := NewSwitchAction("pick", func(*ParamContext) int { return 7 },
		[]Outcome{Continue(), Continue()})
	a.Run()
	if oc := a.End(); oc.Action != ResultStop {
		t.Errorf("out-of-range selector should stop, got %+v", oc)
	}

	b := NewSwitchAction("pick", func(*ParamContext) int { return -2 },
		[]Outcome{Continue()})
	b.Run()
	if oc := b.End(); oc.Action != ResultStop {
		t.Errorf("negative selector should stop, got %+v", oc)
	}
}

func TestSwitchActionWithoutSelectorStops(t *testing.T) {
	a := NewSwitchAction("pick", nil, []Outcome{Continue()})
	a.Run()
	if oc := a.End(); oc.Action != ResultStop {
		t.Errorf("missing selector should stop, got %+v", oc)
	}
}

func TestSwitchActionCachesNegativeResult(t *testing.T) {
	n := -1
	a := NewSwitchAction("pick", func(*ParamContext) int { return n },
		[]Outcome{Jump(10), Jump(20)})

	a.Run()
	if oc := a.End(); oc.Action != ResultStop {
		t.Fatalf("negative selector should stop, got %+v", oc)
	}

	// The selector would now resolve in range; the cached degraded result
	// must still win during replay.
	n = 1
	a.Skip()
	if oc := a.End(); oc.Action != ResultStop {
		t.Errorf("skip must reuse the cached negative result, got %+v", oc)
	}
}

func TestSwitchActionSkipReusesCache(t *testing.T) {
	n := 0
	a := NewSwitchAction("pick", func(*ParamContext) int { return n },
		[]Outcome{Jump(10), Jump(20)})
	a.Run()
	n = 1
	a.Skip()
	if oc := a.End(); oc.JumpTo != 10 {
		t.Errorf("skip must reuse the cached selection, got %+v", oc)
	}
}
