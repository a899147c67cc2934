package cutscene

import "testing"

const introTemplate = `{
  "version": 1,
  "name": "intro",
  "scene": "foyer",
  "skippable": true,
  "block_gameplay": true,
  "params": [
    {"id": 1, "name": "greeted", "kind": "bool", "value": false}
  ],
  "actions": [
    {"type": "comment", "text": "opening beat"},
    {"type": "check_param", "param": 1, "equals": true,
      "when_true": {"result": "jump", "to": 3},
      "when_false": {"result": "continue"}},
    {"type": "set_param", "param": 1, "value": true},
    {"type": "wait", "seconds": 1.5}
  ]
}`

func TestParseTemplateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"bad json", `{"version": 1,`},
		{"wrong version", `{"version": 2, "name": "x", "actions": []}`},
		{"missing name", `{"version": 1, "actions": []}`},
		{"unknown action", `{"version": 1, "name": "x", "actions": [{"type": "teleport"}]}`},
		{"run_graph without target", `{"version": 1, "name": "x", "actions": [{"type": "run_graph"}]}`},
	}
	for _, tc := range cases {
		tmpl, err := ParseTemplate([]byte(tc.data))
		if err == nil {
			// Unknown actions surface at instantiation.
			if _, ierr := tmpl.Instantiate(nil); ierr == nil {
				t.Errorf("%s: expected an error", tc.name)
			}
		}
	}
}

func TestParseTemplateRejectsDelimiterNames(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"colon in name", `{"version": 1, "name": "act:one", "actions": []}`},
		{"pipe in name", `{"version": 1, "name": "act|one", "actions": []}`},
		{"colon in action target", `{"version": 1, "name": "x", "actions": [
			{"type": "run_graph", "target": "next:part"}]}`},
		{"pipe in outcome target", `{"version": 1, "name": "x", "actions": [
			{"type": "switch_param", "param": 1, "outcomes": [
				{"result": "run_graph", "target": "a|b"}]}]}`},
		{"bracket in branch target", `{"version": 1, "name": "x", "actions": [
			{"type": "check_param", "param": 1, "equals": true,
				"when_true": {"result": "run_graph", "target": "fin]ale"}}]}`},
	}
	for _, tc := range cases {
		if _, err := ParseTemplate([]byte(tc.data)); err == nil {
			t.Errorf("%s: expected a reserved-character error", tc.name)
		}
	}
}

func TestInstantiateBuildsRunnableGraph(t *testing.T) {
	tmpl, err := ParseTemplate([]byte(introTemplate))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tmpl.Name() != "intro" {
		t.Errorf("expected name intro, got %s", tmpl.Name())
	}
	if tmpl.Scene() != "foyer" {
		t.Errorf("expected scene foyer, got %s", tmpl.Scene())
	}

	g, err := tmpl.Instantiate(&Env{Globals: NewStore()})
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	if g.AssetName != "intro" || !g.Skippable || !g.BlockGameplay {
		t.Errorf("template flags not carried: %+v", g)
	}
	if len(g.Actions) != 4 {
		t.Fatalf("expected 4 actions, got %d", len(g.Actions))
	}

	tr := newStubTracker()
	if err := g.Run(tr, 0); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// greeted is false, so the check falls through to set_param and the wait.
	if !sameTrace(g.Trace(), []int{0, 1, 2, 3}) {
		t.Errorf("expected trace [0 1 2 3], got %v", g.Trace())
	}
	if g.State() != StateRunning {
		t.Errorf("expected graph waiting on action 3, got %s", g.State())
	}

	g.Tick(2, 2)
	if g.State() != StateFinished {
		t.Errorf("expected finished, got %s", g.State())
	}
	if v, _ := g.paramContext().GetBool(1); !v {
		t.Errorf("set_param did not apply")
	}
}

func TestInstantiateProducesIndependentInstances(t *testing.T) {
	tmpl, err := ParseTemplate([]byte(introTemplate))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	env := &Env{Globals: NewStore()}
	a, _ := tmpl.Instantiate(env)
	b, _ := tmpl.Instantiate(env)

	a.paramContext().Set(1, true)
	if v, _ := b.paramContext().GetBool(1); v {
		t.Error("parameter write leaked into a sibling instance")
	}
}

func TestInstantiateAppliesSkipGuardFromEnv(t *testing.T) {
	tmpl, err := ParseTemplate([]byte(introTemplate))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	g, err := tmpl.Instantiate(&Env{SkipGuard: 5})
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	if g.SkipGuardMultiplier != 5 {
		t.Errorf("expected skip guard 5, got %d", g.SkipGuardMultiplier)
	}
}

func TestSwitchTemplateRoutesByParam(t *testing.T) {
	const data = `{
	  "version": 1,
	  "name": "router",
	  "params": [{"id": 1, "name": "mood", "kind": "int", "value": 1}],
	  "actions": [
	    {"type": "switch_param", "param": 1, "outcomes": [
	      {"result": "jump", "to": 1},
	      {"result": "jump", "to": 2},
	      {"result": "stop"}
	    ]},
	    {"type": "comment", "text": "calm"},
	    {"type": "comment", "text": "angry"}
	  ]
	}`
	tmpl, err := ParseTemplate([]byte(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	g, err := tmpl.Instantiate(nil)
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}

	tr := newStubTracker()
	g.Run(tr, 0)
	if !sameTrace(g.Trace(), []int{0, 2}) {
		t.Errorf("expected switch to route to index 2, got %v", g.Trace())
	}
}

func TestTemplateDisabledActionStaysDisabled(t *testing.T) {
	const data = `{
	  "version": 1,
	  "name": "partially",
	  "actions": [
	    {"type": "comment", "text": "kept"},
	    {"type": "wait", "seconds": 99, "disabled": true},
	    {"type": "comment", "text": "after"}
	  ]
	}`
	tmpl, err := ParseTemplate([]byte(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	g, _ := tmpl.Instantiate(nil)

	tr := newStubTracker()
	g.Run(tr, 0)
	if g.State() != StateFinished {
		t.Errorf("disabled wait should be free, got %s", g.State())
	}
	if !sameTrace(g.Trace(), []int{0, 2}) {
		t.Errorf("expected trace [0 2], got %v", g.Trace())
	}
}
