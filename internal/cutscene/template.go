package cutscene

import "fmt"

// TemplateSpec is the top-level authored graph format, loaded from JSON.
type TemplateSpec struct {
	Version       int          `json:"version"`
	Name          string       `json:"name"`
	Scene         string       `json:"scene,omitempty"`
	ID            int          `json:"id,omitempty"`
	Skippable     bool         `json:"skippable"`
	BlockGameplay bool         `json:"block_gameplay"`
	StartDelay    float64      `json:"start_delay,omitempty"`
	Params        []ParamSpec  `json:"params,omitempty"`
	Actions       []ActionSpec `json:"actions"`
}

// ParamSpec declares one parameter table entry.
type ParamSpec struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Value  interface{} `json:"value,omitempty"`
	Shared bool        `json:"shared,omitempty"`
}

// OutcomeSpec is one authored outcome.
// Result is one of: continue, stop, jump, run_graph.
type OutcomeSpec struct {
	Result string `json:"result"`
	To     int    `json:"to,omitempty"`
	Target string `json:"target,omitempty"`
}

// ActionSpec is one authored action. Type selects the action family; the
// remaining fields apply per type.
// Allowed types: comment, wait, wait_signal, set_param, cue, run_graph,
// check_param, switch_param, parallel.
type ActionSpec struct {
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`

	Text         string      `json:"text,omitempty"`
	Seconds      float64     `json:"seconds,omitempty"`
	SecondsParam int         `json:"seconds_param,omitempty"`
	Param        int         `json:"param,omitempty"`
	Equals       interface{} `json:"equals,omitempty"`
	Value        interface{} `json:"value,omitempty"`
	Channel      string      `json:"channel,omitempty"`
	Signal       string      `json:"signal,omitempty"`
	Payload      interface{} `json:"payload,omitempty"`
	Target       string      `json:"target,omitempty"`

	WhenTrue  *OutcomeSpec  `json:"when_true,omitempty"`
	WhenFalse *OutcomeSpec  `json:"when_false,omitempty"`
	Outcomes  []OutcomeSpec `json:"outcomes,omitempty"`
}

// Env carries the collaborators an instantiated graph binds to.
type Env struct {
	Globals *Store
	Cues    CueSender

	// SkipGuard overrides DefaultSkipGuardMultiplier for instantiated
	// graphs when > 0.
	SkipGuard int
}

// Template is a parsed, reusable graph asset. Instantiate builds a fresh
// Graph per run, so several instances of one template coexist.
type Template struct {
	spec TemplateSpec
}

func (t *Template) Name() string { return t.spec.Name }

func (t *Template) Scene() string { return t.spec.Scene }

// Instantiate builds a runnable graph from the template.
func (t *Template) Instantiate(env *Env) (*Graph, error) {
	if env == nil {
		env = &Env{}
	}

	actions := make([]Action, 0, len(t.spec.Actions))
	for i, as := range t.spec.Actions {
		a, err := buildAction(&as, env)
		if err != nil {
			return nil, fmt.Errorf("template %s action %d: %w", t.spec.Name, i, err)
		}
		base := a.Base()
		base.Enabled = !as.Disabled
		if as.Label != "" {
			base.Label = as.Label
		}
		actions = append(actions, a)
	}

	g := NewGraph(t.spec.Name, actions)
	g.ID = t.spec.ID
	g.AssetName = t.spec.Name
	g.SceneID = t.spec.Scene
	g.Skippable = t.spec.Skippable
	g.BlockGameplay = t.spec.BlockGameplay
	g.StartDelay = t.spec.StartDelay
	g.SkipGuardMultiplier = env.SkipGuard
	g.Globals = env.Globals

	for _, ps := range t.spec.Params {
		g.Params = append(g.Params, &Parameter{
			ID:     ps.ID,
			Name:   ps.Name,
			Kind:   ParamKind(ps.Kind),
			Value:  ps.Value,
			Shared: ps.Shared,
		})
	}
	return g, nil
}
