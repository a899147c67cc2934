package cutscene

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// nameDelimiters are the characters the save format uses to join record
// fields. A graph name containing one would shift every field behind it, so
// names are rejected at load time.
const nameDelimiters = ":|]"

// LoadTemplate loads a graph template from a JSON file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return ParseTemplate(data)
}

// ParseTemplate parses a graph template from JSON bytes.
func ParseTemplate(data []byte) (*Template, error) {
	var spec TemplateSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse template JSON: %w", err)
	}

	if spec.Version != 1 {
		return nil, fmt.Errorf("unsupported template version: %d", spec.Version)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("template has no name")
	}
	if err := validateName(spec.Name); err != nil {
		return nil, err
	}
	for i := range spec.Actions {
		if err := validateTargets(&spec.Actions[i]); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
	}

	return &Template{spec: spec}, nil
}

func validateName(name string) error {
	if strings.ContainsAny(name, nameDelimiters) {
		return fmt.Errorf("graph name %q contains a reserved character (one of %q)", name, nameDelimiters)
	}
	return nil
}

// validateTargets checks every graph name an action can reference.
func validateTargets(as *ActionSpec) error {
	if as.Target != "" {
		if err := validateName(as.Target); err != nil {
			return err
		}
	}
	for _, oc := range []*OutcomeSpec{as.WhenTrue, as.WhenFalse} {
		if oc != nil && oc.Target != "" {
			if err := validateName(oc.Target); err != nil {
				return err
			}
		}
	}
	for i := range as.Outcomes {
		if t := as.Outcomes[i].Target; t != "" {
			if err := validateName(t); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildAction(as *ActionSpec, env *Env) (Action, error) {
	switch as.Type {
	case "comment":
		return NewCommentAction(as.Text), nil

	case "wait":
		a := NewWaitAction(as.Seconds)
		a.SecondsParam = as.SecondsParam
		return a, nil

	case "wait_signal":
		return NewWaitSignalAction(as.Signal), nil

	case "set_param":
		return NewSetParamAction(as.Param, as.Value), nil

	case "cue":
		return NewCueAction(as.Channel, as.Signal, as.Payload, env.Cues), nil

	case "run_graph":
		if as.Target == "" {
			return nil, fmt.Errorf("run_graph action has no target")
		}
		return NewRunGraphAction(as.Target), nil

	case "check_param":
		paramID := as.Param
		expected := as.Equals
		cond := func(ctx *ParamContext) bool {
			v, ok := ctx.Get(paramID)
			if !ok {
				return false
			}
			return valueEquals(v, expected)
		}
		return NewCheckAction(as.Label, cond, outcomeFromSpec(as.WhenTrue), outcomeFromSpec(as.WhenFalse)), nil

	case "switch_param":
		paramID := as.Param
		sel := func(ctx *ParamContext) int {
			n, ok := ctx.GetInt(paramID)
			if !ok {
				return -1
			}
			return n
		}
		return NewSwitchAction(as.Label, sel, outcomesFromSpecs(as.Outcomes)), nil

	case "parallel":
		return NewParallelAction(as.Label, outcomesFromSpecs(as.Outcomes)), nil
	}
	return nil, fmt.Errorf("unknown action type: %s", as.Type)
}

func outcomeFromSpec(s *OutcomeSpec) Outcome {
	if s == nil {
		return Continue()
	}
	switch s.Result {
	case "", "continue":
		return Continue()
	case "stop":
		return Stop()
	case "jump":
		return Jump(s.To)
	case "run_graph":
		return RunOther(s.Target)
	}
	return Continue()
}

func outcomesFromSpecs(specs []OutcomeSpec) []Outcome {
	out := make([]Outcome, 0, len(specs))
	for i := range specs {
		out = append(out, outcomeFromSpec(&specs[i]))
	}
	return out
}

// valueEquals compares a parameter value against an authored literal,
// tolerating the int/float64 mismatch JSON decoding introduces.
func valueEquals(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
