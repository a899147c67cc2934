package cutscene

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/hollowpine/StorylineEngine/internal/events"
)

// ParamKind is the declared type of a parameter value.
type ParamKind string

const (
	KindInt    ParamKind = "int"
	KindFloat  ParamKind = "float"
	KindBool   ParamKind = "bool"
	KindString ParamKind = "string"
)

// Parameter is one entry in a graph's parameter table. Shared parameters
// read and write the global store; per-instance parameters keep their value
// on the graph, so concurrent instances of one asset stay independent.
type Parameter struct {
	ID     int
	Name   string
	Kind   ParamKind
	Value  interface{}
	Shared bool
}

// Store is the global parameter value store, keyed by integer ID.
type Store struct {
	mu     sync.RWMutex
	values map[int]interface{}
}

func NewStore() *Store {
	return &Store{values: make(map[int]interface{})}
}

func (s *Store) Get(id int) (interface{}, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	return v, ok
}

func (s *Store) Set(id int, v interface{}) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.values[id] = v
	s.mu.Unlock()
}

// ParamContext is what actions resolve their bound fields against: the
// owning graph's parameter table backed by the global store.
type ParamContext struct {
	Local  []*Parameter
	Global *Store
}

func (c *ParamContext) find(id int) *Parameter {
	for _, p := range c.Local {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Get resolves a parameter value by ID. Shared parameters consult the global
// store first, falling back to the declared default; unknown IDs fall
// through to the global store.
func (c *ParamContext) Get(id int) (interface{}, bool) {
	if p := c.find(id); p != nil {
		if p.Shared {
			if v, ok := c.Global.Get(id); ok {
				return v, true
			}
		}
		return p.Value, true
	}
	return c.Global.Get(id)
}

// Set writes a parameter value by ID, honoring shared semantics.
func (c *ParamContext) Set(id int, v interface{}) {
	if p := c.find(id); p != nil {
		if p.Shared {
			c.Global.Set(id, v)
			return
		}
		p.Value = v
		return
	}
	c.Global.Set(id, v)
}

// GetFloat resolves a parameter as float64, accepting ints.
func (c *ParamContext) GetFloat(id int) (float64, bool) {
	v, ok := c.Get(id)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// GetInt resolves a parameter as int, accepting JSON float64 values.
func (c *ParamContext) GetInt(id int) (int, bool) {
	v, ok := c.Get(id)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

// GetBool resolves a parameter as bool.
func (c *ParamContext) GetBool(id int) (bool, bool) {
	v, ok := c.Get(id)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// SerializeParams renders the graph's parameter table as save data:
// comma-joined id=<kind-prefix><value> pairs. String values are
// percent-escaped so the record delimiters can never collide.
func (g *Graph) SerializeParams() string {
	ctx := g.paramContext()
	parts := make([]string, 0, len(g.Params))
	for _, p := range g.Params {
		v, _ := ctx.Get(p.ID)
		parts = append(parts, fmt.Sprintf("%d=%s", p.ID, encodeValue(v)))
	}
	return strings.Join(parts, ",")
}

// RestoreParams applies serialized parameter data back onto the graph.
// Malformed entries are dropped with a warning rather than failing the load.
func (g *Graph) RestoreParams(data string) {
	if data == "" {
		return
	}
	ctx := g.paramContext()
	for _, part := range strings.Split(data, ",") {
		idStr, raw, ok := strings.Cut(part, "=")
		if !ok {
			g.warnParam(part, "missing separator")
			continue
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			g.warnParam(part, "bad parameter id")
			continue
		}
		v, err := decodeValue(raw)
		if err != nil {
			g.warnParam(part, err.Error())
			continue
		}
		ctx.Set(id, v)
	}
}

func (g *Graph) warnParam(entry, reason string) {
	events.Emit("warning", "save.dropped", "bad parameter entry", map[string]interface{}{
		"graph": g.Key(),
		"entry": entry,
		"error": reason,
	})
}

func encodeValue(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return "s"
	case bool:
		if n {
			return "b1"
		}
		return "b0"
	case int:
		return "i" + strconv.Itoa(n)
	case float64:
		return "f" + strconv.FormatFloat(n, 'g', -1, 64)
	case string:
		return "s" + url.QueryEscape(n)
	}
	return "s" + url.QueryEscape(fmt.Sprintf("%v", v))
}

func decodeValue(raw string) (interface{}, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty value")
	}
	kind, body := raw[0], raw[1:]
	switch kind {
	case 'b':
		return body == "1", nil
	case 'i':
		n, err := strconv.Atoi(body)
		if err != nil {
			return nil, fmt.Errorf("bad int value: %s", body)
		}
		return n, nil
	case 'f':
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float value: %s", body)
		}
		return f, nil
	case 's':
		s, err := url.QueryUnescape(body)
		if err != nil {
			return nil, fmt.Errorf("bad string value: %s", body)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown value kind: %c", kind)
}
