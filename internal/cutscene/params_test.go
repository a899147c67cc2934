package cutscene

import "testing"

func paramGraph() *Graph {
	g := NewGraph("params", nil)
	g.Params = []*Parameter{
		{ID: 1, Name: "attempts", Kind: KindInt, Value: 3},
		{ID: 2, Name: "volume", Kind: KindFloat, Value: 0.8},
		{ID: 3, Name: "door_open", Kind: KindBool, Value: true},
		{ID: 4, Name: "npc_line", Kind: KindString, Value: "hello, traveler: welcome|home"},
	}
	return g
}

func TestParamsSerializeRestoreRoundTrip(t *testing.T) {
	g := paramGraph()
	data := g.SerializeParams()

	restored := paramGraph()
	for _, p := range restored.Params {
		p.Value = nil
	}
	restored.RestoreParams(data)

	ctx := restored.paramContext()
	if v, _ := ctx.GetInt(1); v != 3 {
		t.Errorf("expected attempts 3, got %d", v)
	}
	if v, _ := ctx.GetFloat(2); v != 0.8 {
		t.Errorf("expected volume 0.8, got %v", v)
	}
	if v, _ := ctx.GetBool(3); !v {
		t.Errorf("expected door_open true")
	}
	if v, _ := ctx.Get(4); v != "hello, traveler: welcome|home" {
		t.Errorf("string with delimiters corrupted: %q", v)
	}
}

func TestSerializedParamsAvoidRecordDelimiters(t *testing.T) {
	g := NewGraph("delims", nil)
	g.Params = []*Parameter{
		{ID: 1, Name: "text", Kind: KindString, Value: "a:b|c]d,e=f"},
	}
	data := g.SerializeParams()
	for _, c := range data {
		switch c {
		case ':', '|', ']':
			t.Fatalf("serialized params contain record delimiter %q: %s", c, data)
		}
	}
}

func TestRestoreParamsDropsMalformedEntries(t *testing.T) {
	g := NewGraph("malformed", nil)
	g.Params = []*Parameter{
		{ID: 1, Name: "count", Kind: KindInt, Value: 0},
	}
	g.RestoreParams("garbage,x=i5,1=inotanumber,1=i9")

	ctx := g.paramContext()
	if v, _ := ctx.GetInt(1); v != 9 {
		t.Errorf("valid entry after malformed ones should apply, got %d", v)
	}
}

func TestSharedParamsReadAndWriteGlobalStore(t *testing.T) {
	globals := NewStore()
	globals.Set(10, 42)

	ctx := &ParamContext{
		Local: []*Parameter{
			{ID: 10, Name: "score", Kind: KindInt, Value: 0, Shared: true},
		},
		Global: globals,
	}

	if v, _ := ctx.GetInt(10); v != 42 {
		t.Errorf("shared read should hit the global store, got %d", v)
	}

	ctx.Set(10, 50)
	if v, _ := globals.Get(10); v != 50 {
		t.Errorf("shared write should hit the global store, got %v", v)
	}
}

func TestSharedParamFallsBackToDefault(t *testing.T) {
	ctx := &ParamContext{
		Local: []*Parameter{
			{ID: 11, Name: "chapter", Kind: KindInt, Value: 1, Shared: true},
		},
		Global: NewStore(),
	}
	if v, _ := ctx.GetInt(11); v != 1 {
		t.Errorf("unset shared param should use the declared default, got %d", v)
	}
}

func TestInstanceParamsStayIndependent(t *testing.T) {
	build := func() *ParamContext {
		return &ParamContext{
			Local:  []*Parameter{{ID: 1, Name: "n", Kind: KindInt, Value: 0}},
			Global: NewStore(),
		}
	}
	a, b := build(), build()
	a.Set(1, 5)
	if v, _ := b.GetInt(1); v != 0 {
		t.Errorf("instance parameter leaked between contexts, got %d", v)
	}
}

func TestParamContextNilGlobalIsSafe(t *testing.T) {
	ctx := &ParamContext{}
	if _, ok := ctx.Get(99); ok {
		t.Error("unknown id with no global store should report not found")
	}
	ctx.Set(99, "x") // must not panic
}

func TestEncodeDecodeValueKinds(t *testing.T) {
	cases := []interface{}{7, 2.5, true, false, "plain", "needs escaping: a=b,c"}
	for _, want := range cases {
		got, err := decodeValue(encodeValue(want))
		if err != nil {
			t.Fatalf("decode %v failed: %v", want, err)
		}
		if got != want {
			t.Errorf("round trip changed %v (%T) to %v (%T)", want, want, got, got)
		}
	}
}

func TestDecodeValueRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "z5", "inope", "f??"} {
		if _, err := decodeValue(raw); err == nil {
			t.Errorf("expected decode error for %q", raw)
		}
	}
}
