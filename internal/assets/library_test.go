package assets

import (
	"testing"

	"github.com/hollowpine/StorylineEngine/internal/cutscene"
)

func TestLoadSkipsBrokenTemplates(t *testing.T) {
	lib, err := Load("testdata", &cutscene.Env{Globals: cutscene.NewStore()})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	names := lib.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 loaded templates, got %v", names)
	}
	if names[0] != "ambience" || names[1] != "intro" {
		t.Errorf("expected sorted [ambience intro], got %v", names)
	}
	if _, err := lib.Resolve("broken"); err == nil {
		t.Error("broken template should not be resolvable")
	}
}

func TestLoadMissingDirFails(t *testing.T) {
	if _, err := Load("testdata/nope", nil); err == nil {
		t.Error("expected error for missing asset dir")
	}
}

func TestInstantiateReturnsFreshInstances(t *testing.T) {
	lib, err := Load("testdata", &cutscene.Env{Globals: cutscene.NewStore()})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	a, err := lib.Instantiate("intro")
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	b, err := lib.Instantiate("intro")
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	if a == b {
		t.Error("expected distinct graph instances")
	}
	if a.AssetName != "intro" || a.SceneID != "foyer" {
		t.Errorf("template identity not carried: %+v", a)
	}

	if _, err := lib.Instantiate("missing"); err == nil {
		t.Error("expected error for unknown asset")
	}
}
