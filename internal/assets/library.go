// Package assets loads authored graph templates from disk and instantiates
// fresh runnable graphs from them.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hollowpine/StorylineEngine/internal/cutscene"
	"github.com/hollowpine/StorylineEngine/internal/events"
)

// Library is the asset resolver: template name to parsed template. Every
// Instantiate call builds a fresh graph, so multiple simultaneous instances
// of one template coexist.
type Library struct {
	dir       string
	env       *cutscene.Env
	templates map[string]*cutscene.Template
}

// Load scans dir for *.json graph templates. A file that fails to parse is
// skipped with a warning rather than failing the whole library.
func Load(dir string, env *cutscene.Env) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset dir: %w", err)
	}

	lib := &Library{
		dir:       dir,
		env:       env,
		templates: make(map[string]*cutscene.Template),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		tmpl, err := cutscene.LoadTemplate(path)
		if err != nil {
			events.Emit("warning", "asset.error", "failed to load template", map[string]interface{}{
				"file":  entry.Name(),
				"error": err.Error(),
			})
			continue
		}
		lib.templates[tmpl.Name()] = tmpl
		events.Emit("info", "asset.loaded", "", map[string]interface{}{
			"file": entry.Name(),
			"name": tmpl.Name(),
		})
	}
	return lib, nil
}

// NewLibrary builds a library from pre-parsed templates (for tests and
// embedders that do not load from disk).
func NewLibrary(env *cutscene.Env, templates ...*cutscene.Template) *Library {
	lib := &Library{
		env:       env,
		templates: make(map[string]*cutscene.Template),
	}
	for _, t := range templates {
		lib.templates[t.Name()] = t
	}
	return lib
}

// Resolve returns the parsed template for a name.
func (l *Library) Resolve(name string) (*cutscene.Template, error) {
	t, ok := l.templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown graph asset: %s", name)
	}
	return t, nil
}

// Instantiate builds a fresh runnable graph from the named template.
func (l *Library) Instantiate(name string) (*cutscene.Graph, error) {
	t, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	return t.Instantiate(l.env)
}

// Names returns the loaded template names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
