// Package greeter exports a template-backed greeting service registered
// under a key. The greeting text lives in a resource file the host swaps
// out through the service manifest.
package greeter

import (
	"fmt"
	"os"
	"strings"

	"github.com/vk/patchbay/boot"
)

// Key is the export key the greeter registers under.
const Key = "greeter"

// Greeter renders greetings from a template. The {name} placeholder is
// replaced with the addressee.
type Greeter struct {
	template    string
	defaultName string
}

// Load reads the greeting template from path. The "default_name" param
// sets the addressee used when Greet is called with an empty name.
func Load(path string, params map[string]any) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read greeting template: %w", err)
	}
	g := &Greeter{
		template:    strings.TrimSpace(string(data)),
		defaultName: "world",
	}
	if v, ok := params["default_name"].(string); ok && v != "" {
		g.defaultName = v
	}
	return g, nil
}

// Greet renders the greeting for name, falling back to the default
// addressee when name is empty.
func (g *Greeter) Greet(name string) string {
	if name == "" {
		name = g.defaultName
	}
	return strings.ReplaceAll(g.template, "{name}", name)
}

// Def is the boot catalog entry for the greeting service. It takes the
// resource-backed path; a missing template file means the greeter is
// simply absent from the board.
func Def() boot.Def {
	return boot.Def{
		Name:         "greeter",
		Key:          Key,
		Resource:     "greeting.tmpl",
		FromResource: Load,
		Params:       map[string]any{"default_name": "world"},
	}
}
