package launcher

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/pders01/nearby/internal/validation"
)

//go:embed openers.toml
var openersTOML []byte

// OpenerDefinition describes how to invoke a program with a URL.
type OpenerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Command     string   `toml:"command,omitempty"`
	Args        []string `toml:"args,omitempty"`
	Terminal    bool     `toml:"terminal,omitempty"`
}

type openersFile struct {
	Openers map[string]OpenerDefinition `toml:"openers"`
}

// Registry holds opener definitions, built-in first, then user overrides.
type Registry struct {
	openers map[string]OpenerDefinition
}

func NewRegistry() (*Registry, error) {
	var f openersFile
	if err := toml.Unmarshal(openersTOML, &f); err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}
	if f.Openers == nil {
		f.Openers = make(map[string]OpenerDefinition)
	}
	return &Registry{openers: f.Openers}, nil
}

// LoadUserConfig merges definitions from path, overriding built-ins by name.
// A missing file is ignored.
func (r *Registry) LoadUserConfig(path string) error {
	expanded, err := validation.ExpandHome(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", expanded, err)
	}
	var f openersFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing %s: %w", expanded, err)
	}
	for name, def := range f.Openers {
		r.openers[name] = def
	}
	return nil
}

// Lookup returns the definition for name, if known.
func (r *Registry) Lookup(name string) (OpenerDefinition, bool) {
	def, ok := r.openers[name]
	return def, ok
}

// Command builds the invocation of name for url.
func (r *Registry) Command(name, url string) (*exec.Cmd, error) {
	def, ok := r.openers[name]
	if !ok {
		return exec.Command(name, url), nil
	}
	if len(def.Platforms) > 0 && !slices.Contains(def.Platforms, runtime.GOOS) {
		return nil, fmt.Errorf("%s not supported on %s", name, runtime.GOOS)
	}

	bin := name
	if def.Command != "" {
		bin = def.Command
	}
	args := append(slices.Clone(def.Args), url)
	return exec.Command(bin, args...), nil
}

// Available reports whether the program behind name is installed.
func (r *Registry) Available(name string) bool {
	bin := name
	if def, ok := r.openers[name]; ok && def.Command != "" {
		bin = def.Command
	}
	_, err := exec.LookPath(bin)
	return err == nil
}
