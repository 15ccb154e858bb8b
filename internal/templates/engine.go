// Package templates resolves page templates: embedded defaults, overridable
// per-name from a user template directory.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

//go:embed defaults/*.html.tmpl
var defaultFS embed.FS

// ErrTemplateMissing indicates a referenced template exists neither as a user
// override nor as an embedded default. Fatal for the run.
var ErrTemplateMissing = errors.New("template not found")

// Source identifies where a resolved template came from.
type Source string

const (
	SourceEmbedded Source = "embedded"
	SourceFile     Source = "file"
)

// Info captures the resolution details for a template name.
type Info struct {
	Source Source `json:"source"`
	Path   string `json:"path,omitempty"`
}

// Engine resolves and caches parsed templates. A template name maps to
// <name>.html.tmpl; every page template is parsed together with the shared
// base layout.
type Engine struct {
	userDir string

	mu    sync.Mutex
	cache map[string]*template.Template
	usage map[string]Info
}

// NewEngine creates an engine. userDir may be empty (embedded defaults only).
func NewEngine(userDir string) *Engine {
	return &Engine{
		userDir: userDir,
		cache:   make(map[string]*template.Template),
		usage:   make(map[string]Info),
	}
}

// funcs available to all templates.
var funcs = template.FuncMap{
	"dateFormat": func(layout string, t time.Time) string { return t.Format(layout) },
	"titleCase":  titleCase,
	"lower":      strings.ToLower,
	"now":        time.Now,
}

// Resolve returns the parsed template for name, preferring a user override
// file over the embedded default.
func (e *Engine) Resolve(name string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tpl, ok := e.cache[name]; ok {
		return tpl, nil
	}

	raw, info, err := e.load(name)
	if err != nil {
		return nil, err
	}

	base, err := defaultFS.ReadFile("defaults/base.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read embedded base template: %w", err)
	}

	tpl, err := template.New(name).Funcs(funcs).Parse(string(base))
	if err != nil {
		return nil, fmt.Errorf("parse base template: %w", err)
	}
	if tpl, err = tpl.Parse(raw); err != nil {
		return nil, fmt.Errorf("parse template %s (%s): %w", name, info.Source, err)
	}

	e.cache[name] = tpl
	e.usage[name] = info
	return tpl, nil
}

// load returns the raw template text for name and where it came from.
func (e *Engine) load(name string) (string, Info, error) {
	file := name + ".html.tmpl"
	if e.userDir != "" {
		path := filepath.Join(e.userDir, file)
		if data, err := os.ReadFile(path); err == nil {
			return string(data), Info{Source: SourceFile, Path: path}, nil
		}
	}
	if data, err := defaultFS.ReadFile("defaults/" + file); err == nil {
		return string(data), Info{Source: SourceEmbedded}, nil
	}
	return "", Info{}, fmt.Errorf("%w: %s", ErrTemplateMissing, name)
}

// Usage reports which source served each resolved template, for the build
// report.
func (e *Engine) Usage() map[string]Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]Info, len(e.usage))
	for k, v := range e.usage {
		out[k] = v
	}
	return out
}

// titleCase converts a string to title case (portable alternative to strings.Title).
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}
