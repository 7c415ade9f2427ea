package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

// ErrUnknownKind is returned for a template id that is not registered.
var ErrUnknownKind = errors.New("unknown template kind")

// Field describes one named input of a template.
type Field struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required,omitempty"`
}

// Template is a declarative prompt definition for one content kind.
type Template struct {
	Kind     string  `json:"kind"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	System   string  `json:"-"`
	Fields   []Field `json:"fields"`
	Settings []Field `json:"settings"`
	// SecondaryField names the item field shown next to the identifier in exports.
	SecondaryField string `json:"secondaryField,omitempty"`
	MaxTokens      int    `json:"maxTokens"`

	body *template.Template
}

// Prompt is the rendered provider input for one item.
type Prompt struct {
	Kind        string
	System      string
	Instruction string
	MaxTokens   int
}

// Pair is a labelled value passed to template bodies.
type Pair struct {
	Name  string
	Label string
	Value string
}

type promptData struct {
	Identifier string
	Setting    map[string]string
	Settings   []Pair
	Fields     []Pair
	Extra      []Pair
}

// Registry holds the templates by kind.
type Registry struct {
	templates map[string]Template
}

// NewRegistry parses the template bodies for defs from the embedded files.
func NewRegistry(defs []Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]Template, len(defs))}
	for _, def := range defs {
		if def.Kind == "" {
			return nil, fmt.Errorf("template without kind")
		}
		body, err := template.New(def.Kind+".tmpl").Option("missingkey=zero").ParseFS(templateFiles, "templates/"+def.Kind+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", def.Kind, err)
		}
		def.body = body
		r.templates[def.Kind] = def
	}
	return r, nil
}

var defaultRegistry = mustRegistry(builtinTemplates)

func mustRegistry(defs []Template) *Registry {
	r, err := NewRegistry(defs)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry
}

// Get returns the template for kind.
func (r *Registry) Get(kind string) (Template, bool) {
	t, ok := r.templates[kind]
	return t, ok
}

// List returns every template ordered by kind.
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Build renders the instruction for one item. Every non-empty setting and field
// ends up in the instruction; names the template does not declare are listed
// under "Additional details".
func (r *Registry) Build(kind, identifier string, settings, fields map[string]string) (Prompt, error) {
	t, ok := r.templates[kind]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	data := promptData{
		Identifier: strings.TrimSpace(identifier),
		Setting:    map[string]string{},
	}
	if data.Identifier == "" {
		data.Identifier = "the student"
	}

	declaredSettings := map[string]bool{}
	for _, f := range t.Settings {
		declaredSettings[f.Name] = true
		if v := strings.TrimSpace(settings[f.Name]); v != "" {
			data.Setting[f.Name] = v
			data.Settings = append(data.Settings, Pair{Name: f.Name, Label: f.Label, Value: v})
		}
	}
	declaredFields := map[string]bool{}
	for _, f := range t.Fields {
		declaredFields[f.Name] = true
		if v := strings.TrimSpace(fields[f.Name]); v != "" {
			data.Fields = append(data.Fields, Pair{Name: f.Name, Label: f.Label, Value: v})
		}
	}
	data.Extra = append(data.Extra, extras(settings, declaredSettings)...)
	data.Extra = append(data.Extra, extras(fields, declaredFields)...)

	var buf bytes.Buffer
	if err := t.body.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("render template %s: %w", kind, err)
	}
	return Prompt{
		Kind:        kind,
		System:      t.System,
		Instruction: strings.TrimSpace(buf.String()),
		MaxTokens:   t.MaxTokens,
	}, nil
}

// Build renders with the default registry.
func Build(kind, identifier string, settings, fields map[string]string) (Prompt, error) {
	return defaultRegistry.Build(kind, identifier, settings, fields)
}

func extras(values map[string]string, declared map[string]bool) []Pair {
	names := make([]string, 0, len(values))
	for name, v := range values {
		if declared[name] || strings.TrimSpace(v) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Pair, 0, len(names))
	for _, name := range names {
		out = append(out, Pair{Name: name, Label: humanize(name), Value: strings.TrimSpace(values[name])})
	}
	return out
}

// humanize turns camelCase or snake_case keys into a label.
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteRune(' ')
			b.WriteRune(r + ('a' - 'A'))
		case i == 0 && r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
