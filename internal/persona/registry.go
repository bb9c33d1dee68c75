package persona

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dyike/CortexChat/consts"
)

var ErrNotFound = errors.New("persona not found")

// Persona is a response style with its own prompt template and optional retrieval grounding.
// PromptTemplate uses {input} for the question and {history} for the bound context.
type Persona struct {
	ID             string `yaml:"id" json:"id"`
	DisplayName    string `yaml:"display_name" json:"display_name"`
	PromptTemplate string `yaml:"prompt_template" json:"prompt_template"`
	ToolPrefix     string `yaml:"tool_prefix" json:"tool_prefix"`
	UsesRetrieval  bool   `yaml:"uses_retrieval" json:"uses_retrieval"`
}

// Registry is read-only once built.
type Registry struct {
	personas []Persona
	index    map[string]int
}

func NewRegistry(personas ...Persona) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(personas))}
	for _, p := range personas {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, errors.New("persona id cannot be empty")
		}
		if strings.TrimSpace(p.PromptTemplate) == "" {
			return nil, fmt.Errorf("persona %q: prompt template cannot be empty", id)
		}
		key := strings.ToLower(id)
		if _, dup := r.index[key]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", id)
		}
		p.ID = id
		if p.DisplayName == "" {
			p.DisplayName = id
		}
		r.index[key] = len(r.personas)
		r.personas = append(r.personas, p)
	}
	if len(r.personas) == 0 {
		return nil, errors.New("no personas configured")
	}
	return r, nil
}

func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Persona{
			ID:             consts.PersonaGeneric,
			DisplayName:    "Generic Assistant",
			PromptTemplate: genericTemplate,
			ToolPrefix:     "You are a helpful assistant. Use tools to answer questions.",
		},
		Persona{
			ID:             consts.PersonaTwin,
			DisplayName:    "Satya Nadella Twin",
			PromptTemplate: twinTemplate,
			ToolPrefix: "You are Satya Nadella's digital twin. Use tools if helpful. " +
				"Think like Satya: empathetic, grounded, and futuristic.",
			UsesRetrieval: true,
		},
	)
	if err != nil {
		panic(err)
	}
	return r
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadFile reads a YAML document with a top-level "personas" list.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}
	var f personaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse persona file %s: %w", path, err)
	}
	r, err := NewRegistry(f.Personas...)
	if err != nil {
		return nil, fmt.Errorf("persona file %s: %w", path, err)
	}
	return r, nil
}

// Resolve matches an id or a display name, ignoring case.
func (r *Registry) Resolve(idOrName string) (Persona, error) {
	key := strings.ToLower(strings.TrimSpace(idOrName))
	if i, ok := r.index[key]; ok {
		return r.personas[i], nil
	}
	for _, p := range r.personas {
		if strings.ToLower(p.DisplayName) == key {
			return p, nil
		}
	}
	return Persona{}, fmt.Errorf("%w: %q", ErrNotFound, idOrName)
}

func (r *Registry) List() []Persona {
	out := make([]Persona, len(r.personas))
	copy(out, r.personas)
	return out
}

func (r *Registry) IDs() []string {
	ids := make([]string, len(r.personas))
	for i, p := range r.personas {
		ids[i] = p.ID
	}
	return ids
}
