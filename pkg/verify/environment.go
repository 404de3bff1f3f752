package verify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rexliu/taintd/pkg/core"
)

// SignatureParameter is one parameter of a resolved callable signature.
type SignatureParameter struct {
	Name string        `json:"name"`
	Kind ParameterKind `json:"kind"`
}

// Callable is a resolved signature as the type checker knows it. Pretty is the
// hover-style rendering used in diagnostics.
type Callable struct {
	Name       core.Reference       `json:"name"`
	Pretty     string               `json:"pretty"`
	Parameters []SignatureParameter `json:"parameters"`
}

// Environment resolves modeled symbols against the type checker's view of the
// project. Implementations live outside the verifier; MapEnvironment below is
// the in-memory one the daemon loads from a snapshot.
type Environment interface {
	LookupCallable(name core.Reference) (Callable, bool)
	LookupClass(name core.Reference) (ClassSummary, bool)
	ResolveAlias(name core.Reference) (core.Reference, bool)
}

// ClassSummary is the attribute surface of a resolved class.
type ClassSummary struct {
	Name       core.Reference `json:"name"`
	Attributes []string       `json:"attributes"`
}

// HasAttribute reports whether the class declares attribute.
func (c ClassSummary) HasAttribute(attribute string) bool {
	for _, candidate := range c.Attributes {
		if candidate == attribute {
			return true
		}
	}
	return false
}

// MapEnvironment backs Environment with plain maps.
type MapEnvironment struct {
	callables map[core.Reference]Callable
	classes   map[core.Reference]ClassSummary
	aliases   map[core.Reference]core.Reference
}

// NewMapEnvironment builds an empty environment.
func NewMapEnvironment() *MapEnvironment {
	return &MapEnvironment{
		callables: make(map[core.Reference]Callable),
		classes:   make(map[core.Reference]ClassSummary),
		aliases:   make(map[core.Reference]core.Reference),
	}
}

// AddCallable registers a resolved callable.
func (e *MapEnvironment) AddCallable(callable Callable) {
	e.callables[callable.Name] = callable
}

// AddClass registers a resolved class.
func (e *MapEnvironment) AddClass(class ClassSummary) {
	e.classes[class.Name] = class
}

// AddAlias registers a re-export from name to its original definition site.
func (e *MapEnvironment) AddAlias(name, actual core.Reference) {
	e.aliases[name] = actual
}

func (e *MapEnvironment) LookupCallable(name core.Reference) (Callable, bool) {
	callable, ok := e.callables[name]
	return callable, ok
}

func (e *MapEnvironment) LookupClass(name core.Reference) (ClassSummary, bool) {
	class, ok := e.classes[name]
	return class, ok
}

func (e *MapEnvironment) ResolveAlias(name core.Reference) (core.Reference, bool) {
	actual, ok := e.aliases[name]
	return actual, ok
}

// snapshot is the type checker's export format for environments.
type snapshot struct {
	Callables []Callable                        `json:"callables"`
	Classes   []ClassSummary                    `json:"classes"`
	Aliases   map[core.Reference]core.Reference `json:"aliases"`
}

// LoadSnapshot reads an environment export from path.
func LoadSnapshot(path string) (*MapEnvironment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode environment snapshot %s: %w", path, err)
	}
	env := NewMapEnvironment()
	for _, callable := range snap.Callables {
		env.AddCallable(callable)
	}
	for _, class := range snap.Classes {
		env.AddClass(class)
	}
	for name, actual := range snap.Aliases {
		env.AddAlias(name, actual)
	}
	return env, nil
}
