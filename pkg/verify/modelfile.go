package verify

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/rexliu/taintd/pkg/core"
)

// fileModel is the structured on-disk form of one model. The Python-syntax
// model parser runs upstream and exports this shape.
type fileModel struct {
	Target     string          `toml:"target"`
	Kind       string          `toml:"kind"`
	Line       int             `toml:"line"`
	Parameters []fileParameter `toml:"parameters"`
}

type fileParameter struct {
	Name    string `toml:"name"`
	Kind    string `toml:"kind"`
	Default string `toml:"default"`
}

type modelFile struct {
	Models []fileModel `toml:"model"`
}

// LoadModelFile reads structured model definitions from a TOML file. Each
// definition is anchored to the file and its declared line.
func LoadModelFile(path string) ([]ModelDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file modelFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode model file %s: %w", path, err)
	}
	models := make([]ModelDefinition, 0, len(file.Models))
	for i, raw := range file.Models {
		model, err := raw.toDefinition(core.Path(path))
		if err != nil {
			return nil, fmt.Errorf("model file %s entry %d: %w", path, i, err)
		}
		models = append(models, model)
	}
	return models, nil
}

func (raw fileModel) toDefinition(path core.Path) (ModelDefinition, error) {
	if raw.Target == "" {
		return ModelDefinition{}, fmt.Errorf("target required")
	}
	kind := ModelKind(raw.Kind)
	switch kind {
	case "":
		kind = ModelCallable
	case ModelCallable, ModelAttribute:
	default:
		return ModelDefinition{}, fmt.Errorf("unknown model kind %q", raw.Kind)
	}
	line := raw.Line
	if line <= 0 {
		line = 1
	}
	params := make([]ModelParameter, 0, len(raw.Parameters))
	for _, p := range raw.Parameters {
		paramKind := ParameterKind(p.Kind)
		switch paramKind {
		case "":
			paramKind = ParamNamed
		case ParamPositionalOnly, ParamNamed, ParamStar, ParamStarStar:
		default:
			return ModelDefinition{}, fmt.Errorf("unknown parameter kind %q", p.Kind)
		}
		params = append(params, ModelParameter{Name: p.Name, Kind: paramKind, Default: p.Default})
	}
	return ModelDefinition{
		Target:     core.Reference(raw.Target),
		Kind:       kind,
		Parameters: params,
		Path:       path,
		Location:   core.Location{Start: core.Position{Line: line, Column: 1}, Stop: core.Position{Line: line, Column: 1}},
	}, nil
}
