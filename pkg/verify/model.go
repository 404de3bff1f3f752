package verify

import "github.com/rexliu/taintd/pkg/core"

// ParameterKind enumerates parameter flavors shared by models and signatures.
type ParameterKind string

const (
	ParamPositionalOnly ParameterKind = "positional_only"
	ParamNamed          ParameterKind = "named"
	ParamStar           ParameterKind = "star"
	ParamStarStar       ParameterKind = "star_star"
)

// ModelKind distinguishes callable models from attribute models.
type ModelKind string

const (
	ModelCallable  ModelKind = "callable"
	ModelAttribute ModelKind = "attribute"
)

// EllipsisDefault is the only default value the model syntax accepts.
const EllipsisDefault = "..."

// ModelParameter is one declared parameter of a callable model. Default holds
// the source text of the default value, empty when none was written.
type ModelParameter struct {
	Name    string
	Kind    ParameterKind
	Default string
}

// ModelDefinition is the structured form of one user-authored taint model,
// as produced by the model parser. Path is empty for synthesized models.
type ModelDefinition struct {
	Target     core.Reference
	Kind       ModelKind
	Parameters []ModelParameter
	Path       core.Path
	Location   core.Location
}
