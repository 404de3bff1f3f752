package verify

import (
	"strings"

	"github.com/rexliu/taintd/pkg/core"
)

// Verify checks one model against the environment and returns every mismatch
// as a structured error. An empty result means the model is compatible.
func Verify(env Environment, model ModelDefinition) []core.Error {
	if actual, ok := env.ResolveAlias(model.Target); ok && actual != model.Target {
		return []core.Error{stamp(model, core.ImportedFunctionModel{
			Name:       model.Target,
			ActualName: actual,
		})}
	}

	switch model.Kind {
	case ModelAttribute:
		return verifyAttribute(env, model)
	default:
		return verifyCallable(env, model)
	}
}

// VerifyAll checks models in order and concatenates their errors.
func VerifyAll(env Environment, models []ModelDefinition) []core.Error {
	var errs []core.Error
	for _, model := range models {
		errs = append(errs, Verify(env, model)...)
	}
	return errs
}

func verifyAttribute(env Environment, model ModelDefinition) []core.Error {
	className, attribute := splitAttribute(model.Target)
	if className == "" {
		return []core.Error{stamp(model, core.NotInEnvironment{Name: model.Target.String()})}
	}
	class, ok := env.LookupClass(className)
	if !ok {
		return []core.Error{stamp(model, core.NotInEnvironment{Name: model.Target.String()})}
	}
	if !class.HasAttribute(attribute) {
		return []core.Error{stamp(model, core.MissingAttribute{
			ClassName:     className.String(),
			AttributeName: attribute,
		})}
	}
	return nil
}

func verifyCallable(env Environment, model ModelDefinition) []core.Error {
	callable, ok := env.LookupCallable(model.Target)
	if !ok {
		return []core.Error{stamp(model, core.NotInEnvironment{Name: model.Target.String()})}
	}

	var errs []core.Error
	for _, param := range model.Parameters {
		if param.Default != "" && param.Default != EllipsisDefault {
			errs = append(errs, stamp(model, core.InvalidDefaultValue{
				CallableName: model.Target.String(),
				Name:         param.Name,
				Expression:   core.ExpressionText(param.Default),
			}))
		}
	}

	if reasons := incompatibilities(callable, model.Parameters); len(reasons) > 0 {
		errs = append(errs, stamp(model, core.IncompatibleModelError{
			Name:         model.Target,
			CallableType: core.TypeText(callable.Pretty),
			Reasons:      reasons,
		}))
	}
	return errs
}

// incompatibilities compares the modeled parameter list against the real
// signature, in model order.
func incompatibilities(callable Callable, params []ModelParameter) []core.IncompatibilityReason {
	positionalSlots := 0
	named := make(map[string]struct{})
	hasStar := false
	hasStarStar := false
	for _, param := range callable.Parameters {
		switch param.Kind {
		case ParamPositionalOnly:
			positionalSlots++
		case ParamNamed:
			positionalSlots++
			named[param.Name] = struct{}{}
		case ParamStar:
			hasStar = true
		case ParamStarStar:
			hasStarStar = true
		}
	}

	var reasons []core.IncompatibilityReason
	position := 0
	for _, param := range params {
		switch param.Kind {
		case ParamPositionalOnly:
			position++
			if position > positionalSlots && !hasStar {
				reasons = append(reasons, core.UnexpectedPositionalOnlyParameter{Name: param.Name})
			}
		case ParamNamed:
			if _, ok := named[param.Name]; !ok && !hasStarStar {
				reasons = append(reasons, core.UnexpectedNamedParameter{Name: param.Name})
			}
		case ParamStar:
			if !hasStar {
				reasons = append(reasons, core.UnexpectedStarredParameter{})
			}
		case ParamStarStar:
			if !hasStarStar {
				reasons = append(reasons, core.UnexpectedDoubleStarredParameter{})
			}
		}
	}
	return reasons
}

func splitAttribute(target core.Reference) (core.Reference, string) {
	s := target.String()
	idx := strings.LastIndexByte(s, '.')
	if idx < 0 {
		return "", s
	}
	return core.Reference(s[:idx]), s[idx+1:]
}

func stamp(model ModelDefinition, kind core.Kind) core.Error {
	err := core.Error{Kind: kind, Location: model.Location}
	if model.Path != "" {
		path := model.Path
		err.Path = &path
	}
	return err
}
