package core

import (
	"fmt"
	"strings"
)

// Display renders a verification error as a single user-facing line. It is
// total and pure; callers treat the result as opaque final output.
func Display(err Error) string {
	origin := ""
	if err.Path != nil {
		origin = fmt.Sprintf(" defined in `%s:%d`", err.Path.Absolute(), err.Location.Start.Line)
	}
	name, message := describe(err.Kind)
	return fmt.Sprintf("Invalid model for `%s`%s: %s", name, origin, message)
}

// ModelName returns the model name Display uses in the rendered header.
func ModelName(kind Kind) string {
	name, _ := describe(kind)
	return name
}

func describe(kind Kind) (string, string) {
	switch k := kind.(type) {
	case InvalidDefaultValue:
		message := fmt.Sprintf(
			"Default values of `%s`'s parameters must be `...`. Did you mean to write `%s: %s`?",
			k.CallableName, k.Name, k.Expression.PrettyExpression())
		return k.CallableName, message
	case IncompatibleModelError:
		clauses := make([]string, 0, len(k.Reasons))
		for _, reason := range k.Reasons {
			clauses = append(clauses, reasonClause(reason))
		}
		plural := ""
		if len(k.Reasons) > 1 {
			plural = "s"
		}
		message := fmt.Sprintf(
			"Model signature parameters for `%s` do not match implementation `%s`. Reason%s: %s.",
			k.Name, k.CallableType.PrettyType(), plural, strings.Join(clauses, "; "))
		return k.Name.String(), message
	case ImportedFunctionModel:
		message := fmt.Sprintf(
			"The modelled function `%s` is an imported function, please model `%s` directly.",
			k.Name, k.ActualName)
		return k.Name.String(), message
	case MissingAttribute:
		name := fmt.Sprintf("%s.%s", k.ClassName, k.AttributeName)
		message := fmt.Sprintf("Class `%s` has no attribute `%s`.", k.ClassName, k.AttributeName)
		return name, message
	case NotInEnvironment:
		return k.Name, fmt.Sprintf("`%s` is not part of the environment!", k.Name)
	case UnclassifiedError:
		return k.ModelName, k.Message
	default:
		// Unreachable: Kind is sealed.
		return "", fmt.Sprintf("unknown verification error %T", kind)
	}
}

func reasonClause(reason IncompatibilityReason) string {
	switch r := reason.(type) {
	case UnexpectedPositionalOnlyParameter:
		return fmt.Sprintf("unexpected positional only parameter: `%s`", r.Name)
	case UnexpectedNamedParameter:
		return fmt.Sprintf("unexpected named parameter: `%s`", r.Name)
	case UnexpectedStarredParameter:
		return "unexpected star parameter"
	case UnexpectedDoubleStarredParameter:
		return "unexpected star star parameter"
	default:
		// Unreachable: IncompatibilityReason is sealed.
		return fmt.Sprintf("unknown reason %T", reason)
	}
}
