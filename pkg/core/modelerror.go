package core

// TypePrinter renders a callable type in hover style, human readable and not
// round-trippable. The type checking environment owns the real implementation.
type TypePrinter interface {
	PrettyType() string
}

// ExpressionPrinter renders an expression for display.
type ExpressionPrinter interface {
	PrettyExpression() string
}

// TypeText is a pre-rendered callable type.
type TypeText string

func (t TypeText) PrettyType() string { return string(t) }

// ExpressionText is a pre-rendered expression.
type ExpressionText string

func (e ExpressionText) PrettyExpression() string { return string(e) }

// Kind classifies a model verification failure. The variant set is closed;
// every dispatch site switches over all of them.
type Kind interface {
	isKind()
}

// InvalidDefaultValue reports a modeled parameter whose default is not the
// `...` placeholder the model syntax requires.
type InvalidDefaultValue struct {
	CallableName string
	Name         string
	Expression   ExpressionPrinter
}

func (InvalidDefaultValue) isKind() {}

// IncompatibleModelError reports a model whose parameter list does not match
// the real callable's signature. Reasons is non-empty and ordered.
type IncompatibleModelError struct {
	Name         Reference
	CallableType TypePrinter
	Reasons      []IncompatibilityReason
}

func (IncompatibleModelError) isKind() {}

// ImportedFunctionModel reports a model attached to a re-export; the original
// definition site must be modeled instead.
type ImportedFunctionModel struct {
	Name       Reference
	ActualName Reference
}

func (ImportedFunctionModel) isKind() {}

// MissingAttribute reports a modeled class attribute absent from the real class.
type MissingAttribute struct {
	ClassName     string
	AttributeName string
}

func (MissingAttribute) isKind() {}

// NotInEnvironment reports a modeled symbol the environment cannot resolve.
type NotInEnvironment struct {
	Name string
}

func (NotInEnvironment) isKind() {}

// UnclassifiedError carries pre-rendered text for failures without a dedicated
// variant yet. New mismatch categories get their own variant instead.
// TODO: remove once every producer maps to a dedicated kind.
type UnclassifiedError struct {
	ModelName string
	Message   string
}

func (UnclassifiedError) isKind() {}

// IncompatibilityReason is a closed sub-union used only inside
// IncompatibleModelError.Reasons.
type IncompatibilityReason interface {
	isReason()
}

// UnexpectedPositionalOnlyParameter names a positional-only parameter the
// callable does not declare.
type UnexpectedPositionalOnlyParameter struct {
	Name string
}

func (UnexpectedPositionalOnlyParameter) isReason() {}

// UnexpectedNamedParameter names a keyword parameter the callable does not declare.
type UnexpectedNamedParameter struct {
	Name string
}

func (UnexpectedNamedParameter) isReason() {}

// UnexpectedStarredParameter reports a `*args` the callable does not declare.
type UnexpectedStarredParameter struct{}

func (UnexpectedStarredParameter) isReason() {}

// UnexpectedDoubleStarredParameter reports a `**kwargs` the callable does not declare.
type UnexpectedDoubleStarredParameter struct{}

func (UnexpectedDoubleStarredParameter) isReason() {}

// Error is a reportable model verification failure. Path is nil when the error
// is not anchored to a concrete source file. Values are immutable once built.
type Error struct {
	Kind     Kind
	Path     *Path
	Location Location
}
