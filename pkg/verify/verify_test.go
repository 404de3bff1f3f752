package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexliu/taintd/pkg/core"
)

func testEnvironment() *MapEnvironment {
	env := NewMapEnvironment()
	env.AddCallable(Callable{
		Name:   "app.views.render",
		Pretty: "def render(request: HttpRequest, template: str = ...) -> HttpResponse",
		Parameters: []SignatureParameter{
			{Name: "request", Kind: ParamNamed},
			{Name: "template", Kind: ParamNamed},
		},
	})
	env.AddCallable(Callable{
		Name:   "app.utils.log_all",
		Pretty: "def log_all(*args, **kwargs) -> None",
		Parameters: []SignatureParameter{
			{Name: "args", Kind: ParamStar},
			{Name: "kwargs", Kind: ParamStarStar},
		},
	})
	env.AddClass(ClassSummary{Name: "app.models.User", Attributes: []string{"email", "password"}})
	env.AddAlias("app.shortcuts.render", "app.views.render")
	return env
}

func model(target string, params ...ModelParameter) ModelDefinition {
	return ModelDefinition{
		Target:     core.Reference(target),
		Kind:       ModelCallable,
		Parameters: params,
		Path:       core.Path("/srv/taint/views.toml"),
		Location:   core.Location{Start: core.Position{Line: 4, Column: 1}},
	}
}

func TestVerifyCompatibleModel(t *testing.T) {
	errs := Verify(testEnvironment(), model("app.views.render",
		ModelParameter{Name: "request", Kind: ParamNamed, Default: EllipsisDefault},
	))
	assert.Empty(t, errs)
}

func TestVerifyNotInEnvironment(t *testing.T) {
	errs := Verify(testEnvironment(), model("app.views.missing"))
	require.Len(t, errs, 1)
	kind, ok := errs[0].Kind.(core.NotInEnvironment)
	require.True(t, ok)
	assert.Equal(t, "app.views.missing", kind.Name)
	require.NotNil(t, errs[0].Path)
	assert.Equal(t, 4, errs[0].Location.Start.Line)
}

func TestVerifyImportedFunctionModel(t *testing.T) {
	errs := Verify(testEnvironment(), model("app.shortcuts.render"))
	require.Len(t, errs, 1)
	kind, ok := errs[0].Kind.(core.ImportedFunctionModel)
	require.True(t, ok)
	assert.Equal(t, core.Reference("app.shortcuts.render"), kind.Name)
	assert.Equal(t, core.Reference("app.views.render"), kind.ActualName)
}

func TestVerifyMissingAttribute(t *testing.T) {
	m := model("app.models.User.token")
	m.Kind = ModelAttribute

	errs := Verify(testEnvironment(), m)
	require.Len(t, errs, 1)
	kind, ok := errs[0].Kind.(core.MissingAttribute)
	require.True(t, ok)
	assert.Equal(t, "app.models.User", kind.ClassName)
	assert.Equal(t, "token", kind.AttributeName)
}

func TestVerifyAttributeOnUnknownClass(t *testing.T) {
	m := model("app.models.Ghost.field")
	m.Kind = ModelAttribute

	errs := Verify(testEnvironment(), m)
	require.Len(t, errs, 1)
	_, ok := errs[0].Kind.(core.NotInEnvironment)
	assert.True(t, ok)
}

func TestVerifyInvalidDefaultValue(t *testing.T) {
	errs := Verify(testEnvironment(), model("app.views.render",
		ModelParameter{Name: "template", Kind: ParamNamed, Default: `"index.html"`},
	))
	require.Len(t, errs, 1)
	kind, ok := errs[0].Kind.(core.InvalidDefaultValue)
	require.True(t, ok)
	assert.Equal(t, "app.views.render", kind.CallableName)
	assert.Equal(t, "template", kind.Name)
	assert.Equal(t, `"index.html"`, kind.Expression.PrettyExpression())
}

func TestVerifyIncompatibleModel(t *testing.T) {
	errs := Verify(testEnvironment(), model("app.views.render",
		ModelParameter{Name: "request", Kind: ParamNamed},
		ModelParameter{Name: "session", Kind: ParamNamed},
		ModelParameter{Name: "extra", Kind: ParamStarStar},
	))
	require.Len(t, errs, 1)
	kind, ok := errs[0].Kind.(core.IncompatibleModelError)
	require.True(t, ok)
	assert.Equal(t, core.Reference("app.views.render"), kind.Name)
	require.Len(t, kind.Reasons, 2)
	assert.Equal(t, core.UnexpectedNamedParameter{Name: "session"}, kind.Reasons[0])
	assert.Equal(t, core.UnexpectedDoubleStarredParameter{}, kind.Reasons[1])
}

func TestVerifyStarParametersAbsorbExtras(t *testing.T) {
	errs := Verify(testEnvironment(), model("app.utils.log_all",
		ModelParameter{Name: "first", Kind: ParamPositionalOnly},
		ModelParameter{Name: "anything", Kind: ParamNamed},
		ModelParameter{Name: "args", Kind: ParamStar},
		ModelParameter{Name: "kwargs", Kind: ParamStarStar},
	))
	assert.Empty(t, errs)
}

func TestVerifyNeverProducesUnclassified(t *testing.T) {
	env := testEnvironment()
	models := []ModelDefinition{
		model("app.views.missing"),
		model("app.shortcuts.render"),
		model("app.views.render", ModelParameter{Name: "template", Kind: ParamNamed, Default: "1"}),
		model("app.views.render", ModelParameter{Name: "bogus", Kind: ParamNamed}),
	}
	for _, err := range VerifyAll(env, models) {
		_, unclassified := err.Kind.(core.UnclassifiedError)
		assert.False(t, unclassified, "classified mismatch routed through UnclassifiedError: %s", core.Display(err))
	}
}

func TestLoadModelFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views.toml")
	content := `
[[model]]
target = "app.views.render"
kind = "callable"
line = 4

  [[model.parameters]]
  name = "request"
  kind = "named"
  default = "..."

[[model]]
target = "app.models.User.email"
kind = "attribute"
line = 9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	models, err := LoadModelFile(path)
	require.NoError(t, err)
	require.Len(t, models, 2)

	assert.Equal(t, core.Reference("app.views.render"), models[0].Target)
	assert.Equal(t, ModelCallable, models[0].Kind)
	assert.Equal(t, 4, models[0].Location.Start.Line)
	require.Len(t, models[0].Parameters, 1)
	assert.Equal(t, EllipsisDefault, models[0].Parameters[0].Default)

	assert.Equal(t, ModelAttribute, models[1].Kind)
	assert.Equal(t, core.Path(path), models[1].Path)
}

func TestLoadModelFileRejectsUnknownKinds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[model]]\ntarget = \"x\"\nkind = \"decorator\"\n"), 0o600))

	_, err := LoadModelFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decorator")
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "environment.json")
	content := `{
		"callables": [
			{"name": "m.f", "pretty": "def f(x) -> None", "parameters": [{"name": "x", "kind": "named"}]}
		],
		"classes": [
			{"name": "m.C", "attributes": ["a"]}
		],
		"aliases": {"m.g": "m.f"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	env, err := LoadSnapshot(path)
	require.NoError(t, err)

	callable, ok := env.LookupCallable("m.f")
	require.True(t, ok)
	assert.Equal(t, "def f(x) -> None", callable.Pretty)

	class, ok := env.LookupClass("m.C")
	require.True(t, ok)
	assert.True(t, class.HasAttribute("a"))
	assert.False(t, class.HasAttribute("b"))

	actual, ok := env.ResolveAlias("m.g")
	require.True(t, ok)
	assert.Equal(t, core.Reference("m.f"), actual)
}
