package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rexliu/taintd/pkg/core"
)

func TestStoreReplaceAndQuery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	pathA := core.Path("/srv/taint/a.toml")
	pathB := core.Path("/srv/taint/b.toml")
	errsA := []core.Error{
		{
			Kind:     core.NotInEnvironment{Name: "m.gone"},
			Path:     &pathA,
			Location: core.Location{Start: core.Position{Line: 2, Column: 1}},
		},
		{
			Kind:     core.MissingAttribute{ClassName: "m.C", AttributeName: "x"},
			Path:     &pathA,
			Location: core.Location{Start: core.Position{Line: 5, Column: 1}},
		},
	}
	errsB := []core.Error{
		{
			Kind:     core.UnclassifiedError{ModelName: "m.odd", Message: "odd shape"},
			Path:     &pathB,
			Location: core.Location{Start: core.Position{Line: 1, Column: 1}},
		},
	}

	if err := store.ReplaceErrors(ctx, string(pathA), errsA); err != nil {
		t.Fatalf("replace a: %v", err)
	}
	if err := store.ReplaceErrors(ctx, string(pathB), errsB); err != nil {
		t.Fatalf("replace b: %v", err)
	}

	all, err := store.ErrorsFor(ctx, nil)
	if err != nil {
		t.Fatalf("all errors: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 stored errors, got %d", len(all))
	}
	if all[0].Kind != "not_in_environment" || all[0].Line != 2 {
		t.Fatalf("unexpected first row: %+v", all[0])
	}
	if all[0].Message != core.Display(errsA[0]) {
		t.Fatalf("stored message mismatch: %q", all[0].Message)
	}

	scoped, err := store.ErrorsFor(ctx, []string{string(pathB)})
	if err != nil {
		t.Fatalf("scoped errors: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ModelName != "m.odd" {
		t.Fatalf("unexpected scoped rows: %+v", scoped)
	}

	// Re-verification with a clean result drops old diagnostics.
	if err := store.ReplaceErrors(ctx, string(pathA), nil); err != nil {
		t.Fatalf("replace a empty: %v", err)
	}
	paths, err := store.Paths(ctx)
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if len(paths) != 1 || paths[0] != string(pathB) {
		t.Fatalf("unexpected paths: %v", paths)
	}
}
