package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rexliu/taintd/pkg/ipc"
	"github.com/rexliu/taintd/pkg/storage/sqlite"
)

// Dispatch routes a decoded command to its handler. The switch covers every
// command variant; a new variant must be handled here before it ships.
func (d *daemon) Dispatch(ctx context.Context, cmd ipc.Command) (any, *ipc.Error) {
	switch c := cmd.(type) {
	case ipc.GetInfo:
		return d.handleGetInfo(ctx)
	case ipc.DisplayTypeError:
		return d.handleDisplayTypeError(ctx, c.Paths)
	case ipc.IncrementalUpdate:
		return d.handleIncrementalUpdate(ctx, c.Paths)
	case ipc.Query:
		return d.handleQuery(ctx, c.Text)
	case ipc.Stop:
		return d.handleStop()
	default:
		return nil, ipc.Errorf("INVALID_REQUEST", fmt.Sprintf("unhandled command %T", cmd), nil)
	}
}

func (d *daemon) handleGetInfo(ctx context.Context) (any, *ipc.Error) {
	stored, err := d.store.ErrorsFor(ctx, nil)
	if err != nil {
		return nil, ipc.Errorf("STORAGE_ERROR", err.Error(), nil)
	}
	info := map[string]any{
		"version":    version,
		"pid":        os.Getpid(),
		"profile":    d.cfg.ProfileName,
		"socket":     d.socketPath,
		"modelFiles": len(d.cfg.Analysis.ModelFiles),
		"errors":     len(stored),
	}
	if d.repo != nil {
		if head, err := d.repo.Head(ctx); err == nil {
			info["head"] = head
		}
	}
	return info, nil
}

func (d *daemon) handleDisplayTypeError(ctx context.Context, paths []string) (any, *ipc.Error) {
	stored, err := d.store.ErrorsFor(ctx, paths)
	if err != nil {
		return nil, ipc.Errorf("STORAGE_ERROR", err.Error(), nil)
	}
	return map[string]any{"errors": storedOrEmpty(stored)}, nil
}

func (d *daemon) handleIncrementalUpdate(ctx context.Context, paths []string) (any, *ipc.Error) {
	targets, err := d.updateTargets(ctx, paths)
	if err != nil {
		return nil, ipc.Errorf("VCS_ERROR", err.Error(), nil)
	}
	updated := make([]string, 0, len(targets))
	for _, path := range targets {
		if err := d.verifyFile(ctx, path); err != nil {
			return nil, ipc.Errorf("ANALYSIS_ERROR", err.Error(), map[string]any{"path": path})
		}
		updated = append(updated, path)
	}
	return map[string]any{"updated": updated}, nil
}

// updateTargets resolves an explicit path list, falling back to git-reported
// changes (intersected with configured model files) and then to everything.
func (d *daemon) updateTargets(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) > 0 {
		return paths, nil
	}
	configured := d.modelPaths()
	if d.repo == nil {
		return configured, nil
	}
	changed, err := d.repo.ChangedPaths(ctx)
	if err != nil {
		return nil, err
	}
	changedSet := make(map[string]struct{}, len(changed))
	for _, path := range changed {
		changedSet[path] = struct{}{}
	}
	var targets []string
	for _, path := range configured {
		if _, ok := changedSet[path]; ok {
			targets = append(targets, path)
			continue
		}
		// Git reports worktree-relative paths; match on suffix too.
		for candidate := range changedSet {
			if suffixOnBoundary(path, candidate) {
				targets = append(targets, path)
				break
			}
		}
	}
	return targets, nil
}

// suffixOnBoundary reports whether candidate is a trailing path of path,
// anchored at a separator so "sources.toml" never matches "mysources.toml".
func suffixOnBoundary(path, candidate string) bool {
	if !strings.HasSuffix(path, candidate) || len(path) == len(candidate) {
		return false
	}
	return path[len(path)-len(candidate)-1] == filepath.Separator
}

func (d *daemon) handleQuery(ctx context.Context, text string) (any, *ipc.Error) {
	query := strings.TrimSpace(text)
	switch {
	case query == "paths":
		paths, err := d.store.Paths(ctx)
		if err != nil {
			return nil, ipc.Errorf("STORAGE_ERROR", err.Error(), nil)
		}
		if paths == nil {
			paths = []string{}
		}
		return map[string]any{"paths": paths}, nil
	case query == "model_errors":
		return d.handleDisplayTypeError(ctx, nil)
	case strings.HasPrefix(query, "model_errors(") && strings.HasSuffix(query, ")"):
		path := strings.TrimSuffix(strings.TrimPrefix(query, "model_errors("), ")")
		return d.handleDisplayTypeError(ctx, []string{strings.TrimSpace(path)})
	default:
		return nil, ipc.Errorf("QUERY_ERROR", fmt.Sprintf("unsupported query %q", text), nil)
	}
}

// stopGrace gives the in-flight stop response time to reach the client before
// the listener goes away.
const stopGrace = 100 * time.Millisecond

func (d *daemon) handleStop() (any, *ipc.Error) {
	d.logger.Printf("stop requested")
	d.stopOnce.Do(func() {
		go func() {
			time.Sleep(stopGrace)
			d.stop()
		}()
	})
	return map[string]any{"stopping": true}, nil
}

func storedOrEmpty(stored []sqlite.StoredError) []sqlite.StoredError {
	if stored == nil {
		return []sqlite.StoredError{}
	}
	return stored
}
