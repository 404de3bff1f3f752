package git

import (
	"context"
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// Repo describes the version-control operations the daemon needs: identifying
// the analyzed revision and discovering files touched since it.
type Repo interface {
	Head(ctx context.Context) (string, error)
	ChangedPaths(ctx context.Context) ([]string, error)
}

// WorktreeRepo is a go-git backed Repo rooted at a checked-out worktree.
type WorktreeRepo struct {
	repo *gogit.Repository
}

// Open locates the repository containing path.
func Open(path string) (*WorktreeRepo, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}
	return &WorktreeRepo{repo: repo}, nil
}

// Head returns the current HEAD commit hash.
func (r *WorktreeRepo) Head(ctx context.Context) (string, error) {
	_ = ctx
	ref, err := r.repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

// ChangedPaths lists files modified in the worktree or index relative to HEAD,
// sorted for deterministic re-analysis order.
func (r *WorktreeRepo) ChangedPaths(ctx context.Context) ([]string, error) {
	_ = ctx
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}
	var paths []string
	for file, st := range status {
		if st.Worktree == gogit.Unmodified && st.Staging == gogit.Unmodified {
			continue
		}
		paths = append(paths, file)
	}
	sort.Strings(paths)
	return paths, nil
}
