package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// GoGitClient implements the GitClient interface in-process with go-git,
// for machines without a git binary. It renders the same log format as LocalGitClient.
type GoGitClient struct{}

var _ GitClient = &GoGitClient{} // Compile-time check

// NewGoGitClient creates a new instance of the go-git client.
func NewGoGitClient() *GoGitClient {
	return &GoGitClient{}
}

func openRepository(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", path, err)
	}
	return repo, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *GoGitClient) GetRepoRoot(_ context.Context, contextPath string) (string, error) {
	repo, err := openRepository(contextPath)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("repository %q has no worktree: %w", contextPath, err)
	}
	return wt.Filesystem.Root(), nil
}

// GetRepoHash implements the GitClient interface.
func (c *GoGitClient) GetRepoHash(_ context.Context, repoPath string) (string, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// GetActivityLog implements the GitClient interface.
// Commits are selected by author date, and merge commits are skipped.
func (c *GoGitClient) GetActivityLog(ctx context.Context, repoPath string, since, until time.Time) ([]byte, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	commitIter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}
	defer commitIter.Close()

	var buf bytes.Buffer
	err = commitIter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if commit.NumParents() > 1 {
			return nil
		}
		when := commit.Author.When
		if (!since.IsZero() && when.Before(since)) || (!until.IsZero() && !when.Before(until)) {
			return nil
		}
		stats, err := commit.StatsContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to diff commit %s: %w", commit.Hash, err)
		}
		writeLogEntry(&buf, commit, stats)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("reading %q interrupted: %w", repoPath, ctxErr)
		}
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return buf.Bytes(), nil
}

// writeLogEntry renders one commit in the `git log --numstat` shape parsed by core/agg.
func writeLogEntry(buf *bytes.Buffer, commit *object.Commit, stats object.FileStats) {
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	_, _ = fmt.Fprintf(buf, "%s%s|%s|%s\n", LogHeaderPrefix,
		commit.Hash.String(), commit.Author.When.Format(time.RFC3339), commit.Author.Name)
	for _, s := range stats {
		_, _ = fmt.Fprintf(buf, "%d\t%d\t%s\n", s.Addition, s.Deletion, s.Name)
	}
}

// ListSubmodules implements the GitClient interface.
func (c *GoGitClient) ListSubmodules(_ context.Context, repoPath string) ([]string, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository %q has no worktree: %w", repoPath, err)
	}
	subs, err := wt.Submodules()
	if err != nil {
		return nil, fmt.Errorf("failed to read submodules: %w", err)
	}
	paths := make([]string, 0, len(subs))
	for _, s := range subs {
		paths = append(paths, s.Config().Path)
	}
	return paths, nil
}
