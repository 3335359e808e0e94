package contract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// LogHeaderPrefix marks the first line of every commit in an activity log.
const LogHeaderPrefix = "--"

// gitDateFormat is what git accepts for --since/--until without guessing.
const gitDateFormat = time.RFC3339

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
// The command is killed when ctx is done.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("git command in %q interrupted: %w", repoPath, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetActivityLog implements the GitClient interface.
func (c *LocalGitClient) GetActivityLog(ctx context.Context, repoPath string, since, until time.Time) ([]byte, error) {
	args := []string{
		"log",
		"--numstat",
		"--no-merges",
		"--date=iso-strict",
		"--pretty=format:" + LogHeaderPrefix + "%H|%aI|%an",
	}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(gitDateFormat))
	}
	if !until.IsZero() {
		args = append(args, "--until="+until.Format(gitDateFormat))
	}
	return c.Run(ctx, repoPath, args...)
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListSubmodules implements the GitClient interface.
func (c *LocalGitClient) ListSubmodules(ctx context.Context, repoPath string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "submodule", "status")
	if err != nil {
		return nil, err
	}
	return parseSubmoduleStatus(out), nil
}

// parseSubmoduleStatus extracts the path column from `git submodule status`.
// Uninitialized submodules (prefixed with '-') have no checkout and are skipped.
func parseSubmoduleStatus(out []byte) []string {
	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		fields := strings.Fields(strings.TrimLeft(line, " +U"))
		if len(fields) < 2 {
			continue
		}
		paths = append(paths, fields[1])
	}
	return paths
}
