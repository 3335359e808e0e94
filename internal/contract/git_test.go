package contract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// initTestRepo creates a repository with two commits authored at fixed times.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	git := func(date string, args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Jane Doe", "GIT_AUTHOR_EMAIL=jane@example.com",
			"GIT_COMMITTER_NAME=Jane Doe", "GIT_COMMITTER_EMAIL=jane@example.com",
		)
		if date != "" {
			cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
		}
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	git("", "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	git("2024-01-02T10:00:00+00:00", "add", "main.go")
	git("2024-01-02T10:00:00+00:00", "commit", "-q", "-m", "first")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("hello\n"), 0o644))
	git("2024-01-03T03:00:00+00:00", "add", "README")
	git("2024-01-03T03:00:00+00:00", "commit", "-q", "-m", "late night")
	return dir
}

func TestMockGitClient_GetActivityLog(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 0, 7)

	expectedOutput := []byte("--abc|2024-01-02T10:00:00Z|Jane\n1\t0\ta.go\n")
	mockClient.On("GetActivityLog", ctx, "/repo", since, until).Return(expectedOutput, nil).Once()
	mockClient.On("ListSubmodules", ctx, "/repo").Return(nil, errors.New("boom")).Once()

	out, err := mockClient.GetActivityLog(ctx, "/repo", since, until)
	assert.NoError(t, err)
	assert.Equal(t, expectedOutput, out)

	subs, err := mockClient.ListSubmodules(ctx, "/repo")
	assert.Error(t, err)
	assert.Nil(t, subs)

	mockClient.AssertExpectations(t)
}

func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client, "NewLocalGitClient should return a non-nil client")
	assert.IsType(t, &LocalGitClient{}, client)
}

func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	tests := []struct {
		name     string
		repoPath string
		args     []string
	}{
		{name: "invalid repo path", repoPath: "/nonexistent/path", args: []string{"status"}},
		{name: "invalid git command", repoPath: repo, args: []string{"invalid-command"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Run(ctx, tt.repoPath, tt.args...)
			assert.Error(t, err, "Run should return an error for %s", tt.name)
		})
	}
}

func TestLocalGitClient_RunCanceled(t *testing.T) {
	skipIfGitNotAvailable(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalGitClient().Run(ctx, t.TempDir(), "status")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalGitClient_Repository(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	root, err := client.GetRepoRoot(ctx, repo)
	require.NoError(t, err)
	resolved, _ := filepath.EvalSymlinks(repo)
	assert.Equal(t, resolved, root)

	hash, err := client.GetRepoHash(ctx, repo)
	require.NoError(t, err)
	assert.Len(t, hash, 40)

	_, err = client.GetRepoRoot(ctx, t.TempDir())
	assert.Error(t, err, "GetRepoRoot should fail outside a repository")

	subs, err := client.ListSubmodules(ctx, repo)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestLocalGitClient_GetActivityLog(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	out, err := client.GetActivityLog(ctx, repo, time.Time{}, time.Time{})
	require.NoError(t, err)
	log := string(out)
	assert.Equal(t, 2, strings.Count(log, LogHeaderPrefix))
	assert.Contains(t, log, "|2024-01-03T03:00:00")
	assert.Contains(t, log, "|Jane Doe")
	assert.Contains(t, log, "3\t0\tmain.go")

	// Only the first commit falls in this range.
	since := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	out, err = client.GetActivityLog(ctx, repo, since, until)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(out), LogHeaderPrefix))
	assert.Contains(t, string(out), "main.go")
	assert.NotContains(t, string(out), "README")
}

func TestGoGitClient_MatchesLocal(t *testing.T) {
	skipIfGitNotAvailable(t)

	ctx := context.Background()
	repo := initTestRepo(t)
	goGit := NewGoGitClient()

	hash, err := goGit.GetRepoHash(ctx, repo)
	require.NoError(t, err)
	localHash, err := NewLocalGitClient().GetRepoHash(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, localHash, hash)

	out, err := goGit.GetActivityLog(ctx, repo, time.Time{}, time.Time{})
	require.NoError(t, err)
	log := string(out)
	assert.Equal(t, 2, strings.Count(log, LogHeaderPrefix))
	assert.Contains(t, log, "|2024-01-03T03:00:00")
	assert.Contains(t, log, "|Jane Doe")
	assert.Contains(t, log, "3\t0\tmain.go")
	assert.Contains(t, log, "1\t0\tREADME")

	since := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	out, err = goGit.GetActivityLog(ctx, repo, since, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(out), LogHeaderPrefix))
	assert.Contains(t, string(out), "README")

	subs, err := goGit.ListSubmodules(ctx, repo)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestGoGitClient_NotARepository(t *testing.T) {
	client := NewGoGitClient()
	_, err := client.GetRepoHash(context.Background(), t.TempDir())
	assert.Error(t, err)
	_, err = client.GetActivityLog(context.Background(), t.TempDir(), time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestParseSubmoduleStatus(t *testing.T) {
	out := []byte(" 1234567890abcdef libs/core (v1.0.0)\n" +
		"+abcdef1234567890 libs/ui (heads/main)\n" +
		"-0000000000000000 libs/unused\n" +
		"\n")
	assert.Equal(t, []string{"libs/core", "libs/ui"}, parseSubmoduleStatus(out))
	assert.Empty(t, parseSubmoduleStatus(nil))
}
