package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/naka-gawa/pr-size-score/internal/domain"
	"github.com/naka-gawa/pr-size-score/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	meta *domain.PullRequestMetadata
	err  error
}

func (s stubFetcher) FetchPullRequest(_ context.Context, _, _ string, _ int) (*domain.PullRequestMetadata, error) {
	return s.meta, s.err
}

// runRecord executes the record command against a stub fetcher in an empty working directory.
func runRecord(t *testing.T, fetcher gateway.Fetcher, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("GITHUB_TOKEN", "token")

	orig := newFetcher
	newFetcher = func(source, token string, logger *log.Logger) (gateway.Fetcher, error) {
		assert.Equal(t, "rest", source)
		assert.Equal(t, "token", token)
		return fetcher, nil
	}
	t.Cleanup(func() { newFetcher = orig })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"record"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRecordCommand(t *testing.T) {
	merged := "2024-05-01T10:00:00Z"
	out, err := runRecord(t, stubFetcher{meta: &domain.PullRequestMetadata{
		Additions: 100, Deletions: 50, ChangedFiles: 3, MergedAt: &merged, AuthorLogin: "octocat",
	}}, "--repo", "org/repo", "--pr", "42", "--source", "rest", "--log", "metrics/pr_size_scores.jsonl")
	require.NoError(t, err)

	line := `{"repo":"org/repo","pr_number":42,"merged_at":"2024-05-01T10:00:00Z","author":"octocat","additions":100,"deletions":50,"loc":150,"changed_files":3,"size_score":8.690184}` + "\n"
	assert.Equal(t, "OK: "+line, out)

	data, err := os.ReadFile(filepath.Join("metrics", "pr_size_scores.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, line, string(data))
}

func TestRecordCommand_FetchFailure(t *testing.T) {
	_, err := runRecord(t, stubFetcher{err: fmt.Errorf("%w: 404 Not Found", domain.ErrExternalLookup)},
		"--repo", "org/repo", "--pr", "42", "--source", "rest", "--log", "metrics/pr_size_scores.jsonl")
	assert.ErrorIs(t, err, domain.ErrExternalLookup)

	_, statErr := os.Stat(filepath.Join("metrics", "pr_size_scores.jsonl"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRecordCommand_VerboseLogsDestination(t *testing.T) {
	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("verbose", "false") })

	out, err := runRecord(t, stubFetcher{meta: &domain.PullRequestMetadata{Additions: 1, AuthorLogin: "octocat"}},
		"-v", "--repo", "org/repo", "--pr", "42", "--source", "rest", "--log", "out/scores.jsonl")
	require.NoError(t, err)
	assert.Contains(t, out, "Recording org/repo#42 from rest source into out/scores.jsonl")
	assert.Contains(t, out, "OK: ")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
