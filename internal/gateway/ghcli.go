package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/naka-gawa/pr-size-score/internal/domain"
)

// runFunc runs an external command and returns its standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// CLIFetcher fetches pull requests through the GitHub CLI (`gh api`),
// relying on gh's own authentication.
type CLIFetcher struct {
	run    runFunc
	logger *log.Logger
}

// NewCLIFetcher creates a CLIFetcher that executes the gh binary found in PATH.
func NewCLIFetcher(logger *log.Logger) *CLIFetcher {
	return &CLIFetcher{run: runCommand, logger: logger}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// ghPullRequest mirrors the REST payload. Pointers distinguish missing fields from zero values.
type ghPullRequest struct {
	Additions    *int    `json:"additions"`
	Deletions    *int    `json:"deletions"`
	ChangedFiles *int    `json:"changed_files"`
	MergedAt     *string `json:"merged_at"`
	User         *struct {
		Login *string `json:"login"`
	} `json:"user"`
}

// FetchPullRequest runs `gh api repos/{owner}/{name}/pulls/{number}` and parses the result.
func (f *CLIFetcher) FetchPullRequest(ctx context.Context, owner, name string, number int) (*domain.PullRequestMetadata, error) {
	f.logger.Printf("Fetching pull request %s/%s#%d using gh CLI...\n", owner, name, number)
	out, err := f.run(ctx, "gh", "api", fmt.Sprintf("repos/%s/%s/pulls/%d", owner, name, number))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExternalLookup, err)
	}
	meta, err := parsePullRequest(out)
	if err != nil {
		return nil, err
	}
	f.logger.Println("Completed fetching pull request.")
	return meta, nil
}

func parsePullRequest(data []byte) (*domain.PullRequestMetadata, error) {
	var pr ghPullRequest
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("%w: failed to parse gh api response: %w", domain.ErrMalformedMetadata, err)
	}
	switch {
	case pr.Additions == nil:
		return nil, fmt.Errorf("%w: additions is missing", domain.ErrMalformedMetadata)
	case pr.Deletions == nil:
		return nil, fmt.Errorf("%w: deletions is missing", domain.ErrMalformedMetadata)
	case pr.ChangedFiles == nil:
		return nil, fmt.Errorf("%w: changed_files is missing", domain.ErrMalformedMetadata)
	case pr.User == nil || pr.User.Login == nil:
		return nil, fmt.Errorf("%w: user.login is missing", domain.ErrMalformedMetadata)
	}
	return &domain.PullRequestMetadata{
		Additions:    *pr.Additions,
		Deletions:    *pr.Deletions,
		ChangedFiles: *pr.ChangedFiles,
		MergedAt:     pr.MergedAt,
		AuthorLogin:  *pr.User.Login,
	}, nil
}
