package gateway

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/naka-gawa/pr-size-score/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIFetcher_FetchPullRequest(t *testing.T) {
	testCases := []struct {
		name         string
		output       string
		runErr       error
		expectedMeta *domain.PullRequestMetadata
		expectedErr  error
	}{
		{
			name:         "happy path",
			output:       `{"additions":100,"deletions":50,"changed_files":3,"merged_at":"2024-05-01T10:00:00Z","user":{"login":"octocat"}}`,
			expectedMeta: &domain.PullRequestMetadata{Additions: 100, Deletions: 50, ChangedFiles: 3, MergedAt: strPtr("2024-05-01T10:00:00Z"), AuthorLogin: "octocat"},
		},
		{
			name:        "error case - gh exits non-zero",
			runErr:      errors.New("exit status 1: gh: Not Found (HTTP 404)"),
			expectedErr: domain.ErrExternalLookup,
		},
		{
			name:        "error case - missing user.login",
			output:      `{"additions":1,"deletions":0,"changed_files":1,"merged_at":null,"user":{}}`,
			expectedErr: domain.ErrMalformedMetadata,
		},
		{
			name:        "error case - additions has the wrong type",
			output:      `{"additions":"many","deletions":0,"changed_files":1,"user":{"login":"octocat"}}`,
			expectedErr: domain.ErrMalformedMetadata,
		},
		{
			name:        "error case - not JSON",
			output:      `gh: command not understood`,
			expectedErr: domain.ErrMalformedMetadata,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotArgs []string
			fetcher := &CLIFetcher{
				logger: log.New(io.Discard, "", 0),
				run: func(_ context.Context, name string, args ...string) ([]byte, error) {
					gotArgs = append([]string{name}, args...)
					if tc.runErr != nil {
						return nil, tc.runErr
					}
					return []byte(tc.output), nil
				},
			}

			meta, err := fetcher.FetchPullRequest(context.Background(), "org", "repo", 42)
			assert.Equal(t, []string{"gh", "api", "repos/org/repo/pulls/42"}, gotArgs)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, meta)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedMeta, meta)
			}
		})
	}
}
