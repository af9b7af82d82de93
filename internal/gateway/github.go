// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST, GraphQL and CLI clients.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/naka-gawa/pr-size-score/internal/domain"
)

// Supported values for the fetcher source.
const (
	SourceREST    = "rest"
	SourceGraphQL = "graphql"
	SourceCLI     = "gh"
)

// Fetcher defines the behavior of a gateway for fetching pull request metadata.
type Fetcher interface {
	FetchPullRequest(ctx context.Context, owner, name string, number int) (*domain.PullRequestMetadata, error)
}

// RESTFetcher fetches pull requests with the REST v3 API.
type RESTFetcher struct {
	restClient *github.Client
	logger     *log.Logger
}

// GraphQLFetcher fetches pull requests with the GraphQL v4 API.
type GraphQLFetcher struct {
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// pullRequestQuery selects the fields needed to score a single pull request.
type pullRequestQuery struct {
	Repository struct {
		PullRequest struct {
			Additions    githubv4.Int
			Deletions    githubv4.Int
			ChangedFiles githubv4.Int
			MergedAt     *githubv4.DateTime
			Author       *struct {
				Login githubv4.String
			}
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// newHTTPClient returns a token-authenticated client that sleeps through secondary rate limits.
func newHTTPClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

// NewFetcher creates the Fetcher for the given source.
// The token is required for the REST and GraphQL sources; the gh CLI authenticates itself.
func NewFetcher(source, token string, logger *log.Logger) (Fetcher, error) {
	switch source {
	case SourceCLI:
		return NewCLIFetcher(logger), nil
	case SourceREST, SourceGraphQL:
	default:
		return nil, fmt.Errorf("unknown source %q (want %s, %s or %s)", source, SourceREST, SourceGraphQL, SourceCLI)
	}

	if token == "" {
		return nil, fmt.Errorf("a GitHub token is required for the %s source", source)
	}
	httpClient, err := newHTTPClient(token)
	if err != nil {
		return nil, err
	}
	if source == SourceGraphQL {
		return &GraphQLFetcher{graphqlClient: githubv4.NewClient(httpClient), logger: logger}, nil
	}
	return &RESTFetcher{restClient: github.NewClient(httpClient), logger: logger}, nil
}

// FetchPullRequest fetches a pull request with GET /repos/{owner}/{name}/pulls/{number}.
func (f *RESTFetcher) FetchPullRequest(ctx context.Context, owner, name string, number int) (*domain.PullRequestMetadata, error) {
	f.logger.Printf("Fetching pull request %s/%s#%d using REST API...\n", owner, name, number)
	pr, _, err := f.restClient.PullRequests.Get(ctx, owner, name, number)
	if err != nil {
		if isDecodeError(err) {
			return nil, fmt.Errorf("%w: failed to decode pull request from REST API: %w", domain.ErrMalformedMetadata, err)
		}
		return nil, fmt.Errorf("%w: failed to get pull request with REST API: %w", domain.ErrExternalLookup, err)
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

	meta := &domain.PullRequestMetadata{
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		AuthorLogin:  pr.GetUser().GetLogin(),
	}
	if pr.MergedAt != nil {
		mergedAt := formatTimestamp(pr.MergedAt.Time)
		meta.MergedAt = &mergedAt
	}
	f.logger.Println("Completed fetching pull request.")
	return meta, nil
}

// FetchPullRequest fetches a pull request with the repository.pullRequest GraphQL query.
func (f *GraphQLFetcher) FetchPullRequest(ctx context.Context, owner, name string, number int) (*domain.PullRequestMetadata, error) {
	f.logger.Printf("Fetching pull request %s/%s#%d using GraphQL API...\n", owner, name, number)
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"number": githubv4.Int(number),
	}

	var q pullRequestQuery
	if err := f.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("%w: failed to execute GraphQL query for pull request: %w", domain.ErrExternalLookup, err)
	}

	pr := q.Repository.PullRequest
	if pr.Author == nil || pr.Author.Login == "" {
		return nil, fmt.Errorf("%w: author.login is missing", domain.ErrMalformedMetadata)
	}
	meta := &domain.PullRequestMetadata{
		Additions:    int(pr.Additions),
		Deletions:    int(pr.Deletions),
		ChangedFiles: int(pr.ChangedFiles),
		AuthorLogin:  string(pr.Author.Login),
	}
	if pr.MergedAt != nil {
		mergedAt := formatTimestamp(pr.MergedAt.Time)
		meta.MergedAt = &mergedAt
	}
	f.logger.Println("Completed fetching pull request.")
	return meta, nil
}

// isDecodeError reports whether err came from decoding a successful response body.
func isDecodeError(err error) bool {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	return errors.As(err, &typeErr) || errors.As(err, &syntaxErr)
}

// formatTimestamp renders t the way the GitHub API does, e.g. 2024-05-01T10:00:00Z.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
