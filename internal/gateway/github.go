// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-contributions/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// Authenticate returns the login of the user the client is authenticated as.
	Authenticate(ctx context.Context) (string, error)
	FetchRepository(ctx context.Context, repository string) (*domain.RepositoryInfo, error)
	CountCommits(ctx context.Context, repository, author string) (int, error)
	// FetchContributorStats returns domain.ErrStatsNotReady while GitHub is computing the statistics.
	FetchContributorStats(ctx context.Context, repository string) ([]*domain.ContributorStats, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// repositoryQuery fetches the metadata shown next to each contribution.
type repositoryQuery struct {
	Repository struct {
		NameWithOwner string
		Description   string
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// When cacheDir is not empty, responses other than contributor statistics are cached on disk.
func NewGitHubGateway(token, cacheDir string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	var base http.RoundTripper = rateLimitWaiter
	if cacheDir != "" {
		base = newCacheTransport(cacheDir, rateLimitWaiter)
		logger.Printf("Caching GitHub responses in %s", cacheDir)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   base,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) Authenticate(ctx context.Context) (string, error) {
	user, _, err := g.restClient.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to fetch authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

func (g *GitHubGateway) FetchRepository(ctx context.Context, repository string) (*domain.RepositoryInfo, error) {
	owner, name, err := domain.SplitRepository(repository)
	if err != nil {
		return nil, err
	}
	var q repositoryQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for repository %s: %w", repository, err)
	}
	g.logger.Printf("Fetched metadata for %s", q.Repository.NameWithOwner)
	return &domain.RepositoryInfo{
		FullName:    q.Repository.NameWithOwner,
		Description: q.Repository.Description,
	}, nil
}

// CountCommits requests one commit per page, so the last page number is the commit count.
func (g *GitHubGateway) CountCommits(ctx context.Context, repository, author string) (int, error) {
	owner, name, err := domain.SplitRepository(repository)
	if err != nil {
		return 0, err
	}
	opts := &github.CommitsListOptions{
		Author:      author,
		ListOptions: github.ListOptions{PerPage: 1},
	}
	commits, resp, err := g.restClient.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list commits with REST API: %w", err)
	}
	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(commits), nil
}

func (g *GitHubGateway) FetchContributorStats(ctx context.Context, repository string) ([]*domain.ContributorStats, error) {
	owner, name, err := domain.SplitRepository(repository)
	if err != nil {
		return nil, err
	}
	stats, _, err := g.restClient.Repositories.ListContributorsStats(ctx, owner, name)
	if err != nil {
		if isStatsPending(err) {
			g.logger.Printf("Contributor statistics for %s are being computed: %v", repository, err)
			return nil, domain.ErrStatsNotReady
		}
		return nil, fmt.Errorf("failed to fetch contributor stats with REST API: %w", err)
	}
	// An empty body is what GitHub serves right after it starts computing.
	if len(stats) == 0 {
		return nil, domain.ErrStatsNotReady
	}

	result := make([]*domain.ContributorStats, 0, len(stats))
	for _, s := range stats {
		login := s.GetAuthor().GetLogin()
		if login == "" {
			continue // Deleted or anonymous accounts.
		}
		weeks := make([]domain.WeeklyChange, 0, len(s.Weeks))
		for _, w := range s.Weeks {
			weeks = append(weeks, domain.WeeklyChange{
				Additions: w.GetAdditions(),
				Deletions: w.GetDeletions(),
			})
		}
		result = append(result, &domain.ContributorStats{Author: login, Weeks: weeks})
	}
	return result, nil
}

// isStatsPending reports whether err is GitHub's "still computing" response
// or a body that could not be decoded as a statistics series.
func isStatsPending(err error) bool {
	var acceptedErr *github.AcceptedError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &acceptedErr) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
