package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/naka-gawa/github-contributions/internal/domain"
	"github.com/naka-gawa/github-contributions/internal/gateway"
)

const (
	// DefaultStatsInterval is the wait between two statistics requests.
	DefaultStatsInterval = 10 * time.Second
	// DefaultStatsMaxAttempts bounds the statistics requests for one repository.
	DefaultStatsMaxAttempts = 60
)

// RetryPolicy controls how long the poller waits for GitHub to compute statistics.
type RetryPolicy struct {
	Interval time.Duration
	// MaxAttempts is the total number of requests; zero retries until the context is done.
	MaxAttempts int
}

// DefaultRetryPolicy returns the policy used by the collect command.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: DefaultStatsInterval, MaxAttempts: DefaultStatsMaxAttempts}
}

// StatsPoller retrieves a contributor's weekly statistics, retrying while GitHub computes them.
type StatsPoller struct {
	fetcher gateway.Fetcher
	policy  RetryPolicy
	out     io.Writer
	logger  *log.Logger
	wait    func(ctx context.Context, d time.Duration) error
}

// NewStatsPoller creates a new StatsPoller instance.
func NewStatsPoller(fetcher gateway.Fetcher, policy RetryPolicy, out io.Writer, logger *log.Logger) *StatsPoller {
	return &StatsPoller{
		fetcher: fetcher,
		policy:  policy,
		out:     out,
		logger:  logger,
		wait:    sleepContext,
	}
}

// Poll returns the statistics of author in repository.
// It returns domain.ErrStatsNotFound when the ready series has no entry for author,
// and domain.ErrStatsTimeout when the retry policy is exhausted.
func (p *StatsPoller) Poll(ctx context.Context, repository, author string) (*domain.ContributorStats, error) {
	for attempt := 1; ; attempt++ {
		all, err := p.fetcher.FetchContributorStats(ctx, repository)
		if err == nil {
			p.logger.Printf("Statistics for %s ready after %d attempt(s)", repository, attempt)
			return findAuthor(all, author)
		}
		if !errors.Is(err, domain.ErrStatsNotReady) {
			return nil, err
		}

		if p.policy.MaxAttempts > 0 && attempt >= p.policy.MaxAttempts {
			return nil, fmt.Errorf("%w: %s still computing after %d attempts", domain.ErrStatsTimeout, repository, attempt)
		}
		fmt.Fprintf(p.out, "No successful response for %s. Re-trying in %s.\n", repository, p.policy.Interval)
		if err := p.wait(ctx, p.policy.Interval); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrStatsTimeout, repository, err)
		}
	}
}

func findAuthor(all []*domain.ContributorStats, author string) (*domain.ContributorStats, error) {
	for _, stats := range all {
		if strings.EqualFold(stats.Author, author) {
			return stats, nil
		}
	}
	return nil, domain.ErrStatsNotFound
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
