// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/naka-gawa/github-contributions/internal/domain"
	"github.com/naka-gawa/github-contributions/internal/gateway"
)

// Aggregator is the use case for building the contributions report.
// It authenticates once and collects every repository in order.
type Aggregator struct {
	fetcher   gateway.Fetcher
	collector *Collector
	out       io.Writer
	logger    *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, policy RetryPolicy, out io.Writer, logger *log.Logger) *Aggregator {
	poller := NewStatsPoller(fetcher, policy, out, logger)
	return &Aggregator{
		fetcher:   fetcher,
		collector: NewCollector(fetcher, poller, out, logger),
		out:       out,
		logger:    logger,
	}
}

// Aggregate performs the main business logic.
// Repositories are collected one at a time; the records keep the order of repositories.
// The first failure aborts the run and is returned as a *domain.RepositoryError,
// so callers get either every record or none.
func (a *Aggregator) Aggregate(ctx context.Context, repositories []string, author string) ([]*domain.ContributionRecord, error) {
	a.logger.Println("Usecase: Starting contribution collection...")

	session, err := Authenticate(ctx, a.fetcher, author, a.logger)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", session.Viewer)

	records := make([]*domain.ContributionRecord, 0, len(repositories))
	for _, repository := range repositories {
		record, err := a.collector.Collect(ctx, session, repository)
		if err != nil {
			return nil, &domain.RepositoryError{Repository: repository, Err: err}
		}
		records = append(records, record)
	}

	a.logger.Printf("Usecase: Collected %d repositories.", len(records))
	return records, nil
}
