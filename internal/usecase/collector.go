package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/naka-gawa/github-contributions/internal/domain"
	"github.com/naka-gawa/github-contributions/internal/gateway"
)

// Collector builds the contribution record of a single repository.
type Collector struct {
	fetcher gateway.Fetcher
	poller  *StatsPoller
	out     io.Writer
	logger  *log.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, poller *StatsPoller, out io.Writer, logger *log.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		poller:  poller,
		out:     out,
		logger:  logger,
	}
}

// Collect fetches the metadata, commit count and line statistics of repository
// for the session's author. Only the statistics request is retried.
func (c *Collector) Collect(ctx context.Context, session *Session, repository string) (*domain.ContributionRecord, error) {
	fmt.Fprintf(c.out, "Obtaining contributions for %s\n", repository)

	info, err := c.fetcher.FetchRepository(ctx, repository)
	if err != nil {
		return nil, err
	}
	record := &domain.ContributionRecord{
		URL:   repository,
		Image: domain.ImageSlug(repository),
	}
	if info.Description != "" {
		description := info.Description
		record.Description = &description
	}

	record.Commits, err = c.fetcher.CountCommits(ctx, repository, session.Author)
	if err != nil {
		return nil, err
	}

	stats, err := c.poller.Poll(ctx, repository, session.Author)
	switch {
	case err == nil:
		totals := stats.Totals()
		record.Changes = &totals
	case errors.Is(err, domain.ErrStatsNotFound):
		c.logger.Printf("No contributor statistics for %s in %s", session.Author, repository)
	default:
		return nil, err
	}

	return record, nil
}
