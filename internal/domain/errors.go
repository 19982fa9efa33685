package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned when credentials are missing or rejected by GitHub.
	ErrAuthentication = errors.New("authentication failed")
	// ErrStatsNotReady is returned while GitHub is still computing contributor statistics.
	ErrStatsNotReady = errors.New("contributor statistics are not ready yet")
	// ErrStatsNotFound is returned when the statistics contain no entry for the author.
	ErrStatsNotFound = errors.New("no contributor statistics for author")
	// ErrStatsTimeout is returned when the statistics did not become ready within the retry policy.
	ErrStatsTimeout = errors.New("timed out waiting for contributor statistics")
)

// RepositoryError reports which repository a collection run failed on.
type RepositoryError struct {
	Repository string
	Err        error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("failed to collect contributions for %s: %v", e.Repository, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
