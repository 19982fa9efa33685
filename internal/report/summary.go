package report

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-contributions/internal/domain"
)

// Summary is the run overview printed once the report is written.
type Summary struct {
	Repositories  int
	Commits       int
	Additions     int
	Deletions     int
	MedianCommits float64
}

// Summarize totals the records. Records without line statistics only count toward commits.
func Summarize(records []*domain.ContributionRecord) Summary {
	summary := Summary{Repositories: len(records)}
	if len(records) == 0 {
		return summary
	}

	commits := make([]int, 0, len(records))
	for _, record := range records {
		commits = append(commits, record.Commits)
		if record.Changes != nil {
			summary.Additions += record.Changes.Additions
			summary.Deletions += record.Changes.Deletions
		}
	}
	data := stats.LoadRawData(commits)
	// Sum and Median only fail on empty input, returned early above.
	total, _ := stats.Sum(data)
	summary.Commits = int(total)
	summary.MedianCommits, _ = stats.Median(data)
	return summary
}

func (s Summary) String() string {
	return fmt.Sprintf("%d repositories, %d commits (median %.1f per repository), +%d/-%d lines",
		s.Repositories, s.Commits, s.MedianCommits, s.Additions, s.Deletions)
}
