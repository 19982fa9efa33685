// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContributionRecord holds the contribution totals of the tracked user for a single repository.
// It is the core domain entity of this application.
type ContributionRecord struct {
	URL         string
	Description *string
	Commits     int
	// Changes is nil when no contributor statistics were available for the user.
	Changes *LineChanges
	Image   string
}

// LineChanges holds summed line additions and deletions.
type LineChanges struct {
	Additions int
	Deletions int
}

// MarshalJSON renders the record in the shape read by the site's data files.
func (r ContributionRecord) MarshalJSON() ([]byte, error) {
	out := struct {
		URL         string  `json:"url"`
		Description *string `json:"description"`
		Commits     int     `json:"commits"`
		Additions   *int    `json:"additions"`
		Deletions   *int    `json:"deletions"`
		Image       string  `json:"image"`
	}{
		URL:         r.URL,
		Description: r.Description,
		Commits:     r.Commits,
		Image:       r.Image,
	}
	if r.Changes != nil {
		additions, deletions := r.Changes.Additions, r.Changes.Deletions
		out.Additions = &additions
		out.Deletions = &deletions
	}
	return json.Marshal(out)
}

// RepositoryInfo is the repository metadata used in a record.
type RepositoryInfo struct {
	FullName    string
	Description string
}

// WeeklyChange is one week of a contributor's line statistics.
type WeeklyChange struct {
	Additions int
	Deletions int
}

// ContributorStats is the weekly series of one contributor in a repository.
type ContributorStats struct {
	Author string
	Weeks  []WeeklyChange
}

// Totals sums the weekly additions and deletions.
func (s *ContributorStats) Totals() LineChanges {
	var totals LineChanges
	for _, week := range s.Weeks {
		totals.Additions += week.Additions
		totals.Deletions += week.Deletions
	}
	return totals
}

// ImageSlug returns the last path segment of a repository identifier.
func ImageSlug(repository string) string {
	if i := strings.LastIndex(repository, "/"); i >= 0 {
		return repository[i+1:]
	}
	return repository
}

// SplitRepository splits an "owner/name" identifier.
func SplitRepository(repository string) (owner, name string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository %q should be in format owner/name", repository)
	}
	return parts[0], parts[1], nil
}
