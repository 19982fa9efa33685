// Package report serializes collected contributions for the site's data directory.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/naka-gawa/github-contributions/internal/domain"
)

// ErrWriteReport is returned when the report cannot be written to its destination.
var ErrWriteReport = errors.New("failed to write report")

// Write renders records as a JSON array and replaces the file at path.
// The destination is only replaced once the whole document has been written.
func Write(records []*domain.ContributionRecord, path string) error {
	if records == nil {
		records = []*domain.ContributionRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records to JSON: %w", err)
	}

	path, err = homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	return nil
}
