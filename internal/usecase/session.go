package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/naka-gawa/github-contributions/internal/domain"
	"github.com/naka-gawa/github-contributions/internal/gateway"
)

// Session is the authenticated context handed to every collection call.
type Session struct {
	// Author is the login whose contributions are collected.
	Author string
	// Viewer is the login GitHub reports for the credentials in use.
	Viewer string
}

// Authenticate confirms the credentials of the fetcher with a single "who am I" call.
func Authenticate(ctx context.Context, fetcher gateway.Fetcher, author string, logger *log.Logger) (*Session, error) {
	if author == "" {
		return nil, fmt.Errorf("%w: no author login configured", domain.ErrAuthentication)
	}
	viewer, err := fetcher.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}
	if !strings.EqualFold(viewer, author) {
		logger.Printf("Authenticated as %s but collecting contributions of %s", viewer, author)
	}
	return &Session{Author: author, Viewer: viewer}, nil
}
