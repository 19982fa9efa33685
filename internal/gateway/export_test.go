package gateway

import (
	"net/http"
	"testing"
)

// NewTestGateway exposes setupTestGateway to the external test package.
func NewTestGateway(t *testing.T, handler http.Handler) Fetcher {
	g, server := setupTestGateway(t, handler)
	t.Cleanup(server.Close)
	return g
}
