package gateway

import (
	"net/http"
	"strings"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// newCacheTransport caches responses on disk in cacheDir. Contributor statistics
// requests always go to base: GitHub answers them with a cacheable 202 while it
// computes, and every poll must reach the server.
func newCacheTransport(cacheDir string, base http.RoundTripper) http.RoundTripper {
	cached := httpcache.NewTransport(diskcache.New(cacheDir))
	cached.Transport = base
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if strings.Contains(req.URL.Path, "/stats/") {
			return base.RoundTrip(req)
		}
		return cached.RoundTrip(req)
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
