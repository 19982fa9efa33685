package gateway_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/naka-gawa/github-contributions/internal/domain"
	"github.com/naka-gawa/github-contributions/internal/gateway"
	"github.com/naka-gawa/github-contributions/internal/report"
	"github.com/naka-gawa/github-contributions/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves the endpoints used by a collection run for a set of repositories.
type fakeGitHub struct {
	descriptions map[string]string
	commits      map[string]int
	stats        map[string]string
	// pending is the number of 202 responses served before the statistics of a repository.
	pending map[string]int
	failing map[string]bool

	statsRequests atomic.Int32
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/user":
		fmt.Fprint(w, `{"login":"octocat"}`)
	case r.URL.Path == "/graphql":
		body, _ := io.ReadAll(r.Body)
		for repository, description := range f.descriptions {
			owner, name, _ := domain.SplitRepository(repository)
			if strings.Contains(string(body), fmt.Sprintf(`"owner":%q`, owner)) &&
				strings.Contains(string(body), fmt.Sprintf(`"name":%q`, name)) {
				fmt.Fprintf(w, `{"data":{"repository":{"nameWithOwner":%q,"description":%q}}}`, repository, description)
				return
			}
		}
		fmt.Fprint(w, `{"errors":[{"message":"Could not resolve to a Repository"}]}`)
	case strings.HasSuffix(r.URL.Path, "/commits"):
		repository := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/"), "/commits")
		if f.failing[repository] {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"Internal Server Error"}`)
			return
		}
		count := f.commits[repository]
		if count > 1 {
			w.Header().Set("Link", fmt.Sprintf(`<https://api.github.com/repos/%s/commits?page=%d>; rel="last"`, repository, count))
		}
		if count == 0 {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"sha":"abc"}]`)
	case strings.HasSuffix(r.URL.Path, "/stats/contributors"):
		f.statsRequests.Add(1)
		repository := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/"), "/stats/contributors")
		if f.pending[repository] > 0 {
			f.pending[repository]--
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, f.stats[repository])
	default:
		http.NotFound(w, r)
	}
}

func runPipeline(t *testing.T, fake *fakeGitHub, repositories []string) (string, error) {
	t.Helper()
	fetcher := gateway.NewTestGateway(t, fake)
	policy := usecase.RetryPolicy{Interval: time.Millisecond, MaxAttempts: 10}
	aggregator := usecase.NewAggregator(fetcher, policy, io.Discard, log.New(io.Discard, "", 0))
	path := filepath.Join(t.TempDir(), "open_source.json")

	records, err := aggregator.Aggregate(context.Background(), repositories, "octocat")
	if err != nil {
		return path, err
	}
	return path, report.Write(records, path)
}

const helloWorldStats = `[
	{"author":{"login":"hubot"},"total":9,"weeks":[{"w":1,"a":99,"d":99,"c":9}]},
	{"author":{"login":"octocat"},"total":3,"weeks":[{"w":1,"a":10,"d":2,"c":2},{"w":2,"a":5,"d":1,"c":1}]}
]`

func TestPipeline_EndToEnd(t *testing.T) {
	testCases := []struct {
		name     string
		stats    string
		pending  int
		expected string
	}{
		{
			name:     "ready statistics",
			stats:    helloWorldStats,
			expected: `[{"url":"octocat/Hello-World","description":"My first repo","commits":3,"additions":15,"deletions":3,"image":"Hello-World"}]`,
		},
		{
			name:     "statistics ready after processing responses",
			stats:    helloWorldStats,
			pending:  3,
			expected: `[{"url":"octocat/Hello-World","description":"My first repo","commits":3,"additions":15,"deletions":3,"image":"Hello-World"}]`,
		},
		{
			name:     "no entry for the author",
			stats:    `[{"author":{"login":"hubot"},"total":9,"weeks":[{"w":1,"a":99,"d":99,"c":9}]}]`,
			expected: `[{"url":"octocat/Hello-World","description":"My first repo","commits":3,"additions":null,"deletions":null,"image":"Hello-World"}]`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeGitHub{
				descriptions: map[string]string{"octocat/Hello-World": "My first repo"},
				commits:      map[string]int{"octocat/Hello-World": 3},
				stats:        map[string]string{"octocat/Hello-World": tc.stats},
				pending:      map[string]int{"octocat/Hello-World": tc.pending},
			}

			path, err := runPipeline(t, fake, []string{"octocat/Hello-World"})

			require.NoError(t, err)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.JSONEq(t, tc.expected, string(data))
			assert.Equal(t, int32(tc.pending+1), fake.statsRequests.Load())
		})
	}
}

func TestPipeline_FailureWritesNoReport(t *testing.T) {
	fake := &fakeGitHub{
		descriptions: map[string]string{"rails/rails": "", "aws/chalice": "", "ajaxorg/ace": ""},
		commits:      map[string]int{"rails/rails": 2, "ajaxorg/ace": 1},
		stats:        map[string]string{"rails/rails": helloWorldStats, "ajaxorg/ace": helloWorldStats},
		failing:      map[string]bool{"aws/chalice": true},
	}

	path, err := runPipeline(t, fake, []string{"rails/rails", "aws/chalice", "ajaxorg/ace"})

	var repoErr *domain.RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "aws/chalice", repoErr.Repository)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no report must be written after a failed run")
}

func TestPipeline_OrderFollowsRepositoryList(t *testing.T) {
	repositories := []string{"rails/rails", "aws/chalice", "ajaxorg/ace"}
	fake := &fakeGitHub{
		descriptions: map[string]string{"rails/rails": "", "aws/chalice": "", "ajaxorg/ace": ""},
		commits:      map[string]int{"rails/rails": 3, "aws/chalice": 2, "ajaxorg/ace": 1},
		stats: map[string]string{
			"rails/rails": helloWorldStats, "aws/chalice": helloWorldStats, "ajaxorg/ace": helloWorldStats,
		},
		// The first repository takes the longest to become ready.
		pending: map[string]int{"rails/rails": 5, "aws/chalice": 0, "ajaxorg/ace": 2},
	}

	path, err := runPipeline(t, fake, repositories)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var written []struct {
		URL     string `json:"url"`
		Commits int    `json:"commits"`
	}
	require.NoError(t, json.Unmarshal(data, &written))
	require.Len(t, written, len(repositories))
	for i, repository := range repositories {
		assert.Equal(t, repository, written[i].URL)
		assert.Equal(t, len(repositories)-i, written[i].Commits)
	}
	assert.Equal(t, int32(5+0+2+3), fake.statsRequests.Load())
}
