// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-prcount/internal/config"
	"github.com/sirseerhq/sirseer-prcount/test/testutil"
)

type response struct {
	status  int
	count   int
	code    string
	calls   string
	message string
}

func getCount(t *testing.T, base, path string) response {
	t.Helper()

	resp, err := http.Get(base + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Count   int    `json:"count"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return response{
		status:  resp.StatusCode,
		count:   body.Count,
		code:    body.Error,
		calls:   resp.Header.Get("X-Upstream-Calls"),
		message: body.Message,
	}
}

func startServer(t *testing.T, upstream *testutil.GitHubServer, mutate func(*config.Config)) string {
	t.Helper()
	a := newStack(t, upstream, mutate)
	srv := httptest.NewServer(a.Server().Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestServerRoutes(t *testing.T) {
	upstream := testutil.NewGitHubServer(t, 20)
	base := startServer(t, upstream, nil)

	for _, path := range []string{
		"/github/pull-requests/count",
		"/count/metadata",
		"/count/concurrent",
		"/count/search",
		"/count/graphql",
		"/github/pull-requests/count/search",
		"/github/pull-requests/count/concurrent",
	} {
		t.Run(path, func(t *testing.T) {
			got := getCount(t, base, path+"?owner=octo&repo=hello")
			assert.Equal(t, http.StatusOK, got.status)
			assert.Equal(t, 20, got.count)
			assert.Equal(t, "1", got.calls)
		})
	}
}

func TestServerCacheAcrossRequests(t *testing.T) {
	upstream := testutil.NewGitHubServer(t, 225)
	base := startServer(t, upstream, nil)

	first := getCount(t, base, "/count/concurrent?owner=octo&repo=hello")
	second := getCount(t, base, "/count/concurrent?owner=octo&repo=hello")

	assert.Equal(t, 225, first.count)
	assert.Equal(t, 225, second.count)
	assert.Equal(t, "3", first.calls)
	assert.Equal(t, "1", second.calls)
	assert.Equal(t, 4, upstream.RequestCount())
}

func TestServerErrors(t *testing.T) {
	t.Run("invalid input", func(t *testing.T) {
		upstream := testutil.NewGitHubServer(t, 20)
		base := startServer(t, upstream, nil)

		got := getCount(t, base, "/count/search?owner=octo")
		assert.Equal(t, http.StatusBadRequest, got.status)
		assert.Equal(t, "invalid_request", got.code)
		assert.Zero(t, upstream.RequestCount())
	})

	t.Run("missing credential", func(t *testing.T) {
		upstream := testutil.NewGitHubServer(t, 20)
		t.Setenv("PRCOUNT_INTEGRATION_SERVER_TOKEN", "")
		cfg := config.DefaultConfig()
		cfg.GitHub.APIEndpoint = upstream.URL
		cfg.GitHub.TokenEnv = "PRCOUNT_INTEGRATION_SERVER_TOKEN"
		srv := httptest.NewServer(newStackFromConfig(t, cfg).Server().Handler())
		defer srv.Close()

		got := getCount(t, srv.URL, "/github/pull-requests/count?owner=octo&repo=hello")
		assert.Equal(t, http.StatusInternalServerError, got.status)
		assert.Equal(t, "missing_credential", got.code)
		assert.Zero(t, upstream.RequestCount())
	})

	t.Run("rate limit exhausted", func(t *testing.T) {
		upstream := testutil.NewGitHubServer(t, 20)
		upstream.RateLimitNext(100, "0")
		base := startServer(t, upstream, func(c *config.Config) { c.Counting.RetryLimit = 1 })

		got := getCount(t, base, "/count/metadata?owner=octo&repo=hello")
		assert.Equal(t, http.StatusServiceUnavailable, got.status)
		assert.Equal(t, "rate_limit_exceeded", got.code)
	})

	t.Run("repository not found", func(t *testing.T) {
		upstream := testutil.NewGitHubServer(t, 20)
		upstream.SetMissing("octo/gone")
		base := startServer(t, upstream, nil)

		got := getCount(t, base, "/count/concurrent?owner=octo&repo=gone")
		assert.Equal(t, http.StatusBadGateway, got.status)
		assert.Equal(t, "upstream_error", got.code)
	})

	t.Run("count timeout", func(t *testing.T) {
		upstream := testutil.NewGitHubServer(t, 20)
		upstream.RateLimitNext(1, "30")
		base := startServer(t, upstream, func(c *config.Config) { c.Server.CountTimeout = 50 * time.Millisecond })

		got := getCount(t, base, "/count/metadata?owner=octo&repo=hello")
		assert.Equal(t, http.StatusGatewayTimeout, got.status)
		assert.Equal(t, "timeout", got.code)
		assert.Equal(t, 1, upstream.RequestCount())
	})

	t.Run("count unavailable", func(t *testing.T) {
		upstream := testutil.NewGitHubServer(t, 20)
		upstream.SetSearchTotal(-1)
		base := startServer(t, upstream, nil)

		got := getCount(t, base, "/count/search?owner=octo&repo=hello")
		assert.Equal(t, http.StatusBadGateway, got.status)
		assert.Equal(t, "count_unavailable", got.code)
	})
}

func TestServerDefaultStrategyPerRepository(t *testing.T) {
	upstream := testutil.NewGitHubServer(t, 20)
	upstream.SetSearchTotal(19)
	base := startServer(t, upstream, func(c *config.Config) {
		c.Repositories["octo/indexed"] = config.RepoConfig{Strategy: "search"}
	})

	assert.Equal(t, 19, getCount(t, base, "/github/pull-requests/count?owner=octo&repo=indexed").count)
	assert.Equal(t, 20, getCount(t, base, "/github/pull-requests/count?owner=octo&repo=hello").count)
}
