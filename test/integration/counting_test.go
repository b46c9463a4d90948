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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-prcount/internal/config"
	"github.com/sirseerhq/sirseer-prcount/internal/counter"
	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
	"github.com/sirseerhq/sirseer-prcount/test/testutil"
)

func TestConcurrentScan(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantCalls int
	}{
		{"partial last page", 225, 100, 3},
		{"exact single page", 15, 15, 1},
		{"exact multiple pages", 200, 100, 2},
		{"one item", 1, 100, 1},
		{"empty repository", 0, 100, 1},
		{"small pages", 225, 7, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewGitHubServer(t, tt.total)
			a := newStack(t, server, func(c *config.Config) { c.Counting.PageSize = tt.pageSize })

			res, err := a.Counter.Count(context.Background(), counter.StrategyConcurrent, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.total, res.Count)
			assert.Equal(t, tt.wantCalls, server.RequestCount())
			assert.Equal(t, tt.wantCalls, res.Metadata.Results.APICallCount)
		})
	}
}

func TestSingleRequestStrategies(t *testing.T) {
	for _, strategy := range []counter.Strategy{counter.StrategyMetadata, counter.StrategySearch, counter.StrategyGraphQL} {
		t.Run(string(strategy), func(t *testing.T) {
			server := testutil.NewGitHubServer(t, 20)
			a := newStack(t, server, nil)

			res, err := a.Counter.Count(context.Background(), strategy, ref)
			require.NoError(t, err)
			assert.Equal(t, 20, res.Count)
			assert.Equal(t, 1, server.RequestCount())
			assert.Equal(t, "Bearer test-token", server.LastAuthorization())
		})
	}
}

func TestSearchLagIsReported(t *testing.T) {
	server := testutil.NewGitHubServer(t, 20)
	server.SetSearchTotal(18)
	a := newStack(t, server, nil)

	res, err := a.Counter.Count(context.Background(), counter.StrategySearch, ref)
	require.NoError(t, err)
	assert.Equal(t, 18, res.Count, "search reports the index total, not the live listing")
}

func TestCacheLifecycle(t *testing.T) {
	server := testutil.NewGitHubServer(t, 225)
	a := newStack(t, server, nil)
	ctx := context.Background()

	count := func() (int, int, bool, bool) {
		t.Helper()
		server.ResetCounts()
		res, err := a.Counter.Count(ctx, counter.StrategyConcurrent, ref)
		require.NoError(t, err)
		return res.Count, server.RequestCount(), res.Metadata.Results.CacheHit, res.Metadata.Results.StaleReset
	}

	n, calls, hit, _ := count()
	assert.Equal(t, 225, n)
	assert.Equal(t, 3, calls)
	assert.False(t, hit)

	// Unchanged: only the previous last page is re-read.
	n, calls, hit, _ = count()
	assert.Equal(t, 225, n)
	assert.Equal(t, 1, calls)
	assert.True(t, hit)
	assert.Equal(t, []int{3}, server.PageRequests())

	// Growth within the last page.
	server.SetTotal(230)
	n, calls, _, _ = count()
	assert.Equal(t, 230, n)
	assert.Equal(t, 1, calls)

	// Growth onto a new page.
	server.SetTotal(301)
	n, calls, _, _ = count()
	assert.Equal(t, 301, n)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{3, 4}, server.PageRequests())

	// Shrink below the cached last page forces a rescan from page 1.
	server.SetTotal(150)
	n, _, _, stale := count()
	assert.Equal(t, 150, n)
	assert.True(t, stale)

	// And the rescan reseeded the cache.
	n, calls, hit, _ = count()
	assert.Equal(t, 150, n)
	assert.Equal(t, 1, calls)
	assert.True(t, hit)
}

func TestCacheDisabled(t *testing.T) {
	server := testutil.NewGitHubServer(t, 225)
	a := newStack(t, server, func(c *config.Config) { c.Counting.UseCache = false })

	for i := 0; i < 2; i++ {
		server.ResetCounts()
		res, err := a.Counter.Count(context.Background(), counter.StrategyConcurrent, ref)
		require.NoError(t, err)
		assert.Equal(t, 225, res.Count)
		assert.Equal(t, 3, server.RequestCount())
	}
	assert.Zero(t, a.Cache.Len())
}

func TestRepositoryNotFound(t *testing.T) {
	for _, strategy := range counter.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			server := testutil.NewGitHubServer(t, 5)
			server.SetMissing("octo/hello")
			if strategy == counter.StrategySearch {
				// The search index answers zero matches rather than 404.
				server.SetSearchTotal(0)
			}
			a := newStack(t, server, nil)

			res, err := a.Counter.Count(context.Background(), strategy, ref)
			if strategy == counter.StrategySearch {
				require.NoError(t, err)
				assert.Zero(t, res.Count)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, relaierrors.ErrUpstream), "err = %v", err)
			assert.True(t, errors.Is(err, relaierrors.ErrRepoNotFound), "err = %v", err)
		})
	}
}

func TestMissingCredentialMakesNoRequest(t *testing.T) {
	server := testutil.NewGitHubServer(t, 5)
	cfg := config.DefaultConfig()
	cfg.GitHub.APIEndpoint = server.URL
	cfg.GitHub.GraphQLEndpoint = server.URL + "/graphql"
	cfg.GitHub.TokenEnv = "PRCOUNT_INTEGRATION_UNSET_TOKEN"
	t.Setenv("PRCOUNT_INTEGRATION_UNSET_TOKEN", "")

	a := newStackFromConfig(t, cfg)
	for _, strategy := range counter.Strategies() {
		_, err := a.Counter.Count(context.Background(), strategy, ref)
		assert.ErrorIs(t, err, relaierrors.ErrMissingCredential, "strategy %s", strategy)
	}
	assert.Zero(t, server.RequestCount())
}

func TestTokenReadPerCall(t *testing.T) {
	server := testutil.NewGitHubServer(t, 5)
	cfg := config.DefaultConfig()
	cfg.GitHub.APIEndpoint = server.URL
	cfg.GitHub.TokenEnv = "PRCOUNT_INTEGRATION_TOKEN"
	t.Setenv("PRCOUNT_INTEGRATION_TOKEN", "")

	a := newStackFromConfig(t, cfg)
	_, err := a.Counter.Count(context.Background(), counter.StrategyMetadata, ref)
	require.ErrorIs(t, err, relaierrors.ErrMissingCredential)

	t.Setenv("PRCOUNT_INTEGRATION_TOKEN", "rotated")
	res, err := a.Counter.Count(context.Background(), counter.StrategyMetadata, ref)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Count)
	assert.Equal(t, "Bearer rotated", server.LastAuthorization())
}

var _ github.Requester = (*github.Executor)(nil)
