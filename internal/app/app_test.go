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

package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-prcount/internal/config"
	"github.com/sirseerhq/sirseer-prcount/internal/counter"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Counting.PageSize = 500

	_, err := New(cfg, Options{LogWriter: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds GitHub API limit")
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Level = "loud"

	_, err := New(cfg, Options{LogWriter: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestAppCountsAgainstConfiguredEndpoint(t *testing.T) {
	var auth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Link", `<http://x/repos/o/r/pulls?per_page=1&page=42>; rel="last"`)
		_, _ = w.Write([]byte(`[{"number":1}]`))
	}))
	defer upstream.Close()

	cfg := config.DefaultConfig()
	cfg.GitHub.APIEndpoint = upstream.URL

	a, err := New(cfg, Options{LogWriter: &bytes.Buffer{}, Token: github.StaticToken("tok")})
	require.NoError(t, err)

	res, err := a.Counter.Count(context.Background(), counter.StrategyMetadata, github.RepositoryRef{Owner: "o", Repo: "r"})
	require.NoError(t, err)
	assert.Equal(t, 42, res.Count)
	assert.Equal(t, "Bearer tok", auth)

	srv := a.Server()
	assert.Equal(t, ":3000", srv.Addr())
}
