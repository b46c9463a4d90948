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

// Package integration exercises the assembled counting stack, the HTTP
// server and the prcount binary against a fake GitHub API.
package integration

import (
	"io"
	"testing"

	"github.com/sirseerhq/sirseer-prcount/internal/app"
	"github.com/sirseerhq/sirseer-prcount/internal/config"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
	"github.com/sirseerhq/sirseer-prcount/test/testutil"
)

var ref = github.RepositoryRef{Owner: "octo", Repo: "hello"}

// newStack wires the real stack against server. mutate may adjust the
// configuration before it is validated.
func newStack(t *testing.T, server *testutil.GitHubServer, mutate func(*config.Config)) *app.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.GitHub.APIEndpoint = server.URL
	cfg.GitHub.GraphQLEndpoint = server.URL + "/graphql"
	if mutate != nil {
		mutate(cfg)
	}

	a, err := app.New(cfg, app.Options{
		LogWriter: io.Discard,
		Token:     github.StaticToken("test-token"),
	})
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	return a
}

// newStackFromConfig wires the stack from cfg as is, reading the token from
// the configured environment variable.
func newStackFromConfig(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()

	a, err := app.New(cfg, app.Options{LogWriter: io.Discard})
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	return a
}
