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

// Package app assembles the counting stack from configuration: the REST
// executor, the page fetcher, the GraphQL client, the count cache and the
// counter. The CLI and the HTTP server both start from here.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-prcount/internal/cache"
	"github.com/sirseerhq/sirseer-prcount/internal/config"
	"github.com/sirseerhq/sirseer-prcount/internal/counter"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
	"github.com/sirseerhq/sirseer-prcount/internal/logger"
	"github.com/sirseerhq/sirseer-prcount/internal/server"
	"github.com/sirseerhq/sirseer-prcount/pkg/version"
)

// App is a wired counting stack.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Counter *counter.Counter
	Cache   *cache.Memory
}

// Options overrides parts of the stack, mainly for tests.
type Options struct {
	// LogWriter defaults to stderr.
	LogWriter io.Writer
	// Token overrides reading cfg.GitHub.TokenEnv.
	Token github.TokenSource
}

// New validates cfg and builds the stack. The cache lives as long as the
// App, so a long-running server reuses it across requests.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	log, err := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Version: version.Version,
		Writer:  w,
	})
	if err != nil {
		return nil, err
	}

	token := opts.Token
	if token == nil {
		token = github.EnvToken(cfg.GitHub.TokenEnv)
	}

	exec := github.NewExecutor(github.ExecutorOptions{
		Token:   token,
		Timeout: cfg.Counting.RequestTimeout,
		Retry: github.RetryPolicy{
			RetryLimit:  cfg.Counting.RetryLimit,
			MinInterval: cfg.Counting.MinRequestInterval,
		},
		Logger: log,
	})

	store := cache.NewMemory()
	c := counter.New(exec, counter.Options{
		BaseURL:  cfg.GitHub.APIEndpoint,
		PageSize: cfg.Counting.PageSize,
		UseCache: cfg.Counting.UseCache,
		Cache:    store,
		Fetcher: github.NewFetcher(exec, github.FetcherOptions{
			MaxConcurrency: cfg.Counting.MaxConcurrency,
			MinInterval:    cfg.Counting.MinRequestInterval,
		}),
		GraphQL: github.NewGraphQLClient(cfg.GitHub.GraphQLEndpoint, token, cfg.Counting.RequestTimeout),
		Logger:  log,
	})

	return &App{Config: cfg, Logger: log, Counter: c, Cache: store}, nil
}

// Server returns an HTTP server over the app's counter.
func (a *App) Server() *server.Server {
	return server.New(a.Counter, server.Options{
		Addr:            a.Config.Server.Addr,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		RequestTimeout:  a.Config.Server.CountTimeout,
		StrategyFor:     a.Config.GetStrategy,
		Logger:          a.Logger,
	})
}
