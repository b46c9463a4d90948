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

// Package server exposes pull request counts over HTTP. Every route is a GET
// taking owner and repo query parameters and answering {"count": n}, or a
// JSON error whose status code follows the error taxonomy in giterror.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-prcount/internal/counter"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
)

// Counter produces pull request counts. *counter.Counter satisfies it.
type Counter interface {
	Count(ctx context.Context, strategy counter.Strategy, ref github.RepositoryRef) (counter.Result, error)
}

// Options configures the server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// RequestTimeout bounds a single count. Zero means no bound beyond the
	// client's own connection.
	RequestTimeout time.Duration

	// StrategyFor picks the strategy for the default count route given
	// "owner/repo". Nil means metadata.
	StrategyFor func(repo string) string

	Logger zerolog.Logger
}

// Server is a thin wrapper over chi and http.Server.
type Server struct {
	counter Counter
	opts    Options
	log     zerolog.Logger
	mux     *chi.Mux
	srv     *http.Server
}

// New builds a server and mounts its routes.
func New(c Counter, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":3000"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.StrategyFor == nil {
		opts.StrategyFor = func(string) string { return string(counter.StrategyMetadata) }
	}

	s := &Server{
		counter: c,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "http").Logger(),
	}
	s.mux = s.routes()
	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.opts.Addr }

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully, letting in-flight counts finish within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("http listening")
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
