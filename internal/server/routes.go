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

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sirseerhq/sirseer-prcount/internal/counter"
)

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(s.log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/github/pull-requests/count", func(r chi.Router) {
		r.Get("/", s.handleCount(""))
		s.strategyRoutes(r)
	})
	r.Route("/count", s.strategyRoutes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "no route for " + r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Message: r.Method + " is not supported"})
	})
	return r
}

// strategyRoutes mounts one route per strategy.
func (s *Server) strategyRoutes(r chi.Router) {
	r.Get("/metadata", s.handleCount(counter.StrategyMetadata))
	r.Get("/concurrent", s.handleCount(counter.StrategyConcurrent))
	r.Get("/search", s.handleCount(counter.StrategySearch))
	r.Get("/graphql", s.handleCount(counter.StrategyGraphQL))
}
