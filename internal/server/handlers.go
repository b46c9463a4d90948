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
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-prcount/internal/counter"
	"github.com/sirseerhq/sirseer-prcount/internal/giterror"
)

const upstreamCallsHeader = "X-Upstream-Calls"

type countBody struct {
	Count int `json:"count"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleCount serves one count. An empty strategy defers to StrategyFor.
func (s *Server) handleCount(strategy counter.Strategy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := bindCountQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		st := strategy
		if st == "" {
			st, err = counter.ParseStrategy(s.opts.StrategyFor(ref.String()))
			if err != nil {
				writeError(w, r, err)
				return
			}
		}

		ctx := r.Context()
		if s.opts.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
			defer cancel()
		}

		res, err := s.counter.Count(ctx, st, ref)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if res.Metadata != nil {
			w.Header().Set(upstreamCallsHeader, strconv.Itoa(res.Metadata.Results.APICallCount))
		}
		writeJSON(w, http.StatusOK, countBody{Count: res.Count})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps err onto a status code and a stable error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := giterror.HTTPStatus(err)
	kind := giterror.Classify(err)

	log := zerolog.Ctx(r.Context())
	evt := log.Debug()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).Str("error_kind", kind.String()).Msg("count request failed")

	writeJSON(w, status, errorBody{Error: kind.String(), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
