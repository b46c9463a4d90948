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

// Package testutil provides common test helpers for sirseer-prcount: a fake
// GitHub API server and helpers for config files and CLI output.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// GitHubServer is a fake GitHub API. It serves the paginated pull request
// listing with Link headers, the issue search total and the GraphQL
// pullRequests.totalCount for every repository, all backed by one settable
// total. Requests without an Authorization header get 401.
type GitHubServer struct {
	*httptest.Server

	total       atomic.Int64
	searchTotal atomic.Int64
	searchSet   atomic.Bool
	rateLimited atomic.Int64
	requests    atomic.Int64

	mu         sync.Mutex
	retryAfter string
	missing    map[string]bool
	pages      []int
	lastAuth   string
}

// NewGitHubServer starts a fake holding total pull requests. It is closed
// when the test ends.
func NewGitHubServer(t *testing.T, total int) *GitHubServer {
	t.Helper()
	s := &GitHubServer{missing: make(map[string]bool)}
	s.total.Store(int64(total))
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// SetTotal changes the number of pull requests.
func (s *GitHubServer) SetTotal(n int) { s.total.Store(int64(n)) }

// SetSearchTotal makes search report n instead of the live total. A
// negative n omits total_count from the response.
func (s *GitHubServer) SetSearchTotal(n int) {
	s.searchTotal.Store(int64(n))
	s.searchSet.Store(true)
}

// RateLimitNext answers the next n requests with 429. An empty retryAfter
// omits the Retry-After header.
func (s *GitHubServer) RateLimitNext(n int, retryAfter string) {
	s.mu.Lock()
	s.retryAfter = retryAfter
	s.mu.Unlock()
	s.rateLimited.Store(int64(n))
}

// SetMissing makes owner/repo answer 404.
func (s *GitHubServer) SetMissing(repo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing[repo] = true
}

// RequestCount returns the number of requests received, including rejected ones.
func (s *GitHubServer) RequestCount() int { return int(s.requests.Load()) }

// PageRequests returns the page numbers requested from the listing, in arrival order.
func (s *GitHubServer) PageRequests() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.pages...)
}

// LastAuthorization returns the Authorization header of the latest request.
func (s *GitHubServer) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

// ResetCounts clears request counters and the page log.
func (s *GitHubServer) ResetCounts() {
	s.requests.Store(0)
	s.mu.Lock()
	s.pages = nil
	s.mu.Unlock()
}

func (s *GitHubServer) serve(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	auth := r.Header.Get("Authorization")
	s.mu.Lock()
	s.lastAuth = auth
	retryAfter := s.retryAfter
	s.mu.Unlock()

	if auth == "" {
		writeMessage(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	if s.rateLimited.Add(-1) >= 0 {
		if retryAfter != "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		writeMessage(w, http.StatusTooManyRequests, "API rate limit exceeded")
		return
	}
	s.rateLimited.Store(0)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/graphql":
		s.serveGraphQL(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/search/issues":
		s.serveSearch(w)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/repos/") && strings.HasSuffix(r.URL.Path, "/pulls"):
		s.servePulls(w, r)
	default:
		writeMessage(w, http.StatusNotFound, "Not Found")
	}
}

func (s *GitHubServer) servePulls(w http.ResponseWriter, r *http.Request) {
	repo := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/"), "/pulls")
	s.mu.Lock()
	missing := s.missing[repo]
	s.mu.Unlock()
	if missing {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}

	q := r.URL.Query()
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = 30
	}
	if perPage > 100 {
		perPage = 100
	}
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()

	total := int(s.total.Load())
	pages := (total + perPage - 1) / perPage

	first := (page - 1) * perPage
	n := 0
	if first < total {
		n = min(perPage, total-first)
	}
	items := make([]map[string]int, n)
	for i := range items {
		items[i] = map[string]int{"number": first + i + 1}
	}

	if link := linkHeader(s.URL+r.URL.Path, q, page, pages); link != "" {
		w.Header().Set("Link", link)
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *GitHubServer) serveSearch(w http.ResponseWriter) {
	body := map[string]any{"incomplete_results": false, "items": []any{}}
	total := s.total.Load()
	if s.searchSet.Load() {
		total = s.searchTotal.Load()
	}
	if total >= 0 {
		body["total_count"] = total
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *GitHubServer) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	repo := fmt.Sprintf("%v/%v", req.Variables["owner"], req.Variables["repo"])
	s.mu.Lock()
	missing := s.missing[repo]
	s.mu.Unlock()
	if missing {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"repository": nil},
			"errors": []map[string]any{{
				"type":    "NOT_FOUND",
				"message": fmt.Sprintf("Could not resolve to a Repository with the name '%s'.", repo),
			}},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"repository": map[string]any{
				"pullRequests": map[string]any{"totalCount": s.total.Load()},
			},
		},
	})
}

// linkHeader renders the Link header GitHub sends for page out of pages.
// The final page carries prev and first but no next or last; pages past
// the end still point at the last page.
func linkHeader(base string, q url.Values, page, pages int) string {
	link := func(p int, rel string) string {
		v := url.Values{}
		for k, vs := range q {
			v[k] = vs
		}
		v.Set("page", strconv.Itoa(p))
		return fmt.Sprintf(`<%s?%s>; rel="%s"`, base, v.Encode(), rel)
	}

	var parts []string
	switch {
	case page < pages:
		parts = append(parts, link(page+1, "next"), link(pages, "last"))
	case page > pages && pages > 0:
		parts = append(parts, link(pages, "last"))
	}
	if page > 1 {
		parts = append(parts, link(page-1, "prev"), link(1, "first"))
	}
	return strings.Join(parts, ", ")
}

// NewErrorServer creates a server that always answers statusCode.
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, statusCode, http.StatusText(statusCode))
	}))
	t.Cleanup(server.Close)
	return server
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"message":           msg,
		"documentation_url": "https://docs.github.com/rest",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
