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

package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
)

// Default values for REST calls.
const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	// MaxPageSize is the largest per_page GitHub accepts for pull requests.
	MaxPageSize = 100

	// DefaultRetryLimit is the number of retries after the first rate limited attempt.
	DefaultRetryLimit = 5

	// DefaultTokenEnv is the environment variable holding the bearer token.
	DefaultTokenEnv = "GITHUB_API_KEY"

	acceptHeader = "application/vnd.github+json"
)

// RepositoryRef identifies a repository. It is created per request and never persisted.
type RepositoryRef struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// String returns the owner/repo form.
func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Repo
}

// ParseRepository parses "owner/repo" into a RepositoryRef.
func ParseRepository(s string) (RepositoryRef, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return RepositoryRef{}, fmt.Errorf("expected <owner>/<repo>, got %q: %w", s, relaierrors.ErrInvalidRepository)
	}

	ref := RepositoryRef{
		Owner: strings.TrimSpace(parts[0]),
		Repo:  strings.TrimSpace(parts[1]),
	}
	if ref.Owner == "" || ref.Repo == "" {
		return RepositoryRef{}, fmt.Errorf("expected <owner>/<repo>, got %q: %w", s, relaierrors.ErrInvalidRepository)
	}
	return ref, nil
}

// PullsURL returns the paginated pull request listing URL for ref.
func PullsURL(base string, ref RepositoryRef) string {
	return fmt.Sprintf("%s/repos/%s/%s/pulls",
		strings.TrimRight(base, "/"), url.PathEscape(ref.Owner), url.PathEscape(ref.Repo))
}

// SearchURL returns the issue search URL.
func SearchURL(base string) string {
	return strings.TrimRight(base, "/") + "/search/issues"
}

// APIResult wraps one successful HTTP response. It is not modified after construction.
type APIResult struct {
	StatusCode int
	Header     http.Header
	// Items holds the elements of a JSON array body, nil for object bodies.
	Items []json.RawMessage
	Links PageLinks
	Body  []byte
	// Page is the page number that was requested, 0 when none was.
	Page int
}

// ItemCount returns the number of array elements in the body.
func (r *APIResult) ItemCount() int {
	return len(r.Items)
}

// Decode unmarshals the raw body into v.
func (r *APIResult) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// StatusError is returned for non-success upstream responses. It unwraps to
// ErrUpstream, and additionally to ErrRepoNotFound for a 404.
type StatusError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github returned %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("github returned %d for %s: %s", e.StatusCode, e.URL, e.Message)
}

// Unwrap exposes the sentinels this status maps to.
func (e *StatusError) Unwrap() []error {
	if e.StatusCode == http.StatusNotFound {
		return []error{relaierrors.ErrUpstream, relaierrors.ErrRepoNotFound}
	}
	return []error{relaierrors.ErrUpstream}
}

// HTTPStatus returns the upstream status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// decodeItems returns the elements of body when it is a JSON array.
func decodeItems(body []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, err
	}
	return items, nil
}
