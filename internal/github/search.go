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
	"fmt"
	"net/url"
	"strings"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
)

// BuildSearchQuery constructs the issue search query matching every pull
// request in ref, open or closed.
func BuildSearchQuery(ref RepositoryRef) string {
	parts := []string{
		fmt.Sprintf("repo:%s/%s", ref.Owner, ref.Repo),
		"is:pr",
	}
	return strings.Join(parts, " ")
}

// SearchParams returns the query parameters for a total-count search. One
// item per page keeps the payload small; only total_count is read.
func SearchParams(ref RepositoryRef) url.Values {
	return url.Values{
		"q":        {BuildSearchQuery(ref)},
		"per_page": {"1"},
	}
}

type searchResponse struct {
	TotalCount        *int `json:"total_count"`
	IncompleteResults bool `json:"incomplete_results"`
}

// SearchTotal reads total_count from a search response.
func SearchTotal(res *APIResult) (total int, incomplete bool, err error) {
	var payload searchResponse
	if err := res.Decode(&payload); err != nil {
		return 0, false, fmt.Errorf("%w: %w", relaierrors.ErrUpstream, err)
	}
	if payload.TotalCount == nil {
		return 0, false, fmt.Errorf("search response has no total_count: %w", relaierrors.ErrCountUnavailable)
	}
	return *payload.TotalCount, payload.IncompleteResults, nil
}
