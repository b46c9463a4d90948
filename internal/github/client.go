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
	"context"
	"net/url"
)

// Requester issues one logical GET against the REST API. Executor is the
// production implementation and MockRequester the test double.
type Requester interface {
	Execute(ctx context.Context, rawURL string, params url.Values) (*APIResult, error)
}

// RangeFetcher fetches every page in [start, end] of a paginated listing.
type RangeFetcher interface {
	FetchRange(ctx context.Context, rawURL string, start, end int, params url.Values) ([]*APIResult, error)
}

// TotalCounter reads a server-side total for a repository's pull requests.
type TotalCounter interface {
	CountPullRequests(ctx context.Context, ref RepositoryRef) (int, error)
}
