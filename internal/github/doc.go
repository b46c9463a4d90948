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

// Package github provides the API-access core used to count pull requests on
// GitHub. It wraps the paginated REST API behind a rate-limit aware executor,
// schedules concurrent page fetches, and exposes the GraphQL totalCount query
// as an alternative source of the same number.
//
// The package includes:
//   - ParseLinks, which turns a Link header into page numbers
//   - Executor, which issues authenticated GETs and waits out rate limits
//   - Fetcher, which fetches a page range with bounded concurrency
//   - GraphQLClient, which reads pullRequests.totalCount
//   - MockRequester for testing
//
// Basic usage:
//
//	exec := github.NewExecutor(github.ExecutorOptions{TokenEnv: "GITHUB_API_KEY"})
//	res, err := exec.Execute(ctx, github.PullsURL(base, ref), url.Values{"per_page": {"1"}})
//	if err != nil {
//	    // Handle error
//	}
//	fmt.Println(res.Links.Last, len(res.Items))
package github
