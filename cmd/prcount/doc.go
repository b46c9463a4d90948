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

// Package main implements the prcount command-line interface. prcount
// reports how many pull requests a GitHub repository has, in any state,
// either once from the command line or continuously over HTTP.
//
// Usage:
//
//	prcount count <owner>/<repo> [flags]
//	prcount serve [--addr :3000]
//
// Example:
//
//	export GITHUB_API_KEY=your_token
//	prcount count golang/go --strategy concurrent --output counts.ndjson
//
// Exit codes:
//   - 0: Success
//   - 1: Invalid input or general error
//   - 2: Missing credential
//   - 3: Upstream or network failure
//   - 4: Rate limit retries exhausted
package main
