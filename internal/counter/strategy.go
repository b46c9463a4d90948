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

// Package counter answers "how many pull requests does this repository have"
// using one of a closed set of strategies:
//
//   - metadata: one request with per_page=1; the last page number is the count
//   - concurrent: every page is fetched and counted, shortcut by the count cache
//   - search: the search index total_count
//   - graphql: pullRequests.totalCount through the GraphQL API
//
// Strategies do not fall back to one another; each surfaces its own failure.
package counter

import (
	"fmt"
	"strings"
)

// Strategy selects how a count is produced.
type Strategy string

// Supported strategies.
const (
	StrategyMetadata   Strategy = "metadata"
	StrategyConcurrent Strategy = "concurrent"
	StrategySearch     Strategy = "search"
	StrategyGraphQL    Strategy = "graphql"
)

// Strategies returns every supported strategy.
func Strategies() []Strategy {
	return []Strategy{StrategyMetadata, StrategyConcurrent, StrategySearch, StrategyGraphQL}
}

// ParseStrategy parses a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	candidate := Strategy(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Strategies() {
		if candidate == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q, expected one of metadata, concurrent, search, graphql", s)
}
