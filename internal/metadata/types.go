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

// Package metadata types define the structures recorded for each count operation.
package metadata

import (
	"time"
)

// CountMetadata is the record of a single count operation: what was asked,
// which strategy answered, and what it cost upstream.
type CountMetadata struct {
	Version    string       `json:"version"`
	CountID    string       `json:"count_id"`
	Parameters CountParams  `json:"parameters"`
	Results    CountResults `json:"results"`
}

// CountParams captures the inputs of a count operation.
type CountParams struct {
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Strategy string `json:"strategy"`
	PageSize int    `json:"page_size,omitempty"`
	UseCache bool   `json:"use_cache"`
}

// CountResults contains the outcome and the upstream cost of a count.
type CountResults struct {
	Count          int       `json:"count"`
	APICallCount   int       `json:"api_calls_made"`
	RateLimitWaits int       `json:"rate_limit_waits"`
	PagesFetched   int       `json:"pages_fetched"`
	CacheHit       bool      `json:"cache_hit"`
	StaleReset     bool      `json:"stale_reset"`
	Duration       string    `json:"duration"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}
