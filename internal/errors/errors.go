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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI and to status codes in the HTTP server.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrMissingCredential indicates no GitHub token was present in the environment
	// when an outbound call was attempted. It is never retried.
	// Maps to exit code 2 and HTTP 500.
	ErrMissingCredential = errors.New("github credential not configured")

	// ErrUpstream indicates GitHub answered with a non-success status that is not
	// a recognized rate limit, or a rate limit without a usable Retry-After value.
	// Maps to exit code 3 and HTTP 502.
	ErrUpstream = errors.New("github upstream error")

	// ErrRateLimitExceeded indicates the retry ceiling was exhausted while GitHub
	// kept answering with rate limit responses.
	// Maps to exit code 4 and HTTP 503.
	ErrRateLimitExceeded = errors.New("github rate limit exceeded")

	// ErrCountUnavailable indicates the pagination metadata was insufficient to derive a count.
	// Maps to exit code 3 and HTTP 502.
	ErrCountUnavailable = errors.New("pull request count unavailable")

	// ErrRepoNotFound indicates the specified repository does not exist or is not accessible.
	// It is always reported together with ErrUpstream.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrNetworkFailure indicates a network connection problem.
	// It is always reported together with ErrUpstream.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrInvalidConfig indicates a config file, dotenv file or environment
	// override that cannot be loaded or fails validation.
	// Maps to exit code 2 and HTTP 500.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidRepository indicates a malformed owner or repository name.
	// Maps to exit code 1 and HTTP 400.
	ErrInvalidRepository = errors.New("invalid repository")
)
