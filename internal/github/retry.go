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
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy configures how rate limited calls are retried. There is no
// backoff: GitHub says how long to wait and the executor waits that long.
type RetryPolicy struct {
	// RetryLimit is the number of retries after the first attempt.
	RetryLimit int
	// MinInterval is the lower bound for every wait and the spacing
	// between staggered page requests.
	MinInterval time.Duration
}

// DefaultRetryPolicy returns the default retry configuration
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		RetryLimit: DefaultRetryLimit,
	}
}

// Wait returns max(retryAfter, MinInterval).
func (p RetryPolicy) Wait(retryAfter time.Duration) time.Duration {
	if retryAfter < p.MinInterval {
		return p.MinInterval
	}
	return retryAfter
}

// isRateLimitStatus reports whether GitHub signalled a rate limit.
func isRateLimitStatus(code int) bool {
	return code == http.StatusForbidden || code == http.StatusTooManyRequests
}

// retryAfter parses the Retry-After header as whole seconds.
func retryAfter(h http.Header) (time.Duration, bool) {
	raw := strings.TrimSpace(h.Get("Retry-After"))
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
