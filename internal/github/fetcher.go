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
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// MaxConcurrency caps in-flight page requests. Zero or less means unbounded.
	MaxConcurrency int
	// MinInterval staggers request initiation: page i starts no earlier
	// than (i-start)*MinInterval after FetchRange was called, however long
	// it waited for a concurrency slot.
	MinInterval time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// Fetcher requests a range of pages concurrently through a Requester.
type Fetcher struct {
	requester Requester
	limit     int
	interval  time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// NewFetcher creates a Fetcher.
func NewFetcher(requester Requester, opts FetcherOptions) *Fetcher {
	sleep := opts.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	now := opts.now
	if now == nil {
		now = time.Now
	}
	return &Fetcher{
		requester: requester,
		limit:     opts.MaxConcurrency,
		interval:  opts.MinInterval,
		sleep:     sleep,
		now:       now,
	}
}

// FetchRange requests every page in [start, end] with params plus page=i.
// The first failure cancels the pages still in flight and is returned. The
// result slice holds one entry per page; callers must not depend on the
// order in which pages completed.
func (f *Fetcher) FetchRange(ctx context.Context, rawURL string, start, end int, params url.Values) ([]*APIResult, error) {
	if end < start {
		return nil, nil
	}

	results := make([]*APIResult, end-start+1)
	g, gctx := errgroup.WithContext(ctx)
	if f.limit > 0 {
		g.SetLimit(f.limit)
	}

	begin := f.now()
	for page := start; page <= end; page++ {
		if gctx.Err() != nil {
			break
		}

		notBefore := begin.Add(time.Duration(page-start) * f.interval)
		g.Go(func() error {
			if delay := notBefore.Sub(f.now()); delay > 0 {
				if err := f.sleep(gctx, delay); err != nil {
					return err
				}
			}

			pageParams := cloneValues(params)
			pageParams.Set("page", strconv.Itoa(page))

			res, err := f.requester.Execute(gctx, rawURL, pageParams)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			results[page-start] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Cancelled before every page was scheduled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
