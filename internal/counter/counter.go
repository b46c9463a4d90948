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

package counter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-prcount/internal/cache"
	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
	"github.com/sirseerhq/sirseer-prcount/internal/metadata"
	"github.com/sirseerhq/sirseer-prcount/pkg/version"
)

// errGraphQLDisabled is returned when the graphql strategy has no client.
var errGraphQLDisabled = errors.New("graphql strategy is not configured")

// Result is the outcome of a count.
type Result struct {
	Count    int                     `json:"count"`
	Metadata *metadata.CountMetadata `json:"-"`
}

// Options configures a Counter.
type Options struct {
	// BaseURL is the REST API root. Defaults to github.DefaultBaseURL.
	BaseURL string
	// PageSize is per_page for the concurrent scan. Defaults to github.MaxPageSize.
	PageSize int
	// UseCache enables the count cache for the concurrent scan.
	UseCache bool
	// Cache is consulted and updated when UseCache is set.
	Cache cache.Store
	// Fetcher fetches remaining pages. Defaults to an unbounded github.Fetcher.
	Fetcher github.RangeFetcher
	// GraphQL serves the graphql strategy. Nil disables it.
	GraphQL github.TotalCounter
	Logger  zerolog.Logger
}

// Counter implements every Strategy against one Requester.
type Counter struct {
	requester github.Requester
	fetcher   github.RangeFetcher
	graphql   github.TotalCounter
	cache     cache.Store
	useCache  bool
	baseURL   string
	pageSize  int
	log       zerolog.Logger
}

// New creates a Counter issuing REST calls through requester.
func New(requester github.Requester, opts Options) *Counter {
	c := &Counter{
		requester: requester,
		fetcher:   opts.Fetcher,
		graphql:   opts.GraphQL,
		cache:     opts.Cache,
		useCache:  opts.UseCache && opts.Cache != nil,
		baseURL:   opts.BaseURL,
		pageSize:  opts.PageSize,
		log:       opts.Logger.With().Str("component", "counter").Logger(),
	}
	if c.fetcher == nil {
		c.fetcher = github.NewFetcher(requester, github.FetcherOptions{})
	}
	if c.baseURL == "" {
		c.baseURL = github.DefaultBaseURL
	}
	if c.pageSize <= 0 || c.pageSize > github.MaxPageSize {
		c.pageSize = github.MaxPageSize
	}
	return c
}

// Count returns the number of pull requests in ref using strategy.
func (c *Counter) Count(ctx context.Context, strategy Strategy, ref github.RepositoryRef) (Result, error) {
	tracker := metadata.New()
	ctx = metadata.WithTracker(ctx, tracker)

	var (
		count int
		err   error
	)
	switch strategy {
	case StrategyMetadata:
		count, err = c.countFromMetadata(ctx, ref)
	case StrategyConcurrent:
		count, err = c.countConcurrently(ctx, ref)
	case StrategySearch:
		count, err = c.countFromSearch(ctx, ref)
	case StrategyGraphQL:
		count, err = c.countFromGraphQL(ctx, ref)
	default:
		err = fmt.Errorf("unsupported strategy %q", strategy)
	}

	log := c.log.With().
		Str("repo", ref.String()).
		Str("strategy", string(strategy)).
		Int("api_calls", tracker.APICalls()).
		Logger()
	if err != nil {
		log.Warn().Err(err).Msg("pull request count failed")
		return Result{}, err
	}

	meta := tracker.GenerateMetadata(version.Version, metadata.CountParams{
		Owner:    ref.Owner,
		Repo:     ref.Repo,
		Strategy: string(strategy),
		PageSize: c.pageSize,
		UseCache: c.useCache,
	}, count)

	log.Info().
		Int("count", count).
		Bool("cache_hit", meta.Results.CacheHit).
		Int("pages", meta.Results.PagesFetched).
		Str("elapsed", meta.Results.Duration).
		Msg("pull requests counted")

	return Result{Count: count, Metadata: meta}, nil
}

// countFromMetadata reads the count from the last relation of a one-item page.
func (c *Counter) countFromMetadata(ctx context.Context, ref github.RepositoryRef) (int, error) {
	params := url.Values{
		"state":    {"all"},
		"per_page": {"1"},
		"page":     {"1"},
	}

	res, err := c.requester.Execute(ctx, github.PullsURL(c.baseURL, ref), params)
	if err != nil {
		return 0, err
	}
	metadata.FromContext(ctx).AddPages(1)

	if res.Links.HasLast() {
		return res.Links.Last, nil
	}
	// Without last there is at most one page of one item.
	if n := res.ItemCount(); n <= 1 && res.Links.Next == 0 {
		return n, nil
	}
	return 0, fmt.Errorf("%s: %d items on page 1 and no last relation: %w",
		ref, res.ItemCount(), relaierrors.ErrCountUnavailable)
}

// countConcurrently enumerates every page. With a cache record it starts at
// the previously last page, counts earlier pages as full, and returns the
// cached total unchanged when the page count and last page size still match.
func (c *Counter) countConcurrently(ctx context.Context, ref github.RepositoryRef) (int, error) {
	tracker := metadata.FromContext(ctx)
	target := github.PullsURL(c.baseURL, ref)
	params := url.Values{
		"state":    {"all"},
		"per_page": {strconv.Itoa(c.pageSize)},
	}

	rec, cached := c.lookup(ctx, ref)
	start, seed := 1, 0
	if cached {
		start = rec.LastPage
		seed = rec.RecordCount - rec.NumRecordsInPage
	}

	first, err := c.fetchPage(ctx, target, params, start)
	if err != nil {
		return 0, err
	}
	totalPages := first.Links.TotalPages(start)

	if cached {
		switch {
		case rec.LastPage == totalPages && first.ItemCount() == rec.NumRecordsInPage:
			tracker.RecordCacheHit()
			tracker.AddPages(1)
			return rec.RecordCount, nil

		case rec.LastPage > totalPages || (start > 1 && first.ItemCount() == 0):
			// Pages were removed since the record was written; a scan from
			// the old last page would miss them.
			tracker.RecordStaleReset()
			c.log.Debug().
				Str("repo", ref.String()).
				Int("cached_last_page", rec.LastPage).
				Int("observed_pages", totalPages).
				Msg("count cache stale, rescanning from page 1")

			start, seed = 1, 0
			if first, err = c.fetchPage(ctx, target, params, start); err != nil {
				return 0, err
			}
			totalPages = first.Links.TotalPages(start)
		}
	}

	rest, err := c.fetcher.FetchRange(ctx, target, start+1, totalPages, params)
	if err != nil {
		return 0, err
	}

	pages := make([]*github.APIResult, 0, len(rest)+1)
	pages = append(pages, first)
	pages = append(pages, rest...)
	tracker.AddPages(len(pages))

	count := seed
	for _, p := range pages {
		count += p.ItemCount()
	}

	if c.useCache {
		final := finalPage(pages)
		if err := c.cache.Upsert(ctx, ref, totalPages, final.ItemCount(), count); err != nil {
			c.log.Warn().Err(err).Str("repo", ref.String()).Msg("count cache update failed")
		}
	}

	return count, nil
}

// lookup returns a cache record usable as a scan seed. A record written with a
// different page size cannot seed this scan because its pages do not line up.
func (c *Counter) lookup(ctx context.Context, ref github.RepositoryRef) (cache.Record, bool) {
	if !c.useCache {
		return cache.Record{}, false
	}

	rec, ok, err := c.cache.Get(ctx, ref)
	if err != nil {
		c.log.Warn().Err(err).Str("repo", ref.String()).Msg("count cache lookup failed")
		return cache.Record{}, false
	}
	if !ok || !rec.Known() {
		return cache.Record{}, false
	}
	if rec.RecordCount-rec.NumRecordsInPage != (rec.LastPage-1)*c.pageSize {
		return cache.Record{}, false
	}
	return rec, true
}

func (c *Counter) fetchPage(ctx context.Context, target string, params url.Values, page int) (*github.APIResult, error) {
	p := make(url.Values, len(params)+1)
	for k, v := range params {
		p[k] = v
	}
	p.Set("page", strconv.Itoa(page))
	return c.requester.Execute(ctx, target, p)
}

// finalPage returns the page carrying no last relation, which GitHub only
// omits on the final page. If the listing grew mid-scan every page may carry
// one; the highest page fetched is then the best estimate.
func finalPage(pages []*github.APIResult) *github.APIResult {
	var final, highest *github.APIResult
	for _, p := range pages {
		if !p.Links.HasLast() && (final == nil || p.Page > final.Page) {
			final = p
		}
		if highest == nil || p.Page > highest.Page {
			highest = p
		}
	}
	if final != nil {
		return final
	}
	return highest
}

// countFromSearch reads total_count from the search index. Results are never
// cached: the index already lags the live listing.
func (c *Counter) countFromSearch(ctx context.Context, ref github.RepositoryRef) (int, error) {
	res, err := c.requester.Execute(ctx, github.SearchURL(c.baseURL), github.SearchParams(ref))
	if err != nil {
		return 0, err
	}
	metadata.FromContext(ctx).AddPages(1)

	total, incomplete, err := github.SearchTotal(res)
	if err != nil {
		return 0, err
	}
	if incomplete {
		c.log.Warn().Str("repo", ref.String()).Msg("search reported incomplete results")
	}
	return total, nil
}

func (c *Counter) countFromGraphQL(ctx context.Context, ref github.RepositoryRef) (int, error) {
	if c.graphql == nil {
		return 0, errGraphQLDisabled
	}
	return c.graphql.CountPullRequests(ctx, ref)
}
