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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
	"github.com/sirseerhq/sirseer-prcount/internal/metadata"
)

// MockRequester is an in-memory Requester simulating a repository with a
// fixed number of pull requests. It paginates and emits links the way the
// REST API does. It is safe for concurrent use.
type MockRequester struct {
	mu sync.Mutex

	// Total is the number of pull requests in the simulated repository.
	Total int
	// SearchTotal is reported by the search endpoint. Negative omits total_count.
	SearchTotal int
	// Error, when set, is returned by every call.
	Error error
	// FailPages makes requests for these page numbers fail with ErrUpstream.
	FailPages map[int]bool

	// Track calls for verification
	CallCount int
	Pages     []int
	LastURL   string
}

// MockOption configures a MockRequester.
type MockOption func(*MockRequester)

// WithSearchTotal sets the total reported by the search endpoint.
func WithSearchTotal(n int) MockOption {
	return func(m *MockRequester) { m.SearchTotal = n }
}

// WithError makes every call fail with err.
func WithError(err error) MockOption {
	return func(m *MockRequester) { m.Error = err }
}

// WithFailingPage makes requests for page fail.
func WithFailingPage(page int) MockOption {
	return func(m *MockRequester) {
		if m.FailPages == nil {
			m.FailPages = make(map[int]bool)
		}
		m.FailPages[page] = true
	}
}

// NewMockRequester creates a mock repository holding total pull requests.
func NewMockRequester(total int, opts ...MockOption) *MockRequester {
	m := &MockRequester{Total: total, SearchTotal: total}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetTotal changes the simulated repository size.
func (m *MockRequester) SetTotal(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Total = n
	m.SearchTotal = n
}

// Calls returns the number of Execute calls so far.
func (m *MockRequester) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// ResetCalls clears call tracking.
func (m *MockRequester) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.Pages = nil
}

// Execute implements Requester.
func (m *MockRequester) Execute(ctx context.Context, rawURL string, params url.Values) (*APIResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	metadata.FromContext(ctx).IncrementAPICall()

	m.mu.Lock()
	defer m.mu.Unlock()

	page, _ := strconv.Atoi(params.Get("page"))
	m.CallCount++
	m.Pages = append(m.Pages, page)
	m.LastURL = rawURL

	if m.Error != nil {
		return nil, m.Error
	}
	if m.FailPages[page] {
		return nil, &StatusError{StatusCode: http.StatusBadGateway, URL: rawURL, Message: "simulated failure"}
	}

	if strings.HasSuffix(rawURL, "/search/issues") {
		return m.searchResult(), nil
	}
	return m.pageResult(params, page)
}

func (m *MockRequester) searchResult() *APIResult {
	body := []byte(`{"incomplete_results":false,"items":[]}`)
	if m.SearchTotal >= 0 {
		body = []byte(fmt.Sprintf(`{"total_count":%d,"incomplete_results":false,"items":[]}`, m.SearchTotal))
	}
	return &APIResult{StatusCode: http.StatusOK, Header: http.Header{}, Body: body}
}

func (m *MockRequester) pageResult(params url.Values, page int) (*APIResult, error) {
	perPage, err := strconv.Atoi(params.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = 30
	}
	if page < 1 {
		page = 1
	}

	pages := (m.Total + perPage - 1) / perPage
	count := 0
	if page <= pages {
		count = perPage
		if page == pages && m.Total%perPage != 0 {
			count = m.Total % perPage
		}
	}

	items := make([]json.RawMessage, count)
	for i := range items {
		items[i] = json.RawMessage(fmt.Sprintf(`{"number":%d}`, (page-1)*perPage+i+1))
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", relaierrors.ErrUpstream, err)
	}

	return &APIResult{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Items:      items,
		Links:      MockLinks(page, pages),
		Body:       body,
		Page:       page,
	}, nil
}

// MockLinks returns the links GitHub emits for page out of pages. Pages past
// the end carry first, prev and last relations but no next.
func MockLinks(page, pages int) PageLinks {
	var links PageLinks
	if pages <= 1 && page <= 1 {
		return links
	}
	if page < pages {
		links.Next = page + 1
		links.Last = pages
	}
	if page > pages && pages > 0 {
		links.Last = pages
	}
	if page > 1 {
		links.Prev = page - 1
		links.First = 1
	}
	return links
}
