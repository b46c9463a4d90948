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

// Package metadata tracks statistics about count operations. A Tracker is
// attached to the context of one count and records the number of upstream
// API calls, rate limit waits, pages fetched, and how the count cache was
// used. The resulting CountMetadata is logged by the counter, printed by the
// CLI on request, and can be saved as JSON for troubleshooting.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Tracker collects statistics during a count operation. All methods are safe
// for concurrent use and are no-ops on a nil Tracker, so callers never need
// to check whether tracking is enabled.
type Tracker struct {
	startTime      time.Time
	apiCallCount   atomic.Int64
	rateLimitWaits atomic.Int64
	pagesFetched   atomic.Int64

	mu         sync.Mutex
	cacheHit   bool
	staleReset bool
}

// New creates a new metadata tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

type trackerKey struct{}

// WithTracker returns a context carrying t.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// FromContext returns the tracker in ctx, or nil.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}

// IncrementAPICall records one upstream request attempt.
func (t *Tracker) IncrementAPICall() {
	if t == nil {
		return
	}
	t.apiCallCount.Add(1)
}

// IncrementRateLimitWait records one rate limited response that was waited out.
func (t *Tracker) IncrementRateLimitWait() {
	if t == nil {
		return
	}
	t.rateLimitWaits.Add(1)
}

// AddPages records pages that contributed to a count.
func (t *Tracker) AddPages(n int) {
	if t == nil {
		return
	}
	t.pagesFetched.Add(int64(n))
}

// RecordCacheHit marks the count as served from the count cache.
func (t *Tracker) RecordCacheHit() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.cacheHit = true
	t.mu.Unlock()
}

// RecordStaleReset marks that the cached starting page had to be discarded.
func (t *Tracker) RecordStaleReset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.staleReset = true
	t.mu.Unlock()
}

// APICalls returns the number of upstream requests recorded so far.
func (t *Tracker) APICalls() int {
	if t == nil {
		return 0
	}
	return int(t.apiCallCount.Load())
}

// GenerateMetadata creates the CountMetadata record for a completed count.
func (t *Tracker) GenerateMetadata(version string, params CountParams, count int) *CountMetadata {
	completedAt := time.Now()

	t.mu.Lock()
	cacheHit, staleReset := t.cacheHit, t.staleReset
	t.mu.Unlock()

	return &CountMetadata{
		Version:    version,
		CountID:    uuid.NewString(),
		Parameters: params,
		Results: CountResults{
			Count:          count,
			APICallCount:   int(t.apiCallCount.Load()),
			RateLimitWaits: int(t.rateLimitWaits.Load()),
			PagesFetched:   int(t.pagesFetched.Load()),
			CacheHit:       cacheHit,
			StaleReset:     staleReset,
			Duration:       completedAt.Sub(t.startTime).String(),
			StartedAt:      t.startTime,
			CompletedAt:    completedAt,
		},
	}
}

// SaveMetadata persists a CountMetadata record to a JSON file in dir. The file
// is written atomically using a temporary file and rename.
//
// The metadata file will be named: count-metadata-{owner}-{repo}-{timestamp}.json
func SaveMetadata(metadata *CountMetadata, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create metadata directory: %w", err)
	}

	filename := fmt.Sprintf("count-metadata-%s-%s-%d.json",
		metadata.Parameters.Owner, metadata.Parameters.Repo, metadata.Results.StartedAt.UnixNano())
	path := filepath.Join(dir, filename)

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return "", fmt.Errorf("failed to save metadata file: %w", err)
	}

	return path, nil
}

// WriteMetadataToWriter serializes metadata to indented JSON.
func WriteMetadataToWriter(metadata *CountMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
