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

// Package cache stores, per repository, what the last concurrent scan saw:
// the number of pages, the number of pull requests on the final page, and
// the total. The counter uses it to skip pages that cannot have changed.
//
// Store is the capability the counter depends on. Memory is the in-process
// implementation; it is unbounded and lives as long as the process.
package cache

import (
	"context"
	"sync"

	"github.com/sirseerhq/sirseer-prcount/internal/github"
)

// Unknown marks a field whose value has not been observed yet.
const Unknown = -1

// Record is the remembered state for one repository.
type Record struct {
	Owner            string `json:"owner"`
	Repo             string `json:"repo"`
	LastPage         int    `json:"last_page"`
	NumRecordsInPage int    `json:"num_records_in_page"`
	RecordCount      int    `json:"record_count"`
}

// Known reports whether the record can seed a scan.
func (r Record) Known() bool {
	return r.LastPage >= 1 && r.RecordCount >= 0 && r.NumRecordsInPage >= 0
}

// Store is a count cache keyed by repository.
type Store interface {
	// Get returns the record for ref. ok is false when none exists.
	Get(ctx context.Context, ref github.RepositoryRef) (rec Record, ok bool, err error)
	// Upsert creates or replaces the record for ref.
	Upsert(ctx context.Context, ref github.RepositoryRef, lastPage, numRecordsInPage, recordCount int) error
}

type key struct {
	owner string
	repo  string
}

// Memory is an in-memory Store. Upserts are serialized, so a record is
// always replaced whole and concurrent scans of one repository cannot
// interleave their fields.
type Memory struct {
	mu      sync.RWMutex
	records map[key]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[key]Record),
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, ref github.RepositoryRef) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key{ref.Owner, ref.Repo}]
	return rec, ok, nil
}

// Upsert implements Store.
func (m *Memory) Upsert(_ context.Context, ref github.RepositoryRef, lastPage, numRecordsInPage, recordCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key{ref.Owner, ref.Repo}] = Record{
		Owner:            ref.Owner,
		Repo:             ref.Repo,
		LastPage:         lastPage,
		NumRecordsInPage: numRecordsInPage,
		RecordCount:      recordCount,
	}
	return nil
}

// Len returns the number of cached repositories.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
