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

package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-prcount/internal/github"
)

func TestMemory_GetUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	ref := github.RepositoryRef{Owner: "golang", Repo: "go"}

	_, ok, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Upsert(ctx, ref, 3, 25, 225))

	rec, ok, err := store.Get(ctx, ref)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{Owner: "golang", Repo: "go", LastPage: 3, NumRecordsInPage: 25, RecordCount: 225}, rec)
	assert.True(t, rec.Known())

	require.NoError(t, store.Upsert(ctx, ref, 4, 1, 301))
	rec, _, _ = store.Get(ctx, ref)
	assert.Equal(t, 4, rec.LastPage)
	assert.Equal(t, 301, rec.RecordCount)
	assert.Equal(t, 1, store.Len())
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Upsert(ctx, github.RepositoryRef{Owner: "a", Repo: "b"}, 1, 5, 5))
	require.NoError(t, store.Upsert(ctx, github.RepositoryRef{Owner: "a/b", Repo: ""}, 9, 9, 9))

	rec, ok, _ := store.Get(ctx, github.RepositoryRef{Owner: "a", Repo: "b"})
	require.True(t, ok)
	assert.Equal(t, 5, rec.RecordCount)
	assert.Equal(t, 2, store.Len())
}

func TestRecord_Known(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"observed", Record{LastPage: 1, NumRecordsInPage: 0, RecordCount: 0}, true},
		{"unknown page", Record{LastPage: Unknown, NumRecordsInPage: 0, RecordCount: 0}, false},
		{"unknown count", Record{LastPage: 2, NumRecordsInPage: 3, RecordCount: Unknown}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Known())
		})
	}
}

func TestMemory_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	ref := github.RepositoryRef{Owner: "o", Repo: "r"}

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Upsert(ctx, ref, i, i, i*100))
			_, _, _ = store.Get(ctx, ref)
		}()
	}
	wg.Wait()

	rec, ok, err := store.Get(ctx, ref)
	require.NoError(t, err)
	require.True(t, ok)
	// Every write is whole: fields always come from the same upsert.
	assert.Equal(t, rec.LastPage, rec.NumRecordsInPage)
	assert.Equal(t, rec.LastPage*100, rec.RecordCount)
}
