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

package testutil

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirseerhq/sirseer-prcount/internal/output"
)

// ParseCountRecords parses NDJSON count records, skipping blank lines.
func ParseCountRecords(t *testing.T, ndjson string) []output.CountRecord {
	t.Helper()

	var records []output.CountRecord
	scanner := bufio.NewScanner(strings.NewReader(ndjson))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec output.CountRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			t.Fatalf("Line %d: invalid JSON: %v", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Failed to scan output: %v", err)
	}
	return records
}

// ReadCountRecords reads the count records in an NDJSON file.
func ReadCountRecords(t *testing.T, path string) []output.CountRecord {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	return ParseCountRecords(t, string(data))
}

// AssertSingleCount checks that ndjson holds exactly one record for repo
// with the expected count and strategy.
func AssertSingleCount(t *testing.T, ndjson, repo, strategy string, want int) {
	t.Helper()

	records := ParseCountRecords(t, ndjson)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d:\n%s", len(records), ndjson)
	}
	rec := records[0]
	if rec.Repository != repo {
		t.Errorf("Repository = %s, want %s", rec.Repository, repo)
	}
	if rec.Strategy != strategy {
		t.Errorf("Strategy = %s, want %s", rec.Strategy, strategy)
	}
	if rec.Count != want {
		t.Errorf("Count = %d, want %d", rec.Count, want)
	}
}
