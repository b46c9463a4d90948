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

package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirseerhq/sirseer-prcount/internal/github"
)

// RecordWriter writes count records to some destination.
type RecordWriter interface {
	// Write writes a single record and flushes it.
	Write(record any) error

	// Close releases the destination. Writers over stdout do not close it.
	Close() error
}

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatNDJSON Format = "ndjson"
	FormatText   Format = "text"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatNDJSON:
		return FormatNDJSON, nil
	case FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q, expected ndjson or text", s)
	}
}

// CountRecord is one counted repository.
type CountRecord struct {
	Repository string    `json:"repository"`
	Owner      string    `json:"owner"`
	Repo       string    `json:"repo"`
	Strategy   string    `json:"strategy"`
	Count      int       `json:"count"`
	CountedAt  time.Time `json:"counted_at"`
}

// NewCountRecord builds the record for ref.
func NewCountRecord(ref github.RepositoryRef, strategy string, count int, at time.Time) CountRecord {
	return CountRecord{
		Repository: ref.String(),
		Owner:      ref.Owner,
		Repo:       ref.Repo,
		Strategy:   strategy,
		Count:      count,
		CountedAt:  at.UTC(),
	}
}
