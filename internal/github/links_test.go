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

import "testing"

func TestParseLinks(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   PageLinks
	}{
		{
			name:   "empty header",
			header: "",
			want:   PageLinks{},
		},
		{
			name:   "first page of many",
			header: `<https://api.github.com/repositories/1/pulls?state=all&per_page=100&page=2>; rel="next", <https://api.github.com/repositories/1/pulls?state=all&per_page=100&page=3>; rel="last"`,
			want:   PageLinks{Next: 2, Last: 3},
		},
		{
			name:   "final page",
			header: `<https://api.github.com/r/pulls?page=2>; rel="prev", <https://api.github.com/r/pulls?page=1>; rel="first"`,
			want:   PageLinks{Prev: 2, First: 1},
		},
		{
			name:   "all relations",
			header: `<https://x/p?page=3>; rel="next", <https://x/p?page=1>; rel="prev", <https://x/p?page=9>; rel="last", <https://x/p?page=1>; rel="first"`,
			want:   PageLinks{Next: 3, Prev: 1, Last: 9, First: 1},
		},
		{
			name:   "extra whitespace and params",
			header: `  <https://x/p?per_page=1&page=20> ;  rel="last" `,
			want:   PageLinks{Last: 20},
		},
		{
			name:   "unparseable entries dropped",
			header: `garbage, <https://x/p?page=abc>; rel="next", <https://x/p?page=4>; rel="last", <https://x/p>; rel="prev", https://x/p?page=2; rel="first"`,
			want:   PageLinks{Last: 4},
		},
		{
			name:   "unknown relation ignored",
			header: `<https://x/p?page=7>; rel="self"`,
			want:   PageLinks{},
		},
		{
			name:   "missing rel",
			header: `<https://x/p?page=7>; title="x"`,
			want:   PageLinks{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLinks(tt.header); got != tt.want {
				t.Errorf("ParseLinks() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPageLinks_TotalPages(t *testing.T) {
	tests := []struct {
		name    string
		links   PageLinks
		current int
		want    int
	}{
		{"last present", PageLinks{Next: 2, Last: 20}, 1, 20},
		{"final page from prev", PageLinks{Prev: 4, First: 1}, 5, 5},
		{"single page", PageLinks{}, 1, 1},
		{"no links at cached page", PageLinks{}, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.links.TotalPages(tt.current); got != tt.want {
				t.Errorf("TotalPages(%d) = %d, want %d", tt.current, got, tt.want)
			}
		})
	}
}

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input   string
		want    RepositoryRef
		wantErr bool
	}{
		{"golang/go", RepositoryRef{Owner: "golang", Repo: "go"}, false},
		{" kubernetes / kubernetes ", RepositoryRef{Owner: "kubernetes", Repo: "kubernetes"}, false},
		{"golang", RepositoryRef{}, true},
		{"a/b/c", RepositoryRef{}, true},
		{"/repo", RepositoryRef{}, true},
		{"owner/", RepositoryRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepository(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRepository(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	ref := RepositoryRef{Owner: "golang", Repo: "go"}
	if got, want := PullsURL("https://api.github.com/", ref), "https://api.github.com/repos/golang/go/pulls"; got != want {
		t.Errorf("PullsURL() = %s, want %s", got, want)
	}
	if got, want := SearchURL("https://ghe.local/api/v3"), "https://ghe.local/api/v3/search/issues"; got != want {
		t.Errorf("SearchURL() = %s, want %s", got, want)
	}
	if got, want := BuildSearchQuery(ref), "repo:golang/go is:pr"; got != want {
		t.Errorf("BuildSearchQuery() = %s, want %s", got, want)
	}
}
