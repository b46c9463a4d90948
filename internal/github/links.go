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
	"net/url"
	"strconv"
	"strings"
)

// PageLinks holds the page numbers named by a Link header. A zero value means
// the relation was absent; absence of Last means the page is the final one.
type PageLinks struct {
	Next  int `json:"next,omitempty"`
	Prev  int `json:"prev,omitempty"`
	Last  int `json:"last,omitempty"`
	First int `json:"first,omitempty"`
}

// HasLast reports whether a last relation was present.
func (l PageLinks) HasLast() bool { return l.Last > 0 }

// TotalPages infers the number of pages from the links of the page that was
// fetched as current. Without last the current page is the final one, which is
// prev+1 when prev is known and current otherwise.
func (l PageLinks) TotalPages(current int) int {
	switch {
	case l.Last > 0:
		return l.Last
	case l.Prev > 0:
		return l.Prev + 1
	default:
		return current
	}
}

// ParseLinks parses a Link header of the form
//
//	<https://api.github.com/...?page=2>; rel="next", <...?page=5>; rel="last"
//
// Entries that cannot be parsed are dropped. An empty header yields empty links.
func ParseLinks(header string) PageLinks {
	var links PageLinks
	if header == "" {
		return links
	}

	for _, entry := range strings.Split(header, ",") {
		rel, page, ok := parseLinkEntry(entry)
		if !ok {
			continue
		}
		switch rel {
		case "next":
			links.Next = page
		case "prev":
			links.Prev = page
		case "last":
			links.Last = page
		case "first":
			links.First = page
		}
	}
	return links
}

func parseLinkEntry(entry string) (rel string, page int, ok bool) {
	target, params, found := strings.Cut(strings.TrimSpace(entry), ";")
	if !found {
		return "", 0, false
	}

	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
		return "", 0, false
	}
	u, err := url.Parse(target[1 : len(target)-1])
	if err != nil {
		return "", 0, false
	}
	page, err = strconv.Atoi(u.Query().Get("page"))
	if err != nil || page < 1 {
		return "", 0, false
	}

	for _, param := range strings.Split(params, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || strings.TrimSpace(key) != "rel" {
			continue
		}
		rel = strings.Trim(strings.TrimSpace(value), `"`)
		return rel, page, rel != ""
	}
	return "", 0, false
}
