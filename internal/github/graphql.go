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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shurcooL/graphql"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
	"github.com/sirseerhq/sirseer-prcount/internal/giterror"
	"github.com/sirseerhq/sirseer-prcount/internal/metadata"
)

// DefaultGraphQLEndpoint is the public GitHub GraphQL endpoint.
const DefaultGraphQLEndpoint = "https://api.github.com/graphql"

// GraphQLClient reads pull request totals through GitHub's GraphQL API.
// GraphQL calls are not retried: a rate limit surfaces immediately as
// ErrRateLimitExceeded.
type GraphQLClient struct {
	client    *graphql.Client
	token     TokenSource
	inspector giterror.Inspector
}

// NewGraphQLClient creates a GraphQL client for endpoint. The token is read
// from token on every request.
func NewGraphQLClient(endpoint string, token TokenSource, timeout time.Duration) *GraphQLClient {
	return newGraphQLClient(endpoint, token, newHTTPClient(token, timeout))
}

func newGraphQLClient(endpoint string, token TokenSource, httpClient *http.Client) *GraphQLClient {
	if endpoint == "" {
		endpoint = DefaultGraphQLEndpoint
	}
	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, httpClient),
		token:     token,
		inspector: giterror.NewInspector(),
	}
}

// CountPullRequests returns pullRequests.totalCount for ref.
func (c *GraphQLClient) CountPullRequests(ctx context.Context, ref RepositoryRef) (int, error) {
	if _, err := c.token(); err != nil {
		return 0, err
	}

	var query struct {
		Repository struct {
			PullRequests struct {
				TotalCount graphql.Int
			} `graphql:"pullRequests"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]interface{}{
		"owner": graphql.String(ref.Owner),
		"repo":  graphql.String(ref.Repo),
	}

	metadata.FromContext(ctx).IncrementAPICall()
	if err := c.client.Query(ctx, &query, variables); err != nil {
		return 0, c.mapError(ctx, err, ref)
	}

	return int(query.Repository.PullRequests.TotalCount), nil
}

// mapError maps GraphQL errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(ctx context.Context, err error, ref RepositoryRef) error {
	if errors.Is(err, relaierrors.ErrMissingCredential) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub GraphQL rate limit exceeded, please wait before retrying: %w", relaierrors.ErrRateLimitExceeded)
	}

	if c.inspector.IsCredentialError(err) {
		return fmt.Errorf("GitHub rejected the credential: %w: %w", relaierrors.ErrUpstream, err)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("repository '%s' not found: %w: %w", ref, relaierrors.ErrUpstream, relaierrors.ErrRepoNotFound)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to GitHub GraphQL API: %w: %w", relaierrors.ErrUpstream, relaierrors.ErrNetworkFailure)
	}

	return fmt.Errorf("graphql query failed: %w: %w", relaierrors.ErrUpstream, err)
}
