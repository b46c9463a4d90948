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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
	"github.com/sirseerhq/sirseer-prcount/internal/metadata"
)

// ExecutorOptions configures an Executor. A zero Retry makes a single attempt
// and a zero Logger discards output.
type ExecutorOptions struct {
	// HTTPClient overrides the authenticated client built from Token.
	HTTPClient *http.Client
	// Token supplies the bearer credential. Defaults to EnvToken(TokenEnv).
	Token TokenSource
	// TokenEnv names the environment variable read when Token is nil.
	TokenEnv string
	// Timeout bounds a single HTTP attempt. Zero means no per-attempt limit.
	Timeout time.Duration
	Retry   RetryPolicy
	Logger  zerolog.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Executor issues authenticated GET requests and retries rate limited
// responses after the delay GitHub asks for.
type Executor struct {
	client *http.Client
	token  TokenSource
	retry  RetryPolicy
	log    zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an Executor from opts.
func NewExecutor(opts ExecutorOptions) *Executor {
	token := opts.Token
	if token == nil {
		token = EnvToken(opts.TokenEnv)
	}

	client := opts.HTTPClient
	if client == nil {
		client = newHTTPClient(token, opts.Timeout)
	} else if _, ok := client.Transport.(*authTransport); !ok {
		base := client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *client
		wrapped.Transport = &authTransport{token: token, base: base}
		client = &wrapped
	}

	sleep := opts.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &Executor{
		client: client,
		token:  token,
		retry:  opts.Retry,
		log:    opts.Logger.With().Str("component", "executor").Logger(),
		sleep:  sleep,
	}
}

// Execute issues GET rawURL?params. A rate limited response (403 or 429) is
// retried after max(Retry-After, MinInterval) up to RetryLimit times, so at
// most RetryLimit+1 attempts are made before ErrRateLimitExceeded.
func (e *Executor) Execute(ctx context.Context, rawURL string, params url.Values) (*APIResult, error) {
	// Fail before any network I/O when no credential is configured.
	if _, err := e.token(); err != nil {
		return nil, err
	}

	target, err := buildURL(rawURL, params)
	if err != nil {
		return nil, err
	}

	tracker := metadata.FromContext(ctx)
	for attempt := 1; ; attempt++ {
		e.log.Debug().Str("url", target).Int("attempt", attempt).Msg("github request")
		tracker.IncrementAPICall()

		res, wait, err := e.do(ctx, target, params)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}

		if attempt > e.retry.RetryLimit {
			e.log.Error().Str("url", target).Int("attempts", attempt).Msg("github rate limit retries exhausted")
			return nil, fmt.Errorf("%s rate limited on %d attempts: %w", target, attempt, relaierrors.ErrRateLimitExceeded)
		}

		wait = e.retry.Wait(wait)
		tracker.IncrementRateLimitWait()
		e.log.Warn().
			Str("url", target).
			Int("attempt", attempt).
			Int("retry_limit", e.retry.RetryLimit).
			Dur("sleep", wait).
			Msg("github rate limit hit, waiting")

		if err := e.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// do performs a single attempt. It returns a result on success, or a
// Retry-After duration when the response was a usable rate limit signal.
func (e *Executor) do(ctx context.Context, target string, params url.Values) (*APIResult, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, relaierrors.ErrMissingCredential) {
			return nil, 0, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, fmt.Errorf("request to %s failed: %w: %w: %w", target, relaierrors.ErrUpstream, relaierrors.ErrNetworkFailure, err)
	}
	defer drainAndClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response from %s: %w: %w", target, relaierrors.ErrUpstream, err)
	}

	e.log.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Str("remaining", resp.Header.Get("X-RateLimit-Remaining")).
		Msg("github http response")

	switch {
	case isRateLimitStatus(resp.StatusCode):
		wait, ok := retryAfter(resp.Header)
		if !ok {
			return nil, 0, &StatusError{
				StatusCode: resp.StatusCode,
				URL:        target,
				Message:    "rate limited without a usable Retry-After header: " + errorMessage(body),
			}
		}
		return nil, wait, nil

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, 0, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        target,
			Message:    errorMessage(body),
		}
	}

	items, err := decodeItems(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode response from %s: %w: %w", target, relaierrors.ErrUpstream, err)
	}

	page, _ := strconv.Atoi(params.Get("page"))
	return &APIResult{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Items:      items,
		Links:      ParseLinks(resp.Header.Get("Link")),
		Body:       body,
		Page:       page,
	}, 0, nil
}

func buildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid request url %q: %w", rawURL, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			q[k] = append([]string(nil), vs...)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// errorMessage extracts GitHub's {"message": "..."} field when present.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
