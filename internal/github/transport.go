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
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
	"github.com/sirseerhq/sirseer-prcount/pkg/version"
)

// maxResponseBytes caps a single response body.
const maxResponseBytes = 10 * 1024 * 1024

// TokenSource returns the bearer token for the next request.
type TokenSource func() (string, error)

// EnvToken reads the token from the named environment variable on every call,
// so a token rotated in the environment is picked up without a restart.
func EnvToken(name string) TokenSource {
	if name == "" {
		name = DefaultTokenEnv
	}
	return func() (string, error) {
		token := os.Getenv(name)
		if token == "" {
			return "", fmt.Errorf("%s is not set: %w", name, relaierrors.ErrMissingCredential)
		}
		return token, nil
	}
}

// StaticToken always returns token. An empty token reports a missing credential.
func StaticToken(token string) TokenSource {
	return func() (string, error) {
		if token == "" {
			return "", fmt.Errorf("empty token: %w", relaierrors.ErrMissingCredential)
		}
		return token, nil
	}
}

// newHTTPClient returns a client whose transport authenticates every request.
func newHTTPClient(token TokenSource, timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &authTransport{
			token: token,
			base:  transport,
		},
	}
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}

// authTransport adds authentication header and safety limits to HTTP requests
type authTransport struct {
	token TokenSource
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.token()
	if err != nil {
		return nil, err
	}

	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      maxResponseBytes,
		}
	}

	return resp, nil
}
