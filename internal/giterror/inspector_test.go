package giterror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
)

func TestGitHubErrorInspector_IsCredentialError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "401 unauthorized",
			err:  errors.New("non-200 OK status code: 401 Unauthorized"),
			want: true,
		},
		{
			name: "bad credentials",
			err:  errors.New("Bad credentials"),
			want: true,
		},
		{
			name: "wrapped auth error",
			err:  fmt.Errorf("failed to query: %w", errors.New("401 Unauthorized")),
			want: true,
		},
		{
			name: "not an auth error",
			err:  errors.New("something went wrong"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsCredentialError(tt.err); got != tt.want {
				t.Errorf("IsCredentialError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGitHubErrorInspector_IsRateLimitError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"api rate limit", errors.New("API rate limit exceeded for user"), true},
		{"429 status", errors.New("non-200 OK status code: 429 Too Many Requests"), true},
		{"secondary rate limit", errors.New("You have exceeded a secondary rate limit"), true},
		{"other error", errors.New("internal server error"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGitHubErrorInspector_IsNetworkError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection refused", errors.New("dial tcp 127.0.0.1:443: connect: connection refused"), true},
		{"dns failure", errors.New("lookup api.github.com: no such host"), true},
		{"tls", errors.New("net/http: TLS handshake timeout"), true},
		{"not network", errors.New("Could not resolve to a Repository"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsNetworkError(tt.err); got != tt.want {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorChainInspector(t *testing.T) {
	inspector := NewErrorChainInspector(NewInspector())

	t.Run("sentinel wins over text", func(t *testing.T) {
		// An upstream 403 that mentions rate limits but carried no Retry-After
		// is an upstream error, not an exhausted retry ceiling.
		err := fmt.Errorf("403: API rate limit exceeded, no retry-after: %w", relaierrors.ErrUpstream)
		if inspector.IsRateLimitError(err) {
			t.Error("IsRateLimitError() = true, want false")
		}
	})

	t.Run("missing credential", func(t *testing.T) {
		err := fmt.Errorf("GITHUB_API_KEY is not set: %w", relaierrors.ErrMissingCredential)
		if !inspector.IsCredentialError(err) {
			t.Error("IsCredentialError() = false, want true")
		}
	})

	t.Run("falls back to text", func(t *testing.T) {
		err := errors.New("Could not resolve to a Repository with the name 'x/y'")
		if !inspector.IsNotFoundError(err) {
			t.Error("IsNotFoundError() = false, want true")
		}
	})

	t.Run("count unavailable", func(t *testing.T) {
		err := fmt.Errorf("no last relation: %w", relaierrors.ErrCountUnavailable)
		if !inspector.IsCountUnavailable(err) {
			t.Error("IsCountUnavailable() = false, want true")
		}
	})
}

func TestMappings(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
		wantExit   int
	}{
		{"nil", nil, KindNone, http.StatusOK, 0},
		{"invalid repository", fmt.Errorf("bad name: %w", relaierrors.ErrInvalidRepository), KindInvalidInput, http.StatusBadRequest, 1},
		{"missing credential", relaierrors.ErrMissingCredential, KindCredential, http.StatusInternalServerError, 2},
		{"rate limit exceeded", fmt.Errorf("after 6 attempts: %w", relaierrors.ErrRateLimitExceeded), KindRateLimit, http.StatusServiceUnavailable, 4},
		{"upstream", fmt.Errorf("status 500: %w", relaierrors.ErrUpstream), KindUpstream, http.StatusBadGateway, 3},
		{"count unavailable", relaierrors.ErrCountUnavailable, KindCountUnavailable, http.StatusBadGateway, 3},
		{"invalid config", fmt.Errorf("%w: page size 101 exceeds GitHub API limit of 100", relaierrors.ErrInvalidConfig), KindConfig, http.StatusInternalServerError, 2},
		{"config mentioning a 401", fmt.Errorf("%w: failed to parse config file: 401 Unauthorized", relaierrors.ErrInvalidConfig), KindConfig, http.StatusInternalServerError, 2},
		{"network", fmt.Errorf("dial tcp: %w: %w", relaierrors.ErrUpstream, relaierrors.ErrNetworkFailure), KindUpstream, http.StatusBadGateway, 3},
		{"deadline", fmt.Errorf("count: %w", context.DeadlineExceeded), KindTimeout, http.StatusGatewayTimeout, 3},
		{"unknown", errors.New("boom"), KindInternal, http.StatusInternalServerError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.wantKind {
				t.Errorf("Classify() = %v, want %v", got, tt.wantKind)
			}
			if got := HTTPStatus(tt.err); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
			if got := ExitCode(tt.err); got != tt.wantExit {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantExit)
			}
		})
	}
}
