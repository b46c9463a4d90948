package giterror

import (
	"errors"
	"strings"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
)

// Inspector provides methods for analyzing GitHub API errors.
type Inspector interface {
	// IsCredentialError returns true if the error represents a missing or rejected credential.
	IsCredentialError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsCountUnavailable returns true if the error means no count could be derived.
	IsCountUnavailable(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool
}

// GitHubErrorInspector implements the Inspector interface by looking at error text.
// It is used for errors that do not carry sentinels yet, such as those produced by
// the GraphQL client or the HTTP transport.
type GitHubErrorInspector struct{}

// NewInspector creates a new GitHubErrorInspector.
func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

// IsCredentialError checks if the error is an authentication failure.
func (i *GitHubErrorInspector) IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "bad credentials") ||
		strings.Contains(errStr, "requires authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "could not resolve to a repository")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "secondary rate")
}

// IsCountUnavailable never matches on text; only the sentinel carries this meaning.
func (i *GitHubErrorInspector) IsCountUnavailable(err error) bool {
	return false
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}

// ErrorChainInspector checks the error chain for sentinel errors first and
// falls back to a base inspector for errors that carry none.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates a new ErrorChainInspector.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

// IsCredentialError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsCredentialError(err error) bool {
	if errors.Is(err, relaierrors.ErrMissingCredential) {
		return true
	}
	if hasSentinel(err) {
		return false
	}
	return e.base.IsCredentialError(err)
}

// IsNotFoundError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNotFoundError(err error) bool {
	if errors.Is(err, relaierrors.ErrRepoNotFound) {
		return true
	}
	if hasSentinel(err) {
		return false
	}
	return e.base.IsNotFoundError(err)
}

// IsRateLimitError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsRateLimitError(err error) bool {
	if errors.Is(err, relaierrors.ErrRateLimitExceeded) {
		return true
	}
	if hasSentinel(err) {
		return false
	}
	return e.base.IsRateLimitError(err)
}

// IsCountUnavailable checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsCountUnavailable(err error) bool {
	if errors.Is(err, relaierrors.ErrCountUnavailable) {
		return true
	}
	return e.base.IsCountUnavailable(err)
}

// IsNetworkError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNetworkError(err error) bool {
	if errors.Is(err, relaierrors.ErrNetworkFailure) {
		return true
	}
	if hasSentinel(err) {
		return false
	}
	return e.base.IsNetworkError(err)
}

// hasSentinel reports whether err was already classified by this application.
// Text matching is skipped for such errors so an upstream message mentioning
// "rate limit" cannot turn an UpstreamError into a RateLimitExceeded.
func hasSentinel(err error) bool {
	return errors.Is(err, relaierrors.ErrMissingCredential) ||
		errors.Is(err, relaierrors.ErrUpstream) ||
		errors.Is(err, relaierrors.ErrRateLimitExceeded) ||
		errors.Is(err, relaierrors.ErrCountUnavailable) ||
		errors.Is(err, relaierrors.ErrInvalidRepository) ||
		errors.Is(err, relaierrors.ErrInvalidConfig)
}
