package giterror

import (
	"context"
	"errors"
	"net/http"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
)

// Kind is the user-facing classification of a failed count.
type Kind int

// Error kinds in decreasing order of precedence.
const (
	KindNone Kind = iota
	KindInvalidInput
	KindCredential
	KindConfig
	KindRateLimit
	KindUpstream
	KindCountUnavailable
	KindTimeout
	KindInternal
)

// String returns the stable code used in API error payloads.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindInvalidInput:
		return "invalid_request"
	case KindCredential:
		return "missing_credential"
	case KindConfig:
		return "invalid_config"
	case KindRateLimit:
		return "rate_limit_exceeded"
	case KindUpstream:
		return "upstream_error"
	case KindCountUnavailable:
		return "count_unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "internal_error"
	}
}

// Classify maps err to a Kind using the chain-aware inspector.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	inspector := NewErrorChainInspector(NewInspector())
	switch {
	case errors.Is(err, relaierrors.ErrInvalidRepository):
		return KindInvalidInput
	case errors.Is(err, relaierrors.ErrInvalidConfig):
		return KindConfig
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case inspector.IsCredentialError(err):
		return KindCredential
	case inspector.IsRateLimitError(err):
		return KindRateLimit
	case inspector.IsCountUnavailable(err):
		return KindCountUnavailable
	case errors.Is(err, relaierrors.ErrUpstream),
		inspector.IsNotFoundError(err),
		inspector.IsNetworkError(err):
		return KindUpstream
	default:
		return KindInternal
	}
}

// HTTPStatus returns the response status the HTTP server uses for err.
func HTTPStatus(err error) int {
	switch Classify(err) {
	case KindNone:
		return http.StatusOK
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindCredential, KindConfig:
		return http.StatusInternalServerError
	case KindRateLimit:
		return http.StatusServiceUnavailable
	case KindUpstream, KindCountUnavailable:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode returns the process exit code the CLI uses for err.
//
//	0 success
//	1 general error
//	2 missing or rejected credential, or invalid configuration
//	3 upstream or network error
//	4 rate limit exceeded
func ExitCode(err error) int {
	switch Classify(err) {
	case KindNone:
		return 0
	case KindCredential, KindConfig:
		return 2
	case KindUpstream, KindCountUnavailable, KindTimeout:
		return 3
	case KindRateLimit:
		return 4
	default:
		return 1
	}
}
