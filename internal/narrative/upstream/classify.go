// Package upstream issues generation calls to the configured model
// service and classifies every failure into a small, stable taxonomy.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies one member of the upstream failure taxonomy.
type Kind string

const (
	// KindInsufficientQuota: upstream billing/capacity exhausted.
	KindInsufficientQuota Kind = "insufficient_quota"
	// KindInvalidAPIKey: upstream credential rejected.
	KindInvalidAPIKey Kind = "invalid_api_key"
	// KindRateLimited: upstream transient throttling.
	KindRateLimited Kind = "rate_limit_exceeded"
	// KindTimeout: the call exceeded its deadline.
	KindTimeout Kind = "request_timeout"
	// KindRequestFailed: the upstream reported a failure.
	KindRequestFailed Kind = "ai_request_failed"
	// KindUnknown: catch-all for anything unclassifiable.
	KindUnknown Kind = "unknown_error"
)

// Error is a classified upstream failure. Constructed fresh per failure.
type Error struct {
	Kind       Kind
	HTTPStatus int
	Message    string
	Retryable  bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream: %s (%d): %s", e.Kind, e.HTTPStatus, e.Message)
}

// IsRetryable reports whether err is a classified upstream failure that
// is safe to retry.
func IsRetryable(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Retryable
}

// Classify maps any failure from an upstream call onto the taxonomy.
// Already-classified errors pass through unchanged. Classification is a
// pure mapping and never itself fails.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ue *Error
	if errors.As(err, &ue) {
		return ue
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, HTTPStatus: http.StatusRequestTimeout, Message: "upstream call exceeded its deadline", Retryable: true}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, HTTPStatus: http.StatusRequestTimeout, Message: "upstream call timed out", Retryable: true}
	}

	return &Error{Kind: KindRequestFailed, HTTPStatus: http.StatusInternalServerError, Message: err.Error(), Retryable: true}
}

// classifyStatus maps a non-2xx upstream HTTP response onto the taxonomy,
// using the error body's code/type fields when present.
func classifyStatus(status int, body []byte) *Error {
	code := gjson.GetBytes(body, "error.code").String()
	errType := gjson.GetBytes(body, "error.type").String()
	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusPaymentRequired,
		code == "insufficient_quota",
		errType == "insufficient_quota":
		return &Error{Kind: KindInsufficientQuota, HTTPStatus: http.StatusPaymentRequired, Message: message, Retryable: false}
	case status == http.StatusUnauthorized, code == "invalid_api_key":
		return &Error{Kind: KindInvalidAPIKey, HTTPStatus: http.StatusUnauthorized, Message: message, Retryable: false}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, HTTPStatus: http.StatusTooManyRequests, Message: message, Retryable: true}
	case status == http.StatusRequestTimeout:
		return &Error{Kind: KindTimeout, HTTPStatus: http.StatusRequestTimeout, Message: message, Retryable: true}
	case status >= 400 && status < 500:
		return &Error{Kind: KindRequestFailed, HTTPStatus: http.StatusInternalServerError, Message: message, Retryable: true}
	default:
		return &Error{Kind: KindUnknown, HTTPStatus: http.StatusInternalServerError, Message: message, Retryable: true}
	}
}
