package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantKind  Kind
		wantHTTP  int
		retryable bool
	}{
		{
			name:      "payment required",
			status:    http.StatusPaymentRequired,
			body:      `{"error":{"message":"billing hard limit"}}`,
			wantKind:  KindInsufficientQuota,
			wantHTTP:  http.StatusPaymentRequired,
			retryable: false,
		},
		{
			name:      "quota code on 429",
			status:    http.StatusTooManyRequests,
			body:      `{"error":{"code":"insufficient_quota","message":"out of credits"}}`,
			wantKind:  KindInsufficientQuota,
			wantHTTP:  http.StatusPaymentRequired,
			retryable: false,
		},
		{
			name:      "invalid key",
			status:    http.StatusUnauthorized,
			body:      `{"error":{"code":"invalid_api_key","message":"bad key"}}`,
			wantKind:  KindInvalidAPIKey,
			wantHTTP:  http.StatusUnauthorized,
			retryable: false,
		},
		{
			name:      "rate limited",
			status:    http.StatusTooManyRequests,
			body:      `{"error":{"message":"slow down"}}`,
			wantKind:  KindRateLimited,
			wantHTTP:  http.StatusTooManyRequests,
			retryable: true,
		},
		{
			name:      "timeout status",
			status:    http.StatusRequestTimeout,
			body:      "",
			wantKind:  KindTimeout,
			wantHTTP:  http.StatusRequestTimeout,
			retryable: true,
		},
		{
			name:      "other client error",
			status:    http.StatusBadRequest,
			body:      `{"error":{"message":"bad request"}}`,
			wantKind:  KindRequestFailed,
			wantHTTP:  http.StatusInternalServerError,
			retryable: true,
		},
		{
			name:      "server error",
			status:    http.StatusBadGateway,
			body:      "upstream exploded",
			wantKind:  KindUnknown,
			wantHTTP:  http.StatusInternalServerError,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyStatus(tt.status, []byte(tt.body))
			if got.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.HTTPStatus != tt.wantHTTP {
				t.Errorf("http status = %d, want %d", got.HTTPStatus, tt.wantHTTP)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if got.Message == "" {
				t.Error("message empty")
			}
		})
	}
}

func TestClassifyDeadlineExceeded(t *testing.T) {
	got := Classify(fmt.Errorf("call: %w", context.DeadlineExceeded))
	if got.Kind != KindTimeout {
		t.Errorf("kind = %q, want %q", got.Kind, KindTimeout)
	}
	if got.HTTPStatus != http.StatusRequestTimeout {
		t.Errorf("http status = %d, want 408", got.HTTPStatus)
	}
	if !got.Retryable {
		t.Error("timeout not retryable")
	}
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := &Error{Kind: KindInvalidAPIKey, HTTPStatus: 401, Message: "bad key"}
	if got := Classify(fmt.Errorf("wrapped: %w", original)); got != original {
		t.Errorf("classified error not passed through: %+v", got)
	}
}

func TestClassifyUnknownError(t *testing.T) {
	got := Classify(errors.New("connection refused"))
	if got.Kind != KindRequestFailed {
		t.Errorf("kind = %q, want %q", got.Kind, KindRequestFailed)
	}
	if !got.Retryable {
		t.Error("transport error not retryable")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(&Error{Kind: KindInvalidAPIKey, Retryable: false}) {
		t.Error("non-retryable reported retryable")
	}
	if !IsRetryable(fmt.Errorf("wrap: %w", &Error{Kind: KindRateLimited, Retryable: true})) {
		t.Error("wrapped retryable not detected")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("unclassified error reported retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil reported retryable")
	}
}
