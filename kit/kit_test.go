package kit

import (
	"context"
	"errors"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("empty context request id = %q", got)
	}
	ctx = WithRequestID(ctx, "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("request id = %q, want req-1", got)
	}
}

func TestToolErrorMarksResult(t *testing.T) {
	res := toolError(errors.New("nope"))
	if !res.IsError {
		t.Error("IsError = false, want true")
	}
	if len(res.Content) == 0 {
		t.Error("error result carries no content")
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess-9")
	if got := GetSessionID(ctx); got != "sess-9" {
		t.Errorf("session id = %q, want sess-9", got)
	}
	if got := GetRequestID(ctx); got != "" {
		t.Error("session id leaked into request id key")
	}
}
