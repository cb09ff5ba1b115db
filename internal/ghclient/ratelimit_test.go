package ghclient

import (
	"net/http"
	"testing"
	"time"
)

func TestParseRateLimitHeaders(t *testing.T) {
	tests := []struct {
		name          string
		headers       map[string]string
		wantRemaining int
		wantLimit     int
		wantReset     int64
	}{
		{
			name: "all headers",
			headers: map[string]string{
				"X-RateLimit-Remaining": "42",
				"X-RateLimit-Limit":     "5000",
				"X-RateLimit-Reset":     "1700000000",
			},
			wantRemaining: 42,
			wantLimit:     5000,
			wantReset:     1700000000,
		},
		{
			name:          "missing headers",
			headers:       map[string]string{},
			wantRemaining: -1,
			wantLimit:     -1,
		},
		{
			name: "garbage",
			headers: map[string]string{
				"X-RateLimit-Remaining": "lots",
				"X-RateLimit-Limit":     "5000",
			},
			wantRemaining: -1,
			wantLimit:     5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			for k, v := range tt.headers {
				resp.Header.Set(k, v)
			}

			remaining, limit, resetAt := parseRateLimitHeaders(resp)
			if remaining != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", remaining, tt.wantRemaining)
			}
			if limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", limit, tt.wantLimit)
			}
			if tt.wantReset != 0 && resetAt.Unix() != tt.wantReset {
				t.Errorf("resetAt = %d, want %d", resetAt.Unix(), tt.wantReset)
			}
		})
	}
}

func TestRateLimitStateExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	s := newRateLimitState()
	s.now = func() time.Time { return now }

	s.SetLimited(now.Add(time.Minute))
	if !s.IsLimited() {
		t.Fatal("expected limited before reset")
	}

	now = now.Add(2 * time.Minute)
	if s.IsLimited() {
		t.Error("expected limit to lapse after reset time")
	}
	if s.Status().Limited {
		t.Error("status should agree with IsLimited")
	}
}
