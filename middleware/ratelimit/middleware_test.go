package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"form-intake/middleware/ratelimit/domain"
	"form-intake/middleware/ratelimit/infra"
)

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func postFrom(ip string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "http://example/api/feedback", nil)
	r.Header.Set("X-Forwarded-For", ip)
	return r
}

func TestMiddleware_AllowsMaxThenRejects(t *testing.T) {
	calls := 0
	stats := infra.NewMemoryStatsStore()
	h := Middleware(Options{
		Namespace:           "feedback",
		Counter:             infra.NewMemoryCounter(),
		Rule:                domain.Rule{MaxRequests: 5, Window: time.Minute},
		Stats:               stats,
		AddRateLimitHeaders: true,
	})(okHandler(&calls))

	for i := 1; i <= 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, postFrom("1.2.3.4"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, postFrom("1.2.3.4"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got == "" || got == "0" {
		t.Fatalf("expected Retry-After to be set, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining=0, got %q", got)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != DefaultMessage {
		t.Fatalf("unexpected error message %q", body["error"])
	}

	if calls != 5 {
		t.Fatalf("expected next handler to be called 5 times, got %d", calls)
	}
	if got := stats.ByNamespace()["feedback"]; got.Allowed != 5 || got.Denied != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestMiddleware_SeparateClientsSeparateWindows(t *testing.T) {
	calls := 0
	h := Middleware(Options{
		Counter: infra.NewMemoryCounter(),
		Rule:    domain.Rule{MaxRequests: 1, Window: time.Minute},
	})(okHandler(&calls))

	for _, ip := range []string{"1.1.1.1", "2.2.2.2"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, postFrom(ip))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", ip, w.Code)
		}
	}
}

func TestMiddleware_NamespacesDoNotShareWindows(t *testing.T) {
	counter := infra.NewMemoryCounter()
	rule := domain.Rule{MaxRequests: 1, Window: time.Minute}

	calls := 0
	feedback := Middleware(Options{Namespace: "feedback", Counter: counter, Rule: rule})(okHandler(&calls))
	count := Middleware(Options{Namespace: "waitlist-count", Counter: counter, Rule: rule})(okHandler(&calls))

	feedback.ServeHTTP(httptest.NewRecorder(), postFrom("1.2.3.4"))

	w := httptest.NewRecorder()
	count.ServeHTTP(w, postFrom("1.2.3.4"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected other namespace to pass, got %d", w.Code)
	}
}

type brokenCounter struct{}

func (brokenCounter) Hit(context.Context, domain.Key, domain.Rule) (domain.Window, error) {
	return domain.Window{}, errors.New("redis down")
}

func TestMiddleware_FailsOpenWhenCounterErrors(t *testing.T) {
	calls := 0
	h := Middleware(Options{
		Counter: brokenCounter{},
		Rule:    domain.Rule{MaxRequests: 1, Window: time.Minute},
	})(okHandler(&calls))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, postFrom("1.2.3.4"))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}
}

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func TestMiddleware_RetryAfterCountsDownToReset(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	calls := 0
	h := Middleware(Options{
		Counter: infra.NewMemoryCounter(infra.WithClock(clock)),
		Rule:    domain.Rule{MaxRequests: 1, Window: time.Minute},
		Clock:   clock,
		Message: "slow down",
	})(okHandler(&calls))

	h.ServeHTTP(httptest.NewRecorder(), postFrom("1.2.3.4"))
	clock.now = clock.now.Add(45 * time.Second)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, postFrom("1.2.3.4"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "15" {
		t.Fatalf("expected Retry-After=15, got %q", got)
	}
	if got := w.Body.String(); got != "{\"error\":\"slow down\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}
