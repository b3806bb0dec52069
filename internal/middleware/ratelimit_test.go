package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0), // 1 req/sec
		GeneralBurst:    3,
		SignUpRate:      rate.Limit(1.0),
		SignUpBurst:     2,
		CleanupInterval: time.Hour,
	}
}

// バースト以内のリクエストが通り、超過分が429になることを検証
func TestRateLimiter_GeneralMiddleware_EnforcesBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/tweets", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	for i := 0; i < 3; i++ {
		if status := doRequest(); status != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, status, http.StatusOK)
		}
	}

	status := doRequest()
	if status != http.StatusTooManyRequests {
		t.Errorf("request 4: status = %d, want %d", status, http.StatusTooManyRequests)
	}
}

// ユーザーごとに独立したリミッターが使われることを検証
func TestRateLimiter_GeneralMiddleware_PerUser(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/users/top10", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), userID))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	// user-aのバーストを使い切る
	for i := 0; i < 3; i++ {
		doRequest("user-a")
	}
	if status := doRequest("user-a"); status != http.StatusTooManyRequests {
		t.Errorf("user-a: status = %d, want %d", status, http.StatusTooManyRequests)
	}

	// user-bは影響を受けない
	if status := doRequest("user-b"); status != http.StatusOK {
		t.Errorf("user-b: status = %d, want %d", status, http.StatusOK)
	}

	if count := rl.GeneralLimiterCount(); count != 2 {
		t.Errorf("limiter count = %d, want 2", count)
	}
}

// 未認証コンテキストのリクエストが401になることを検証
func TestRateLimiter_GeneralMiddleware_Unauthenticated(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/top10", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
	assertUnauthorizedJSON(t, w)
}

// アカウント登録のレート制限がIP単位で動作することを検証
func TestRateLimiter_SignUpMiddleware_PerIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.SignUpMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	doRequest := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	// 同一IPからバースト(2)を使い切る
	for i := 0; i < 2; i++ {
		if status := doRequest("192.0.2.1:54321"); status != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want %d", i+1, status, http.StatusCreated)
		}
	}
	if status := doRequest("192.0.2.1:54321"); status != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", status, http.StatusTooManyRequests)
	}

	// 別IPは影響を受けない
	if status := doRequest("192.0.2.2:54321"); status != http.StatusCreated {
		t.Errorf("other IP: status = %d, want %d", status, http.StatusCreated)
	}
}

// X-Forwarded-Forの先頭IPがキーとして使われることを検証
func TestClientIP_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientIP(req); got != "203.0.113.7" {
		t.Errorf("clientIP = %q, want %q", got, "203.0.113.7")
	}
}

// 429レスポンスにRetry-Afterヘッダーが含まれることを検証
func TestRateLimiter_RetryAfterHeader(t *testing.T) {
	config := testRateLimiterConfig()
	config.GeneralBurst = 1
	rl := NewRateLimiter(config)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func() *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/api/users/top10", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result()
	}

	doRequest()
	resp := doRequest()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
}
