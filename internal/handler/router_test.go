package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/tsubuyaki/internal/auth"
	"github.com/hitoshi/tsubuyaki/internal/middleware"
	"github.com/hitoshi/tsubuyaki/internal/model"
	"github.com/hitoshi/tsubuyaki/internal/social"
	"github.com/hitoshi/tsubuyaki/internal/user"
)

type staticTokenParser struct {
	userID string
}

func (p *staticTokenParser) Parse(tokenString string) (*auth.Claims, error) {
	if tokenString != "valid-token" {
		return nil, context.DeadlineExceeded
	}
	return &auth.Claims{UserID: p.userID}, nil
}

func newTestRouter(t *testing.T, userSvc UserServiceInterface, timelineSvc TimelineServiceInterface, socialSvc SocialServiceInterface) http.Handler {
	t.Helper()

	if userSvc == nil {
		userSvc = &mockUserService{}
	}
	if timelineSvc == nil {
		timelineSvc = &mockTimelineService{}
	}
	if socialSvc == nil {
		socialSvc = &mockSocialService{}
	}

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    1000,
		SignUpRate:      rate.Limit(1000),
		SignUpBurst:     1000,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		TokenParser:       &staticTokenParser{userID: "caller-1"},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		UserService:       userSvc,
		TimelineService:   timelineSvc,
		SocialService:     socialSvc,
	})
}

// 認証必須ルートがトークンなしで401になることを検証
func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	paths := []string{
		"/api/users/top10",
		"/api/users/user-1",
		"/api/users/user-1/tweets",
		"/api/users/user-1/likes",
		"/api/users/user-1/replies",
		"/api/users/user-1/followings",
		"/api/users/user-1/followers",
	}

	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusUnauthorized)
		}
	}
}

// top10が/{id}ルートに飲み込まれないことを検証
func TestRouter_Top10TakesPrecedenceOverUserID(t *testing.T) {
	top10Called := false
	getUserCalled := false

	socialSvc := &mockSocialService{
		top10Fn: func(ctx context.Context, callerID string) ([]social.TopUserView, error) {
			top10Called = true
			return nil, nil
		},
	}
	userSvc := &mockUserService{
		getUserFn: func(ctx context.Context, id string) (*model.User, error) {
			getUserCalled = true
			return testUser(), nil
		},
	}
	router := newTestRouter(t, userSvc, nil, socialSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/users/top10", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !top10Called {
		t.Error("top10 handler should be called")
	}
	if getUserCalled {
		t.Error("getUser handler should not be called for /top10")
	}
}

// 有効なトークンで認証済みルートに到達できることを検証
func TestRouter_AuthenticatedRequestReachesHandler(t *testing.T) {
	userSvc := &mockUserService{
		getUserFn: func(ctx context.Context, id string) (*model.User, error) {
			u := testUser()
			u.ID = id
			return u, nil
		},
	}
	router := newTestRouter(t, userSvc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-42", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] != "user-42" {
		t.Errorf("id = %v, want user-42", resp["id"])
	}
}

// 登録とログインが認証なしで到達できることを検証
func TestRouter_SignUpAndSignInAreUnauthenticated(t *testing.T) {
	userSvc := &mockUserService{
		signUpFn: func(ctx context.Context, in user.SignUpInput) (*model.User, error) {
			return testUser(), nil
		},
		signInFn: func(ctx context.Context, account, password string) (*user.SignInResult, error) {
			return &user.SignInResult{Token: "t", User: *testUser()}, nil
		},
	}
	router := newTestRouter(t, userSvc, nil, nil)

	body := `{"account":"taro","name":"太郎","email":"taro@example.com","password":"s","checkPassword":"s"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("signup status = %d, want %d", w.Code, http.StatusCreated)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/users/signin", strings.NewReader(`{"account":"taro","password":"s"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("signin status = %d, want %d", w.Code, http.StatusOK)
	}
}

// /healthが認証なしで200を返すことを検証
func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
