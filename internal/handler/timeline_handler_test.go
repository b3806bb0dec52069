package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tsubuyaki/internal/middleware"
	"github.com/hitoshi/tsubuyaki/internal/model"
	"github.com/hitoshi/tsubuyaki/internal/timeline"
)

type mockTimelineService struct {
	userTweetsFn  func(ctx context.Context, userID, callerID string) ([]timeline.TweetView, error)
	userLikesFn   func(ctx context.Context, userID, callerID string) ([]timeline.LikeView, error)
	userRepliesFn func(ctx context.Context, userID string) ([]timeline.ReplyView, error)
}

func (m *mockTimelineService) UserTweets(ctx context.Context, userID, callerID string) ([]timeline.TweetView, error) {
	if m.userTweetsFn != nil {
		return m.userTweetsFn(ctx, userID, callerID)
	}
	return nil, nil
}

func (m *mockTimelineService) UserLikes(ctx context.Context, userID, callerID string) ([]timeline.LikeView, error) {
	if m.userLikesFn != nil {
		return m.userLikesFn(ctx, userID, callerID)
	}
	return nil, nil
}

func (m *mockTimelineService) UserReplies(ctx context.Context, userID string) ([]timeline.ReplyView, error) {
	if m.userRepliesFn != nil {
		return m.userRepliesFn(ctx, userID)
	}
	return nil, nil
}

var _ TimelineServiceInterface = (*mockTimelineService)(nil)

func newTimelineRouter(svc TimelineServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewTimelineHandler(svc)
	r.Get("/api/users/{id}/tweets", h.ListTweets)
	r.Get("/api/users/{id}/likes", h.ListLikes)
	r.Get("/api/users/{id}/replies", h.ListReplies)
	return r
}

func doAuthenticatedGet(router http.Handler, path, callerID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), callerID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ツイート一覧が素の配列で返り、呼び出し元IDがサービスに渡ることを検証
func TestTimelineHandler_ListTweets_ReturnsArray(t *testing.T) {
	svc := &mockTimelineService{
		userTweetsFn: func(ctx context.Context, userID, callerID string) ([]timeline.TweetView, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			if callerID != "caller-1" {
				t.Errorf("callerID = %q, want caller-1", callerID)
			}
			return []timeline.TweetView{
				{ID: "tweet-1", UserID: userID, Description: "こんにちは", CreatedAt: "10分前", LikedUsersCount: 2, RepliesCount: 1, IsLiked: true},
				{ID: "tweet-2", UserID: userID, Description: "おはよう", CreatedAt: "1時間前"},
			}, nil
		},
	}
	router := newTimelineRouter(svc)

	w := doAuthenticatedGet(router, "/api/users/user-1/tweets", "caller-1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []tweetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected array response, got: %s", w.Body.String())
	}
	if len(resp) != 2 {
		t.Fatalf("len(resp) = %d, want 2", len(resp))
	}
	if !resp[0].IsLiked || resp[0].LikedUsersCount != 2 {
		t.Errorf("first tweet annotations not preserved: %+v", resp[0])
	}
}

// 未認証リクエストが401になることを検証
func TestTimelineHandler_ListTweets_Unauthenticated(t *testing.T) {
	router := newTimelineRouter(&mockTimelineService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/tweets", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// いいねが0件のときに空配列ではなく案内メッセージが返ることを検証
func TestTimelineHandler_ListLikes_EmptyReturnsMessage(t *testing.T) {
	svc := &mockTimelineService{
		userLikesFn: func(ctx context.Context, userID, callerID string) ([]timeline.LikeView, error) {
			return []timeline.LikeView{}, nil
		},
	}
	router := newTimelineRouter(svc)

	w := doAuthenticatedGet(router, "/api/users/user-1/likes", "caller-1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected message object, got: %s", w.Body.String())
	}
	if resp["message"] == "" {
		t.Error("expected non-empty message field")
	}
}

// いいねが存在するときは配列で返ることを検証
func TestTimelineHandler_ListLikes_NonEmptyReturnsArray(t *testing.T) {
	svc := &mockTimelineService{
		userLikesFn: func(ctx context.Context, userID, callerID string) ([]timeline.LikeView, error) {
			return []timeline.LikeView{
				{
					ID:          "like-1",
					TweetID:     "tweet-1",
					CreatedAt:   "数秒前",
					Description: "本文",
					TweetAuthor: timeline.UserSummary{ID: "user-2", Account: "jiro"},
					IsLiked:     true,
				},
			}, nil
		},
	}
	router := newTimelineRouter(svc)

	w := doAuthenticatedGet(router, "/api/users/user-1/likes", "caller-1")

	var resp []likeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected array response, got: %s", w.Body.String())
	}
	if len(resp) != 1 {
		t.Fatalf("len(resp) = %d, want 1", len(resp))
	}
	if resp[0].TweetAuthor.Account != "jiro" {
		t.Errorf("tweetAuthor.account = %q, want jiro", resp[0].TweetAuthor.Account)
	}
}

// 返信が0件のときに案内メッセージが返ることを検証
func TestTimelineHandler_ListReplies_EmptyReturnsMessage(t *testing.T) {
	svc := &mockTimelineService{
		userRepliesFn: func(ctx context.Context, userID string) ([]timeline.ReplyView, error) {
			return nil, nil
		},
	}
	router := newTimelineRouter(svc)

	w := doAuthenticatedGet(router, "/api/users/user-1/replies", "caller-1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected message object, got: %s", w.Body.String())
	}
	if resp["message"] == "" {
		t.Error("expected non-empty message field")
	}
}

// 対象ユーザーが見つからない場合に404が返ることを検証
func TestTimelineHandler_ListLikes_UserNotFound(t *testing.T) {
	svc := &mockTimelineService{
		userLikesFn: func(ctx context.Context, userID, callerID string) ([]timeline.LikeView, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	router := newTimelineRouter(svc)

	w := doAuthenticatedGet(router, "/api/users/admin-1/likes", "caller-1")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
