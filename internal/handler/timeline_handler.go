package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tsubuyaki/internal/middleware"
	"github.com/hitoshi/tsubuyaki/internal/timeline"
)

// TimelineServiceInterface はタイムラインハンドラーが必要とするサービスインターフェース。
type TimelineServiceInterface interface {
	UserTweets(ctx context.Context, userID, callerID string) ([]timeline.TweetView, error)
	UserLikes(ctx context.Context, userID, callerID string) ([]timeline.LikeView, error)
	UserReplies(ctx context.Context, userID string) ([]timeline.ReplyView, error)
}

// TimelineHandler はツイート・いいね・返信一覧のHTTPハンドラー。
type TimelineHandler struct {
	service TimelineServiceInterface
}

// NewTimelineHandler はTimelineHandlerを生成する。
func NewTimelineHandler(service TimelineServiceInterface) *TimelineHandler {
	return &TimelineHandler{
		service: service,
	}
}

// userSummaryResponse はビューに埋め込むユーザー要約のレスポンス表現。
type userSummaryResponse struct {
	ID      string `json:"id"`
	Account string `json:"account"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
}

func toUserSummaryResponse(s timeline.UserSummary) userSummaryResponse {
	return userSummaryResponse{
		ID:      s.ID,
		Account: s.Account,
		Name:    s.Name,
		Avatar:  s.Avatar,
	}
}

// tweetResponse はツイート一覧の1件分のレスポンス表現。
type tweetResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	Description     string `json:"description"`
	CreatedAt       string `json:"createdAt"`
	LikedUsersCount int    `json:"likedUsersCount"`
	RepliesCount    int    `json:"repliesCount"`
	IsLiked         bool   `json:"isLiked"`
}

// likeResponse はいいね一覧の1件分のレスポンス表現。
type likeResponse struct {
	ID             string              `json:"id"`
	TweetID        string              `json:"tweetId"`
	CreatedAt      string              `json:"createdAt"`
	TweetCreatedAt string              `json:"tweetCreatedAt"`
	Description    string              `json:"description"`
	TweetAuthor    userSummaryResponse `json:"tweetAuthor"`
	RepliesCount   int                 `json:"repliesCount"`
	LikedCount     int                 `json:"likedCount"`
	IsLiked        bool                `json:"isLiked"`
}

// replyResponse は返信一覧の1件分のレスポンス表現。
type replyResponse struct {
	ID          string              `json:"id"`
	TweetID     string              `json:"tweetId"`
	Comment     string              `json:"comment"`
	CreatedAt   string              `json:"createdAt"`
	Author      userSummaryResponse `json:"author"`
	Tweet       string              `json:"tweet"`
	TweetAuthor userSummaryResponse `json:"tweetAuthor"`
}

// ListTweets はユーザーのツイート一覧を返す。
// GET /api/users/{id}/tweets
func (h *TimelineHandler) ListTweets(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	userID := chi.URLParam(r, "id")

	views, err := h.service.UserTweets(r.Context(), userID, callerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]tweetResponse, len(views))
	for i, v := range views {
		results[i] = tweetResponse{
			ID:              v.ID,
			UserID:          v.UserID,
			Description:     v.Description,
			CreatedAt:       v.CreatedAt,
			LikedUsersCount: v.LikedUsersCount,
			RepliesCount:    v.RepliesCount,
			IsLiked:         v.IsLiked,
		}
	}

	writeJSON(w, http.StatusOK, results)
}

// ListLikes はユーザーのいいね一覧を返す。
// いいねが0件の場合は空配列ではなく案内メッセージを返す。
// GET /api/users/{id}/likes
func (h *TimelineHandler) ListLikes(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	userID := chi.URLParam(r, "id")

	views, err := h.service.UserLikes(r.Context(), userID, callerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if len(views) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "このユーザーはまだいいねしていません。",
		})
		return
	}

	results := make([]likeResponse, len(views))
	for i, v := range views {
		results[i] = likeResponse{
			ID:             v.ID,
			TweetID:        v.TweetID,
			CreatedAt:      v.CreatedAt,
			TweetCreatedAt: v.TweetCreatedAt,
			Description:    v.Description,
			TweetAuthor:    toUserSummaryResponse(v.TweetAuthor),
			RepliesCount:   v.RepliesCount,
			LikedCount:     v.LikedCount,
			IsLiked:        v.IsLiked,
		}
	}

	writeJSON(w, http.StatusOK, results)
}

// ListReplies はユーザーの返信一覧を返す。
// 返信が0件の場合は空配列ではなく案内メッセージを返す。
// GET /api/users/{id}/replies
func (h *TimelineHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	views, err := h.service.UserReplies(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if len(views) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "このユーザーはまだ返信していません。",
		})
		return
	}

	results := make([]replyResponse, len(views))
	for i, v := range views {
		results[i] = replyResponse{
			ID:          v.ID,
			TweetID:     v.TweetID,
			Comment:     v.Comment,
			CreatedAt:   v.CreatedAt,
			Author:      toUserSummaryResponse(v.Author),
			Tweet:       v.Tweet,
			TweetAuthor: toUserSummaryResponse(v.TweetAuthor),
		}
	}

	writeJSON(w, http.StatusOK, results)
}
