package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tsubuyaki/internal/middleware"
	"github.com/hitoshi/tsubuyaki/internal/social"
)

// SocialServiceInterface はソーシャルグラフハンドラーが必要とするサービスインターフェース。
type SocialServiceInterface interface {
	Followings(ctx context.Context, userID, callerID string) ([]social.FollowingView, error)
	Followers(ctx context.Context, userID, callerID string) ([]social.FollowerView, error)
	Top10(ctx context.Context, callerID string) ([]social.TopUserView, error)
}

// SocialHandler はフォロー関係のHTTPハンドラー。
type SocialHandler struct {
	service SocialServiceInterface
}

// NewSocialHandler はSocialHandlerを生成する。
func NewSocialHandler(service SocialServiceInterface) *SocialHandler {
	return &SocialHandler{
		service: service,
	}
}

// followingResponse はフォロー中一覧の1件分のレスポンス表現。
type followingResponse struct {
	FollowingID  string `json:"followingId"`
	Account      string `json:"account"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Avatar       string `json:"avatar"`
	Introduction string `json:"introduction"`
	IsFollowed   bool   `json:"isFollowed"`
}

// followerResponse はフォロワー一覧の1件分のレスポンス表現。
type followerResponse struct {
	FollowerID   string `json:"followerId"`
	Account      string `json:"account"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Avatar       string `json:"avatar"`
	Introduction string `json:"introduction"`
	IsFollowed   bool   `json:"isFollowed"`
}

// topUserResponse は人気ユーザー一覧の1件分のレスポンス表現。
type topUserResponse struct {
	ID            string `json:"id"`
	Account       string `json:"account"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Avatar        string `json:"avatar"`
	Cover         string `json:"cover"`
	FollowerCount int    `json:"followerCount"`
	IsFollowed    bool   `json:"isFollowed"`
}

// ListFollowings はユーザーがフォローしているユーザー一覧を返す。
// GET /api/users/{id}/followings
func (h *SocialHandler) ListFollowings(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	userID := chi.URLParam(r, "id")

	views, err := h.service.Followings(r.Context(), userID, callerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]followingResponse, len(views))
	for i, v := range views {
		results[i] = followingResponse{
			FollowingID:  v.FollowingID,
			Account:      v.Account,
			Name:         v.Name,
			Email:        v.Email,
			Avatar:       v.Avatar,
			Introduction: v.Introduction,
			IsFollowed:   v.IsFollowed,
		}
	}

	writeJSON(w, http.StatusOK, results)
}

// ListFollowers はユーザーをフォローしているユーザー一覧を返す。
// GET /api/users/{id}/followers
func (h *SocialHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	userID := chi.URLParam(r, "id")

	views, err := h.service.Followers(r.Context(), userID, callerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]followerResponse, len(views))
	for i, v := range views {
		results[i] = followerResponse{
			FollowerID:   v.FollowerID,
			Account:      v.Account,
			Name:         v.Name,
			Email:        v.Email,
			Avatar:       v.Avatar,
			Introduction: v.Introduction,
			IsFollowed:   v.IsFollowed,
		}
	}

	writeJSON(w, http.StatusOK, results)
}

// Top10 はフォロワー数上位の一般ユーザーを最大10件返す。
// GET /api/users/top10
func (h *SocialHandler) Top10(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	views, err := h.service.Top10(r.Context(), callerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]topUserResponse, len(views))
	for i, v := range views {
		results[i] = topUserResponse{
			ID:            v.ID,
			Account:       v.Account,
			Name:          v.Name,
			Email:         v.Email,
			Avatar:        v.Avatar,
			Cover:         v.Cover,
			FollowerCount: v.FollowerCount,
			IsFollowed:    v.IsFollowed,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   results,
	})
}
