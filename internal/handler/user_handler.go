// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tsubuyaki/internal/middleware"
	"github.com/hitoshi/tsubuyaki/internal/model"
	"github.com/hitoshi/tsubuyaki/internal/user"
)

// maxUploadSize はプロフィール編集リクエストの最大サイズ（画像2枚を想定）。
const maxUploadSize = 10 << 20 // 10MB

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	SignUp(ctx context.Context, in user.SignUpInput) (*model.User, error)
	SignIn(ctx context.Context, account, password string) (*user.SignInResult, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	EditUser(ctx context.Context, targetID, callerID string, in user.EditInput) (*model.User, error)
}

// MetricsRecorder はユーザーハンドラーが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordSignUp()
	RecordSignInFailure()
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	metrics MetricsRecorder
}

// NewUserHandler はUserHandlerを生成する。
// metricsはnilを許容する（テスト用）。
func NewUserHandler(service UserServiceInterface, metrics MetricsRecorder) *UserHandler {
	return &UserHandler{
		service: service,
		metrics: metrics,
	}
}

// userResponse はサニタイズ済みプロフィールのレスポンス表現。
// passwordフィールドは持たない。
type userResponse struct {
	ID           string    `json:"id"`
	Account      string    `json:"account"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Avatar       string    `json:"avatar"`
	Cover        string    `json:"cover"`
	Introduction string    `json:"introduction"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Account:      u.Account,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		Avatar:       u.Avatar,
		Cover:        u.Cover,
		Introduction: u.Introduction,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// signUpRequest はアカウント登録のリクエストボディ。
type signUpRequest struct {
	Account       string `json:"account"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	CheckPassword string `json:"checkPassword"`
}

// SignUp は新規ユーザーを登録する。
// POST /api/users
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("リクエストボディが不正です"))
		return
	}

	if req.Account == "" || req.Name == "" || req.Email == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("account、name、email、passwordは必須です"))
		return
	}

	created, err := h.service.SignUp(r.Context(), user.SignUpInput{
		Account:       req.Account,
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		CheckPassword: req.CheckPassword,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSignUp()
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"user":   toUserResponse(*created),
	})
}

// signInRequest はログインのリクエストボディ。
type signInRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// SignIn はアカウント名とパスワードで認証し、識別トークンを発行する。
// POST /api/users/signin
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("リクエストボディが不正です"))
		return
	}

	if req.Account == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("accountとpasswordは必須です"))
		return
	}

	result, err := h.service.SignIn(r.Context(), req.Account, req.Password)
	if err != nil {
		// インフラ障害（500系）は認証失敗メトリクスに混ぜない
		if h.metrics != nil && isCredentialFailure(err) {
			h.metrics.RecordSignInFailure()
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"token": result.Token,
			"user":  toUserResponse(result.User),
		},
	})
}

// GetUser はユーザーのプロフィールを返す。
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// プロフィールはトップレベルに展開して返す
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"id":           u.ID,
		"account":      u.Account,
		"name":         u.Name,
		"email":        u.Email,
		"role":         string(u.Role),
		"avatar":       u.Avatar,
		"cover":        u.Cover,
		"introduction": u.Introduction,
		"createdAt":    u.CreatedAt,
		"updatedAt":    u.UpdatedAt,
	})
}

// EditUser はプロフィールを更新する。
// PUT /api/users/{id}
// multipart/form-data（画像アップロードあり）とapplication/json の両方を受け付ける。
func (h *UserHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	targetID := chi.URLParam(r, "id")

	var in user.EditInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		in, err = parseEditMultipart(r)
	} else {
		in, err = parseEditJSON(r)
	}
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("リクエストボディが不正です"))
		return
	}

	updated, err := h.service.EditUser(r.Context(), targetID, callerID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"userData": toUserResponse(*updated),
	})
}

// editUserRequest はJSON形式のプロフィール編集リクエストボディ。
// passwordはポインタで「省略」と「空文字列」を区別する。
type editUserRequest struct {
	Account       string  `json:"account"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Introduction  string  `json:"introduction"`
	Password      *string `json:"password"`
	CheckPassword *string `json:"checkPassword"`
}

func parseEditJSON(r *http.Request) (user.EditInput, error) {
	var req editUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return user.EditInput{}, err
	}

	return user.EditInput{
		Account:       req.Account,
		Name:          req.Name,
		Email:         req.Email,
		Introduction:  req.Introduction,
		Password:      req.Password,
		CheckPassword: req.CheckPassword,
	}, nil
}

func parseEditMultipart(r *http.Request) (user.EditInput, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return user.EditInput{}, err
	}

	in := user.EditInput{
		Account:      r.FormValue("account"),
		Name:         r.FormValue("name"),
		Email:        r.FormValue("email"),
		Introduction: r.FormValue("introduction"),
	}

	// フォームにキーが存在する場合のみ「指定あり」として扱う
	if values, ok := r.MultipartForm.Value["password"]; ok && len(values) > 0 {
		in.Password = &values[0]
	}
	if values, ok := r.MultipartForm.Value["checkPassword"]; ok && len(values) > 0 {
		in.CheckPassword = &values[0]
	}

	if f := formUploadFile(r.MultipartForm, "avatar"); f != nil {
		in.Avatar = f
	}
	if f := formUploadFile(r.MultipartForm, "cover"); f != nil {
		in.Cover = f
	}

	return in, nil
}

// formUploadFile はマルチパートフォームからアップロードファイルを取り出す。
// ファイルが添付されていない場合はnilを返す。
func formUploadFile(form *multipart.Form, key string) *user.UploadFile {
	headers, ok := form.File[key]
	if !ok || len(headers) == 0 {
		return nil
	}

	f, err := headers[0].Open()
	if err != nil {
		slog.Warn("failed to open uploaded file",
			slog.String("field", key),
			slog.String("error", err.Error()),
		)
		return nil
	}

	return &user.UploadFile{
		Filename: headers[0].Filename,
		Content:  f,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// apiErrorResponse は統一エラーフォーマットのレスポンス表現。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// エラー種別ごとに1つの一貫したステータスコードを割り当てる。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest, model.ErrCodeNameTooLong:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodePasswordMismatch, model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeAccountConflict:
		return http.StatusConflict
	case model.ErrCodeUploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// newInvalidRequestError はリクエスト形式不正のエラーを生成する。
func newInvalidRequestError(detail string) *model.APIError {
	return &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  detail + "。",
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// isCredentialFailure はログイン失敗が認証情報起因（401/404）かどうかを返す。
func isCredentialFailure(err error) bool {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch mapAPIErrorToHTTPStatus(apiErr) {
	case http.StatusUnauthorized, http.StatusNotFound:
		return true
	default:
		return false
	}
}

// newUnauthorizedError は認証が必要なエンドポイントの未認証エラーを生成する。
func newUnauthorizedError() *model.APIError {
	return model.NewUnauthorizedError()
}
