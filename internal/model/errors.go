// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodePasswordMismatch   = "PASSWORD_MISMATCH"
	ErrCodeNameTooLong        = "NAME_TOO_LONG"
	ErrCodeAccountConflict    = "ACCOUNT_CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUploadFailed       = "UPLOAD_FAILED"
)

// NewPasswordMismatchError はパスワード確認不一致エラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "パスワードと確認用パスワードが一致しません。",
		Category: "validation",
		Action:   "同じパスワードを2回入力してください。",
	}
}

// NewNameTooLongError は名前の文字数超過エラーを生成する。
func NewNameTooLongError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeNameTooLong,
		Message:  fmt.Sprintf("名前は%d文字以内で入力してください。", limit),
		Category: "validation",
		Action:   "名前を短くしてから再度お試しください。",
	}
}

// NewAccountConflictError はアカウント名またはメールアドレスの重複エラーを生成する。
func NewAccountConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountConflict,
		Message:  "このアカウント名またはメールアドレスは既に登録されています。",
		Category: "conflict",
		Action:   "別のアカウント名・メールアドレスを使用してください。",
	}
}

// NewInvalidCredentialsError は認証情報不正エラーを生成する。
// アカウントの存在は漏らさず、パスワード不一致のみを表す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "パスワードが正しくありません。",
		Category: "auth",
		Action:   "パスワードを確認して再度お試しください。",
	}
}

// NewUnauthorizedError は認証が必要なエンドポイントの未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "自分自身のプロフィールのみ編集できます。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewUploadFailedError は画像アップロード失敗エラーを生成する。
func NewUploadFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadFailed,
		Message:  fmt.Sprintf("画像のアップロードに失敗しました: %s", reason),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
