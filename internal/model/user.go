// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleUser は一般ユーザーを示す。
	RoleUser Role = "user"
	// RoleAdmin は管理者ユーザーを示す。
	// 管理者はタイムラインや人気ユーザー一覧には露出しない。
	RoleAdmin Role = "admin"
)

// User はサービス利用ユーザーを表す。
// Passwordはbcryptハッシュを保持し、APIレスポンスには一切含めない。
type User struct {
	ID           string
	Account      string
	Name         string
	Email        string
	Password     string
	Role         Role
	Avatar       string
	Cover        string
	Introduction string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitize はパスワードハッシュを除いたコピーを返す。
// クライアントへ返すユーザー情報は必ずこの形を経由する。
func (u User) Sanitize() User {
	u.Password = ""
	return u
}
