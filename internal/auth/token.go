package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/hitoshi/tsubuyaki/internal/model"
)

// DefaultTokenTTL は識別トークンの標準有効期間。
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claims は識別トークンに埋め込むサニタイズ済みプロフィール。
// パスワードハッシュは含めない。
type Claims struct {
	UserID       string `json:"id"`
	Account      string `json:"account"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Avatar       string `json:"avatar"`
	Cover        string `json:"cover"`
	Introduction string `json:"introduction,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer はHMAC署名付き識別トークンを発行・検証する。
// このコンポーネントがトークンの唯一の発行者かつ消費者。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer はTokenIssuerを生成する。
// ttlが0の場合はDefaultTokenTTL（30日）を使用する。
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue はサニタイズ済みプロフィールを載せた署名付きトークンを発行する。
func (i *TokenIssuer) Issue(user model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       user.ID,
		Account:      user.Account,
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		Avatar:       user.Avatar,
		Cover:        user.Cover,
		Introduction: user.Introduction,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Parse はトークンを検証し、クレームを返す。
// 署名方式がHMACでない場合、署名不正・期限切れの場合はエラーを返す。
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has empty user ID")
	}

	return claims, nil
}
