// Package user はユーザー登録・認証・プロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/tsubuyaki/internal/auth"
	"github.com/hitoshi/tsubuyaki/internal/imagehost"
	"github.com/hitoshi/tsubuyaki/internal/model"
	"github.com/hitoshi/tsubuyaki/internal/repository"
)

// nameMaxRunes は表示名の最大文字数。
const nameMaxRunes = 50

// ServiceConfig はユーザーサービスの設定。
type ServiceConfig struct {
	DefaultAvatarURL string
	DefaultCoverURL  string
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenIssuer
	uploader imagehost.Uploader
	config   ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokens *auth.TokenIssuer,
	uploader imagehost.Uploader,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		uploader: uploader,
		config:   config,
	}
}

// SignUpInput はユーザー登録の入力。全フィールド必須。
type SignUpInput struct {
	Account       string
	Name          string
	Email         string
	Password      string
	CheckPassword string
}

// UploadFile はプロフィール編集で渡されるアップロードファイル。
type UploadFile struct {
	Filename string
	Content  io.Reader
}

// EditInput はプロフィール編集の入力。
// 空文字列のフィールドは「変更なし」として既存値を維持する。
// Passwordはnilなら変更なし、非nilならCheckPasswordとの一致検証を行う。
type EditInput struct {
	Account       string
	Name          string
	Email         string
	Introduction  string
	Password      *string
	CheckPassword *string
	Avatar        *UploadFile
	Cover         *UploadFile
}

// SignInResult はサインイン成功時の結果。
type SignInResult struct {
	Token string
	User  model.User
}

// SignUp は新規ユーザーを登録し、サニタイズ済みプロフィールを返す。
// パスワード確認不一致、account/email重複の場合は失敗する。
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*model.User, error) {
	if in.Password != in.CheckPassword {
		return nil, model.NewPasswordMismatchError()
	}

	exists, err := s.userRepo.ExistsByAccountOrEmail(ctx, in.Account, in.Email, "")
	if err != nil {
		return nil, fmt.Errorf("account/email重複チェックに失敗しました: %w", err)
	}
	if exists {
		return nil, model.NewAccountConflictError()
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	newUser := &model.User{
		ID:        uuid.New().String(),
		Account:   in.Account,
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Role:      model.RoleUser,
		Avatar:    s.config.DefaultAvatarURL,
		Cover:     s.config.DefaultCoverURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		// 事前チェック後に同時登録された場合はここで重複が検出される
		if repository.IsUniqueViolation(err) {
			return nil, model.NewAccountConflictError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", newUser.ID),
		slog.String("account", newUser.Account),
	)

	sanitized := newUser.Sanitize()
	return &sanitized, nil
}

// SignIn はアカウント名とパスワードで認証し、識別トークンを発行する。
// アカウントが存在しない、または一般ユーザーでない場合はUserNotFound、
// パスワード不一致の場合はInvalidCredentialsを返す。
func (s *Service) SignIn(ctx context.Context, account, password string) (*SignInResult, error) {
	found, err := s.userRepo.FindByAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if found == nil || found.Role != model.RoleUser {
		return nil, model.NewUserNotFoundError()
	}

	if !auth.CheckPassword(found.Password, password) {
		return nil, model.NewInvalidCredentialsError()
	}

	sanitized := found.Sanitize()
	token, err := s.tokens.Issue(sanitized)
	if err != nil {
		return nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	return &SignInResult{Token: token, User: sanitized}, nil
}

// GetUser は指定IDのサニタイズ済みプロフィールを返す。
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	found, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if found == nil {
		return nil, model.NewUserNotFoundError()
	}

	sanitized := found.Sanitize()
	return &sanitized, nil
}

// EditUser はプロフィールを更新し、マージ後のサニタイズ済みプロフィールを返す。
// 本人以外の編集はForbidden。すべての検証を通過するまで書き込みは行わない。
func (s *Service) EditUser(ctx context.Context, targetID, callerID string, in EditInput) (*model.User, error) {
	if targetID != callerID {
		return nil, model.NewForbiddenError()
	}

	current, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if current == nil {
		return nil, model.NewUserNotFoundError()
	}

	if in.Account != "" || in.Email != "" {
		exists, err := s.userRepo.ExistsByAccountOrEmail(ctx, in.Account, in.Email, targetID)
		if err != nil {
			return nil, fmt.Errorf("account/email重複チェックに失敗しました: %w", err)
		}
		if exists {
			return nil, model.NewAccountConflictError()
		}
	}

	if in.Name != "" && utf8.RuneCountInString(in.Name) > nameMaxRunes {
		return nil, model.NewNameTooLongError(nameMaxRunes)
	}

	// パスワードは省略（nil）なら変更なし。指定された場合のみ確認検証とハッシュ化を行う。
	password := current.Password
	if in.Password != nil {
		check := ""
		if in.CheckPassword != nil {
			check = *in.CheckPassword
		}
		if *in.Password != check {
			return nil, model.NewPasswordMismatchError()
		}
		if *in.Password != "" {
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
			}
			password = hash
		}
	}

	avatar := current.Avatar
	if in.Avatar != nil {
		url, err := s.uploader.Upload(ctx, in.Avatar.Filename, in.Avatar.Content)
		if err != nil {
			return nil, model.NewUploadFailedError(err.Error())
		}
		avatar = url
	}

	cover := current.Cover
	if in.Cover != nil {
		url, err := s.uploader.Upload(ctx, in.Cover.Filename, in.Cover.Content)
		if err != nil {
			return nil, model.NewUploadFailedError(err.Error())
		}
		cover = url
	}

	merged := *current
	merged.Account = fallback(in.Account, current.Account)
	merged.Name = fallback(in.Name, current.Name)
	merged.Email = fallback(in.Email, current.Email)
	merged.Introduction = fallback(in.Introduction, current.Introduction)
	merged.Password = password
	merged.Avatar = avatar
	merged.Cover = cover
	merged.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, &merged); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewAccountConflictError()
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	slog.Info("プロフィールを更新しました",
		slog.String("user_id", merged.ID),
	)

	sanitized := merged.Sanitize()
	return &sanitized, nil
}

// fallback は空文字列の場合に既存値を返す。
func fallback(value, current string) string {
	if value == "" {
		return current
	}
	return value
}
