// Package timeline はツイート・いいね・返信の読み取りビューを提供する。
// 各ビューは呼び出し元（認証ユーザー）基準のisLikedフラグを付与して返す。
package timeline

import (
	"context"
	"fmt"

	"github.com/hitoshi/tsubuyaki/internal/model"
	"github.com/hitoshi/tsubuyaki/internal/reltime"
	"github.com/hitoshi/tsubuyaki/internal/repository"
)

// Service はタイムラインビューのサービス層。
type Service struct {
	userRepo  repository.UserRepository
	tweetRepo repository.TweetRepository
	replyRepo repository.ReplyRepository
	likeRepo  repository.LikeRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	tweetRepo repository.TweetRepository,
	replyRepo repository.ReplyRepository,
	likeRepo repository.LikeRepository,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tweetRepo: tweetRepo,
		replyRepo: replyRepo,
		likeRepo:  likeRepo,
	}
}

// UserSummary はビューに埋め込むユーザーの要約。
type UserSummary struct {
	ID      string
	Account string
	Name    string
	Avatar  string
}

// TweetView はユーザーのツイート一覧の1件分。
type TweetView struct {
	ID              string
	UserID          string
	Description     string
	CreatedAt       string // 相対時刻表記
	LikedUsersCount int
	RepliesCount    int
	IsLiked         bool
}

// LikeView はユーザーのいいね一覧の1件分。
// IsLikedは一覧の主体ではなく呼び出し元のいいね集合に対して計算される。
type LikeView struct {
	ID             string
	TweetID        string
	CreatedAt      string // いいねの相対時刻
	TweetCreatedAt string // ツイートの相対時刻
	Description    string
	TweetAuthor    UserSummary
	RepliesCount   int
	LikedCount     int
	IsLiked        bool
}

// ReplyView はユーザーの返信一覧の1件分。
type ReplyView struct {
	ID          string
	TweetID     string
	Comment     string
	CreatedAt   string // 相対時刻表記
	Author      UserSummary
	Tweet       string // 親ツイート本文
	TweetAuthor UserSummary
}

// UserTweets は指定ユーザーの全ツイートを集計値付き・新しい順で返す。
// isLikedは呼び出し元がいいねしているかどうか。
func (s *Service) UserTweets(ctx context.Context, userID, callerID string) ([]TweetView, error) {
	subject, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if subject == nil {
		return nil, model.NewUserNotFoundError()
	}

	tweets, err := s.tweetRepo.ListByUserWithCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ツイート一覧の取得に失敗しました: %w", err)
	}

	callerLikes, err := s.callerLikeSet(ctx, callerID)
	if err != nil {
		return nil, err
	}

	views := make([]TweetView, len(tweets))
	for i, t := range tweets {
		views[i] = TweetView{
			ID:              t.ID,
			UserID:          t.UserID,
			Description:     t.Description,
			CreatedAt:       reltime.FromNow(t.CreatedAt),
			LikedUsersCount: t.LikedCount,
			RepliesCount:    t.RepliesCount,
			IsLiked:         callerLikes[t.ID],
		}
	}

	return views, nil
}

// UserLikes は指定ユーザーのいいね一覧を対象ツイート付き・いいねの新しい順で返す。
// ユーザーが存在しない、または管理者の場合はUserNotFound。
// isLikedは対象ユーザーではなく呼び出し元のいいね集合から計算する。
func (s *Service) UserLikes(ctx context.Context, userID, callerID string) ([]LikeView, error) {
	if err := s.requireVisibleUser(ctx, userID); err != nil {
		return nil, err
	}

	likes, err := s.likeRepo.ListByUserWithTweet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("いいね一覧の取得に失敗しました: %w", err)
	}

	callerLikes, err := s.callerLikeSet(ctx, callerID)
	if err != nil {
		return nil, err
	}

	views := make([]LikeView, len(likes))
	for i, l := range likes {
		views[i] = LikeView{
			ID:             l.ID,
			TweetID:        l.TweetID,
			CreatedAt:      reltime.FromNow(l.CreatedAt),
			TweetCreatedAt: reltime.FromNow(l.Tweet.CreatedAt),
			Description:    l.Tweet.Description,
			TweetAuthor:    toUserSummary(l.TweetAuthor),
			RepliesCount:   l.RepliesCount,
			LikedCount:     l.LikedCount,
			IsLiked:        callerLikes[l.Tweet.ID],
		}
	}

	return views, nil
}

// UserReplies は指定ユーザーの返信一覧を親ツイート付き・新しい順で返す。
// ユーザーが存在しない、または管理者の場合はUserNotFound。
func (s *Service) UserReplies(ctx context.Context, userID string) ([]ReplyView, error) {
	if err := s.requireVisibleUser(ctx, userID); err != nil {
		return nil, err
	}

	replies, err := s.replyRepo.ListByUserWithTweet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("返信一覧の取得に失敗しました: %w", err)
	}

	views := make([]ReplyView, len(replies))
	for i, r := range replies {
		views[i] = ReplyView{
			ID:          r.ID,
			TweetID:     r.TweetID,
			Comment:     r.Comment,
			CreatedAt:   reltime.FromNow(r.CreatedAt),
			Author:      toUserSummary(r.Author),
			Tweet:       r.Tweet.Description,
			TweetAuthor: toUserSummary(r.TweetAuthor),
		}
	}

	return views, nil
}

// requireVisibleUser は対象ユーザーが存在し、一般ユーザーであることを確認する。
// 管理者のタイムラインは外部に公開しない。
func (s *Service) requireVisibleUser(ctx context.Context, userID string) error {
	subject, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if subject == nil || subject.Role == model.RoleAdmin {
		return model.NewUserNotFoundError()
	}
	return nil
}

// callerLikeSet は呼び出し元がいいねしたツイートIDの集合を返す。
func (s *Service) callerLikeSet(ctx context.Context, callerID string) (map[string]bool, error) {
	ids, err := s.likeRepo.ListTweetIDsByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("呼び出し元のいいね取得に失敗しました: %w", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// toUserSummary はmodel.Userからビュー用の要約に変換する。
func toUserSummary(u model.User) UserSummary {
	return UserSummary{
		ID:      u.ID,
		Account: u.Account,
		Name:    u.Name,
		Avatar:  u.Avatar,
	}
}
