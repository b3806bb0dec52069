// Package social はフォロー関係のビューを提供する。
// 一覧の主体とは別に、呼び出し元基準のisFollowedフラグを重ねて返す。
// このフラグはフォロー推薦UIでの再利用を想定した設計。
package social

import (
	"context"
	"fmt"

	"github.com/hitoshi/tsubuyaki/internal/repository"
)

// topUserLimit は人気ユーザー一覧の最大件数。
const topUserLimit = 10

// Service はソーシャルグラフビューのサービス層。
type Service struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowshipRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, followRepo repository.FollowshipRepository) *Service {
	return &Service{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// FollowingView はフォロー中一覧の1件分。
type FollowingView struct {
	FollowingID  string
	Account      string
	Name         string
	Email        string
	Avatar       string
	Introduction string
	IsFollowed   bool
}

// FollowerView はフォロワー一覧の1件分。
type FollowerView struct {
	FollowerID   string
	Account      string
	Name         string
	Email        string
	Avatar       string
	Introduction string
	IsFollowed   bool
}

// TopUserView は人気ユーザー一覧の1件分。
type TopUserView struct {
	ID            string
	Account       string
	Name          string
	Email         string
	Avatar        string
	Cover         string
	FollowerCount int
	IsFollowed    bool
}

// Followings は指定ユーザーがフォローしているユーザー一覧を返す。
// isFollowedは一覧の主体ではなく呼び出し元がその相手をフォローしているかどうか。
func (s *Service) Followings(ctx context.Context, userID, callerID string) ([]FollowingView, error) {
	followings, err := s.followRepo.ListFollowings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロー中一覧の取得に失敗しました: %w", err)
	}

	callerSet, err := s.callerFollowingSet(ctx, callerID)
	if err != nil {
		return nil, err
	}

	views := make([]FollowingView, len(followings))
	for i, u := range followings {
		views[i] = FollowingView{
			FollowingID:  u.ID,
			Account:      u.Account,
			Name:         u.Name,
			Email:        u.Email,
			Avatar:       u.Avatar,
			Introduction: u.Introduction,
			IsFollowed:   callerSet[u.ID],
		}
	}

	return views, nil
}

// Followers は指定ユーザーをフォローしているユーザー一覧を返す。
// isFollowedの意味はFollowingsと同じく呼び出し元基準。
func (s *Service) Followers(ctx context.Context, userID, callerID string) ([]FollowerView, error) {
	followers, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロワー一覧の取得に失敗しました: %w", err)
	}

	callerSet, err := s.callerFollowingSet(ctx, callerID)
	if err != nil {
		return nil, err
	}

	views := make([]FollowerView, len(followers))
	for i, u := range followers {
		views[i] = FollowerView{
			FollowerID:   u.ID,
			Account:      u.Account,
			Name:         u.Name,
			Email:        u.Email,
			Avatar:       u.Avatar,
			Introduction: u.Introduction,
			IsFollowed:   callerSet[u.ID],
		}
	}

	return views, nil
}

// Top10 はフォロワー数上位の一般ユーザーを最大10件返す。
// 呼び出し元自身と管理者は含まれない。同数の場合はaccount昇順。
func (s *Service) Top10(ctx context.Context, callerID string) ([]TopUserView, error) {
	users, err := s.userRepo.ListTopByFollowerCount(ctx, callerID, topUserLimit)
	if err != nil {
		return nil, fmt.Errorf("人気ユーザー一覧の取得に失敗しました: %w", err)
	}

	callerSet, err := s.callerFollowingSet(ctx, callerID)
	if err != nil {
		return nil, err
	}

	views := make([]TopUserView, len(users))
	for i, u := range users {
		views[i] = TopUserView{
			ID:            u.ID,
			Account:       u.Account,
			Name:          u.Name,
			Email:         u.Email,
			Avatar:        u.Avatar,
			Cover:         u.Cover,
			FollowerCount: u.FollowerCount,
			IsFollowed:    callerSet[u.ID],
		}
	}

	return views, nil
}

// callerFollowingSet は呼び出し元がフォローしているユーザーIDの集合を返す。
func (s *Service) callerFollowingSet(ctx context.Context, callerID string) (map[string]bool, error) {
	ids, err := s.followRepo.ListFollowingIDs(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("呼び出し元のフォロー取得に失敗しました: %w", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
