// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/tsubuyaki/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByAccount はアカウント名でユーザーを検索する。見つからない場合はnilを返す。
	FindByAccount(ctx context.Context, account string) (*model.User, error)

	// ExistsByAccountOrEmail はaccountまたはemailが既に使用されているかを返す。
	// excludeIDが空でない場合、そのユーザー自身は重複とみなさない（プロフィール編集用）。
	ExistsByAccountOrEmail(ctx context.Context, account, email, excludeID string) (bool, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーのプロフィールを1行更新で上書きする。
	Update(ctx context.Context, user *model.User) error

	// ListTopByFollowerCount は一般ユーザーをフォロワー数降順で取得する。
	// excludeIDのユーザーと管理者は除外する。同数の場合はaccount昇順。
	ListTopByFollowerCount(ctx context.Context, excludeID string, limit int) ([]UserWithFollowerCount, error)
}

// TweetRepository はツイートデータの読み取りインターフェース。
type TweetRepository interface {
	// ListByUserWithCounts は指定ユーザーのツイートを返信数・いいね数付きで
	// 作成日時降順に取得する。
	ListByUserWithCounts(ctx context.Context, userID string) ([]TweetWithCounts, error)
}

// ReplyRepository は返信データの読み取りインターフェース。
type ReplyRepository interface {
	// ListByUserWithTweet は指定ユーザーの返信を投稿者・親ツイート・
	// 親ツイート投稿者付きで作成日時降順に取得する。
	ListByUserWithTweet(ctx context.Context, userID string) ([]ReplyWithTweet, error)
}

// LikeRepository はいいねデータの読み取りインターフェース。
type LikeRepository interface {
	// ListByUserWithTweet は指定ユーザーのいいねを対象ツイート・その投稿者・
	// 集計値付きでいいね作成日時降順に取得する。
	ListByUserWithTweet(ctx context.Context, userID string) ([]LikeWithTweet, error)

	// ListTweetIDsByUser は指定ユーザーがいいねしたツイートIDの一覧を返す。
	// 呼び出し側のisLiked判定に使用する。
	ListTweetIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// FollowshipRepository はフォロー関係の読み取りインターフェース。
type FollowshipRepository interface {
	// ListFollowings は指定ユーザーがフォローしているユーザー一覧を返す。
	ListFollowings(ctx context.Context, userID string) ([]model.User, error)

	// ListFollowers は指定ユーザーをフォローしているユーザー一覧を返す。
	ListFollowers(ctx context.Context, userID string) ([]model.User, error)

	// ListFollowingIDs は指定ユーザーがフォローしているユーザーIDの一覧を返す。
	// 呼び出し側のisFollowed判定に使用する。
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)
}

// TweetWithCounts はツイートと集計値を結合した構造体。
type TweetWithCounts struct {
	model.Tweet
	RepliesCount int
	LikedCount   int
}

// UserWithFollowerCount はユーザーとフォロワー数を結合した構造体。
type UserWithFollowerCount struct {
	model.User
	FollowerCount int
}

// LikeWithTweet はいいねと対象ツイート・その投稿者・集計値を結合した構造体。
type LikeWithTweet struct {
	model.Like
	Tweet        model.Tweet
	TweetAuthor  model.User
	RepliesCount int
	LikedCount   int
}

// ReplyWithTweet は返信と投稿者・親ツイート・親ツイート投稿者を結合した構造体。
type ReplyWithTweet struct {
	model.Reply
	Author      model.User
	Tweet       model.Tweet
	TweetAuthor model.User
}
