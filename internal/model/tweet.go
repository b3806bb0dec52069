package model

import "time"

// Tweet はユーザーの投稿を表す。
// このコンポーネントからは読み取り専用で、作成・削除は別の書き込み経路が担う。
type Tweet struct {
	ID          string
	UserID      string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reply はツイートへの返信を表す。
type Reply struct {
	ID        string
	TweetID   string
	UserID    string
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Like はユーザーからツイートへのいいねを表す。
// (UserID, TweetID) の組は一意。
type Like struct {
	ID        string
	UserID    string
	TweetID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Followship はフォロー関係の有向エッジを表す。
// FollowerID が FollowingID をフォローしている。自己フォローはスキーマ制約で禁止される。
type Followship struct {
	ID          string
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
