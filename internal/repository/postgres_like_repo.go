package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresLikeRepo はPostgreSQLを使用したいいねリポジトリ。
type PostgresLikeRepo struct {
	db *sql.DB
}

// NewPostgresLikeRepo はPostgresLikeRepoを生成する。
func NewPostgresLikeRepo(db *sql.DB) *PostgresLikeRepo {
	return &PostgresLikeRepo{db: db}
}

// ListByUserWithTweet は指定ユーザーのいいねを対象ツイート・その投稿者・
// 集計値付きでいいね作成日時降順に取得する。
func (r *PostgresLikeRepo) ListByUserWithTweet(ctx context.Context, userID string) ([]LikeWithTweet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT lk.id, lk.user_id, lk.tweet_id, lk.created_at,
		        t.id, t.user_id, t.description, t.created_at,
		        a.id, a.account, a.name, a.avatar,
		        (SELECT COUNT(*) FROM replies rp WHERE rp.tweet_id = t.id) AS replies_count,
		        (SELECT COUNT(*) FROM likes l2 WHERE l2.tweet_id = t.id) AS liked_count
		 FROM likes lk
		 JOIN tweets t ON t.id = lk.tweet_id
		 JOIN users a ON a.id = t.user_id
		 WHERE lk.user_id = $1
		 ORDER BY lk.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes by user: %w", err)
	}
	defer rows.Close()

	var results []LikeWithTweet
	for rows.Next() {
		var l LikeWithTweet
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.TweetID, &l.CreatedAt,
			&l.Tweet.ID, &l.Tweet.UserID, &l.Tweet.Description, &l.Tweet.CreatedAt,
			&l.TweetAuthor.ID, &l.TweetAuthor.Account, &l.TweetAuthor.Name, &l.TweetAuthor.Avatar,
			&l.RepliesCount, &l.LikedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan like row: %w", err)
		}
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate like rows: %w", err)
	}

	return results, nil
}

// ListTweetIDsByUser は指定ユーザーがいいねしたツイートIDの一覧を返す。
func (r *PostgresLikeRepo) ListTweetIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tweet_id FROM likes WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked tweet IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tweet ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tweet IDs: %w", err)
	}

	return ids, nil
}

// compile-time interface check
var _ LikeRepository = (*PostgresLikeRepo)(nil)
