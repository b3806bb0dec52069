package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresTweetRepo はPostgreSQLを使用したツイートリポジトリ。
type PostgresTweetRepo struct {
	db *sql.DB
}

// NewPostgresTweetRepo はPostgresTweetRepoを生成する。
func NewPostgresTweetRepo(db *sql.DB) *PostgresTweetRepo {
	return &PostgresTweetRepo{db: db}
}

// ListByUserWithCounts は指定ユーザーのツイートを返信数・いいね数付きで
// 作成日時降順に取得する。いいね数はいいねしたユーザーの異なり数。
func (r *PostgresTweetRepo) ListByUserWithCounts(ctx context.Context, userID string) ([]TweetWithCounts, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.description, t.created_at, t.updated_at,
		        (SELECT COUNT(*) FROM replies r WHERE r.tweet_id = t.id) AS replies_count,
		        (SELECT COUNT(DISTINCT l.user_id) FROM likes l WHERE l.tweet_id = t.id) AS liked_count
		 FROM tweets t
		 WHERE t.user_id = $1
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tweets by user: %w", err)
	}
	defer rows.Close()

	var results []TweetWithCounts
	for rows.Next() {
		var t TweetWithCounts
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Description, &t.CreatedAt, &t.UpdatedAt,
			&t.RepliesCount, &t.LikedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tweet row: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tweet rows: %w", err)
	}

	return results, nil
}

// compile-time interface check
var _ TweetRepository = (*PostgresTweetRepo)(nil)
