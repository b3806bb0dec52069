package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresReplyRepo はPostgreSQLを使用した返信リポジトリ。
type PostgresReplyRepo struct {
	db *sql.DB
}

// NewPostgresReplyRepo はPostgresReplyRepoを生成する。
func NewPostgresReplyRepo(db *sql.DB) *PostgresReplyRepo {
	return &PostgresReplyRepo{db: db}
}

// ListByUserWithTweet は指定ユーザーの返信を投稿者・親ツイート・
// 親ツイート投稿者付きで作成日時降順に取得する。
func (r *PostgresReplyRepo) ListByUserWithTweet(ctx context.Context, userID string) ([]ReplyWithTweet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rp.id, rp.tweet_id, rp.user_id, rp.comment, rp.created_at,
		        ru.id, ru.account, ru.name, ru.avatar,
		        t.id, t.user_id, t.description, t.created_at,
		        tu.id, tu.account, tu.name, tu.avatar
		 FROM replies rp
		 JOIN users ru ON ru.id = rp.user_id
		 JOIN tweets t ON t.id = rp.tweet_id
		 JOIN users tu ON tu.id = t.user_id
		 WHERE rp.user_id = $1
		 ORDER BY rp.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies by user: %w", err)
	}
	defer rows.Close()

	var results []ReplyWithTweet
	for rows.Next() {
		var rep ReplyWithTweet
		if err := rows.Scan(
			&rep.ID, &rep.TweetID, &rep.UserID, &rep.Comment, &rep.CreatedAt,
			&rep.Author.ID, &rep.Author.Account, &rep.Author.Name, &rep.Author.Avatar,
			&rep.Tweet.ID, &rep.Tweet.UserID, &rep.Tweet.Description, &rep.Tweet.CreatedAt,
			&rep.TweetAuthor.ID, &rep.TweetAuthor.Account, &rep.TweetAuthor.Name, &rep.TweetAuthor.Avatar,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reply row: %w", err)
		}
		results = append(results, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reply rows: %w", err)
	}

	return results, nil
}

// compile-time interface check
var _ ReplyRepository = (*PostgresReplyRepo)(nil)
