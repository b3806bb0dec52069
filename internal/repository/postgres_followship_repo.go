package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tsubuyaki/internal/model"
)

// PostgresFollowshipRepo はPostgreSQLを使用したフォロー関係リポジトリ。
type PostgresFollowshipRepo struct {
	db *sql.DB
}

// NewPostgresFollowshipRepo はPostgresFollowshipRepoを生成する。
func NewPostgresFollowshipRepo(db *sql.DB) *PostgresFollowshipRepo {
	return &PostgresFollowshipRepo{db: db}
}

// ListFollowings は指定ユーザーがフォローしているユーザー一覧を
// フォロー日時降順で返す。
func (r *PostgresFollowshipRepo) ListFollowings(ctx context.Context, userID string) ([]model.User, error) {
	return r.listRelated(ctx,
		`SELECT u.id, u.account, u.name, u.email, u.avatar, u.introduction
		 FROM followships f
		 JOIN users u ON u.id = f.following_id
		 WHERE f.follower_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
}

// ListFollowers は指定ユーザーをフォローしているユーザー一覧を
// フォロー日時降順で返す。
func (r *PostgresFollowshipRepo) ListFollowers(ctx context.Context, userID string) ([]model.User, error) {
	return r.listRelated(ctx,
		`SELECT u.id, u.account, u.name, u.email, u.avatar, u.introduction
		 FROM followships f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.following_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
}

// listRelated はフォロー関係を辿ったユーザー一覧クエリを実行する。
func (r *PostgresFollowshipRepo) listRelated(ctx context.Context, query, userID string) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followship users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var introduction sql.NullString
		if err := rows.Scan(&u.ID, &u.Account, &u.Name, &u.Email, &u.Avatar, &introduction); err != nil {
			return nil, fmt.Errorf("failed to scan followship user: %w", err)
		}
		u.Introduction = introduction.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate followship users: %w", err)
	}

	return users, nil
}

// ListFollowingIDs は指定ユーザーがフォローしているユーザーIDの一覧を返す。
func (r *PostgresFollowshipRepo) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT following_id FROM followships WHERE follower_id = $1`,
		followerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list following IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan following ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate following IDs: %w", err)
	}

	return ids, nil
}

// compile-time interface check
var _ FollowshipRepository = (*PostgresFollowshipRepo)(nil)
