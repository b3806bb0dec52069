package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/tsubuyaki/internal/model"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolationCode = "23505"

// IsUniqueViolation はエラーが一意制約違反かどうかを判定する。
// 事前チェックをすり抜けた同時登録の競合はここで拾う。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, account, name, email, password, role, avatar, cover, introduction, created_at, updated_at`

// scanUser は1行分のユーザーをスキャンする。
func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	var introduction sql.NullString
	err := row.Scan(
		&user.ID, &user.Account, &user.Name, &user.Email, &user.Password,
		&user.Role, &user.Avatar, &user.Cover, &introduction,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Introduction = introduction.String
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByAccount はアカウント名でユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByAccount(ctx context.Context, account string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE account = $1`,
		account,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by account: %w", err)
	}

	return user, nil
}

// ExistsByAccountOrEmail はaccountまたはemailが既に使用されているかを返す。
// excludeIDが空でない場合、そのユーザー自身は重複とみなさない。
func (r *PostgresUserRepo) ExistsByAccountOrEmail(ctx context.Context, account, email, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM users
			WHERE (account = $1 OR email = $2) AND id <> $3
		)`,
		account, email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account/email existence: %w", err)
	}

	return exists, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, account, name, email, password, role, avatar, cover, introduction, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.Account, user.Name, user.Email, user.Password,
		user.Role, user.Avatar, user.Cover, nullableString(user.Introduction),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Update はユーザーのプロフィールを1行更新で上書きする。
func (r *PostgresUserRepo) Update(ctx context.Context, user *model.User) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET account = $2, name = $3, email = $4, password = $5,
		     avatar = $6, cover = $7, introduction = $8, updated_at = $9
		 WHERE id = $1`,
		user.ID, user.Account, user.Name, user.Email, user.Password,
		user.Avatar, user.Cover, nullableString(user.Introduction), user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", user.ID)
	}

	return nil
}

// ListTopByFollowerCount は一般ユーザーをフォロワー数降順で取得する。
// excludeIDのユーザーと管理者は除外する。同数の場合はaccount昇順。
func (r *PostgresUserRepo) ListTopByFollowerCount(ctx context.Context, excludeID string, limit int) ([]UserWithFollowerCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.account, u.name, u.email, u.avatar, u.cover, u.introduction,
		        COUNT(f.id) AS follower_count
		 FROM users u
		 LEFT JOIN followships f ON f.following_id = u.id
		 WHERE u.role = 'user' AND u.id <> $1
		 GROUP BY u.id
		 ORDER BY follower_count DESC, u.account ASC
		 LIMIT $2`,
		excludeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by follower count: %w", err)
	}
	defer rows.Close()

	var results []UserWithFollowerCount
	for rows.Next() {
		var u UserWithFollowerCount
		var introduction sql.NullString
		if err := rows.Scan(
			&u.ID, &u.Account, &u.Name, &u.Email, &u.Avatar, &u.Cover,
			&introduction, &u.FollowerCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u.Introduction = introduction.String
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return results, nil
}

// nullableString は空文字列をNULLとして保存するためのヘルパー。
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
