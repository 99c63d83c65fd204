package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresSubscriberRepo はPostgreSQLを使用した購読者リポジトリ。
type PostgresSubscriberRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresSubscriberRepo はPostgresSubscriberRepoを生成する。
func NewPostgresSubscriberRepo(db *sql.DB) *PostgresSubscriberRepo {
	return &PostgresSubscriberRepo{db: db, now: time.Now}
}

// Insert はメールアドレスを購読者として登録する。
// 一意制約違反はErrDuplicateSubscriberに変換する。
func (r *PostgresSubscriberRepo) Insert(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscribers (id, email, created_at) VALUES ($1, $2, $3)`,
		uuid.New().String(), email, r.now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubscriber
		}
		return fmt.Errorf("購読者の登録に失敗しました: %w", err)
	}
	return nil
}

// isUniqueViolation はerrがPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
