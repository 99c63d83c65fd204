package repository

import (
	"context"
	"errors"
)

// ErrDuplicateSubscriber はメールアドレスが既に登録されている場合のエラー。
var ErrDuplicateSubscriber = errors.New("subscriber already exists")

// ErrStoreNotConfigured はデータストアが設定されていない場合のエラー。
var ErrStoreNotConfigured = errors.New("subscriber store is not configured")

// SubscriberRepository はニュースレター購読者の永続化インターフェース。
type SubscriberRepository interface {
	// Insert はメールアドレスを購読者として登録する。
	// 既に登録済みの場合はErrDuplicateSubscriberを返す。
	Insert(ctx context.Context, email string) error
}

// UnconfiguredSubscriberRepo はデータストア未設定時に使用するリポジトリ。
// 起動は妨げず、登録時に毎回ErrStoreNotConfiguredを返す。
type UnconfiguredSubscriberRepo struct{}

// Insert は常にErrStoreNotConfiguredを返す。
func (UnconfiguredSubscriberRepo) Insert(ctx context.Context, email string) error {
	return ErrStoreNotConfigured
}
