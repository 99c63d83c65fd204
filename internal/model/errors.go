// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: image, draft, export, subscription, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeImageTooLarge          = "IMAGE_TOO_LARGE"
	ErrCodeImageDecodeFailed      = "IMAGE_DECODE_FAILED"
	ErrCodeImageFetchFailed       = "IMAGE_FETCH_FAILED"
	ErrCodeInvalidPlatform        = "INVALID_PLATFORM"
	ErrCodePlatformHidden         = "PLATFORM_HIDDEN"
	ErrCodeInvalidImageSlot       = "INVALID_IMAGE_SLOT"
	ErrCodeTextTooLong            = "TEXT_TOO_LONG"
	ErrCodeExportFailed           = "EXPORT_FAILED"
	ErrCodeInvalidEmail           = "INVALID_EMAIL"
	ErrCodeDuplicateSubscriber    = "DUPLICATE_SUBSCRIBER"
	ErrCodeSubscriptionFailed     = "SUBSCRIPTION_FAILED"
	ErrCodeSubscriptionInProgress = "SUBSCRIPTION_IN_PROGRESS"
	ErrCodeSubscriptionCompleted  = "SUBSCRIPTION_COMPLETED"
)

// IsAPIErrorCode はerrがcodeを持つAPIErrorかどうかを判定する。
func IsAPIErrorCode(err error, code string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == code
}

// NewImageTooLargeError は画像サイズ超過エラーを生成する。
func NewImageTooLargeError(limit int64) *APIError {
	return &APIError{
		Code:     ErrCodeImageTooLarge,
		Message:  fmt.Sprintf("画像サイズが上限（%s）を超えています。", humanSize(limit)),
		Category: "image",
		Action:   fmt.Sprintf("%s以下の画像を選択してください。", humanSize(limit)),
	}
}

// NewImageDecodeError は画像デコード失敗エラーを生成する。
func NewImageDecodeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeImageDecodeFailed,
		Message:  fmt.Sprintf("画像を読み込めませんでした: %s", reason),
		Category: "image",
		Action:   "PNG、JPEG、GIF、WebP、BMP形式の画像を選択してください。",
	}
}

// NewImageFetchError はリモート画像の取得失敗エラーを生成する。
func NewImageFetchError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeImageFetchFailed,
		Message:  fmt.Sprintf("画像の取得に失敗しました: %s", reason),
		Category: "image",
		Action:   "URLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}

// NewInvalidPlatformError は未知のプラットフォーム指定エラーを生成する。
func NewInvalidPlatformError(platform string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPlatform,
		Message:  fmt.Sprintf("無効なプラットフォームです: %s", platform),
		Category: "validation",
		Action:   "プラットフォーム一覧から選択してください。",
	}
}

// NewPlatformHiddenError は非公開プラットフォームが指定された場合のエラーを生成する。
func NewPlatformHiddenError(platform Platform) *APIError {
	return &APIError{
		Code:     ErrCodePlatformHidden,
		Message:  fmt.Sprintf("このプラットフォームは選択できません: %s", platform),
		Category: "validation",
		Action:   "プラットフォーム一覧に表示されているものを選択してください。",
	}
}

// NewInvalidImageSlotError は画像スロット指定エラーを生成する。
func NewInvalidImageSlotError(slot string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageSlot,
		Message:  fmt.Sprintf("無効な画像スロットです: %s", slot),
		Category: "validation",
		Action:   "post または profile を指定してください。",
	}
}

// NewTextTooLongError はユーザー名や本文が上限を超えた場合のエラーを生成する。
func NewTextTooLongError(field, limit string) *APIError {
	return &APIError{
		Code:     ErrCodeTextTooLong,
		Message:  fmt.Sprintf("%sが上限（%s）を超えています。", field, limit),
		Category: "validation",
		Action:   "文字数または改行を減らしてください。",
	}
}

// NewExportFailedError は画像書き出し失敗エラーを生成する。
func NewExportFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeExportFailed,
		Message:  fmt.Sprintf("投稿画像の生成に失敗しました: %s", reason),
		Category: "export",
		Action:   "しばらく待ってから再度ダウンロードしてください。",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "正しいメールアドレスを入力してください。",
	}
}

// NewDuplicateSubscriberError は登録済みメールアドレスのエラーを生成する。
func NewDuplicateSubscriberError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSubscriber,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "subscription",
		Action:   "ニュースレターは登録済みのアドレスに配信されます。",
	}
}

// NewSubscriptionFailedError はニュースレター登録失敗エラーを生成する。
// バックエンドのエラーテキストをメッセージに含める。
func NewSubscriptionFailedError(backendMessage string) *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionFailed,
		Message:  fmt.Sprintf("登録に失敗しました: %s", backendMessage),
		Category: "subscription",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewSubscriptionInProgressError は登録処理中の再送信エラーを生成する。
func NewSubscriptionInProgressError() *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionInProgress,
		Message:  "登録処理中です。",
		Category: "subscription",
		Action:   "処理が完了するまでお待ちください。",
	}
}

// NewSubscriptionCompletedError は登録完了後の再送信エラーを生成する。
func NewSubscriptionCompletedError() *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionCompleted,
		Message:  "ニュースレターへの登録は完了しています。",
		Category: "subscription",
		Action:   "別のアドレスを登録する場合はページを再読み込みしてください。",
	}
}

// humanSize はバイト数を人間が読める表記に変換する。
func humanSize(n int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
	)
	switch {
	case n >= mib && n%mib == 0:
		return fmt.Sprintf("%dMB", n/mib)
	case n >= mib:
		return fmt.Sprintf("%.1fMB", float64(n)/float64(mib))
	case n >= kib:
		return fmt.Sprintf("%dKB", n/kib)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
