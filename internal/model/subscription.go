package model

// SubscriptionStatus はニュースレター登録フォームの状態。
type SubscriptionStatus string

const (
	SubscriptionIdle    SubscriptionStatus = "idle"
	SubscriptionLoading SubscriptionStatus = "loading"
	SubscriptionSuccess SubscriptionStatus = "success"
	SubscriptionError   SubscriptionStatus = "error"
)

// SubscriptionState は登録フォームの状態とその付随情報。
type SubscriptionState struct {
	Status SubscriptionStatus
	// Message はerror状態のときのユーザー向けメッセージ。
	Message string
	// Email はフォームの入力値。登録成功時にのみクリアされる。
	Email string
}

// SubmitDisabled は送信ボタンを無効化すべきかを返す。
func (s SubscriptionState) SubmitDisabled() bool {
	return s.Status == SubscriptionLoading || s.Status == SubscriptionSuccess
}
