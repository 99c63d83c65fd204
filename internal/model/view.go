package model

// ProfileSource はプレビューに表示しているプロフィール画像の出所。
type ProfileSource string

const (
	ProfileSourceUploaded    ProfileSource = "uploaded"
	ProfileSourceDefault     ProfileSource = "default"
	ProfileSourcePlaceholder ProfileSource = "placeholder"
)

// ActionView は値を解決済みのアクションバー要素。
type ActionView struct {
	Icon     string
	Label    string
	Value    string
	Trailing bool
}

// PostView は下書きとスタイル定義から合成された表示用の投稿。
type PostView struct {
	Platform      Platform
	Theme         PlatformTheme
	Username      string
	Content       string
	Timestamp     string
	ProfileImage  *Image
	ProfileSource ProfileSource
	PostImage     *Image
	Likes         int
	Shares        int
	Actions       []ActionView
	LikesSummary  string
}
