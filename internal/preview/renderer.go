// Package preview は下書きとプラットフォームのスタイル定義から
// 表示用の投稿(PostView)を合成する。
package preview

import (
	"fmt"
	"strconv"

	"github.com/hitoshi/postmock/internal/model"
	"github.com/hitoshi/postmock/internal/theme"
)

// デモ表示用の固定値
const (
	DemoLikes      = 1234
	DemoShares     = 56
	TimestampLabel = "Just now"
)

// Fallback はアップロード画像がない場合に使うプロフィール画像。
type Fallback struct {
	// DefaultProfile は起動時に取得したデフォルトのプロフィール画像。未取得ならnil。
	DefaultProfile *model.Image
}

// Renderer は下書きからPostViewを合成する。
// 副作用を持たないため、下書きが変わるたびに呼び出してよい。
// ユーザー名と本文は入力されたとおりの文字列として描画する。改行コードのみLFに揃える。
type Renderer struct{}

// NewRenderer はRendererの新しいインスタンスを生成する。
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render は下書きを表示用の投稿に変換する。
// プロフィール画像はアップロード画像、デフォルト画像、プレースホルダーの順に解決する。
func (r *Renderer) Render(draft model.PostDraft, fallback Fallback) model.PostView {
	th := theme.ThemeOf(draft.Platform)

	view := model.PostView{
		Platform:  th.Platform,
		Theme:     th,
		Username:  model.NormalizeNewlines(draft.Username),
		Content:   model.NormalizeNewlines(draft.Content),
		Timestamp: TimestampLabel,
		PostImage: draft.PostImage,
		Likes:     DemoLikes,
		Shares:    DemoShares,
	}

	switch {
	case draft.ProfileImage != nil:
		view.ProfileImage = draft.ProfileImage
		view.ProfileSource = model.ProfileSourceUploaded
	case fallback.DefaultProfile != nil:
		view.ProfileImage = fallback.DefaultProfile
		view.ProfileSource = model.ProfileSourceDefault
	default:
		view.ProfileImage = PlaceholderAvatar()
		view.ProfileSource = model.ProfileSourcePlaceholder
	}

	view.Actions = resolveActions(th.Actions, view.Likes, view.Shares)
	if th.LikesSummary != "" {
		view.LikesSummary = fmt.Sprintf(th.LikesSummary, strconv.Itoa(view.Likes))
	}
	return view
}

// resolveActions はアクションのカウンター指定を表示値に解決する。
func resolveActions(actions []model.Action, likes, shares int) []model.ActionView {
	out := make([]model.ActionView, 0, len(actions))
	for _, a := range actions {
		v := model.ActionView{Icon: a.Icon, Label: a.Label, Trailing: a.Trailing}
		switch a.Counter {
		case model.CounterLikes:
			v.Value = strconv.Itoa(likes)
		case model.CounterShares:
			v.Value = strconv.Itoa(shares)
		case model.CounterStatic:
			v.Value = a.StaticValue
		}
		out = append(out, v)
	}
	return out
}
