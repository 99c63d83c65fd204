// Package theme はプラットフォームごとの投稿スタイル定義を提供する。
//
// スタイル定義は起動時に固定され、実行中に変更されない。
// 全てのPlatformに対して定義が存在することをパッケージ初期化時に検証する。
package theme

import (
	"fmt"
	"image/color"

	"github.com/hitoshi/postmock/internal/model"
)

// ライト/ダーク面の共通色
var (
	white   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	black   = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	gray900 = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xFF}
	gray500 = color.RGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF}
	gray400 = color.RGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}
	gray200 = color.RGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}
	gray800 = color.RGBA{R: 0x1F, G: 0x29, B: 0x37, A: 0xFF}
)

// hidden は選択UIに通常表示しないプラットフォーム。
var hidden = map[model.Platform]bool{model.PlatformTikTok: true}

var registry = map[model.Platform]model.PlatformTheme{}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

func light(p model.Platform, name string, brand uint32) model.PlatformTheme {
	return model.PlatformTheme{
		Platform:            p,
		DisplayName:         name,
		BrandColor:          hex(brand),
		Surface:             white,
		Text:                gray900,
		Muted:               gray500,
		Border:              gray200,
		UsernamePlaceholder: "Username",
	}
}

func dark(p model.Platform, name string, brand uint32) model.PlatformTheme {
	t := light(p, name, brand)
	t.Surface = black
	t.Text = white
	t.Muted = gray400
	t.Border = gray800
	t.Dark = true
	return t
}

func init() {
	twitter := dark(model.PlatformTwitter, "Twitter", 0x1DA1F2)
	twitter.ContentPlaceholder = "What's happening?"
	twitter.UsernamePlaceholder = "@username"
	twitter.Layout = model.LayoutRow
	twitter.Actions = []model.Action{
		{Icon: "message-circle", Counter: model.CounterStatic, StaticValue: "24"},
		{Icon: "repeat-2", Counter: model.CounterShares},
		{Icon: "heart", Counter: model.CounterLikes},
		{Icon: "bookmark", Counter: model.CounterNone},
	}

	instagram := light(model.PlatformInstagram, "Instagram", 0xE4405F)
	instagram.ContentPlaceholder = "Write a caption..."
	instagram.Layout = model.LayoutRowSplit
	instagram.CardBordered = true
	instagram.ImageBordered = true
	instagram.Actions = []model.Action{
		{Icon: "heart", Counter: model.CounterNone},
		{Icon: "message-circle", Counter: model.CounterNone},
		{Icon: "send", Counter: model.CounterNone},
		{Icon: "bookmark", Counter: model.CounterNone, Trailing: true},
	}
	instagram.LikesSummary = "%s likes"

	facebook := light(model.PlatformFacebook, "Facebook", 0x1877F2)
	facebook.ContentPlaceholder = "What's on your mind?"
	facebook.Layout = model.LayoutBorderedRow
	facebook.Actions = []model.Action{
		{Icon: "thumbs-up", Label: "Like", Counter: model.CounterNone},
		{Icon: "message-square", Label: "Comment", Counter: model.CounterNone},
		{Icon: "share", Label: "Share", Counter: model.CounterNone},
	}

	linkedin := light(model.PlatformLinkedIn, "LinkedIn", 0x0A66C2)
	linkedin.ContentPlaceholder = "Share an update or article..."
	linkedin.Layout = model.LayoutRow
	linkedin.Bordered = true
	linkedin.CardBordered = true
	linkedin.Actions = []model.Action{
		{Icon: "thumbs-up", Counter: model.CounterLikes},
		{Icon: "message-square", Label: "Comment", Counter: model.CounterNone},
		{Icon: "share-2", Label: "Share", Counter: model.CounterNone},
	}

	youtube := light(model.PlatformYouTube, "YouTube", 0xFF0000)
	youtube.ContentPlaceholder = "Add a description..."
	youtube.Layout = model.LayoutRowSplit
	youtube.Actions = []model.Action{
		{Icon: "thumbs-up", Counter: model.CounterLikes},
		{Icon: "message-square", Label: "Comments", Counter: model.CounterNone},
		{Icon: "share", Label: "Share", Counter: model.CounterNone, Trailing: true},
	}

	tiktok := dark(model.PlatformTikTok, "TikTok", 0x000000)
	tiktok.ContentPlaceholder = "Write something..."
	tiktok.Layout = model.LayoutColumn
	tiktok.Actions = []model.Action{
		{Icon: "heart", Counter: model.CounterLikes},
		{Icon: "message-circle", Label: "Comments", Counter: model.CounterNone},
		{Icon: "bookmark", Label: "Save", Counter: model.CounterNone},
		{Icon: "share-2", Label: "Share", Counter: model.CounterNone},
	}

	reddit := light(model.PlatformReddit, "Reddit", 0xFF4500)
	reddit.ContentPlaceholder = "Create a post..."
	reddit.Layout = model.LayoutVoteRow
	reddit.CardBordered = true
	reddit.Actions = []model.Action{
		{Icon: "arrow-up", Counter: model.CounterLikes},
		{Icon: "message-square", Label: "Comments", Counter: model.CounterNone},
		{Icon: "share-2", Label: "Share", Counter: model.CounterNone},
		{Icon: "bookmark", Label: "Save", Counter: model.CounterNone},
	}

	for _, t := range []model.PlatformTheme{twitter, instagram, facebook, linkedin, youtube, tiktok, reddit} {
		registry[t.Platform] = t
	}

	// 全プラットフォームに定義が存在することを保証する
	for _, p := range model.AllPlatforms() {
		t, ok := registry[p]
		if !ok {
			panic(fmt.Sprintf("theme: no style defined for platform %q", p))
		}
		if len(t.Actions) == 0 {
			panic(fmt.Sprintf("theme: platform %q has no actions", p))
		}
	}
}

// ThemeOf は指定プラットフォームのスタイル定義を返す。
// 返り値のActionsは呼び出し側で変更しても定義に影響しない。
func ThemeOf(p model.Platform) model.PlatformTheme {
	t, ok := registry[p]
	if !ok {
		// Platformは閉じた集合のため、ここに到達するのは未検証の値を渡した場合のみ
		t = registry[model.PlatformTwitter]
	}
	t.Actions = append([]model.Action(nil), t.Actions...)
	return t
}

// IsHidden は選択UIに通常表示しないプラットフォームかどうかを返す。
func IsHidden(p model.Platform) bool {
	return hidden[p]
}

// Selectable は選択UIに表示するプラットフォームを表示順で返す。
// includeHiddenがtrueの場合は非公開のプラットフォームも含める。
func Selectable(includeHidden bool) []model.Platform {
	var out []model.Platform
	for _, p := range model.AllPlatforms() {
		if hidden[p] && !includeHidden {
			continue
		}
		out = append(out, p)
	}
	return out
}
