package model

import "image/color"

// CounterBinding はアクションに表示する数値の種類。
type CounterBinding string

const (
	CounterNone   CounterBinding = "none"
	CounterLikes  CounterBinding = "likes"
	CounterShares CounterBinding = "shares"
	CounterStatic CounterBinding = "static"
)

// ActionLayout はアクションバーの並べ方。
type ActionLayout string

const (
	// LayoutRow はアクションを横一列に等間隔で並べる。
	LayoutRow ActionLayout = "row"
	// LayoutRowSplit は先頭グループを左寄せ、Trailingのアクションを右寄せにする。
	LayoutRowSplit ActionLayout = "row-split"
	// LayoutBorderedRow は上下に罫線のある横一列。
	LayoutBorderedRow ActionLayout = "bordered-row"
	// LayoutColumn はアクションを右端に縦積みする。
	LayoutColumn ActionLayout = "column"
	// LayoutVoteRow は投票ボタンとスコアを先頭に置く横一列。
	LayoutVoteRow ActionLayout = "vote-row"
)

// Action はアクションバーの1要素。
type Action struct {
	Icon        string
	Label       string
	Counter     CounterBinding
	StaticValue string
	Trailing    bool
}

// PlatformTheme はプラットフォームごとの固定スタイル定義。
type PlatformTheme struct {
	Platform            Platform
	DisplayName         string
	BrandColor          color.RGBA
	Surface             color.RGBA
	Text                color.RGBA
	Muted               color.RGBA
	Border              color.RGBA
	Dark                bool
	CardBordered        bool // カード外周に枠線を引く
	Bordered            bool // アクションバーの上に罫線を引く
	ImageBordered       bool // 投稿画像を枠線付きで表示する
	ContentPlaceholder  string
	UsernamePlaceholder string
	Layout              ActionLayout
	Actions             []Action
	// LikesSummary が空でない場合、アクションバーの下に「{likes} likes」形式の行を表示する。
	LikesSummary string
}
