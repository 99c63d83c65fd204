package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultUsername は新規下書きのユーザー名。
const DefaultUsername = "@username"

// ImageSlot は下書き内の画像の格納先。
type ImageSlot string

const (
	ImageSlotPost    ImageSlot = "post"
	ImageSlotProfile ImageSlot = "profile"
)

// ParseImageSlot は文字列をImageSlotに変換する。
func ParseImageSlot(s string) (ImageSlot, error) {
	switch ImageSlot(s) {
	case ImageSlotPost, ImageSlotProfile:
		return ImageSlot(s), nil
	default:
		return "", NewInvalidImageSlotError(s)
	}
}

// PostDraft は作成中の投稿を表す。永続化はしない。
type PostDraft struct {
	Platform     Platform
	Username     string
	Content      string
	PostImage    *Image
	ProfileImage *Image
}

// NewPostDraft は初期値の下書きを生成する。
func NewPostDraft() PostDraft {
	return PostDraft{
		Platform: PlatformTwitter,
		Username: DefaultUsername,
	}
}

// 入力テキストの上限。書き出し画像の高さが本文の行数に比例するため、行数も制限する。
const (
	MaxUsernameLength = 64
	MaxContentLength  = 5000
	MaxContentLines   = 200
)

// ValidateText はユーザー名と本文の長さを検証する。
// 文字数はルーン単位で数える。
func ValidateText(username, content string) error {
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return NewTextTooLongError("ユーザー名", fmt.Sprintf("%d文字", MaxUsernameLength))
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return NewTextTooLongError("本文", fmt.Sprintf("%d文字", MaxContentLength))
	}
	if strings.Count(NormalizeNewlines(content), "\n")+1 > MaxContentLines {
		return NewTextTooLongError("本文", fmt.Sprintf("%d行", MaxContentLines))
	}
	return nil
}

// NormalizeNewlines はCRLFと単独のCRをLFに揃える。
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// DraftPatch は下書きの部分更新。nilのフィールドは変更しない。
type DraftPatch struct {
	Platform *Platform
	Username *string
	Content  *string
}
