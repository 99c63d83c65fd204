package model

import "strings"

// Platform は投稿のスタイルを決めるSNSプラットフォームの識別子。
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
	PlatformReddit    Platform = "reddit"
	// PlatformTikTok はスタイル定義のみ存在し、選択UIには通常表示しない。
	PlatformTikTok Platform = "tiktok"
)

// AllPlatforms は定義済みの全プラットフォームを選択UIの表示順で返す。
func AllPlatforms() []Platform {
	return []Platform{
		PlatformTwitter,
		PlatformInstagram,
		PlatformFacebook,
		PlatformLinkedIn,
		PlatformYouTube,
		PlatformReddit,
		PlatformTikTok,
	}
}

// ParsePlatform は文字列をPlatformに変換する。大文字小文字は区別しない。
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", NewInvalidPlatformError(s)
	}
	return p, nil
}

// Valid は定義済みのプラットフォームかどうかを返す。
func (p Platform) Valid() bool {
	for _, known := range AllPlatforms() {
		if p == known {
			return true
		}
	}
	return false
}
