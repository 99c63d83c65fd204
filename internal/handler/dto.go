package handler

import (
	"fmt"
	"image/color"

	"github.com/hitoshi/postmock/internal/model"
)

// platformResponse はプラットフォーム選択肢のAPIレスポンス。
type platformResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	BrandColor  string `json:"brand_color"`
}

// actionResponse はアクションバー要素のAPIレスポンス。
type actionResponse struct {
	Icon     string `json:"icon"`
	Label    string `json:"label,omitempty"`
	Value    string `json:"value,omitempty"`
	Counter  string `json:"counter,omitempty"`
	Trailing bool   `json:"trailing,omitempty"`
}

// themeResponse はスタイル定義のAPIレスポンス。
type themeResponse struct {
	Platform            string           `json:"platform"`
	DisplayName         string           `json:"display_name"`
	BrandColor          string           `json:"brand_color"`
	Surface             string           `json:"surface"`
	Text                string           `json:"text"`
	Muted               string           `json:"muted"`
	Border              string           `json:"border"`
	Dark                bool             `json:"dark"`
	CardBordered        bool             `json:"card_bordered"`
	ActionsBordered     bool             `json:"actions_bordered"`
	ImageBordered       bool             `json:"image_bordered"`
	ContentPlaceholder  string           `json:"content_placeholder"`
	UsernamePlaceholder string           `json:"username_placeholder"`
	Layout              string           `json:"layout"`
	Actions             []actionResponse `json:"actions"`
	LikesSummary        string           `json:"likes_summary,omitempty"`
}

// imageResponse は画像のAPIレスポンス。srcはdata URI。
type imageResponse struct {
	Src    string `json:"src"`
	MIME   string `json:"mime"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
}

// postViewResponse はプレビューのAPIレスポンス。
type postViewResponse struct {
	Platform      string           `json:"platform"`
	Theme         themeResponse    `json:"theme"`
	Username      string           `json:"username"`
	Content       string           `json:"content"`
	Timestamp     string           `json:"timestamp"`
	ProfileImage  *imageResponse   `json:"profile_image,omitempty"`
	ProfileSource string           `json:"profile_source"`
	PostImage     *imageResponse   `json:"post_image,omitempty"`
	Likes         int              `json:"likes"`
	Shares        int              `json:"shares"`
	Actions       []actionResponse `json:"actions"`
	LikesSummary  string           `json:"likes_summary,omitempty"`
}

// draftPatchRequest はPATCH /api/draftのリクエストボディ。
type draftPatchRequest struct {
	Platform *string `json:"platform"`
	Username *string `json:"username"`
	Content  *string `json:"content"`
}

// subscribeRequest はPOST /api/subscriptionsのリクエストボディ。
type subscribeRequest struct {
	Email string `json:"email"`
}

// subscriptionStateResponse は登録フォーム状態のAPIレスポンス。
type subscriptionStateResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	Email          string `json:"email"`
	SubmitDisabled bool   `json:"submit_disabled"`
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func toPlatformResponse(t model.PlatformTheme) platformResponse {
	return platformResponse{
		ID:          string(t.Platform),
		DisplayName: t.DisplayName,
		BrandColor:  hexColor(t.BrandColor),
	}
}

func toThemeResponse(t model.PlatformTheme) themeResponse {
	actions := make([]actionResponse, len(t.Actions))
	for i, a := range t.Actions {
		actions[i] = actionResponse{
			Icon:     a.Icon,
			Label:    a.Label,
			Value:    a.StaticValue,
			Counter:  string(a.Counter),
			Trailing: a.Trailing,
		}
	}
	return themeResponse{
		Platform:            string(t.Platform),
		DisplayName:         t.DisplayName,
		BrandColor:          hexColor(t.BrandColor),
		Surface:             hexColor(t.Surface),
		Text:                hexColor(t.Text),
		Muted:               hexColor(t.Muted),
		Border:              hexColor(t.Border),
		Dark:                t.Dark,
		CardBordered:        t.CardBordered,
		ActionsBordered:     t.Bordered,
		ImageBordered:       t.ImageBordered,
		ContentPlaceholder:  t.ContentPlaceholder,
		UsernamePlaceholder: t.UsernamePlaceholder,
		Layout:              string(t.Layout),
		Actions:             actions,
		LikesSummary:        t.LikesSummary,
	}
}

func toImageResponse(img *model.Image) *imageResponse {
	if img == nil {
		return nil
	}
	return &imageResponse{
		Src:    img.DataURI(),
		MIME:   img.MIME,
		Width:  img.Width,
		Height: img.Height,
		Bytes:  img.Size(),
	}
}

func toPostViewResponse(v model.PostView) postViewResponse {
	actions := make([]actionResponse, len(v.Actions))
	for i, a := range v.Actions {
		actions[i] = actionResponse{
			Icon:     a.Icon,
			Label:    a.Label,
			Value:    a.Value,
			Trailing: a.Trailing,
		}
	}
	return postViewResponse{
		Platform:      string(v.Platform),
		Theme:         toThemeResponse(v.Theme),
		Username:      v.Username,
		Content:       v.Content,
		Timestamp:     v.Timestamp,
		ProfileImage:  toImageResponse(v.ProfileImage),
		ProfileSource: string(v.ProfileSource),
		PostImage:     toImageResponse(v.PostImage),
		Likes:         v.Likes,
		Shares:        v.Shares,
		Actions:       actions,
		LikesSummary:  v.LikesSummary,
	}
}

func toSubscriptionStateResponse(s model.SubscriptionState) subscriptionStateResponse {
	return subscriptionStateResponse{
		Status:         string(s.Status),
		Message:        s.Message,
		Email:          s.Email,
		SubmitDisabled: s.SubmitDisabled(),
	}
}
