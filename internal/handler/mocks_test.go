package handler

import (
	"context"

	"github.com/hitoshi/postmock/internal/export"
	"github.com/hitoshi/postmock/internal/intake"
	"github.com/hitoshi/postmock/internal/model"
	"github.com/hitoshi/postmock/internal/theme"
)

// --- モック定義 ---

// mockDraftService はDraftServiceInterfaceのモック実装。
type mockDraftService struct {
	viewFn       func() model.PostView
	updateFn     func(patch model.DraftPatch) (model.PostView, error)
	setImageFn   func(ctx context.Context, slot model.ImageSlot, f intake.File) (model.PostView, error)
	clearImageFn func(slot model.ImageSlot) (model.PostView, error)
	exportFn     func(ctx context.Context) (*export.Artifact, error)
}

func (m *mockDraftService) View() model.PostView {
	if m.viewFn != nil {
		return m.viewFn()
	}
	return sampleView(model.PlatformTwitter)
}

func (m *mockDraftService) Update(patch model.DraftPatch) (model.PostView, error) {
	if m.updateFn != nil {
		return m.updateFn(patch)
	}
	return sampleView(model.PlatformTwitter), nil
}

func (m *mockDraftService) SetImage(ctx context.Context, slot model.ImageSlot, f intake.File) (model.PostView, error) {
	if m.setImageFn != nil {
		return m.setImageFn(ctx, slot, f)
	}
	return sampleView(model.PlatformTwitter), nil
}

func (m *mockDraftService) ClearImage(slot model.ImageSlot) (model.PostView, error) {
	if m.clearImageFn != nil {
		return m.clearImageFn(slot)
	}
	return sampleView(model.PlatformTwitter), nil
}

func (m *mockDraftService) Export(ctx context.Context) (*export.Artifact, error) {
	if m.exportFn != nil {
		return m.exportFn(ctx)
	}
	return nil, nil
}

// mockSubscriptionService はSubscriptionServiceInterfaceのモック実装。
type mockSubscriptionService struct {
	subscribeFn func(ctx context.Context, email string) (model.SubscriptionState, error)
	stateFn     func() model.SubscriptionState
}

func (m *mockSubscriptionService) Subscribe(ctx context.Context, email string) (model.SubscriptionState, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, email)
	}
	return model.SubscriptionState{Status: model.SubscriptionSuccess}, nil
}

func (m *mockSubscriptionService) State() model.SubscriptionState {
	if m.stateFn != nil {
		return m.stateFn()
	}
	return model.SubscriptionState{Status: model.SubscriptionIdle}
}

// sampleView はテスト用のプレビューを返す。
func sampleView(p model.Platform) model.PostView {
	return model.PostView{
		Platform:      p,
		Theme:         theme.ThemeOf(p),
		Username:      model.DefaultUsername,
		Timestamp:     "Just now",
		ProfileSource: model.ProfileSourcePlaceholder,
		ProfileImage:  &model.Image{MIME: "image/png", Data: []byte("abc"), Width: 1, Height: 1},
		Likes:         1234,
		Shares:        56,
		Actions: []model.ActionView{
			{Icon: "heart", Value: "1234"},
		},
	}
}
