// Package studio は編集中の投稿下書きを保持し、画像の取り込み、
// プレビューの再計算、書き出しを仲介する。
//
// 下書きはプロセスに1つだけ存在する。HTTPハンドラーから並行に
// 呼び出されるため、状態はミューテックスで保護する。
package studio

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/postmock/internal/export"
	"github.com/hitoshi/postmock/internal/intake"
	"github.com/hitoshi/postmock/internal/model"
	"github.com/hitoshi/postmock/internal/preview"
	"github.com/hitoshi/postmock/internal/theme"
)

// ImageLoader は画像取り込みのインターフェース。
type ImageLoader interface {
	LoadFromFile(ctx context.Context, f intake.File) (*model.Image, error)
	LoadFromURL(ctx context.Context, rawURL string) (*model.Image, error)
}

// Exporter は表示状態をPNGに書き出すインターフェース。
type Exporter interface {
	Export(ctx context.Context, snapshot func() model.PostView) (*export.Artifact, error)
}

// Saver は書き出した画像を保存するインターフェース。
type Saver interface {
	Save(a *export.Artifact) (string, error)
}

// IntakeObserver は画像取り込み結果の通知先。
type IntakeObserver interface {
	ObserveIntake(source string, err error)
}

// Option はSessionの設定を変更する。
type Option func(*Session)

// WithSaver は書き出し画像の保存先を設定する。
func WithSaver(s Saver) Option {
	return func(sess *Session) { sess.saver = s }
}

// WithHiddenPlatforms は非公開プラットフォームの選択を許可するかを設定する。
func WithHiddenPlatforms(allow bool) Option {
	return func(sess *Session) { sess.allowHidden = allow }
}

// WithIntakeObserver は画像取り込み結果の通知先を設定する。
func WithIntakeObserver(o IntakeObserver) Option {
	return func(sess *Session) { sess.observer = o }
}

// Session は1つの投稿下書きと、その表示に使うデフォルト画像を保持する。
type Session struct {
	mu             sync.RWMutex
	draft          model.PostDraft
	defaultProfile *model.Image

	loader      ImageLoader
	renderer    *preview.Renderer
	exporter    Exporter
	barrier     *export.Barrier
	saver       Saver
	observer    IntakeObserver
	allowHidden bool
}

// NewSession はSessionの新しいインスタンスを生成する。
func NewSession(loader ImageLoader, renderer *preview.Renderer, exporter Exporter, barrier *export.Barrier, opts ...Option) *Session {
	if barrier == nil {
		barrier = export.NewBarrier()
	}
	if renderer == nil {
		renderer = preview.NewRenderer()
	}
	s := &Session{
		draft:    model.NewPostDraft(),
		loader:   loader,
		renderer: renderer,
		exporter: exporter,
		barrier:  barrier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft は現在の下書きのコピーを返す。
func (s *Session) Draft() model.PostDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// View は現在の下書きから表示用の投稿を合成する。
func (s *Session) View() model.PostView {
	s.mu.RLock()
	draft := s.draft
	fallback := preview.Fallback{DefaultProfile: s.defaultProfile}
	s.mu.RUnlock()
	return s.renderer.Render(draft, fallback)
}

// Update は下書きのプラットフォーム、ユーザー名、本文を更新する。
// 非公開プラットフォームは許可されていない限りPLATFORM_HIDDENを返す。
// 長さの上限を超える場合はTEXT_TOO_LONGを返し、下書きは変更しない。
func (s *Session) Update(patch model.DraftPatch) (model.PostView, error) {
	if patch.Platform != nil {
		p := *patch.Platform
		if !p.Valid() {
			return model.PostView{}, model.NewInvalidPlatformError(string(p))
		}
		if theme.IsHidden(p) && !s.allowHidden {
			return model.PostView{}, model.NewPlatformHiddenError(p)
		}
	}

	s.mu.Lock()
	next := s.draft
	if patch.Platform != nil {
		next.Platform = *patch.Platform
	}
	if patch.Username != nil {
		next.Username = *patch.Username
	}
	if patch.Content != nil {
		next.Content = *patch.Content
	}
	if err := model.ValidateText(next.Username, next.Content); err != nil {
		s.mu.Unlock()
		return model.PostView{}, err
	}
	s.draft = next
	s.mu.Unlock()

	return s.View(), nil
}

// SetImage はアップロードされた画像を取り込み、指定スロットに設定する。
// 取り込みに失敗した場合、既存の画像はそのまま残る。
func (s *Session) SetImage(ctx context.Context, slot model.ImageSlot, f intake.File) (model.PostView, error) {
	if _, err := model.ParseImageSlot(string(slot)); err != nil {
		return model.PostView{}, err
	}

	done := s.barrier.Track()
	img, err := s.loader.LoadFromFile(ctx, f)
	done()
	s.observe("upload", err)
	if err != nil {
		slog.Warn("画像の取り込みに失敗しました", "slot", slot, "name", f.Name, "error", err)
		return model.PostView{}, err
	}

	s.mu.Lock()
	if slot == model.ImageSlotPost {
		s.draft.PostImage = img
	} else {
		s.draft.ProfileImage = img
	}
	s.mu.Unlock()

	return s.View(), nil
}

// ClearImage は指定スロットの画像を取り除く。
func (s *Session) ClearImage(slot model.ImageSlot) (model.PostView, error) {
	s.mu.Lock()
	switch slot {
	case model.ImageSlotPost:
		s.draft.PostImage = nil
	case model.ImageSlotProfile:
		s.draft.ProfileImage = nil
	default:
		s.mu.Unlock()
		return model.PostView{}, model.NewInvalidImageSlotError(string(slot))
	}
	s.mu.Unlock()

	return s.View(), nil
}

// Export は現在の表示をPNGとして書き出す。下書きは変更しない。
// 保存先が設定されている場合はファイルにも保存する。保存の失敗は書き出しを失敗させない。
func (s *Session) Export(ctx context.Context) (*export.Artifact, error) {
	artifact, err := s.exporter.Export(ctx, s.View)
	if err != nil {
		return nil, err
	}
	if s.saver != nil {
		path, err := s.saver.Save(artifact)
		if err != nil {
			slog.Warn("書き出し画像の保存に失敗しました", "filename", artifact.Filename, "error", err)
		} else {
			slog.Info("書き出し画像を保存しました", "path", path)
		}
	}
	return artifact, nil
}

// LoadDefaultProfile はデフォルトのプロフィール画像を非同期に取得する。
// 取得中は書き出しの待ち合わせ対象になる。失敗はログに記録し、
// プレースホルダー画像での表示を続ける。
func (s *Session) LoadDefaultProfile(ctx context.Context, rawURL string) {
	if rawURL == "" {
		return
	}
	done := s.barrier.Track()
	go func() {
		defer done()
		img, err := s.loader.LoadFromURL(ctx, rawURL)
		s.observe("default_avatar", err)
		if err != nil {
			slog.Warn("デフォルトのプロフィール画像を取得できませんでした", "url", rawURL, "error", err)
			return
		}
		s.mu.Lock()
		s.defaultProfile = img
		s.mu.Unlock()
		slog.Info("デフォルトのプロフィール画像を取得しました", "url", rawURL, "width", img.Width, "height", img.Height)
	}()
}

// HasDefaultProfile はデフォルトのプロフィール画像を取得済みかを返す。
func (s *Session) HasDefaultProfile() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultProfile != nil
}

func (s *Session) observe(source string, err error) {
	if s.observer != nil {
		s.observer.ObserveIntake(source, err)
	}
}
