package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/postmock/internal/model"
)

// DefaultReadyTimeout は画像読み込みの完了を待つ既定の上限時間。
const DefaultReadyTimeout = 3 * time.Second

// Observer は書き出し結果の通知先。メトリクス収集に使用する。
type Observer interface {
	ObserveExport(platform string, success bool, duration time.Duration)
}

// Artifact は書き出したPNG画像。
type Artifact struct {
	Filename   string
	Platform   model.Platform
	Data       []byte
	Width      int
	Height     int
	CapturedAt time.Time
	// ImagesReady は全ての画像読み込みが完了した状態で撮影したかどうか。
	ImagesReady bool
}

// ContentType はArtifactのMIMEタイプを返す。
func (a *Artifact) ContentType() string {
	return "image/png"
}

// Option はPipelineの設定を変更する。
type Option func(*Pipeline)

// WithClock はファイル名に使う時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithReadyTimeout は画像読み込みの待ち合わせ上限を設定する。
func WithReadyTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.readyTimeout = d }
}

// WithObserver は書き出し結果の通知先を設定する。
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// Pipeline は表示中の投稿を待ち合わせ、描画、エンコードしてArtifactを生成する。
// 複数の書き出しを同時に実行でき、それぞれ異なるファイル名が割り当てられる。
type Pipeline struct {
	barrier      *Barrier
	raster       *Rasterizer
	readyTimeout time.Duration
	now          func() time.Time
	observer     Observer

	mu        sync.Mutex
	lastStamp int64
}

// NewPipeline はPipelineの新しいインスタンスを生成する。
func NewPipeline(barrier *Barrier, raster *Rasterizer, opts ...Option) *Pipeline {
	if barrier == nil {
		barrier = NewBarrier()
	}
	if raster == nil {
		raster = NewRasterizer(DefaultScale)
	}
	p := &Pipeline{
		barrier:      barrier,
		raster:       raster,
		readyTimeout: DefaultReadyTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Export は画像読み込みの完了を待ってからsnapshotで表示状態を取得し、PNGに変換する。
// snapshotは撮影の瞬間に1回だけ呼び出される。
// 失敗した場合はEXPORT_FAILEDを返し、Artifactは生成しない。
func (p *Pipeline) Export(ctx context.Context, snapshot func() model.PostView) (*Artifact, error) {
	started := time.Now()

	ready, err := p.barrier.Wait(ctx, p.readyTimeout)
	if err != nil {
		p.observe("", false, started)
		return nil, model.NewExportFailedError(fmt.Sprintf("待機中に中断されました: %v", err))
	}
	if !ready {
		slog.Warn("画像の読み込み完了前に書き出します",
			"pending", p.barrier.Pending(),
			"timeout", p.readyTimeout,
		)
	}

	view := snapshot()
	capturedAt := p.now()
	platform := string(view.Platform)

	img, err := p.raster.Rasterize(view)
	if err != nil {
		slog.Error("投稿画像の描画に失敗しました", "platform", platform, "error", err)
		p.observe(platform, false, started)
		return nil, model.NewExportFailedError(err.Error())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Error("PNGエンコードに失敗しました", "platform", platform, "error", err)
		p.observe(platform, false, started)
		return nil, model.NewExportFailedError(err.Error())
	}

	b := img.Bounds()
	artifact := &Artifact{
		Filename:    Filename(view.Platform, p.nextStamp(capturedAt)),
		Platform:    view.Platform,
		Data:        buf.Bytes(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		CapturedAt:  capturedAt,
		ImagesReady: ready,
	}
	p.observe(platform, true, started)
	slog.Info("投稿画像を書き出しました",
		"filename", artifact.Filename,
		"width", artifact.Width,
		"height", artifact.Height,
		"bytes", len(artifact.Data),
	)
	return artifact, nil
}

// Filename は書き出しファイル名 "{platform}-post-{unixMillis}.png" を返す。
func Filename(platform model.Platform, unixMillis int64) string {
	return fmt.Sprintf("%s-post-%d.png", platform, unixMillis)
}

// nextStamp はプロセス内で単調増加するミリ秒タイムスタンプを返す。
// 同一ミリ秒内の書き出しでもファイル名が重複しない。
func (p *Pipeline) nextStamp(t time.Time) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	stamp := t.UnixMilli()
	if stamp <= p.lastStamp {
		stamp = p.lastStamp + 1
	}
	p.lastStamp = stamp
	return stamp
}

func (p *Pipeline) observe(platform string, success bool, started time.Time) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveExport(platform, success, time.Since(started))
}
