// Package intake はユーザーが選択した画像やリモート画像を取り込み、
// 描画に使える自己完結した画像データに変換する。
package intake

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIFデコーダを登録
	_ "image/jpeg" // JPEGデコーダを登録
	_ "image/png"  // PNGデコーダを登録
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"  // BMPデコーダを登録
	_ "golang.org/x/image/webp" // WebPデコーダを登録

	"github.com/hitoshi/postmock/internal/model"
	"github.com/hitoshi/postmock/internal/security"
)

// DefaultMaxSize は取り込み可能な画像の最大サイズ（5MB）。
const DefaultMaxSize int64 = 5 * 1024 * 1024

// maxImagePixels は画像爆弾対策の画素数上限。
const maxImagePixels = 100_000_000

// defaultFetchTimeout はリモート画像取得のタイムアウト。
const defaultFetchTimeout = 10 * time.Second

// userAgent はリモート画像取得時に送信するUser-Agent。
const userAgent = "Postmock/1.0 Image Fetcher"

// File はアップロードされた画像ファイル。
type File struct {
	Name   string
	Size   int64 // 宣言サイズ。不明な場合は0以下
	Reader io.Reader
}

// SSRFValidator はリモート画像取得に必要なSSRF防止機能のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Loader は画像の取り込み処理を提供する。
// 状態を持たないため複数のgoroutineから同時に使用できる。
type Loader struct {
	maxSize      int64
	fetchTimeout time.Duration
	ssrfGuard    SSRFValidator
}

// NewLoader はLoaderの新しいインスタンスを生成する。
// maxSizeが0以下の場合はDefaultMaxSizeを使用する。
func NewLoader(maxSize int64, fetchTimeout time.Duration, ssrfGuard SSRFValidator) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Loader{
		maxSize:      maxSize,
		fetchTimeout: fetchTimeout,
		ssrfGuard:    ssrfGuard,
	}
}

// LoadFromFile はアップロードされたファイルを取り込む。
// サイズ超過はIMAGE_TOO_LARGE、画像として読めない場合はIMAGE_DECODE_FAILEDを返す。
func (l *Loader) LoadFromFile(ctx context.Context, f File) (*model.Image, error) {
	if f.Size > l.maxSize {
		return nil, model.NewImageTooLargeError(l.maxSize)
	}
	if f.Reader == nil {
		return nil, model.NewImageDecodeError("ファイルが空です")
	}

	// 宣言サイズは信用せず、上限+1バイトまで読んで超過を検出する
	data, err := io.ReadAll(io.LimitReader(f.Reader, l.maxSize+1))
	if err != nil {
		slog.Warn("アップロード画像の読み取りに失敗しました", "name", f.Name, "error", err)
		return nil, model.NewImageDecodeError(fmt.Sprintf("ファイルを読み取れませんでした: %v", err))
	}
	if int64(len(data)) > l.maxSize {
		return nil, model.NewImageTooLargeError(l.maxSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return l.LoadBytes(data)
}

// LoadBytes はエンコード済みの画像バイト列を取り込む。
// バイト列からMIMEタイプを判定し、data URIに変換したうえで
// 実際にデコードできることを確認してから返す。
func (l *Loader) LoadBytes(data []byte) (*model.Image, error) {
	if len(data) == 0 {
		return nil, model.NewImageDecodeError("ファイルが空です")
	}
	if int64(len(data)) > l.maxSize {
		return nil, model.NewImageTooLargeError(l.maxSize)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, model.NewImageDecodeError(fmt.Sprintf("画像ではありません (%s)", mimeType))
	}

	candidate := &model.Image{MIME: mimeType, Data: data}
	cfg, err := DecodeDataURI(candidate.DataURI())
	if err != nil {
		return nil, model.NewImageDecodeError(err.Error())
	}
	candidate.Width = cfg.Width
	candidate.Height = cfg.Height
	return candidate, nil
}

// LoadFromURL はリモートURLの画像を取得して取り込む。
// SSRF検証、2xx以外のステータス、画像以外のContent-Typeは
// IMAGE_FETCH_FAILEDとして扱う。
func (l *Loader) LoadFromURL(ctx context.Context, rawURL string) (*model.Image, error) {
	if rawURL == "" {
		return nil, model.NewImageFetchError("URLが指定されていません")
	}
	if l.ssrfGuard != nil {
		if err := l.ssrfGuard.ValidateURL(rawURL); err != nil {
			slog.Warn("画像取得: SSRFブロック", "url", rawURL, "error", err)
			return nil, model.NewImageFetchError("許可されていないURLです")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, model.NewImageFetchError(fmt.Sprintf("リクエスト作成失敗: %v", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := l.httpClient().Do(req)
	if err != nil {
		if security.IsResponseTooLarge(err) {
			return nil, model.NewImageTooLargeError(l.maxSize)
		}
		return nil, model.NewImageFetchError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, model.NewImageFetchError(fmt.Sprintf("HTTPステータス %d", resp.StatusCode))
	}
	if resp.ContentLength > l.maxSize {
		return nil, model.NewImageTooLargeError(l.maxSize)
	}

	contentType := extractMimeType(resp.Header.Get("Content-Type"))
	if contentType != "" && !strings.HasPrefix(contentType, "image/") && contentType != "application/octet-stream" {
		return nil, model.NewImageFetchError(fmt.Sprintf("画像以外のContent-Type: %s", contentType))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxSize+1))
	if err != nil {
		if security.IsResponseTooLarge(err) {
			return nil, model.NewImageTooLargeError(l.maxSize)
		}
		return nil, model.NewImageFetchError(fmt.Sprintf("レスポンス読み取り失敗: %v", err))
	}
	if int64(len(body)) > l.maxSize {
		return nil, model.NewImageTooLargeError(l.maxSize)
	}

	return l.LoadBytes(body)
}

// httpClient はリモート画像取得用のHTTPクライアントを返す。
func (l *Loader) httpClient() *http.Client {
	if l.ssrfGuard != nil {
		return l.ssrfGuard.NewSafeClient(l.fetchTimeout, l.maxSize+1)
	}
	return &http.Client{Timeout: l.fetchTimeout}
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// decodeChecked は画素数を確認してから画像全体をデコードする。
func decodeChecked(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
