package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/hitoshi/postmock/internal/model"
	"github.com/hitoshi/postmock/internal/preview"
)

// testPNG は指定サイズ・色のPNG画像を生成する。
func testPNG(t *testing.T, w, h int, c color.RGBA) *model.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &model.Image{MIME: "image/png", Data: buf.Bytes(), Width: w, Height: h}
}

func renderView(draft model.PostDraft) model.PostView {
	return preview.NewRenderer().Render(draft, preview.Fallback{})
}

// TestRasterize_WidthAndOpaqueBackground は2倍密度の幅と不透明な白背景を検証する。
func TestRasterize_WidthAndOpaqueBackground(t *testing.T) {
	r := NewRasterizer(2)
	img, err := r.Rasterize(renderView(model.NewPostDraft()))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	if img.Bounds().Dx() != 1200 {
		t.Errorf("expected width 1200, got %d", img.Bounds().Dx())
	}

	// 角丸の外側はページ背景の白
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("expected white page corner, got %v", got)
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0xFF {
				t.Fatalf("expected fully opaque image, pixel (%d,%d) has alpha %d", x, y, img.RGBAAt(x, y).A)
			}
		}
	}
}

// TestRasterize_DarkSurface はtwitterのカード面が黒で描画されることを検証する。
func TestRasterize_DarkSurface(t *testing.T) {
	img, err := NewRasterizer(2).Rasterize(renderView(model.NewPostDraft()))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	// 左の余白部分（論理5px）はカード面
	got := img.RGBAAt(10, img.Bounds().Dy()/2)
	if got.R > 0x10 || got.G > 0x10 || got.B > 0x10 {
		t.Errorf("expected dark surface, got %v", got)
	}
}

func TestRasterize_ScaleOne(t *testing.T) {
	img, err := NewRasterizer(1).Rasterize(renderView(model.NewPostDraft()))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	if img.Bounds().Dx() != 600 {
		t.Errorf("expected width 600, got %d", img.Bounds().Dx())
	}
}

// TestRasterize_AllPlatforms は全プラットフォームで描画できることを検証する。
func TestRasterize_AllPlatforms(t *testing.T) {
	r := NewRasterizer(1)
	for _, p := range model.AllPlatforms() {
		t.Run(string(p), func(t *testing.T) {
			draft := model.PostDraft{
				Platform:     p,
				Username:     "alice",
				Content:      "Launch day!\nSee you there.",
				ProfileImage: testPNG(t, 40, 30, color.RGBA{0xFF, 0, 0, 0xFF}),
				PostImage:    testPNG(t, 80, 40, color.RGBA{0, 0x80, 0, 0xFF}),
			}
			img, err := r.Rasterize(renderView(draft))
			if err != nil {
				t.Fatalf("Rasterize returned error: %v", err)
			}
			if img.Bounds().Dx() != 600 {
				t.Errorf("expected width 600, got %d", img.Bounds().Dx())
			}
		})
	}
}

// TestRasterize_PostImageAddsHeight は投稿画像の有無で高さが変わることを検証する。
func TestRasterize_PostImageAddsHeight(t *testing.T) {
	r := NewRasterizer(1)
	draft := model.NewPostDraft()
	without, err := r.Rasterize(renderView(draft))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}

	draft.PostImage = testPNG(t, 100, 50, color.RGBA{0, 0, 0xFF, 0xFF})
	with, err := r.Rasterize(renderView(draft))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	// 幅568に拡大して高さ284
	if diff := with.Bounds().Dy() - without.Bounds().Dy(); diff != 284 {
		t.Errorf("expected image to add 284px, got %d", diff)
	}
}

// TestRasterize_TallImageIsCapped は極端に縦長の画像の高さが制限されることを検証する。
func TestRasterize_TallImageIsCapped(t *testing.T) {
	r := NewRasterizer(1)
	draft := model.NewPostDraft()
	base, err := r.Rasterize(renderView(draft))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	draft.PostImage = testPNG(t, 10, 1000, color.RGBA{0, 0, 0xFF, 0xFF})
	tall, err := r.Rasterize(renderView(draft))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	if diff := tall.Bounds().Dy() - base.Bounds().Dy(); diff != innerWidth*maxImageAspect {
		t.Errorf("expected capped image height %d, got %d", innerWidth*maxImageAspect, diff)
	}
}

func TestRasterize_ContentWrapping(t *testing.T) {
	r := NewRasterizer(1)
	short, err := r.Rasterize(renderView(model.PostDraft{Platform: model.PlatformFacebook, Username: "u", Content: "hi"}))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	long, err := r.Rasterize(renderView(model.PostDraft{Platform: model.PlatformFacebook, Username: "u", Content: strings.Repeat("word ", 200)}))
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	if long.Bounds().Dy() <= short.Bounds().Dy()+contentLine {
		t.Errorf("expected long content to wrap onto several lines: %d vs %d", long.Bounds().Dy(), short.Bounds().Dy())
	}
}

// TestRasterize_RejectsOversizedCanvas は描画面が上限を超える場合に確保せずエラーを返すことを検証する。
func TestRasterize_RejectsOversizedCanvas(t *testing.T) {
	view := renderView(model.PostDraft{Platform: model.PlatformTwitter, Username: "u", Content: strings.Repeat("\n", 32000)})
	img, err := NewRasterizer(2).Rasterize(view)
	if err == nil {
		t.Fatalf("expected error, got %dx%d image", img.Bounds().Dx(), img.Bounds().Dy())
	}
	if !strings.Contains(err.Error(), "too tall") {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestRasterize_MaxContentFitsAtMaxScale は入力上限いっぱいの本文が最大倍率でも書き出せることを検証する。
func TestRasterize_MaxContentFitsAtMaxScale(t *testing.T) {
	r := NewRasterizer(4)
	faces, err := newFaceSet(r.scale)
	if err != nil {
		t.Fatalf("newFaceSet: %v", err)
	}
	defer faces.Close()

	draft := model.PostDraft{Platform: model.PlatformTwitter, Username: "u", Content: strings.Repeat("\n", model.MaxContentLines-1)}
	draft.PostImage = testPNG(t, 10, 100, color.RGBA{A: 0xFF})
	lay, err := r.layout(renderView(draft), faces)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if px := (cardWidth * r.scale) * (lay.height * r.scale); px > maxDevicePixels {
		t.Errorf("max content needs %.0f device pixels, limit is %d", px, maxDevicePixels)
	}
}

func TestRasterize_UndecodableImage(t *testing.T) {
	draft := model.NewPostDraft()
	draft.PostImage = &model.Image{MIME: "image/png", Data: []byte("not a png")}
	if _, err := NewRasterizer(1).Rasterize(renderView(draft)); err == nil {
		t.Fatal("expected error for undecodable image")
	}
}

func TestWrapText(t *testing.T) {
	faces, err := newFaceSet(1)
	if err != nil {
		t.Fatalf("newFaceSet: %v", err)
	}
	defer faces.Close()
	c := &canvas{scale: 1}

	if lines := c.wrapText(faces.content, "", 100); len(lines) != 0 {
		t.Errorf("expected no lines for empty text, got %v", lines)
	}
	lines := c.wrapText(faces.content, "a\n\nb", 500)
	if len(lines) != 3 || lines[1] != "" {
		t.Errorf("expected blank line preserved, got %q", lines)
	}
	long := strings.Repeat("x", 300)
	for _, line := range c.wrapText(faces.content, long, 100) {
		if w := c.textWidth(faces.content, line); w > 100 {
			t.Errorf("line %q exceeds width: %.1f", line, w)
		}
	}
}
