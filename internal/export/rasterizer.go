package export

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/hitoshi/postmock/internal/intake"
	"github.com/hitoshi/postmock/internal/model"
)

// カードのレイアウト定数（論理px）
const (
	cardWidth    = 600
	cardPadding  = 16
	cardRadius   = 12
	innerWidth   = cardWidth - 2*cardPadding
	avatarSize   = 48
	avatarBorder = 2
	iconSize     = 20
	actionRow    = 24
	actionGap    = 16
	sectionGap   = 12
	actionsTop   = 16
	columnStep   = 52
	// maxImageAspect は投稿画像の高さ/幅の上限。これを超える画像は縮小して中央に配置する。
	maxImageAspect = 3
)

// maxDevicePixels は1回の書き出しで確保する画素数の上限（RGBAで384MiB）。
const maxDevicePixels = 96 << 20

// DefaultScale は書き出し時のデバイスピクセル比。
const DefaultScale = 2.0

var (
	pageBackground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	avatarRing     = color.RGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}
)

// Rasterizer はPostViewをRGBA画像に描画する。
// 状態を持たないため複数のgoroutineから同時に使用できる。
type Rasterizer struct {
	scale float64
}

// NewRasterizer はRasterizerの新しいインスタンスを生成する。
// scaleが0以下の場合はDefaultScaleを使用する。
func NewRasterizer(scale float64) *Rasterizer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Rasterizer{scale: scale}
}

// Scale はデバイスピクセル比を返す。
func (r *Rasterizer) Scale() float64 {
	return r.scale
}

// postLayout は1回の描画のために計算した配置情報。
type postLayout struct {
	lines        []string
	profile      image.Image
	post         image.Image
	postW, postH float64
	contentY     float64
	imageY       float64
	actionsY     float64
	height       float64
}

// Rasterize はPostViewを白背景の不透明な画像として描画する。
// 画像サイズは幅600論理pxにscaleを掛けたもの。
func (r *Rasterizer) Rasterize(view model.PostView) (*image.RGBA, error) {
	faces, err := newFaceSet(r.scale)
	if err != nil {
		return nil, err
	}
	defer faces.Close()

	lay, err := r.layout(view, faces)
	if err != nil {
		return nil, err
	}

	if px := math.Ceil(cardWidth*r.scale) * math.Ceil(lay.height*r.scale); px > maxDevicePixels {
		return nil, fmt.Errorf("card too tall: %.0f logical px exceeds the %d pixel limit", lay.height, maxDevicePixels)
	}

	c := newCanvas(cardWidth, lay.height, r.scale)
	c.fillRect(0, 0, cardWidth, lay.height, pageBackground)
	c.drawCard(view.Theme, lay.height)
	c.drawHeader(view, lay.profile, faces)
	for i, line := range lay.lines {
		c.text(faces.content, view.Theme.Text, cardPadding, lay.contentY+float64(i*contentLine)+20, line)
	}
	if lay.post != nil {
		c.drawPostImage(view.Theme, lay)
	}
	c.drawActions(view, faces, lay.actionsY)
	return c.img, nil
}

func (r *Rasterizer) layout(view model.PostView, faces *faceSet) (*postLayout, error) {
	lay := &postLayout{}
	measure := &canvas{scale: r.scale}

	if view.ProfileImage != nil {
		img, err := intake.Decode(view.ProfileImage)
		if err != nil {
			return nil, fmt.Errorf("decode profile image: %w", err)
		}
		lay.profile = img
	}

	y := float64(cardPadding + avatarSize + sectionGap)
	lay.contentY = y
	lay.lines = measure.wrapText(faces.content, view.Content, innerWidth)
	y += float64(len(lay.lines)*contentLine + sectionGap)

	if view.PostImage != nil {
		img, err := intake.Decode(view.PostImage)
		if err != nil {
			return nil, fmt.Errorf("decode post image: %w", err)
		}
		b := img.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			lay.post = img
			lay.postW = innerWidth
			lay.postH = math.Round(innerWidth * float64(b.Dy()) / float64(b.Dx()))
			if lay.postH > innerWidth*maxImageAspect {
				lay.postH = innerWidth * maxImageAspect
				lay.postW = math.Round(lay.postH * float64(b.Dx()) / float64(b.Dy()))
			}
			lay.imageY = y
			y += lay.postH
		}
	}

	lay.actionsY = y
	y += actionsHeight(view)
	lay.height = y + cardPadding
	return lay, nil
}

// actionsHeight はアクションバー全体の高さを返す。
func actionsHeight(view model.PostView) float64 {
	th := view.Theme
	h := float64(actionsTop)
	switch th.Layout {
	case model.LayoutBorderedRow:
		h += 1 + 4 + 36 + 4 + 1
	case model.LayoutColumn:
		h += float64(len(view.Actions)*columnStep - 8)
	case model.LayoutVoteRow:
		h += actionRow + 4
	default:
		if th.Bordered {
			h += 1 + sectionGap
		}
		h += actionRow
	}
	if view.LikesSummary != "" {
		h += 8 + 20
	}
	return h
}

// drawCard はプラットフォームの面を角丸で描画する。
func (c *canvas) drawCard(th model.PlatformTheme, height float64) {
	if th.CardBordered {
		c.fill(0, 0, cardWidth, height, th.Border, func(p *pathBuilder) {
			p.roundRect(0, 0, cardWidth, height, cardRadius)
		})
		c.fill(1, 1, cardWidth-2, height-2, th.Surface, func(p *pathBuilder) {
			p.roundRect(1, 1, cardWidth-2, height-2, cardRadius-1)
		})
		return
	}
	c.fill(0, 0, cardWidth, height, th.Surface, func(p *pathBuilder) {
		p.roundRect(0, 0, cardWidth, height, cardRadius)
	})
}

func (c *canvas) drawHeader(view model.PostView, profile image.Image, faces *faceSet) {
	th := view.Theme
	ax, ay := float64(cardPadding), float64(cardPadding)

	c.fill(ax, ay, avatarSize, avatarSize, avatarRing, func(p *pathBuilder) {
		p.circle(ax+avatarSize/2, ay+avatarSize/2, avatarSize/2)
	})
	if profile != nil {
		inner := float64(avatarSize - 2*avatarBorder)
		ix, iy := ax+avatarBorder, ay+avatarBorder
		r := c.rect(ix, iy, inner, inner)
		scaled := coverSquare(profile, r.Dx())
		m := c.mask(r, func(p *pathBuilder) {
			p.circle(ix+inner/2, iy+inner/2, inner/2)
		})
		c.drawMasked(r, scaled, m)
	}

	tx := ax + avatarSize + sectionGap
	maxName := float64(cardWidth-cardPadding-iconSize-8) - tx
	name := strings.ReplaceAll(view.Username, "\n", " ")
	c.text(faces.username, th.Text, tx, ay+19, c.truncate(faces.username, name, maxName))
	c.text(faces.timestamp, th.Muted, tx, ay+41, view.Timestamp)

	c.drawIcon("more-horizontal", cardWidth-cardPadding-iconSize, ay+(avatarSize-iconSize)/2, iconSize, th.Muted, th.Surface)
}

func (c *canvas) drawPostImage(th model.PlatformTheme, lay *postLayout) {
	x := cardPadding + (innerWidth-lay.postW)/2
	y := lay.imageY
	w, h := lay.postW, lay.postH
	if th.ImageBordered {
		c.fill(x, y, w, h, th.Border, func(p *pathBuilder) {
			p.roundRect(x, y, w, h, cardRadius)
		})
		x, y, w, h = x+1, y+1, w-2, h-2
	}
	r := c.rect(x, y, w, h)
	if r.Empty() {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), lay.post, lay.post.Bounds(), draw.Src, nil)
	m := c.mask(r, func(p *pathBuilder) {
		p.roundRect(x, y, w, h, cardRadius)
	})
	c.drawMasked(r, scaled, m)
}

// coverSquare は画像の中央を正方形に切り出し、一辺sizeに縮小する。
func coverSquare(src image.Image, size int) *image.RGBA {
	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	crop := image.Rect(0, 0, side, side).Add(image.Pt(
		b.Min.X+(b.Dx()-side)/2,
		b.Min.Y+(b.Dy()-side)/2,
	))
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

// actionText はアクションに添える文字列を返す。値があれば値、なければラベル。
func actionText(a model.ActionView) string {
	if a.Value != "" {
		return a.Value
	}
	return a.Label
}

func (c *canvas) actionWidth(face font.Face, a model.ActionView) float64 {
	w := float64(iconSize)
	if t := actionText(a); t != "" {
		w += 8 + c.textWidth(face, t)
	}
	return w
}

// drawAction は高さactionRowの行の(x, y)にアクションを描画する。
func (c *canvas) drawAction(face font.Face, a model.ActionView, x, y float64, fg, bg color.RGBA) {
	c.drawIcon(a.Icon, x, y+(actionRow-iconSize)/2, iconSize, fg, bg)
	if t := actionText(a); t != "" {
		c.text(face, fg, x+iconSize+8, y+17, t)
	}
}

func (c *canvas) drawActions(view model.PostView, faces *faceSet, top float64) {
	th := view.Theme
	fg, bg := th.Muted, th.Surface
	y := top + actionsTop
	face := faces.label

	switch th.Layout {
	case model.LayoutBorderedRow:
		c.fillRect(cardPadding, y, innerWidth, 1, th.Border)
		c.fillRect(cardPadding, y+45, innerWidth, 1, th.Border)
		cell := float64(innerWidth) / float64(len(view.Actions))
		rowY := y + 1 + 4 + (36-actionRow)/2
		for i, a := range view.Actions {
			w := c.actionWidth(face, a)
			x := cardPadding + cell*float64(i) + (cell-w)/2
			c.drawAction(face, a, x, rowY, fg, bg)
		}

	case model.LayoutColumn:
		const colIcon = 28
		cx := float64(cardWidth - cardPadding - avatarSize/2)
		for i, a := range view.Actions {
			iy := y + float64(i*columnStep)
			c.drawIcon(a.Icon, cx-colIcon/2, iy, colIcon, th.Text, bg)
			if t := actionText(a); t != "" {
				c.text(face, th.Text, cx-c.textWidth(face, t)/2, iy+colIcon+14, t)
			}
		}

	case model.LayoutVoteRow:
		x := float64(cardPadding)
		for i, a := range view.Actions {
			if i == 0 && a.Icon == "arrow-up" {
				// 投票ボタン: 上矢印、スコア、下矢印を1つの塊として並べる
				c.drawIcon("arrow-up", x, y+(actionRow-iconSize)/2+2, iconSize, fg, bg)
				x += iconSize + 6
				c.text(faces.bold, th.Text, x, y+19, a.Value)
				x += c.textWidth(faces.bold, a.Value) + 6
				c.drawIcon("arrow-down", x, y+(actionRow-iconSize)/2+2, iconSize, fg, bg)
				x += iconSize + actionGap
				continue
			}
			c.drawAction(face, a, x, y+2, fg, bg)
			x += c.actionWidth(face, a) + actionGap
		}

	case model.LayoutRowSplit:
		x := float64(cardPadding)
		right := float64(cardWidth - cardPadding)
		for _, a := range view.Actions {
			if a.Trailing {
				continue
			}
			c.drawAction(face, a, x, y, fg, bg)
			x += c.actionWidth(face, a) + actionGap
		}
		for i := len(view.Actions) - 1; i >= 0; i-- {
			a := view.Actions[i]
			if !a.Trailing {
				continue
			}
			right -= c.actionWidth(face, a)
			c.drawAction(face, a, right, y, fg, bg)
			right -= actionGap
		}
		if view.LikesSummary != "" {
			c.text(faces.bold, th.Text, cardPadding, y+actionRow+8+15, view.LikesSummary)
		}

	default:
		if th.Bordered {
			c.fillRect(cardPadding, y, innerWidth, 1, th.Border)
			y += 1 + sectionGap
		}
		c.drawSpread(face, view.Actions, y, fg, bg)
	}
}

// drawSpread はアクションを両端揃えで等間隔に並べる。
func (c *canvas) drawSpread(face font.Face, actions []model.ActionView, y float64, fg, bg color.RGBA) {
	if len(actions) == 0 {
		return
	}
	widths := make([]float64, len(actions))
	total := 0.0
	for i, a := range actions {
		widths[i] = c.actionWidth(face, a)
		total += widths[i]
	}
	gap := 0.0
	if len(actions) > 1 {
		gap = (innerWidth - total) / float64(len(actions)-1)
	}
	x := float64(cardPadding)
	for i, a := range actions {
		c.drawAction(face, a, x, y, fg, bg)
		x += widths[i] + gap
	}
}
