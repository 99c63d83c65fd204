package export

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// bezierCircle は円を4本の3次ベジェ曲線で近似する際の制御点係数。
const bezierCircle = 0.5522847498

// canvas は論理座標(px)で描画し、scale倍のデバイス画素に変換する描画面。
type canvas struct {
	img   *image.RGBA
	scale float64
}

func newCanvas(width, height, scale float64) *canvas {
	w := int(math.Ceil(width * scale))
	h := int(math.Ceil(height * scale))
	return &canvas{img: image.NewRGBA(image.Rect(0, 0, w, h)), scale: scale}
}

// dev は論理座標をデバイス座標に変換する。
func (c *canvas) dev(v float64) int {
	return int(math.Round(v * c.scale))
}

// rect は論理座標の矩形をデバイス座標の矩形に変換する。
func (c *canvas) rect(x, y, w, h float64) image.Rectangle {
	return image.Rect(c.dev(x), c.dev(y), c.dev(x+w), c.dev(y+h))
}

// bounds はアンチエイリアス分の余白を含めた描画範囲を返す。
func (c *canvas) bounds(x, y, w, h float64) image.Rectangle {
	r := image.Rect(
		int(math.Floor(x*c.scale))-1,
		int(math.Floor(y*c.scale))-1,
		int(math.Ceil((x+w)*c.scale))+1,
		int(math.Ceil((y+h)*c.scale))+1,
	)
	return r.Intersect(c.img.Bounds())
}

// fillRect は矩形全体を単色で塗りつぶす。
func (c *canvas) fillRect(x, y, w, h float64, col color.Color) {
	draw.Draw(c.img, c.rect(x, y, w, h), image.NewUniform(col), image.Point{}, draw.Src)
}

// fill は範囲(x, y, w, h)内にbuildで構築した図形をアンチエイリアス付きで塗りつぶす。
func (c *canvas) fill(x, y, w, h float64, col color.Color, build func(p *pathBuilder)) {
	r := c.bounds(x, y, w, h)
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	build(&pathBuilder{z: z, s: c.scale, ox: float64(r.Min.X), oy: float64(r.Min.Y)})
	z.Draw(c.img, r, image.NewUniform(col), image.Point{})
}

// mask はデバイス座標の範囲rに対応するアルファマスクを生成する。
func (c *canvas) mask(r image.Rectangle, build func(p *pathBuilder)) *image.Alpha {
	m := image.NewAlpha(r)
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	build(&pathBuilder{z: z, s: c.scale, ox: float64(r.Min.X), oy: float64(r.Min.Y)})
	z.Draw(m, r, image.Opaque, image.Point{})
	return m
}

// drawMasked はsrcをマスク越しに範囲rへ合成する。srcはrと同じ大きさであること。
func (c *canvas) drawMasked(r image.Rectangle, src image.Image, m *image.Alpha) {
	draw.DrawMask(c.img, r, src, src.Bounds().Min, m, r.Min, draw.Over)
}

// pathBuilder は論理座標でパスを組み立て、ラスタライザのローカル座標に変換する。
// 全ての図形は同じ向きで追加するため、同一パス内で重なっても打ち消し合わない。
type pathBuilder struct {
	z      *vector.Rasterizer
	s      float64
	ox, oy float64
}

func (p *pathBuilder) pt(x, y float64) (float32, float32) {
	return float32(x*p.s - p.ox), float32(y*p.s - p.oy)
}

func (p *pathBuilder) moveTo(x, y float64) {
	p.z.MoveTo(p.pt(x, y))
}

func (p *pathBuilder) lineTo(x, y float64) {
	p.z.LineTo(p.pt(x, y))
}

func (p *pathBuilder) cubeTo(bx, by, cx, cy, dx, dy float64) {
	x1, y1 := p.pt(bx, by)
	x2, y2 := p.pt(cx, cy)
	x3, y3 := p.pt(dx, dy)
	p.z.CubeTo(x1, y1, x2, y2, x3, y3)
}

func (p *pathBuilder) close() {
	p.z.ClosePath()
}

// circle は中心(cx, cy)、半径rの円を追加する。
func (p *pathBuilder) circle(cx, cy, r float64) {
	k := r * bezierCircle
	p.moveTo(cx+r, cy)
	p.cubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
	p.cubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
	p.cubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
	p.cubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	p.close()
}

// roundRect は角丸矩形を追加する。
func (p *pathBuilder) roundRect(x, y, w, h, r float64) {
	r = math.Min(r, math.Min(w, h)/2)
	k := r * bezierCircle
	p.moveTo(x+w, y+h-r)
	p.lineTo(x+w, y+r)
	p.cubeTo(x+w, y+r-k, x+w-r+k, y, x+w-r, y)
	p.lineTo(x+r, y)
	p.cubeTo(x+r-k, y, x, y+r-k, x, y+r)
	p.lineTo(x, y+h-r)
	p.cubeTo(x, y+h-r+k, x+r-k, y+h, x+r, y+h)
	p.lineTo(x+w-r, y+h)
	p.cubeTo(x+w-r+k, y+h, x+w, y+h-r+k, x+w, y+h-r)
	p.close()
}

// polygon は頂点列を閉じた多角形として追加する。
// 頂点の並び順によらず、他の図形と同じ向きに揃える。
func (p *pathBuilder) polygon(pts ...[2]float64) {
	if len(pts) < 3 {
		return
	}
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	if area > 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	p.moveTo(pts[0][0], pts[0][1])
	for _, pt := range pts[1:] {
		p.lineTo(pt[0], pt[1])
	}
	p.close()
}

// segment は太さwidthの線分を追加する。
func (p *pathBuilder) segment(x1, y1, x2, y2, width float64) {
	dx, dy := x2-x1, y2-y1
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	p.polygon(
		[2]float64{x1 + nx, y1 + ny},
		[2]float64{x2 + nx, y2 + ny},
		[2]float64{x2 - nx, y2 - ny},
		[2]float64{x1 - nx, y1 - ny},
	)
}

// polyline は折れ線を追加する。頂点は丸く接続する。
func (p *pathBuilder) polyline(width float64, pts ...[2]float64) {
	for i := 0; i+1 < len(pts); i++ {
		p.segment(pts[i][0], pts[i][1], pts[i+1][0], pts[i+1][1], width)
	}
	for _, pt := range pts {
		p.circle(pt[0], pt[1], width/2)
	}
}
