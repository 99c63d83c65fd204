package export

import "image/color"

// drawIcon は24単位グリッドで定義したアイコンを(x, y)に一辺sizeで描画する。
// 輪郭のみのアイコンは前景色で塗った後、内側を背景色で塗り戻して表現する。
func (c *canvas) drawIcon(name string, x, y, size float64, fg, bg color.RGBA) {
	u := size / 24
	pt := func(gx, gy float64) [2]float64 { return [2]float64{x + gx*u, y + gy*u} }
	sw := 2 * u

	fill := func(col color.RGBA, build func(p *pathBuilder)) {
		c.fill(x-sw, y-sw, size+2*sw, size+2*sw, col, build)
	}

	switch name {
	case "heart":
		fill(fg, func(p *pathBuilder) { heart(p, pt, 5, 0) })
		fill(bg, func(p *pathBuilder) { heart(p, pt, 3, 2) })
	case "message-circle":
		fill(fg, func(p *pathBuilder) {
			p.circle(x+12*u, y+12*u, 9*u)
			p.polygon(pt(2.5, 21.5), pt(4.5, 14), pt(10, 19.5))
		})
		fill(bg, func(p *pathBuilder) { p.circle(x+12*u, y+12*u, 7*u) })
	case "message-square":
		fill(fg, func(p *pathBuilder) {
			p.roundRect(x+3*u, y+3*u, 18*u, 14*u, 2*u)
			p.polygon(pt(3, 15), pt(3, 21.5), pt(9, 16))
		})
		fill(bg, func(p *pathBuilder) { p.roundRect(x+5*u, y+5*u, 14*u, 10*u, 1*u) })
	case "repeat-2":
		fill(fg, func(p *pathBuilder) {
			p.polyline(sw, pt(4, 11), pt(4, 7), pt(17, 7))
			p.polygon(pt(16, 3), pt(21, 7), pt(16, 11))
			p.polyline(sw, pt(20, 13), pt(20, 17), pt(7, 17))
			p.polygon(pt(8, 13), pt(3, 17), pt(8, 21))
		})
	case "bookmark":
		fill(fg, func(p *pathBuilder) { p.polygon(pt(5, 2), pt(19, 2), pt(19, 22), pt(12, 17), pt(5, 22)) })
		fill(bg, func(p *pathBuilder) { p.polygon(pt(7, 4), pt(17, 4), pt(17, 18.2), pt(12, 14.6), pt(7, 18.2)) })
	case "send":
		fill(fg, func(p *pathBuilder) { p.polygon(pt(22, 2), pt(15, 22), pt(11, 13), pt(2, 9)) })
		fill(bg, func(p *pathBuilder) { p.polygon(pt(19, 5), pt(14.6, 17.4), pt(12.4, 11.6), pt(6.6, 9.3)) })
		fill(fg, func(p *pathBuilder) { p.polyline(sw*0.75, pt(21, 3), pt(11.5, 12.5)) })
	case "thumbs-up":
		fill(fg, func(p *pathBuilder) {
			p.roundRect(x+2*u, y+10*u, 4*u, 12*u, 1*u)
			p.polygon(pt(7, 10), pt(11, 2), pt(14, 3), pt(13.5, 9), pt(20, 9), pt(22, 12), pt(19.5, 22), pt(7, 22))
		})
		fill(bg, func(p *pathBuilder) {
			p.polygon(pt(9, 11), pt(12, 4.6), pt(12, 5), pt(11.2, 11), pt(19.2, 11), pt(20, 12.3), pt(17.9, 20), pt(9, 20))
		})
	case "share":
		fill(fg, func(p *pathBuilder) {
			p.polyline(sw, pt(4, 12), pt(4, 20), pt(20, 20), pt(20, 12))
			p.segment(x+12*u, y+16*u, x+12*u, y+5*u, sw)
			p.polygon(pt(7, 8), pt(12, 2.5), pt(17, 8))
		})
	case "share-2":
		fill(fg, func(p *pathBuilder) {
			p.circle(x+18*u, y+5*u, 3*u)
			p.circle(x+6*u, y+12*u, 3*u)
			p.circle(x+18*u, y+19*u, 3*u)
			p.segment(x+6*u, y+12*u, x+18*u, y+5*u, sw)
			p.segment(x+6*u, y+12*u, x+18*u, y+19*u, sw)
		})
	case "arrow-up":
		fill(fg, func(p *pathBuilder) {
			p.polygon(pt(4, 12), pt(12, 3), pt(20, 12))
			p.segment(x+12*u, y+11*u, x+12*u, y+21*u, sw*1.2)
		})
	case "arrow-down":
		fill(fg, func(p *pathBuilder) {
			p.polygon(pt(4, 12), pt(12, 21), pt(20, 12))
			p.segment(x+12*u, y+13*u, x+12*u, y+3*u, sw*1.2)
		})
	case "more-horizontal":
		fill(fg, func(p *pathBuilder) {
			p.circle(x+5*u, y+12*u, 2*u)
			p.circle(x+12*u, y+12*u, 2*u)
			p.circle(x+19*u, y+12*u, 2*u)
		})
	default:
		fill(fg, func(p *pathBuilder) { p.circle(x+12*u, y+12*u, 9*u) })
		fill(bg, func(p *pathBuilder) { p.circle(x+12*u, y+12*u, 7*u) })
	}
}

// heart はハート形を追加する。insetで内側に縮めた形を作る。
func heart(p *pathBuilder, pt func(gx, gy float64) [2]float64, r, inset float64) {
	l, t := pt(8, 9), pt(16, 9)
	u := (t[0] - l[0]) / 8
	p.circle(l[0], l[1], r*u)
	p.circle(t[0], t[1], r*u)
	p.polygon(pt(3+inset, 11), pt(12, 21-inset*1.4), pt(21-inset, 11), pt(12, 7+inset))
}
