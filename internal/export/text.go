package export

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// 文字サイズ（論理px）
const (
	usernameSize  = 16
	timestampSize = 14
	contentSize   = 18
	labelSize     = 14
	contentLine   = 28
)

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", fontsErr)
			return
		}
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", fontsErr)
		}
	})
	return fontsErr
}

// faceSet は1回の描画で使うフォントフェイスの組。
// font.Faceは並行利用できないため、描画ごとに生成する。
type faceSet struct {
	username  font.Face
	timestamp font.Face
	content   font.Face
	label     font.Face
	bold      font.Face
}

func newFaceSet(scale float64) (*faceSet, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	fs := &faceSet{}
	specs := []struct {
		dst  *font.Face
		f    *opentype.Font
		size float64
	}{
		{&fs.username, boldFont, usernameSize},
		{&fs.timestamp, regularFont, timestampSize},
		{&fs.content, regularFont, contentSize},
		{&fs.label, regularFont, labelSize},
		{&fs.bold, boldFont, labelSize},
	}
	for _, s := range specs {
		face, err := opentype.NewFace(s.f, &opentype.FaceOptions{
			Size:    s.size * scale,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("create font face: %w", err)
		}
		*s.dst = face
	}
	return fs, nil
}

// Close は生成済みのフェイスを解放する。
func (fs *faceSet) Close() {
	for _, f := range []font.Face{fs.username, fs.timestamp, fs.content, fs.label, fs.bold} {
		if f != nil {
			f.Close()
		}
	}
}

// textWidth は文字列の描画幅を論理pxで返す。
func (c *canvas) textWidth(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64 / c.scale
}

// text はベースラインyに文字列を描画する。
func (c *canvas) text(face font.Face, col color.Color, x, y float64, s string) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * c.scale * 64), Y: fixed.Int26_6(y * c.scale * 64)},
	}
	d.DrawString(s)
}

// wrapText は改行を保持したまま、幅maxWidth（論理px）に収まるよう折り返す。
// 幅を超える単語は文字単位で分割する。
func (c *canvas) wrapText(face font.Face, text string, maxWidth float64) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range strings.Split(para, " ") {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if c.textWidth(face, candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			// 単語単体でも収まらない場合は文字単位で分割する
			for c.textWidth(face, word) > maxWidth && utf8.RuneCountInString(word) > 1 {
				head := c.fitRunes(face, word, maxWidth)
				lines = append(lines, head)
				word = word[len(head):]
			}
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}

// fitRunes はmaxWidthに収まる先頭部分を返す。最低1文字は返す。
func (c *canvas) fitRunes(face font.Face, s string, maxWidth float64) string {
	end := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if end > 0 && c.textWidth(face, s[:next]) > maxWidth {
			break
		}
		end = next
	}
	return s[:end]
}

// truncate はmaxWidthを超える文字列を省略記号付きで切り詰める。
func (c *canvas) truncate(face font.Face, s string, maxWidth float64) string {
	if c.textWidth(face, s) <= maxWidth {
		return s
	}
	const ellipsis = "…"
	head := c.fitRunes(face, s, maxWidth-c.textWidth(face, ellipsis))
	return head + ellipsis
}
