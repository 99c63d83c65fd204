package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/hitoshi/postmock/internal/model"
)

// placeholderSize はプレースホルダーアバターの一辺（px）。
// 48px表示の2倍密度で描画しても粗くならない大きさ。
const placeholderSize = 96

var (
	placeholderOnce  sync.Once
	placeholderImage *model.Image
)

// PlaceholderAvatar は人物シルエットのプレースホルダー画像を返す。
// 初回呼び出し時に生成し、以降は同じ画像を返す。
func PlaceholderAvatar() *model.Image {
	placeholderOnce.Do(func() {
		placeholderImage = generatePlaceholder()
	})
	return placeholderImage
}

func generatePlaceholder() *model.Image {
	bg := color.RGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}
	fg := color.RGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}

	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	const (
		headCX, headCY, headR = 48, 38, 18
		bodyCX, bodyCY, bodyR = 48, 100, 38
	)
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			c := bg
			if inCircle(x, y, headCX, headCY, headR) || inCircle(x, y, bodyCX, bodyCY, bodyR) {
				c = fg
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// メモリ上のRGBA画像のエンコードは失敗しない
		panic("preview: encode placeholder avatar: " + err.Error())
	}
	return &model.Image{
		MIME:   "image/png",
		Data:   buf.Bytes(),
		Width:  placeholderSize,
		Height: placeholderSize,
	}
}

func inCircle(x, y, cx, cy, r int) bool {
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}
