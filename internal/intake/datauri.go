package intake

import (
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/hitoshi/postmock/internal/model"
)

// DecodeDataURI はbase64形式のdata URIを解析し、画像として
// デコードできることを確認したうえで画像のサイズを返す。
func DecodeDataURI(uri string) (image.Config, error) {
	data, err := parseDataURI(uri)
	if err != nil {
		return image.Config{}, err
	}
	img, err := decodeChecked(data)
	if err != nil {
		return image.Config{}, err
	}
	b := img.Bounds()
	return image.Config{ColorModel: img.ColorModel(), Width: b.Dx(), Height: b.Dy()}, nil
}

// Decode はmodel.Imageを描画用のimage.Imageにデコードする。
func Decode(img *model.Image) (image.Image, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	return decodeChecked(img.Data)
}

// parseDataURI は "data:<mime>;base64,<payload>" 形式からペイロードを取り出す。
func parseDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}
