package model

import (
	"encoding/base64"
	"fmt"
)

// Image は自己完結したエンコード済み画像を表す。
// 画素データを内包し、描画時に追加のネットワークアクセスを必要としない。
type Image struct {
	MIME   string // 例: image/png
	Data   []byte // エンコード済みの画像バイト列
	Width  int
	Height int
}

// DataURI はbase64エンコードのdata URIを返す。
func (img *Image) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data))
}

// Size はエンコード済みデータのバイト数を返す。
func (img *Image) Size() int {
	return len(img.Data)
}
