package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirSaver は書き出した画像を指定ディレクトリに保存する。
type DirSaver struct {
	dir string
}

// NewDirSaver はDirSaverの新しいインスタンスを生成する。
func NewDirSaver(dir string) *DirSaver {
	return &DirSaver{dir: dir}
}

// Save はArtifactを一時ファイルに書き込んでからリネームする。
// 途中で失敗した場合に中途半端なファイルを残さない。
func (s *DirSaver) Save(a *Artifact) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dst := filepath.Join(s.dir, filepath.Base(a.Filename))
	if err := os.Rename(tmpName, dst); err != nil {
		cleanup()
		return "", fmt.Errorf("rename export file: %w", err)
	}
	return dst, nil
}
