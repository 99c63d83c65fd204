package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postmock/internal/model"
	"github.com/hitoshi/postmock/internal/theme"
)

// PlatformHandler はプラットフォーム一覧とスタイル定義のHTTPハンドラー。
type PlatformHandler struct {
	includeHidden bool
}

// NewPlatformHandler はPlatformHandlerを生成する。
// includeHiddenがtrueの場合、非表示のプラットフォームも選択肢に含める。
func NewPlatformHandler(includeHidden bool) *PlatformHandler {
	return &PlatformHandler{includeHidden: includeHidden}
}

// ListPlatforms は選択可能なプラットフォームを表示順に返す。
// GET /api/platforms
func (h *PlatformHandler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms := theme.Selectable(h.includeHidden)
	resp := make([]platformResponse, len(platforms))
	for i, p := range platforms {
		resp[i] = toPlatformResponse(theme.ThemeOf(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTheme はプラットフォームのスタイル定義を返す。
// GET /api/themes/{platform}
func (h *PlatformHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	p, err := model.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil || (theme.IsHidden(p) && !h.includeHidden) {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewInvalidPlatformError(chi.URLParam(r, "platform")))
		return
	}
	writeJSON(w, http.StatusOK, toThemeResponse(theme.ThemeOf(p)))
}
