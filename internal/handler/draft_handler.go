package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postmock/internal/export"
	"github.com/hitoshi/postmock/internal/intake"
	"github.com/hitoshi/postmock/internal/model"
)

// maxPatchBodySize はPATCH /api/draftのリクエストボディ上限。
const maxPatchBodySize = 64 << 10

// multipartOverhead はmultipartのヘッダー等に許容する余白。
const multipartOverhead = 64 << 10

// DraftServiceInterface は下書きハンドラーが必要とするサービスインターフェース。
// studio.Sessionが満たす。
type DraftServiceInterface interface {
	View() model.PostView
	Update(patch model.DraftPatch) (model.PostView, error)
	SetImage(ctx context.Context, slot model.ImageSlot, f intake.File) (model.PostView, error)
	ClearImage(slot model.ImageSlot) (model.PostView, error)
	Export(ctx context.Context) (*export.Artifact, error)
}

// DraftHandler は下書き編集とPNGエクスポートのHTTPハンドラー。
type DraftHandler struct {
	service       DraftServiceInterface
	maxUploadSize int64
}

// NewDraftHandler はDraftHandlerを生成する。
// maxUploadSizeは1ファイルあたりの上限で、0以下の場合はintake.DefaultMaxSizeを使う。
func NewDraftHandler(service DraftServiceInterface, maxUploadSize int64) *DraftHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = intake.DefaultMaxSize
	}
	return &DraftHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
	}
}

// GetDraft は現在のプレビューを返す。
// GET /api/draft
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPostViewResponse(h.service.View()))
}

// UpdateDraft はプラットフォーム・ユーザー名・本文を部分更新する。
// PATCH /api/draft
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPatchBodySize)

	var req draftPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "リクエストボディの解析に失敗しました。")
		return
	}

	var patch model.DraftPatch
	if req.Platform != nil {
		p, err := model.ParsePlatform(*req.Platform)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		patch.Platform = &p
	}
	patch.Username = req.Username
	patch.Content = req.Content

	view, err := h.service.Update(patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostViewResponse(view))
}

// UploadImage は投稿画像またはプロフィール画像を差し替える。
// PUT /api/draft/images/{slot}（multipart/form-data、フィールド名file）
func (h *DraftHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	slot, err := model.ParseImageSlot(chi.URLParam(r, "slot"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			handleServiceError(w, model.NewImageTooLargeError(h.maxUploadSize))
			return
		}
		writeInvalidRequest(w, "fileフィールドに画像ファイルを指定してください。")
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	view, err := h.service.SetImage(r.Context(), slot, intake.File{
		Name:   header.Filename,
		Size:   header.Size,
		Reader: file,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostViewResponse(view))
}

// DeleteImage は画像スロットを空にする。
// DELETE /api/draft/images/{slot}
func (h *DraftHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	slot, err := model.ParseImageSlot(chi.URLParam(r, "slot"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	view, err := h.service.ClearImage(slot)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostViewResponse(view))
}

// ExportDraft は現在のプレビューをPNG画像として返す。
// POST /api/draft/export
func (h *DraftHandler) ExportDraft(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.service.Export(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.Header().Set("Content-Length", fmt.Sprint(len(artifact.Data)))
	w.Header().Set("Cache-Control", "no-store")
	if !artifact.ImagesReady {
		w.Header().Set("X-Images-Ready", "false")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		slog.Warn("failed to write export", slog.String("filename", artifact.Filename), slog.String("error", err.Error()))
	}
}

// isBodyTooLarge はMaxBytesReaderの上限超過によるエラーかを判定する。
// multipartの解析中に発生した場合はラップされずに文字列だけが残ることがある。
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
