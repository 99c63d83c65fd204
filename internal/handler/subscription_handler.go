package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/postmock/internal/model"
)

// maxSubscribeBodySize はPOST /api/subscriptionsのリクエストボディ上限。
const maxSubscribeBodySize = 4 << 10

// SubscriptionServiceInterface はニュースレター登録ハンドラーが必要とするサービスインターフェース。
// subscription.Clientが満たす。
type SubscriptionServiceInterface interface {
	Subscribe(ctx context.Context, email string) (model.SubscriptionState, error)
	State() model.SubscriptionState
}

// SubscriptionHandler はニュースレター登録のHTTPハンドラー。
type SubscriptionHandler struct {
	service SubscriptionServiceInterface
}

// NewSubscriptionHandler はSubscriptionHandlerを生成する。
func NewSubscriptionHandler(service SubscriptionServiceInterface) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
	}
}

// Subscribe はメールアドレスをニュースレターに登録する。
// POST /api/subscriptions
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubscribeBodySize)

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "リクエストボディの解析に失敗しました。")
		return
	}

	state, err := h.service.Subscribe(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionStateResponse(state))
}

// GetState は登録フォームの現在の状態を返す。
// GET /api/subscriptions/state
func (h *SubscriptionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSubscriptionStateResponse(h.service.State()))
}
