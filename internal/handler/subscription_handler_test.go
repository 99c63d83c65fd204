package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/postmock/internal/model"
)

// --- POST /api/subscriptions テスト ---

func TestSubscriptionHandler_Subscribe_Success(t *testing.T) {
	var gotEmail string
	svc := &mockSubscriptionService{
		subscribeFn: func(ctx context.Context, email string) (model.SubscriptionState, error) {
			gotEmail = email
			return model.SubscriptionState{Status: model.SubscriptionSuccess}, nil
		},
	}

	h := NewSubscriptionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`{"email":"a@example.com"}`))
	w := httptest.NewRecorder()

	h.Subscribe(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotEmail != "a@example.com" {
		t.Errorf("email = %q, want %q", gotEmail, "a@example.com")
	}

	var result subscriptionStateResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Status != "success" {
		t.Errorf("status = %q, want %q", result.Status, "success")
	}
	if !result.SubmitDisabled {
		t.Error("submit_disabled should be true after success")
	}
	if result.Email != "" {
		t.Errorf("email = %q, want empty after success", result.Email)
	}
}

func TestSubscriptionHandler_Subscribe_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid email", model.NewInvalidEmailError(), http.StatusBadRequest, model.ErrCodeInvalidEmail},
		{"duplicate", model.NewDuplicateSubscriberError(), http.StatusConflict, model.ErrCodeDuplicateSubscriber},
		{"in progress", model.NewSubscriptionInProgressError(), http.StatusConflict, model.ErrCodeSubscriptionInProgress},
		{"completed", model.NewSubscriptionCompletedError(), http.StatusConflict, model.ErrCodeSubscriptionCompleted},
		{"backend failure", model.NewSubscriptionFailedError("connection refused"), http.StatusBadGateway, model.ErrCodeSubscriptionFailed},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSubscriptionService{
				subscribeFn: func(ctx context.Context, email string) (model.SubscriptionState, error) {
					return model.SubscriptionState{Status: model.SubscriptionError, Email: email}, tt.err
				},
			}

			h := NewSubscriptionHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`{"email":"x@example.com"}`))
			w := httptest.NewRecorder()

			h.Subscribe(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if e := decodeAPIError(t, w.Body); e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestSubscriptionHandler_Subscribe_BackendMessageIncluded(t *testing.T) {
	svc := &mockSubscriptionService{
		subscribeFn: func(ctx context.Context, email string) (model.SubscriptionState, error) {
			return model.SubscriptionState{}, model.NewSubscriptionFailedError("relation \"subscribers\" does not exist")
		},
	}

	h := NewSubscriptionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`{"email":"x@example.com"}`))
	w := httptest.NewRecorder()

	h.Subscribe(w, req)

	e := decodeAPIError(t, w.Body)
	if !strings.Contains(e.Message, "subscribers") {
		t.Errorf("message = %q, want it to include the backend error text", e.Message)
	}
}

func TestSubscriptionHandler_Subscribe_InvalidJSON(t *testing.T) {
	svc := &mockSubscriptionService{
		subscribeFn: func(ctx context.Context, email string) (model.SubscriptionState, error) {
			t.Fatal("Subscribe should not be called for an invalid body")
			return model.SubscriptionState{}, nil
		},
	}

	h := NewSubscriptionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`not json`))
	w := httptest.NewRecorder()

	h.Subscribe(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- GET /api/subscriptions/state テスト ---

func TestSubscriptionHandler_GetState(t *testing.T) {
	svc := &mockSubscriptionService{
		stateFn: func() model.SubscriptionState {
			return model.SubscriptionState{
				Status:  model.SubscriptionError,
				Message: "already subscribed",
				Email:   "a@example.com",
			}
		},
	}

	h := NewSubscriptionHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/subscriptions/state", nil)
	w := httptest.NewRecorder()

	h.GetState(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result subscriptionStateResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Status != "error" {
		t.Errorf("status = %q, want %q", result.Status, "error")
	}
	if result.Email != "a@example.com" {
		t.Errorf("email = %q, want retained value", result.Email)
	}
	if result.SubmitDisabled {
		t.Error("submit should be enabled in error state")
	}
}
