// Package subscription はニュースレター登録フォームの状態管理と
// 購読者ストアへの登録処理を提供する。
package subscription

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/postmock/internal/model"
	"github.com/hitoshi/postmock/internal/repository"
)

// 登録結果の分類。メトリクスのラベルに使用する。
const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// Observer は登録結果の通知先。
type Observer interface {
	ObserveSubscription(outcome string)
}

// Client はニュースレター登録フォームの状態を保持し、登録を実行する。
// 状態は idle → loading → success / error の順に遷移する。
// success になった後は再送信を受け付けない。
type Client struct {
	mu       sync.Mutex
	state    model.SubscriptionState
	store    repository.SubscriberRepository
	validate *validator.Validate
	observer Observer
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(store repository.SubscriberRepository, observer Observer) *Client {
	if store == nil {
		store = repository.UnconfiguredSubscriberRepo{}
	}
	return &Client{
		state:    model.SubscriptionState{Status: model.SubscriptionIdle},
		store:    store,
		validate: validator.New(),
		observer: observer,
	}
}

// State は現在のフォーム状態を返す。
func (c *Client) State() model.SubscriptionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe はメールアドレスを購読者ストアに登録する。
// 形式が不正なアドレスはストアに送信せずINVALID_EMAILを返す。
// 登録済みのアドレスはDUPLICATE_SUBSCRIBER、それ以外の失敗は
// バックエンドのエラー文言を含むSUBSCRIPTION_FAILEDを返す。
func (c *Client) Subscribe(ctx context.Context, email string) (model.SubscriptionState, error) {
	email = strings.TrimSpace(email)

	c.mu.Lock()
	switch c.state.Status {
	case model.SubscriptionLoading:
		c.mu.Unlock()
		return c.State(), model.NewSubscriptionInProgressError()
	case model.SubscriptionSuccess:
		c.mu.Unlock()
		return c.State(), model.NewSubscriptionCompletedError()
	}

	c.state.Email = email
	if err := c.validate.Var(email, "required,email"); err != nil {
		apiErr := model.NewInvalidEmailError()
		c.state.Status = model.SubscriptionError
		c.state.Message = apiErr.Message
		state := c.state
		c.mu.Unlock()
		c.observe(OutcomeInvalid)
		return state, apiErr
	}
	c.state.Status = model.SubscriptionLoading
	c.state.Message = ""
	c.mu.Unlock()

	err := c.store.Insert(ctx, strings.ToLower(email))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.state = model.SubscriptionState{Status: model.SubscriptionSuccess}
		c.observe(OutcomeSuccess)
		slog.Info("ニュースレターに登録しました")
		return c.state, nil
	}

	var apiErr *model.APIError
	if errors.Is(err, repository.ErrDuplicateSubscriber) {
		apiErr = model.NewDuplicateSubscriberError()
		c.observe(OutcomeDuplicate)
	} else {
		apiErr = model.NewSubscriptionFailedError(err.Error())
		c.observe(OutcomeFailed)
		slog.Error("ニュースレター登録に失敗しました", "error", err)
	}
	c.state.Status = model.SubscriptionError
	c.state.Message = apiErr.Message
	return c.state, apiErr
}

func (c *Client) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveSubscription(outcome)
	}
}
