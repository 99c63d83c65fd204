// Package export は表示中の投稿をPNG画像として書き出す。
package export

import (
	"context"
	"sync"
	"time"
)

// Barrier は進行中の画像読み込みを追跡し、書き出し前に
// それらの完了を待ち合わせるための仕組み。
type Barrier struct {
	mu      sync.Mutex
	pending int
	idle    chan struct{} // pendingが0になったときにcloseされる
}

// NewBarrier はBarrierの新しいインスタンスを生成する。
func NewBarrier() *Barrier {
	idle := make(chan struct{})
	close(idle)
	return &Barrier{idle: idle}
}

// Track は画像読み込みの開始を登録し、完了時に呼び出す関数を返す。
// 返された関数は複数回呼んでも一度だけ完了として扱われる。
func (b *Barrier) Track() func() {
	b.mu.Lock()
	if b.pending == 0 {
		b.idle = make(chan struct{})
	}
	b.pending++
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(b.release)
	}
}

func (b *Barrier) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending--
	if b.pending == 0 {
		close(b.idle)
	}
}

// Pending は未完了の読み込み数を返す。
func (b *Barrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Wait は全ての読み込みが完了するか、timeoutが経過するまで待つ。
// 全て完了した場合はtrue、timeoutで打ち切った場合はfalseを返す。
// timeoutの経過はエラーではない。ctxがキャンセルされた場合のみエラーを返す。
func (b *Barrier) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	b.mu.Lock()
	idle := b.idle
	b.mu.Unlock()

	select {
	case <-idle:
		return true, nil
	default:
	}
	if timeout <= 0 {
		return false, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-idle:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
