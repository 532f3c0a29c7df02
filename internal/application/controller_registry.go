package application

import (
	"context"
	"sync"
	"time"

	"github.com/alanmarcone/lugarnaviagem/internal/pkg/metrics"
)

// ControllerFactory はセッションごとのコントローラーを生成する
type ControllerFactory func() *SeatController

type registryEntry struct {
	controller *SeatController
	lastUsed   time.Time
}

// ControllerRegistry はセッションIDごとの座席選択コントローラーを保持する
// プロセス内メモリのみで、再起動すると選択は失われる。
type ControllerRegistry struct {
	mu          sync.Mutex
	controllers map[string]*registryEntry
	factory     ControllerFactory
	metrics     *metrics.Metrics
	now         func() time.Time
	// 座席を選択中のコントローラーを破棄するまでの放置時間（0 なら破棄しない）
	selectionTTL time.Duration
}

// RegistryOption は ControllerRegistry の設定を変える
type RegistryOption func(*ControllerRegistry)

// WithSelectionTTL は選択中のコントローラーを保持する上限を設定する
// セッションの有効期限と同じ値にすれば、期限切れのセッションの選択だけが消える。
func WithSelectionTTL(d time.Duration) RegistryOption {
	return func(r *ControllerRegistry) { r.selectionTTL = d }
}

func NewControllerRegistry(factory ControllerFactory, m *metrics.Metrics, opts ...RegistryOption) *ControllerRegistry {
	r := &ControllerRegistry{
		controllers: make(map[string]*registryEntry),
		factory:     factory,
		metrics:     m,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get はセッションのコントローラーを返す（無ければ作成する）
func (r *ControllerRegistry) Get(sessionID string) *SeatController {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.controllers[sessionID]
	if !ok {
		e = &registryEntry{controller: r.factory()}
		r.controllers[sessionID] = e
		r.updateGauge()
	}
	e.lastUsed = r.now()
	return e.controller
}

// Remove はセッションのコントローラーを破棄する
func (r *ControllerRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, sessionID)
	r.updateGauge()
}

// EvictIdle は idleAfter 以上使われていないコントローラーを破棄し、件数を返す
// 座席を選択中のものは selectionTTL を過ぎるまで残す。
func (r *ControllerRegistry) EvictIdle(ctx context.Context, idleAfter time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-idleAfter)
	evicted := 0
	for id, e := range r.controllers {
		if !e.lastUsed.Before(cutoff) {
			continue
		}
		if !e.controller.Selection().IsEmpty() &&
			(r.selectionTTL <= 0 || !e.lastUsed.Before(now.Add(-r.selectionTTL))) {
			continue
		}
		delete(r.controllers, id)
		evicted++
	}
	if evicted > 0 {
		r.updateGauge()
	}
	return evicted, nil
}

// Len は保持しているコントローラー数を返す
func (r *ControllerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

func (r *ControllerRegistry) updateGauge() {
	if r.metrics != nil {
		r.metrics.ActiveSelectionSessions.Set(float64(len(r.controllers)))
	}
}
