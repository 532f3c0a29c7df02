package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alanmarcone/lugarnaviagem/internal/pkg/logger"
)

// SelectionEvictor は放置された選択セッションを破棄するインターフェース
type SelectionEvictor interface {
	EvictIdle(ctx context.Context, idleAfter time.Duration) (int, error)
}

// Janitor は巡回のついでに掃除するもの（レートリミッターの訪問者表など）
type Janitor interface {
	Cleanup() int
}

// IdleSelectionSweeper は一定時間操作のない選択セッションを破棄するワーカー
type IdleSelectionSweeper struct {
	evictor   SelectionEvictor
	janitors  []Janitor
	interval  time.Duration
	idleAfter time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewIdleSelectionSweeper は新しいスイーパーを作成
func NewIdleSelectionSweeper(
	e SelectionEvictor,
	interval time.Duration,
	idleAfter time.Duration,
	janitors ...Janitor,
) *IdleSelectionSweeper {
	return &IdleSelectionSweeper{
		evictor:   e,
		janitors:  janitors,
		interval:  interval,
		idleAfter: idleAfter,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *IdleSelectionSweeper) Start(ctx context.Context) {
	logger.Info("選択セッションのスイーパー開始",
		zap.Duration("interval", s.interval),
		zap.Duration("idle_after", s.idleAfter),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("選択セッションのスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("選択セッションのスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *IdleSelectionSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *IdleSelectionSweeper) sweep(ctx context.Context) {
	log := logger.Get()

	count, err := s.evictor.EvictIdle(ctx, s.idleAfter)
	if err != nil {
		log.Error("選択セッションの破棄に失敗", zap.Error(err))
	} else if count > 0 {
		log.Info("放置された選択セッションを破棄", zap.Int("count", count))
	} else {
		log.Debug("破棄対象の選択セッションなし")
	}

	for _, j := range s.janitors {
		if n := j.Cleanup(); n > 0 {
			log.Debug("掃除", zap.Int("removed", n))
		}
	}
}
