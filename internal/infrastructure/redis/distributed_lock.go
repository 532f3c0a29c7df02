package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alanmarcone/lugarnaviagem/internal/pkg/metrics"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// 自分が置いた値のときだけ消す
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
return redis.call("DEL", KEYS[1])
`)

// RetryPolicy は WithLock がロック待ちをするときの試行回数と間隔
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

var defaultRetryPolicy = RetryPolicy{Attempts: 10, Delay: 200 * time.Millisecond}

// LockManager は SET NX と所有者トークンによる排他ロックを発行する
type LockManager struct {
	client  *redis.Client
	metrics *metrics.Metrics
	retry   RetryPolicy
}

// LockOption は LockManager の設定を変える
type LockOption func(*LockManager)

// WithRetryPolicy は WithLock の待ち方を差し替える
func WithRetryPolicy(p RetryPolicy) LockOption {
	return func(m *LockManager) { m.retry = p }
}

// NewLockManager は LockManager を作成する。m が nil ならメトリクスは記録しない
func NewLockManager(client *redis.Client, m *metrics.Metrics, opts ...LockOption) *LockManager {
	lm := &LockManager{client: client, metrics: m, retry: defaultRetryPolicy}
	for _, opt := range opts {
		opt(lm)
	}
	return lm
}

// Lock は取得済みのロック
type Lock struct {
	manager *LockManager
	key     string
	token   string
}

// AcquireLock は待たずに一度だけ取得を試みる
func (m *LockManager) AcquireLock(ctx context.Context, name string, ttl time.Duration) (*Lock, error) {
	start := time.Now()
	key := "lock:" + name
	token := uuid.NewString()

	ok, err := m.client.SetNX(ctx, key, token, ttl).Result()
	switch {
	case err != nil:
		err = fmt.Errorf("ロック取得に失敗: %w", err)
	case !ok:
		err = ErrLockNotAcquired
	}
	m.observe("acquire", start, err)
	if err != nil {
		return nil, err
	}

	return &Lock{manager: m, key: key, token: token}, nil
}

// AcquireLockWithRetry は取得できるまで attempts 回まで delay 間隔で試す
func (m *LockManager) AcquireLockWithRetry(ctx context.Context, name string, ttl time.Duration, attempts int, delay time.Duration) (*Lock, error) {
	if delay <= 0 {
		delay = time.Millisecond
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		lock, err := m.AcquireLock(ctx, name, ttl)
		if !errors.Is(err, ErrLockNotAcquired) || attempt >= attempts {
			return lock, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WithLock はロックを保持したまま fn を実行する
// fn が失敗したときは解放エラーより fn のエラーを返す
func (m *LockManager) WithLock(ctx context.Context, name string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lock, err := m.AcquireLockWithRetry(ctx, name, ttl, m.retry.Attempts, m.retry.Delay)
	if err != nil {
		return err
	}
	err = fn(ctx)
	return errors.Join(err, ignoreIf(err != nil, lock.Release(ctx)))
}

// Release はロックを解放する。期限切れなどで他者の手に渡っていれば ErrLockNotOwned
func (l *Lock) Release(ctx context.Context) error {
	start := time.Now()
	released, err := unlockScript.Run(ctx, l.manager.client, []string{l.key}, l.token).Int()
	if err != nil {
		err = fmt.Errorf("ロック解放に失敗: %w", err)
	} else if released == 0 {
		err = ErrLockNotOwned
	}
	l.manager.observe("release", start, err)
	return err
}

func (m *LockManager) observe(operation string, start time.Time, err error) {
	if m.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.metrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

func ignoreIf(cond bool, err error) error {
	if cond {
		return nil
	}
	return err
}
