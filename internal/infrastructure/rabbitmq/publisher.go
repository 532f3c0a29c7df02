package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/event"
)

var (
	ErrPublisherClosed = errors.New("パブリッシャーは停止済みです")
)

// Publisher はドメインイベントを RabbitMQ のキューへ送る
// キュー名はイベント名と同じで、デフォルトエクスチェンジ経由で配送する
type Publisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// NewPublisher はブローカーへ接続し、全イベントのキューを宣言する
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗: %w", err)
	}
	for _, name := range event.Names {
		// durable: ブローカー再起動後もキューを残す
		if _, err := ch.QueueDeclare(string(name), true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("キュー宣言に失敗 (%s): %w", name, err)
		}
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish はイベントを JSON にして永続メッセージとして送る
func (p *Publisher) Publish(ctx context.Context, name event.Name, payload any) error {
	msg, err := newPublishing(payload, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if err := p.ch.PublishWithContext(ctx, "", string(name), false, false, msg); err != nil {
		return fmt.Errorf("イベント送信に失敗 (%s): %w", name, err)
	}
	return nil
}

// Close はチャネルと接続を閉じる
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	chErr := p.ch.Close()
	connErr := p.conn.Close()
	return errors.Join(chErr, connErr)
}

func newPublishing(payload any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}

var _ event.Publisher = (*Publisher)(nil)
