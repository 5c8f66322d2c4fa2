package capacitybus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const pingTimeout = 5 * time.Second

// Bus рассылает инвалидации кэша лимитов между инстансами через Redis pub/sub
type Bus struct {
	client   *redis.Client
	channel  string
	instance string
	log      Logger
}

// NewBus подключается к Redis по URL (redis://host:port/db)
func NewBus(ctx context.Context, url, channel string, log Logger) (*Bus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %v", ErrConnect, err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	return newBus(client, channel, log), nil
}

func newBus(client *redis.Client, channel string, log Logger) *Bus {
	return &Bus{
		client:   client,
		channel:  channel,
		instance: uuid.New().String(),
		log:      log,
	}
}

// Publish оповещает остальные инстансы об изменении лимита
func (b *Bus) Publish(ctx context.Context, key string) error {
	payload, err := json.Marshal(Message{Key: key, Origin: b.instance})
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	return nil
}

// Run слушает канал до отмены ctx и сбрасывает ключи в inv
// После переподключения кэш сбрасывается целиком: сообщения за время обрыва потеряны
func (b *Bus) Run(ctx context.Context, inv Invalidator) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	b.log.Info("capacitybus: subscribed to %s", b.channel)

	for {
		msg, err := pubsub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				b.log.Info("capacitybus: subscription stopped")
				return
			}
			b.log.Warn("capacitybus: receive failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		switch m := msg.(type) {
		case *redis.Subscription:
			if m.Kind == "subscribe" {
				inv.InvalidateAll()
			}
		case *redis.Message:
			b.handle(m.Payload, inv)
		}
	}
}

func (b *Bus) handle(payload string, inv Invalidator) {
	var m Message
	if err := json.Unmarshal([]byte(payload), &m); err != nil || m.Key == "" {
		b.log.Warn("capacitybus: malformed message %q, flushing cache", payload)
		inv.InvalidateAll()
		return
	}
	if m.Origin == b.instance {
		return
	}
	if m.Key != domain.SystemScopeKey {
		if _, err := domain.ParseScope(m.Key); err != nil {
			b.log.Warn("capacitybus: unknown key %q, flushing cache: %v", m.Key, err)
			inv.InvalidateAll()
			return
		}
	}
	inv.Invalidate(m.Key)
}

// Close закрывает соединение с Redis
func (b *Bus) Close() error {
	return b.client.Close()
}
