package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

type Event struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventBus is fire-and-forget: a failed publish is logged by the caller and
// never fails the owning operation.
type EventBus interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(log *logger.Logger, addr, channel string) (EventBus, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if strings.TrimSpace(channel) == "" {
		channel = "coach-events"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return apperr.New(apperr.KindUpstream, err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return apperr.New(apperr.KindUpstream, err)
	}
	return nil
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}

// NopBus keeps local development working without a redis instance.
type NopBus struct{}

func (NopBus) Publish(ctx context.Context, ev Event) error { return nil }
func (NopBus) Close() error                                { return nil }
