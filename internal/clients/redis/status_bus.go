package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// StatusEvent is broadcast whenever a document job changes state, so
// interested consumers (UIs, webhooks) can react without polling the API.
type StatusEvent struct {
	Kind       string    `json:"kind"`
	TenantID   string    `json:"tenant_id,omitempty"`
	JobID      uint      `json:"job_id,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	AssetID    uint      `json:"asset_id,omitempty"`
	MaterialID uint      `json:"material_id,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

const EventKindDocumentJob = "document_job"

type StatusBus interface {
	Publish(ctx context.Context, ev StatusEvent) error
	Close() error
}

type statusBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewStatusBus connects to REDIS_ADDR and publishes on REDIS_STATUS_CHANNEL
// (default "doc-status").
func NewStatusBus(log *logger.Logger) (StatusBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_STATUS_CHANNEL"))
	if ch == "" {
		ch = "doc-status"
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

	busLog := log.With("service", "RedisStatusBus")
	busLog.Info("Redis status bus connected", "addr", addr, "channel", ch)

	return &statusBus{
		log:     busLog,
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *statusBus) Publish(ctx context.Context, ev StatusEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis status bus not initialized")
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *statusBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// NewNoopStatusBus returns a bus that drops every event, for deployments
// without redis.
func NewNoopStatusBus() StatusBus { return noopStatusBus{} }

type noopStatusBus struct{}

func (noopStatusBus) Publish(context.Context, StatusEvent) error { return nil }

func (noopStatusBus) Close() error { return nil }
