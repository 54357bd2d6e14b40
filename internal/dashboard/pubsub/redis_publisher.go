package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/keiba-roi-dashboard/pkg/contracts/events"
)

// RedisBroadcaster publica os avisos de recarga no canal Pub/Sub, para que
// todas as instâncias do dashboard avisem seus navegadores
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, payload []byte) error {
	return b.r.Publish(ctx, b.channel, payload).Err()
}

// NotifyReloaded serializa o evento e publica no canal
func (b *RedisBroadcaster) NotifyReloaded(ctx context.Context, ev events.SnapshotReloaded) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal reload broadcast: %w", err)
	}
	if err := b.Publish(ctx, payload); err != nil {
		return fmt.Errorf("publish reload broadcast: %w", err)
	}
	return nil
}
