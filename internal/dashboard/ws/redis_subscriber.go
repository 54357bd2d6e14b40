package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/keiba-roi-dashboard/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal de broadcast e repassa cada aviso de
// recarga aos clientes conectados neste processo
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	go func() {
		defer sub.Close()
		pump(ctx, sub.Channel(), hub, log)
	}()
}

// pump entrega as mensagens do canal ao hub até o contexto acabar ou o canal fechar;
// payload inválido é descartado
func pump(ctx context.Context, ch <-chan *redis.Message, hub *Hub, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev events.SnapshotReloaded
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn("ws subscriber unmarshal error", zap.Error(err))
				continue
			}
			hub.Broadcast(ev)
		}
	}
}
