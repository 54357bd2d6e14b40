package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/keiba-roi-dashboard/internal/shared/kafka"
	"github.com/radieske/keiba-roi-dashboard/pkg/contracts/events"
)

// KafkaPublisher publica um SnapshotReloaded por recarga efetivada
type KafkaPublisher struct {
	writer sharedkafka.MessageWriter
	log    *zap.Logger
}

// NewKafkaPublisher cria o publisher; em ambiente local/dev tenta criar o tópico antes
func NewKafkaPublisher(brokers, topic, env string, log *zap.Logger) *KafkaPublisher {
	if env == "local" || env == "dev" {
		if err := ensureTopic(brokers, topic); err != nil {
			log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
		}
	}
	return &KafkaPublisher{writer: sharedkafka.NewWriter(brokers, topic), log: log}
}

// NewWithWriter permite injetar outro writer (testes)
func NewWithWriter(w sharedkafka.MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

// ensureTopic usa o controller do cluster para emitir o CreateTopics (single-broker)
func ensureTopic(brokers, topic string) error {
	first, _, _ := strings.Cut(brokers, ",")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", strings.TrimSpace(first))
	if err != nil {
		return fmt.Errorf("dial kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka controller: %w", err)
	}
	cconn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("dial kafka controller: %w", err)
	}
	defer cconn.Close()

	err = cconn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return err
	}
	return nil
}

// NotifyReloaded serializa o evento e envia com a chave = RunID
func (p *KafkaPublisher) NotifyReloaded(ctx context.Context, ev events.SnapshotReloaded) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := sharedkafka.WriteJSON(ctx, p.writer, ev.RunID, value); err != nil {
		p.log.Error("failed to publish snapshot reloaded", zap.Error(err))
		return err
	}

	p.log.Debug("published snapshot reloaded", zap.String("run_id", ev.RunID))
	return nil
}

// Close finaliza o writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
