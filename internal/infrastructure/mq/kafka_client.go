package mq

import (
	"context"
	"encoding/json"
	"time"

	"shop_chat_server/internal/config"
	"shop_chat_server/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher 基于 kafka-go Writer 的事件发布
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher 创建异步 Writer，写入结果在 Completion 回调中记录
func NewKafkaPublisher(conf *config.KafkaConfig) *KafkaPublisher {
	timeout := conf.Timeout * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.ChatTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			Async:                  true,
			AllowAutoTopicCreation: false,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					zap.L().Error("kafka publish failed", zap.Int("messages", len(messages)), zap.Error(err))
				}
			},
		},
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeMQError, "encode event %s", event.Type)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RoomId),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeMQError, "publish event %s", event.Type)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// NewPublisher 按 messageMode 选择实现
func NewPublisher(conf *config.KafkaConfig) EventPublisher {
	if conf.MessageMode == "kafka" {
		zap.L().Info("chat events go to kafka", zap.String("topic", conf.ChatTopic), zap.String("broker", conf.HostPort))
		return NewKafkaPublisher(conf)
	}
	return NoopPublisher{}
}

// EventHandler 处理消费到的事件
type EventHandler func(Event) error

// Consume 以 groupID 消费聊天事件直到 ctx 结束，供运维 CLI 追踪事件流
func Consume(ctx context.Context, conf *config.KafkaConfig, groupID string, handle EventHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{conf.HostPort},
		Topic:       conf.ChatTopic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
	})
	defer func() {
		if err := reader.Close(); err != nil {
			zap.L().Error("kafka reader close", zap.Error(err))
		}
	}()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errorx.Wrap(err, errorx.CodeMQError, "read chat event")
		}
		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			zap.L().Warn("skip undecodable chat event", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		if err := handle(event); err != nil {
			return err
		}
	}
}
