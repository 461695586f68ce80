package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer nulis sinkron dengan acks penuh. Relay outbox butuh
// kepastian broker sudah terima sebelum baris ditandai published,
// jadi mode async kafka-go tidak dipakai di sini.
type Producer struct {
	w   *kafka.Writer
	log *zap.SugaredLogger
}

func NewProducer(brokers []string, topic string, log *zap.SugaredLogger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		log: log.With("topic", topic),
	}
}

// Publish kirim satu batch. Error berarti tidak ada jaminan terkirim;
// caller jangan maju (baris outbox tetap pending, dikirim ulang).
func (p *Producer) Publish(ctx context.Context, msgs ...kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		p.log.Warnw("kafka write failed", "count", len(msgs), "error", err)
		return err
	}
	return nil
}

func (p *Producer) Close() error { return p.w.Close() }
