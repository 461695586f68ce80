package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler return nil kalau pesan selesai diproses dan offset boleh maju.
type Handler func(ctx context.Context, m kafka.Message) error

const (
	handlerRetries = 3
	retryWait      = 500 * time.Millisecond
)

// Consumer baca satu topic lewat consumer group dengan pool worker.
// Pakai FetchMessage + commit manual, bukan ReadMessage, supaya pesan
// yang gagal diproses dikirim ulang; handler wajib idempoten.
type Consumer struct {
	reader  *kafka.Reader
	log     *zap.SugaredLogger
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.SugaredLogger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  group,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		log:     log.With("topic", topic, "group", group),
		workers: workers,
	}
}

// Start blok sampai ctx selesai atau reader error.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.reader.Close()

	jobs := make(chan kafka.Message, 2*c.workers)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				c.handle(ctx, m, h)
			}
		}()
	}

	var readErr error
	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				readErr = err
			}
			break
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()
	return readErr
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message, h Handler) {
	var err error
	for attempt := 0; attempt < handlerRetries; attempt++ {
		if err = h(ctx, m); err == nil {
			if err = c.reader.CommitMessages(ctx, m); err != nil {
				c.log.Warnw("commit gagal", "offset", m.Offset, "error", err)
			}
			return
		}
		select {
		case <-time.After(retryWait):
		case <-ctx.Done():
			return
		}
	}
	// tanpa commit: pesan muncul lagi setelah rebalance/restart
	c.log.Errorw("pesan gagal diproses", "partition", m.Partition, "offset", m.Offset, "error", err)
}
