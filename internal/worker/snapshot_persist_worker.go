package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"docuchat/internal/platform/rabbitmq"
	"docuchat/internal/store"
)

// SnapshotPersistWorker consumes store snapshots published by the state
// services and writes them to the persistent store.
type SnapshotPersistWorker struct {
	conn      *amqp.Connection
	st        store.Store
	queueName string
	log       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSnapshotPersistWorker(conn *amqp.Connection, st store.Store, queueName string, log *zap.Logger) *SnapshotPersistWorker {
	return &SnapshotPersistWorker{
		conn:      conn,
		st:        st,
		queueName: queueName,
		log:       log,
	}
}

func (w *SnapshotPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume snapshot queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var snap rabbitmq.Snapshot
				if err := json.Unmarshal(d.Body, &snap); err != nil {
					w.log.Warn("decode snapshot failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := w.st.Set(workerCtx, snap.Key, snap.Value); err != nil {
					w.log.Warn("persist snapshot failed",
						zap.String("key", snap.Key), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *SnapshotPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
