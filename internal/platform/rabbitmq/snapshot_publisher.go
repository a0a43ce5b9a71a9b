package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Snapshot is one store write travelling through the persistence queue.
type Snapshot struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// SnapshotPublisher forwards store writes to the snapshot queue instead of
// writing them directly. The SnapshotPersistWorker drains the queue into the
// real store; whichever snapshot lands last wins.
type SnapshotPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewSnapshotPublisher(conn *amqp.Connection, queueName string) *SnapshotPublisher {
	return &SnapshotPublisher{conn: conn, queueName: queueName}
}

// Set implements the persister used by the state services.
func (p *SnapshotPublisher) Set(ctx context.Context, key string, value []byte) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare snapshot queue failed: %w", err)
	}

	payload, err := json.Marshal(Snapshot{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish snapshot failed: %w", err)
	}
	return nil
}
