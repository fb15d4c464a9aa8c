package broker

import "context"

// MessageQueue fans sensor reading batches from the ingestion edge to the
// processing workers.
type MessageQueue interface {
	Publish(ctx context.Context, data []byte) error
	Consume(ctx context.Context, handler func([]byte) error) error
	Close() error
}
