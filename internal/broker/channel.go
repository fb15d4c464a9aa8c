package broker

import (
	"context"
	"errors"
	"sync"
)

// ChannelQueue is an in-process MessageQueue for local runs and tests.
type ChannelQueue struct {
	ch     chan []byte
	once   sync.Once
	closed chan struct{}
}

func NewChannelQueue(buffer int) *ChannelQueue {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelQueue{
		ch:     make(chan []byte, buffer),
		closed: make(chan struct{}),
	}
}

func (q *ChannelQueue) Publish(ctx context.Context, data []byte) error {
	msg := make([]byte, len(data))
	copy(msg, data)

	select {
	case q.ch <- msg:
		return nil
	case <-q.closed:
		return errors.New("queue closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ChannelQueue) Consume(ctx context.Context, handler func([]byte) error) error {
	for {
		select {
		case msg := <-q.ch:
			if err := handler(msg); err != nil {
				return err
			}
		case <-q.closed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *ChannelQueue) Close() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}
