package ports

import "context"

// QueueMessage is one message delivered to a trigger pipeline's consumer.
type QueueMessage struct {
	ID      string
	Payload []byte
}

// MessageBroker is the out-of-scope external message-queue broker a
// Consumer attaches to. StartConsuming registers a handler invoked per
// message until the returned cancellation is called or ctx is done.
type MessageBroker interface {
	StartConsuming(ctx context.Context, queueName string, handler func(context.Context, QueueMessage) error) (cancel func(), err error)
}
