package run

import "time"

// Consumer is a message-queue worker that spawns runs of a trigger pipeline
// as messages arrive. The concrete broker is an external collaborator; this
// type only models the lifecycle toggle and counters exposed to operators.
type Consumer struct {
	PipelineCode      string
	QueueName         string
	IsActive          bool
	MessagesProcessed int
	MessagesFailed    int
	LastMessageAt     time.Time
}

// Start marks the consumer active. It is idempotent.
func (c *Consumer) Start() {
	c.IsActive = true
}

// Stop marks the consumer inactive. It is idempotent and does not affect
// runs the consumer already spawned.
func (c *Consumer) Stop() {
	c.IsActive = false
}

// RecordMessage folds in the outcome of one processed message.
func (c *Consumer) RecordMessage(succeeded bool, at time.Time) {
	c.MessagesProcessed++
	if !succeeded {
		c.MessagesFailed++
	}
	c.LastMessageAt = at
}
