package run

import (
	"context"
	"fmt"

	"github.com/oronts/datahub/internal/ports"
)

// StartConsumer activates pipelineCode's message-queue consumer, attaching
// it to the configured MessageBroker. Each delivered message triggers one
// run of the pipeline; the consumer's processed/failed counters track the
// outcome (spec §3 Consumer, §6 "startConsumer(pipelineCode)").
func (s *Service) StartConsumer(ctx context.Context, pipelineCode string) (Result, error) {
	c, err := s.deps.Consumers.Get(ctx, pipelineCode)
	if err != nil {
		return failed(fmt.Sprintf("load consumer %s: %v", pipelineCode, err)), nil
	}
	if c.IsActive {
		return ok(fmt.Sprintf("consumer %s is already active", pipelineCode)), nil
	}
	if c.QueueName == "" {
		c.QueueName = pipelineCode
	}
	c.Start()
	if err := s.deps.Consumers.Save(ctx, c); err != nil {
		return failed(fmt.Sprintf("persist consumer %s: %v", pipelineCode, err)), nil
	}

	if s.deps.Broker == nil {
		return ok(fmt.Sprintf("consumer %s marked active (no broker configured)", pipelineCode)), nil
	}

	consumerCtx := context.Background()
	cancel, err := s.deps.Broker.StartConsuming(consumerCtx, c.QueueName, func(handlerCtx context.Context, _ ports.QueueMessage) error {
		result, runErr := s.RunPipeline(handlerCtx, pipelineCode)
		succeeded := runErr == nil && result.Success
		current, getErr := s.deps.Consumers.Get(handlerCtx, pipelineCode)
		if getErr != nil {
			return getErr
		}
		current.RecordMessage(succeeded, s.deps.Now())
		return s.deps.Consumers.Save(handlerCtx, current)
	})
	if err != nil {
		c.Stop()
		_ = s.deps.Consumers.Save(ctx, c)
		return failed(fmt.Sprintf("start consuming %s: %v", c.QueueName, err)), nil
	}

	s.mu.Lock()
	s.consumerCancels[pipelineCode] = cancel
	s.mu.Unlock()

	return ok(fmt.Sprintf("consumer %s started on queue %s", pipelineCode, c.QueueName)), nil
}

// StopConsumer deactivates pipelineCode's consumer and cancels its broker
// subscription, if any. Runs it already spawned are unaffected.
func (s *Service) StopConsumer(ctx context.Context, pipelineCode string) (Result, error) {
	c, err := s.deps.Consumers.Get(ctx, pipelineCode)
	if err != nil {
		return failed(fmt.Sprintf("load consumer %s: %v", pipelineCode, err)), nil
	}
	c.Stop()
	if err := s.deps.Consumers.Save(ctx, c); err != nil {
		return failed(fmt.Sprintf("persist consumer %s: %v", pipelineCode, err)), nil
	}

	s.mu.Lock()
	cancel, hasCancel := s.consumerCancels[pipelineCode]
	delete(s.consumerCancels, pipelineCode)
	s.mu.Unlock()
	if hasCancel && cancel != nil {
		cancel()
	}

	return ok(fmt.Sprintf("consumer %s stopped", pipelineCode)), nil
}
