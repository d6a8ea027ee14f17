package run

import (
	"context"

	"github.com/oronts/datahub/internal/ports"
)

type simpleEvent struct {
	eventType string
	payload   interface{}
}

func (e simpleEvent) EventType() string    { return e.eventType }
func (e simpleEvent) Payload() interface{} { return e.payload }

func (s *Service) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if s.deps.Events == nil {
		return
	}
	_ = s.deps.Events.Publish(ctx, simpleEvent{eventType: eventType, payload: payload})
}
