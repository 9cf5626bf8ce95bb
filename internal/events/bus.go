package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

func topic(eventName string) string {
	return "events." + eventName
}

func marshaler() cqrs.JSONMarshaler {
	return cqrs.JSONMarshaler{
		GenerateName: cqrs.StructName,
	}
}

// Bus publishes domain events to "events.<StructName>" topics.
type Bus struct {
	bus *cqrs.EventBus
}

func NewBus(pub message.Publisher) (*Bus, error) {
	bus, err := cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return topic(params.EventName), nil
		},
		Marshaler: marshaler(),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create event bus: %w", err)
	}
	return &Bus{bus: bus}, nil
}

func (b *Bus) Publish(ctx context.Context, event any) error {
	if err := b.bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %T: %w", event, err)
	}
	return nil
}
