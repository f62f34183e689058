package events

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/kudos-points/pkg/rabbitmq"
)

// BrokerForwarder relays bus events to a message broker exchange using the event type as routing key.
type BrokerForwarder struct {
	publisher rabbitmq.Publisher
	exchange  string
	logger    *slog.Logger
}

func NewBrokerForwarder(publisher rabbitmq.Publisher, exchange string, logger *slog.Logger) *BrokerForwarder {
	return &BrokerForwarder{
		publisher: publisher,
		exchange:  exchange,
		logger:    logger,
	}
}

func (f *BrokerForwarder) Forward(ctx context.Context, event Event) error {
	body := map[string]interface{}{
		"id":          event.EventID(),
		"type":        event.EventType(),
		"occurred_at": event.OccurredAt(),
		"data":        event.Payload(),
	}
	if err := f.publisher.Publish(ctx, f.exchange, event.EventType(), body); err != nil {
		f.logger.Error("failed to forward event", "event_type", event.EventType(), "event_id", event.EventID(), "error", err)
		return err
	}
	return nil
}

func (f *BrokerForwarder) RegisterEventHandlers(eventBus *EventBus) {
	for _, t := range LedgerEventTypes {
		eventBus.Subscribe(t, f.Forward)
	}

	f.logger.Info("broker forwarder registered", "exchange", f.exchange, "handlers", LedgerEventTypes)
}
