package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/frahmantamala/kudos-points/internal/core/events"
	"github.com/frahmantamala/kudos-points/pkg/logger"
	"github.com/frahmantamala/kudos-points/pkg/rabbitmq"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage ledger events: publish test events through the bus and broker forwarder`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test ledger event",
	Long:  `Publish a test ledger event to the event bus, forwarding it to the broker when enabled`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventData string

func publishTestEvent(eventType string) {
	lg := logger.LoggerWrapper()

	if !slices.Contains(events.LedgerEventTypes, eventType) {
		fmt.Fprintf(os.Stderr, "unknown event type %q; expected one of %v\n", eventType, events.LedgerEventTypes)
		os.Exit(1)
	}

	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	publisher := rabbitmq.NewPublisher(config.RabbitMQ.Enabled, config.RabbitMQ.URL, lg)
	defer publisher.Close()

	eventBus := events.NewEventBus(lg)
	events.NewBrokerForwarder(publisher, config.RabbitMQ.Exchange, lg).RegisterEventHandlers(eventBus)

	testEvent := events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)

	if err := eventBus.PublishSync(context.Background(), testEvent); err != nil {
		lg.Error("failed to publish event", "error", err)
		os.Exit(1)
	}

	lg.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
