package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/core/events"
	"github.com/frahmantamala/kudos-points/internal/reset"
	"github.com/frahmantamala/kudos-points/pkg/logger"
	"github.com/frahmantamala/kudos-points/pkg/rabbitmq"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers: the quarterly balance reset scheduler and the ledger event consumer.`,
}

var resetWorkerCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start the balance reset scheduler",
	Long:  `Run ResetAll on the configured cron schedule, or once with --now`,
	Run: func(cmd *cobra.Command, args []string) {
		startResetWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start ledger event consumer",
	Long:  `Consume ledger events from the broker exchange and log them`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	resetNow      bool
	resetSchedule string
	eventQueue    string
)

func startResetWorker() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()
	lg := deps.Logger

	if resetNow {
		actor := &auth.User{ID: deps.Config.Scheduler.SystemActorID, Role: auth.RoleSuperAdmin}
		result, err := deps.Services.Reset.ResetAll(context.Background(), actor)
		if err != nil {
			lg.Error("reset failed", "error", err)
			os.Exit(1)
		}
		lg.Info("reset completed", "accounts", result.AccountsReset, "baseline", result.Baseline)
		return
	}

	schedule := getStringFlag(resetSchedule, deps.Config.Scheduler.ResetSchedule)
	scheduler, err := reset.NewScheduler(deps.Services.Reset, schedule, deps.Config.Scheduler.SystemActorID, lg)
	if err != nil {
		lg.Error("invalid reset schedule", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("reset worker is running. Press Ctrl+C to stop.", "schedule", schedule)

	sig := <-sigChan
	lg.Info("received signal, shutting down reset worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(ctx)
	lg.Info("reset worker shutdown complete")
}

// ledgerMessage mirrors the body BrokerForwarder publishes.
type ledgerMessage struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func startEventWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	if !config.RabbitMQ.Enabled {
		lg.Error("event worker needs rabbitmq.enabled=true")
		os.Exit(1)
	}

	consumer, err := rabbitmq.NewConsumer(config.RabbitMQ.URL, lg)
	if err != nil {
		lg.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := func(ctx context.Context, routingKey string, body []byte) bool {
		var msg ledgerMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			// malformed bodies are dropped; requeueing would loop forever
			lg.Error("dropping malformed ledger event", "routing_key", routingKey, "error", err)
			return true
		}
		lg.Info("received ledger event",
			"event_id", msg.ID,
			"event_type", msg.Type,
			"occurred_at", msg.OccurredAt,
			"payload", msg.Data)
		return true
	}

	lg.Info("event worker started. Waiting for events...", "exchange", config.RabbitMQ.Exchange, "queue", eventQueue)
	if err := consumer.Consume(ctx, config.RabbitMQ.Exchange, eventQueue, events.LedgerEventTypes, handler); err != nil {
		lg.Error("event consumer stopped", "error", err)
		os.Exit(1)
	}
	lg.Info("event worker shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	resetWorkerCmd.Flags().BoolVar(&resetNow, "now", false, "Run a single reset immediately and exit")
	resetWorkerCmd.Flags().StringVar(&resetSchedule, "schedule", "", "Cron schedule (overrides config)")
	eventWorkerCmd.Flags().StringVar(&eventQueue, "queue", "kudos.ledger-events", "Queue bound to the ledger exchange")

	workerCmd.AddCommand(resetWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
