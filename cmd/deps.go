package cmd

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/account"
	accountPostgres "github.com/frahmantamala/kudos-points/internal/account/postgres"
	"github.com/frahmantamala/kudos-points/internal/auth"
	authPostgres "github.com/frahmantamala/kudos-points/internal/auth/postgres"
	"github.com/frahmantamala/kudos-points/internal/circulation"
	circulationPostgres "github.com/frahmantamala/kudos-points/internal/circulation/postgres"
	"github.com/frahmantamala/kudos-points/internal/core/database"
	"github.com/frahmantamala/kudos-points/internal/core/events"
	"github.com/frahmantamala/kudos-points/internal/department"
	departmentPostgres "github.com/frahmantamala/kudos-points/internal/department/postgres"
	"github.com/frahmantamala/kudos-points/internal/reset"
	resetPostgres "github.com/frahmantamala/kudos-points/internal/reset/postgres"
	"github.com/frahmantamala/kudos-points/internal/transfer"
	transferPostgres "github.com/frahmantamala/kudos-points/internal/transfer/postgres"
	"github.com/frahmantamala/kudos-points/pkg/logger"
	"github.com/frahmantamala/kudos-points/pkg/rabbitmq"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Services is the wired domain layer shared by the server, worker and seed commands.
type Services struct {
	Auth        *auth.Service
	Account     *account.Service
	Transfer    *transfer.Service
	Circulation *circulation.Service
	Department  *department.Service
	Reset       *reset.Service
}

type Dependencies struct {
	Config    *internal.Config
	DB        *gorm.DB
	SQLX      *sqlx.DB
	EventBus  *events.EventBus
	Publisher rabbitmq.Publisher
	Services  Services
	Logger    *slog.Logger
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.LoggerWrapper()

	db, x, err := database.Open(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	publisher := rabbitmq.NewPublisher(config.RabbitMQ.Enabled, config.RabbitMQ.URL, lg)
	events.NewBrokerForwarder(publisher, config.RabbitMQ.Exchange, lg).RegisterEventHandlers(eventBus)

	policy := config.Policy
	departmentService := department.NewService(departmentPostgres.NewDepartmentRepository(db), eventBus, lg)
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.JWTAccessSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	return &Dependencies{
		Config:    config,
		DB:        db,
		SQLX:      x,
		EventBus:  eventBus,
		Publisher: publisher,
		Logger:    lg,
		Services: Services{
			Auth:        auth.NewService(authPostgres.NewRepository(db), tokenGen, lg),
			Account:     account.NewService(accountPostgres.NewAccountRepository(db), departmentService, policy, eventBus, config.Security.BCryptCost, lg),
			Transfer:    transfer.NewService(transferPostgres.NewTransferRepository(db), policy, eventBus, lg),
			Circulation: circulation.NewService(circulationPostgres.NewCirculationRepository(db), eventBus, lg),
			Department:  departmentService,
			Reset:       reset.NewService(resetPostgres.NewResetRepository(db), policy, eventBus, lg),
		},
	}, nil
}

// Close drains in-flight event handlers before releasing the broker and the pool.
func (d *Dependencies) Close() {
	d.EventBus.Wait()
	d.Publisher.Close()
	if err := d.SQLX.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}
