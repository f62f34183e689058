package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/kudos-points/internal/account"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/circulation"
	"github.com/frahmantamala/kudos-points/internal/department"
	"github.com/frahmantamala/kudos-points/internal/reset"
	"github.com/frahmantamala/kudos-points/internal/transfer"
	"github.com/frahmantamala/kudos-points/internal/transport"
	"github.com/frahmantamala/kudos-points/internal/transport/middleware"
	"github.com/frahmantamala/kudos-points/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	router := chi.NewRouter()
	setupRoutes(router, deps)

	var scheduler *reset.Scheduler
	if deps.Config.Scheduler.Enabled {
		scheduler, err = reset.NewScheduler(deps.Services.Reset, deps.Config.Scheduler.ResetSchedule, deps.Config.Scheduler.SystemActorID, lg)
		if err != nil {
			lg.Error("invalid reset schedule", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		if scheduler != nil {
			scheduler.Stop(ctx)
		}
		deps.Close()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	lg.Info("Server stopped")
}

func setupRoutes(router *chi.Mux, deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)
	svc := deps.Services

	sqlDB, err := deps.DB.DB()
	if err != nil {
		deps.Logger.Error("failed to get sql db for health checks", "error", err)
	}

	handlers := rest.Handlers{
		Health:      rest.NewHealthHandler(base, sqlDB, deps.Config.Database.Driver),
		Auth:        auth.NewHandler(base, svc.Auth),
		Account:     account.NewHandler(base, svc.Account),
		Transfer:    transfer.NewHandler(base, svc.Transfer),
		Circulation: circulation.NewHandler(base, svc.Circulation),
		Department:  department.NewHandler(base, svc.Department),
		Reset:       reset.NewHandler(base, svc.Reset),
	}

	rest.RegisterAllRoutes(router, handlers, rest.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		LoginRateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: deps.Config.RateLimit.LoginRequestsPerSecond,
			Burst:             deps.Config.RateLimit.LoginBurst,
		},
	}, deps.Logger)
}
