package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xavierca1/proposal-control/internal/config"
	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/infra/database"
	"github.com/xavierca1/proposal-control/internal/infra/http/handlers"
	"github.com/xavierca1/proposal-control/internal/infra/http/middleware"
	"github.com/xavierca1/proposal-control/internal/infra/identity"
	"github.com/xavierca1/proposal-control/internal/infra/integration/supabase"
	"github.com/xavierca1/proposal-control/internal/infra/mail"
	"github.com/xavierca1/proposal-control/internal/infra/notify"
	"github.com/xavierca1/proposal-control/internal/infra/queue"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("erro fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuração carregada",
		"listen_addr", cfg.ListenAddr,
		"auth_mode", cfg.AuthMode,
		"store_backend", cfg.StoreBackend,
		"rabbitmq", cfg.RabbitMQURL != "",
		"mail", cfg.Mail.Enabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Armazenamento
	var (
		store entity.ProposalStore
		db    *sql.DB
	)
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err = database.NewDBConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.RunMigrations {
			if err := database.RunMigrations(db); err != nil {
				return err
			}
			logger.Info("migrations aplicadas")
		}
		store = database.NewProposalRepository(db)
	case config.StoreMemory:
		store = database.NewMemoryStore()
	default:
		store = supabase.NewRestStore(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.HTTPClientTimeout, logger)
	}

	// 2. Identidade
	var identityService entity.IdentityService
	if cfg.AuthMode == config.AuthNone {
		identityService = identity.NewStatic("")
	} else {
		identityService = supabase.NewAuthClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.HTTPClientTimeout, logger)
	}

	// 3. Fila e email (opcionais)
	var (
		rabbitMQ *queue.RabbitMQ
		events   usecase.EventPublisher
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		events = queue.NewProducer(rabbitMQ.Ch)
		logger.Info("rabbitmq conectado", "exchange", queue.ExchangeName)
	}

	var mailer usecase.DigestMailer
	if cfg.Mail.Enabled() {
		mailer = mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From)
	}

	// 4. Casos de uso
	inbox := notify.NewInbox(notify.DefaultCapacity, logger)
	recorder := middleware.PrometheusRecorder{}

	gate := usecase.NewSessionGate(identityService, inbox, recorder, logger)
	sync := usecase.NewRecordSynchronizer(usecase.SynchronizerDeps{
		Store:    store,
		Sessions: gate,
		Notifier: inbox,
		Events:   events,
		Recorder: recorder,
		Logger:   logger,
	})
	app := usecase.NewApp(gate, sync, logger)
	digest := usecase.NewFollowUpDigestUseCase(gate, sync, mailer, cfg.FollowUpRecipient, logger)

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop()

	// 5. Handlers
	limiter := handlers.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	go limiter.Cleanup(ctx.Done())

	health := handlers.NewHealthHandler(nil, nil, cfg.NeedsSupabase())
	if db != nil {
		health.DB = db
	}
	if rabbitMQ != nil {
		health.RabbitMQ = rabbitMQ
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:          handlers.NewAuthHandler(gate, limiter),
		Proposals:     handlers.NewProposalHandler(sync),
		Dashboard:     handlers.NewDashboardHandler(sync),
		Notifications: handlers.NewNotificationHandler(inbox),
		Reports:       handlers.NewReportHandler(digest),
		Health:        health,
		Gate:          gate,
		CORSOrigins:   cfg.CORSOrigins,
		TrustProxy:    cfg.TrustProxy,
	})

	// 6. Servidor
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🔥 servidor de propostas rodando", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("sinal recebido, encerrando")
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("servidor http: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("erro no shutdown: %w", err)
	}
	logger.Info("servidor encerrado")
	return nil
}
