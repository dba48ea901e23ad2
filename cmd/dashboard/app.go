package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-campaigns/internal/config"
	"github.com/xavierca1/ligue-campaigns/internal/infra/database"
	"github.com/xavierca1/ligue-campaigns/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-campaigns/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-campaigns/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-campaigns/internal/infra/queue"
	"github.com/xavierca1/ligue-campaigns/internal/logging"
	"github.com/xavierca1/ligue-campaigns/internal/usecase"
)

// app holds every dependency a subcommand may need. It is built once per
// invocation by newApp and released by Close.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sql.DB
	session *usecase.Session
	client  *backend.Client
	broker  *queue.RabbitMQ
	events  usecase.AudienceEventPublisher
	status  *http.Server
}

type appOptions struct {
	// interactive sends logs to a file next to the local database so they
	// don't break the TUI.
	interactive bool
	// restoreSession loads the saved token and fails when there is none.
	restoreSession bool
}

func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logPath := ""
	if opts.interactive {
		logPath = filepath.Join(filepath.Dir(cfg.DBPath), "dashboard.log")
	}

	// 1. Banco local (precisa existir antes do arquivo de log)
	db, err := database.NewDBConnection(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, logPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	// 2. Sessão e cliente do backend
	session := usecase.NewSession(database.NewTokenRepository(db), logger)
	client := backend.NewClient(cfg.APIURL, session, middleware.NewInstrumentedTransport(nil), logger)
	session.WithGateway(client)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		session: session,
		client:  client,
		events:  queue.LogProducer{Logger: logger},
	}

	// 3. Broker (opcional)
	if cfg.RabbitMQURL != "" {
		broker, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("⚠️ RabbitMQ indisponível, eventos de audiência só serão registrados no log", zap.Error(err))
		} else {
			a.broker = broker
			a.events = queue.NewProducer(broker.Ch)
		}
	}

	// 4. Servidor de status (opcional)
	if cfg.StatusAddr != "" {
		a.startStatusServer()
	}

	if opts.restoreSession {
		if err := session.Init(cmd.Context()); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *app) startStatusServer() {
	var broker handlers.BrokerStatus
	if a.broker != nil {
		broker = a.broker
	}
	health := handlers.NewHealthHandler(a.client, a.db, broker, a.session, version)

	a.status = &http.Server{
		Addr:              a.cfg.StatusAddr,
		Handler:           handlers.NewStatusRouter(health),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("🔥 servidor de status no ar", zap.String("addr", a.cfg.StatusAddr))
		if err := a.status.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("❌ servidor de status parou", zap.Error(err))
		}
	}()
}

func (a *app) Close() {
	if a.status != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.status.Shutdown(ctx)
		cancel()
	}
	if a.broker != nil {
		a.broker.Close()
	}
	a.db.Close()
	a.logger.Sync()
}

func (a *app) audienceOptions() usecase.AudienceOptions {
	return usecase.AudienceOptions{
		PerPage:  a.cfg.PerPage,
		Debounce: a.cfg.Debounce,
	}
}
