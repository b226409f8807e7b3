package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"consoled/internal/sweeper"
	"consoled/pkg/config"
	"consoled/pkg/consoles"
	"consoled/pkg/logger"
	"consoled/pkg/migrate"
	"consoled/pkg/models"
	"consoled/pkg/notify"
	"consoled/pkg/store"
)

// systemActor performs server-side work that has no requesting user:
// schema migration and delegated notification flag updates.
var systemActor = models.Actor{ID: "system", Name: "system", Admin: true}

// App encapsulates the server components and lifecycle.
type App struct {
	cfg     config.Config
	version string

	b      notify.Broadcaster
	router *notify.Router
	svc    *consoles.Service

	srv *http.Server
}

// New initializes logging, the store and the event transport. It does not
// run the schema migration or start the HTTP server; call Run for those.
func New(cfg config.Config, version string) (*App, error) {
	_ = godotenv.Load(".env")

	logger.Init(cfg.Logging.Level)
	if cfg.Logging.AuditDir != "" {
		if err := logger.AttachAuditFileSink(cfg.Logging.AuditDir); err != nil {
			return nil, fmt.Errorf("failed to attach audit sink: %w", err)
		}
	}

	if err := store.Open(cfg.Server.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Server.DBPath, err)
	}

	var b notify.Broadcaster
	if addr := cfg.Broadcast.Redis.Addr; addr != "" {
		b = notify.NewRedisBroadcaster(addr, cfg.Broadcast.Channel)
	} else {
		b = notify.NewLoopbackBroadcaster()
	}

	router := notify.NewRouter(b, notify.NewPresence(), cfg.Broadcast.GlobalMute)

	a := &App{
		cfg:     cfg,
		version: version,
		b:       b,
		router:  router,
		svc:     consoles.NewService(router),
	}
	return a, nil
}

// Router exposes the notification router, mainly for tests.
func (a *App) Router() *notify.Router { return a.router }

// Service exposes the console service, mainly for tests.
func (a *App) Service() *consoles.Service { return a.svc }

// Run migrates the schema, subscribes to broadcast events and serves HTTP
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	migrated, err := migrate.Run(ctx, systemActor)
	if err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	if migrated {
		logger.Info("schema_migrated", "version", migrate.SchemaVersion)
	}

	// Delegated notification events published by other nodes are applied
	// here on behalf of the server.
	if err := a.b.Subscribe(ctx, func(ev models.Event) {
		a.router.HandleEvent(ev, systemActor, false)
	}); err != nil {
		return fmt.Errorf("broadcast subscribe failed: %w", err)
	}

	stopSweep, err := sweeper.Start(ctx, a.cfg.Sweep)
	if err != nil {
		return err
	}
	defer stopSweep()

	a.printBanner()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errCh:
		_ = a.shutdown()
		return err
	}
}

// shutdown stops the HTTP server and releases transport and storage.
func (a *App) shutdown() error {
	if a.srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(sctx); err != nil {
			logger.Error("http_shutdown_failed", "error", err)
		}
	}
	if err := a.b.Close(); err != nil {
		logger.Error("broadcast_close_failed", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
		return err
	}
	return nil
}
