package app

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"pubchat/pkg/banner"
	"pubchat/pkg/config"
	"pubchat/pkg/relay"
)

// App encapsulates the relay components and lifecycle.
type App struct {
	cfg       *config.Config
	addr      string
	source    string
	version   string
	commit    string
	buildDate string

	hub *relay.Hub
	srv *http.Server
}

// New builds the relay components. It does not start the HTTP server or
// the sweeper; call Run to start those and block until shutdown.
func New(cfg *config.Config, addr, source, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	if cfg == nil {
		cfg = &config.Config{}
	}
	if addr == "" {
		addr = cfg.Addr()
	}
	hub := relay.NewHub(relay.Options{
		RPS:   cfg.Relay.RateLimit.RPS,
		Burst: cfg.Relay.RateLimit.Burst,
	})
	return &App{
		cfg:       cfg,
		addr:      addr,
		source:    source,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		hub:       hub,
	}, nil
}

// Run starts the sweeper (if enabled) and the HTTP server, and blocks
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Relay.Sweep.Enabled {
		if err := relay.StartSweeper(ctx, a.hub, a.cfg.Relay.Sweep.Cron, a.cfg.SweepIdlePeriod()); err != nil {
			return err
		}
	}

	a.printBanner()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "" && a.commit != "none" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "" && a.buildDate != "unknown" {
		verStr += " @ " + a.buildDate
	}
	banner.Print(a.cfg, a.addr, a.source, verStr)
}

// startHTTP builds the handler, starts the HTTP server in a goroutine and
// returns a channel that will contain any server error.
func (a *App) startHTTP() <-chan error {
	handler := relay.Handler(a.hub, a.cfg.Relay.CORS.AllowedOrigins)
	a.srv = &http.Server{Addr: a.addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srv.ListenAndServe()
	}()
	return errCh
}
