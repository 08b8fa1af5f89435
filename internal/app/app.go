package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/five82/stockpulse/internal/config"
	"github.com/five82/stockpulse/internal/logging"
	"github.com/five82/stockpulse/internal/scoring"
	"github.com/five82/stockpulse/internal/session"
	"github.com/five82/stockpulse/internal/ui"
)

// Options configure the stockpulse application.
type Options struct {
	ConfigPath string
	APIURL     string // overrides config and environment when set
	LogLevel   string
	ThemeName  string
}

// Run boots the stockpulse TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath, config.Overrides{
		APIURL:   opts.APIURL,
		LogLevel: opts.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	client, err := scoring.NewClient(cfg.APIURL,
		scoring.WithTimeout(cfg.RequestTimeout),
		scoring.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init scoring client: %w", err)
	}

	logger.Info().
		Str("api_url", cfg.APIURL).
		Str("log_level", cfg.LogLevel).
		Msg("stockpulse starting")

	sess := session.New(client, session.Options{
		Logger:        logger,
		CountdownTick: cfg.CountdownTick,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The UI comes up immediately and shows "checking service" until the
	// startup probes land. Quitting the UI cancels probes still in flight.
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		sess.Start(gctx)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		if err := ui.Run(ui.Options{
			Context:   gctx,
			Session:   sess,
			LogPath:   cfg.LogFile,
			ThemeName: opts.ThemeName,
		}); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	})

	err = g.Wait()
	sess.Close()
	return err
}
