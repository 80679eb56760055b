// Command terminal plays the heart game in a terminal with tcell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/hearts/internal/adapters/audio"
	"github.com/okian/hearts/internal/adapters/terminal"
	app "github.com/okian/hearts/internal/app"
	"github.com/okian/hearts/internal/config"
	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/pkg/logger"
)

const (
	// padding keeps hearts one cell away from the play area edges.
	padding      = 1.0
	closeTimeout = 2 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "hearts:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// The screen owns stdout, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	log := logger.Get()

	player := audio.NewPlayer(audio.WithSampleRate(cfg.SampleRate), audio.WithVolume(cfg.CueVolume))
	_ = player.Init(ctx) // muted without a device
	defer player.Close()

	svc := app.New(
		app.WithLogger(log),
		app.WithMaxSessions(1),
		app.WithInboxSize(cfg.InboxSize),
		app.WithGameSettings(cfg.GameSettings()),
		app.WithGameOptions(game.WithPadding(padding)),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	screen, err := terminal.NewScreen()
	if err != nil {
		return err
	}
	defer screen.Fini()

	view := terminal.ViewFor(screen, player)
	sess, err := svc.Open(ctx, view)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		_ = svc.Close(closeCtx, sess.ID())
	}()

	err = terminal.NewShell(screen, view, sess, terminal.WithLogger(log.Named("terminal"))).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
