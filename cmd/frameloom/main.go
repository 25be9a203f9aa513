// Command frameloom streams the contents of a media directory as timed GIF
// frames over TCP and displays whatever it receives back in a window, all
// in one process: config, lifecycle, server, client, window, and watch
// wired together exactly once.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/zsiec/frameloom/internal/client"
	"github.com/zsiec/frameloom/internal/config"
	"github.com/zsiec/frameloom/internal/lifecycle"
	"github.com/zsiec/frameloom/internal/netio"
	"github.com/zsiec/frameloom/internal/server"
	"github.com/zsiec/frameloom/internal/watch"
	"github.com/zsiec/frameloom/internal/window"
)

func main() {
	os.Exit(run())
}

func run() int {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.Parse(os.Args)
	if err != nil {
		log.Error("parse arguments", "error", err)
		return -1
	}
	if cfg.MediaDir == "" {
		log.Error("no media directory given")
		return config.ExitNoMediaDirectory
	}

	endpoints := netio.Resolve(cfg.ServerHost, config.ServerPort, config.ResolveBudget)
	if len(endpoints) == 0 {
		log.Error("no endpoints resolved", "server", cfg.ServerHost)
		return config.ExitNoEndpoints
	}

	srv := server.New(log)
	listeners, err := srv.Bind(endpoints)
	if err != nil {
		log.Error("no endpoint could be bound")
		return config.ExitNoAcceptorBound
	}

	ctx, cancel := lifecycle.Root()
	defer cancel(nil)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Run(ctx, listeners, cfg.MediaDir) }()

	ui, err := window.New(1280, 720)
	if err != nil {
		log.Error("create window", "error", err)
		return -1
	}
	defer ui.Close()

	go watch.Signals(ctx, cancel)
	go watch.Events(ctx, cancel, ui)
	go func() {
		if err := client.Run(ctx, endpoints, ui, log); err != nil {
			log.Error("client exited", "error", err)
		}
		cancel(err)
	}()

	<-ctx.Done()

	if err := <-serveErr; err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
	}
	return 0
}
