package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alkime/broadcast/internal/identity"
	"github.com/alkime/broadcast/internal/logger"
	"github.com/alkime/broadcast/pkg/broadcast"
)

// ListenCmd surfaces inbound requests on a channel name, replying with
// this process's hostname for every request it sees.
type ListenCmd struct {
	Name   string `arg:"" help:"Channel name to listen on"`
	Bus    string `flag:"" env:"BUS_BACKEND" default:"inmem" help:"Bus backend: inmem or http"`
	BusURL string `flag:"" env:"BUS_URL" default:"http://localhost:8080" help:"httpbus server URL (bus=http only)"`
}

// Run executes the listen command.
func (l *ListenCmd) Run() error {
	log := newCLILogger()

	bus, err := buildBus(l.Bus, l.BusURL, log)
	if err != nil {
		return err
	}

	self := identity.New()
	listener := broadcast.NewListener(bus, self, logger.NewAdapter(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sub, err := listener.Listen(ctx, l.Name)
	if err != nil {
		return fmt.Errorf("broadcastctl: listen on %q: %w", l.Name, err)
	}
	defer sub.Close(context.Background())

	log.Info("listening", "name", l.Name, "host", self.Hostname())

	for req := range sub.Requests() {
		log.Info("request received", "name", l.Name, "body", string(req.Body))
		if err := req.Reply([]byte("ack from " + self.Hostname())); err != nil {
			log.Warn("reply failed", "error", err)
		}
		if err := req.End(); err != nil {
			log.Warn("end failed", "error", err)
		}
	}

	return nil
}

func newCLILogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}) //nolint:exhaustruct // default HandlerOptions fields
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
