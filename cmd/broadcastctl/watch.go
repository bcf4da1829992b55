package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alkime/broadcast/internal/identity"
	"github.com/alkime/broadcast/internal/logger"
	"github.com/alkime/broadcast/internal/presence"
	"github.com/alkime/broadcast/internal/tui/watch"
	"github.com/alkime/broadcast/pkg/broadcast"

	tea "github.com/charmbracelet/bubbletea"
)

// WatchCmd broadcasts one request and renders its progress as a live
// terminal dashboard instead of a scrolling log.
type WatchCmd struct {
	Name           string        `arg:"" help:"Channel name to broadcast on"`
	Body           string        `arg:"" optional:"" help:"Request body"`
	Expect         []string      `flag:"" optional:"" help:"Hostnames to wait for (default: none, i.e. end immediately)"`
	ConnectTimeout time.Duration `flag:"" default:"5s" help:"Max wait before the first reply"`
	IdleTimeout    time.Duration `flag:"" default:"5s" help:"Max wait between replies once streaming"`
	Bus            string        `flag:"" env:"BUS_BACKEND" default:"inmem" help:"Bus backend: inmem or http"`
	BusURL         string        `flag:"" env:"BUS_URL" default:"http://localhost:8080" help:"httpbus server URL (bus=http only)"`
}

// Run executes the watch command.
func (w *WatchCmd) Run() error {
	log := newCLILogger()

	bus, err := buildBus(w.Bus, w.BusURL, log)
	if err != nil {
		return err
	}

	self := identity.New()
	reg := presence.New()
	for _, h := range w.Expect {
		reg.Mark(h)
	}

	requester := broadcast.NewRequester(bus, self, reg, identity.Generator{}, logger.NewAdapter(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := requester.Request(ctx, w.Name, []byte(w.Body),
		broadcast.WithConnectTimeout(w.ConnectTimeout),
		broadcast.WithIdleTimeout(w.IdleTimeout),
	)

	model := watch.New(w.Name, conv.Events())
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("broadcastctl: watch %q: %w", w.Name, err)
	}

	return nil
}
