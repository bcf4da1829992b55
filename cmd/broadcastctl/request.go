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
	"github.com/alkime/broadcast/pkg/broadcast"
)

// RequestCmd broadcasts one request and prints replies as they arrive.
type RequestCmd struct {
	Name           string        `arg:"" help:"Channel name to broadcast on"`
	Body           string        `arg:"" optional:"" help:"Request body"`
	Expect         []string      `flag:"" optional:"" help:"Hostnames to wait for (default: none, i.e. end immediately)"`
	ConnectTimeout time.Duration `flag:"" default:"5s" help:"Max wait before the first reply"`
	IdleTimeout    time.Duration `flag:"" default:"5s" help:"Max wait between replies once streaming"`
	Bus            string        `flag:"" env:"BUS_BACKEND" default:"inmem" help:"Bus backend: inmem or http"`
	BusURL         string        `flag:"" env:"BUS_URL" default:"http://localhost:8080" help:"httpbus server URL (bus=http only)"`
}

// Run executes the request command.
func (r *RequestCmd) Run() error {
	log := newCLILogger()

	bus, err := buildBus(r.Bus, r.BusURL, log)
	if err != nil {
		return err
	}

	self := identity.New()
	reg := presence.New()
	for _, h := range r.Expect {
		reg.Mark(h)
	}

	requester := broadcast.NewRequester(bus, self, reg, identity.Generator{}, logger.NewAdapter(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := requester.Request(ctx, r.Name, []byte(r.Body),
		broadcast.WithConnectTimeout(r.ConnectTimeout),
		broadcast.WithIdleTimeout(r.IdleTimeout),
	)

	for evt := range conv.Events() {
		switch evt.Kind {
		case broadcast.EventAck:
			fmt.Printf("%s acked\n", evt.Host)
		case broadcast.EventData:
			fmt.Printf("%s: %s\n", evt.Host, evt.Body)
		case broadcast.EventHostEnd:
			fmt.Printf("%s done\n", evt.Host)
		case broadcast.EventEnd:
			fmt.Printf("completed: %d host(s) replied\n", len(evt.Responses))
			if len(evt.Expecting) > 0 {
				fmt.Printf("still expecting: %v\n", evt.Expecting)
			}
		case broadcast.EventError:
			return fmt.Errorf("broadcastctl: request %q: %w", r.Name, evt.Err)
		}
	}

	return nil
}
