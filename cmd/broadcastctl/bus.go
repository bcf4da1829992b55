package main

import (
	"fmt"
	"log/slog"

	"github.com/alkime/broadcast/internal/bus/httpbus"
	"github.com/alkime/broadcast/internal/bus/inmem"
	"github.com/alkime/broadcast/pkg/broadcast"
)

// buildBus resolves the --bus flag (shared by every subcommand) to a
// concrete broadcast.Bus. "inmem" only makes sense when listen and
// request run in the same process; "http" talks to a running
// httpbus.Server at busURL.
func buildBus(backend, busURL string, log *slog.Logger) (broadcast.Bus, error) {
	switch backend {
	case "inmem":
		return inmem.New(), nil
	case "http":
		log.Debug("using http bus", "url", busURL)
		return httpbus.NewClient(busURL), nil
	default:
		return nil, fmt.Errorf("broadcastctl: unknown bus backend %q (want inmem or http)", backend)
	}
}
