// Package main is the entry point for broadcastctl, a CLI over the
// broadcast request/reply protocol: listen for requests, issue one and
// print replies as they arrive, or watch one with a live dashboard.
package main

import (
	"os"

	"github.com/alecthomas/kong"
)

// CLI defines the broadcastctl command structure.
type CLI struct {
	Listen  ListenCmd  `cmd:"" help:"Listen for broadcast requests on a channel name"`
	Request RequestCmd `cmd:"" help:"Broadcast a request and print replies as they arrive"`
	Watch   WatchCmd   `cmd:"" help:"Broadcast a request and render a live dashboard of replies"`
}

func main() {
	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
