// Package identity supplies a process's own hostname identity and
// fresh broadcast identifiers, implementing broadcast.Identity and
// broadcast.IDGenerator.
package identity

import (
	"os"

	"github.com/google/uuid"
)

// Self is a process-stable broadcast.Identity backed by the OS
// hostname, resolved once at construction.
type Self struct {
	hostname string
}

// New resolves the local hostname via os.Hostname. If that fails (rare,
// but possible in minimal containers), it falls back to a random
// identifier so the process can still participate in conversations.
func New() *Self {
	h, err := os.Hostname()
	if err != nil || h == "" {
		h = "unknown-" + uuid.NewString()[:8]
	}
	return &Self{hostname: h}
}

// NewWithHostname bypasses OS resolution, for tests and for deployments
// that assign logical names rather than relying on the kernel hostname.
func NewWithHostname(hostname string) *Self {
	return &Self{hostname: hostname}
}

// Hostname implements broadcast.Identity.
func (s *Self) Hostname() string { return s.hostname }

// Generator produces broadcast ids with google/uuid. The zero value is
// ready to use.
type Generator struct{}

// NewBroadcastID implements broadcast.IDGenerator.
func (Generator) NewBroadcastID() string {
	return uuid.NewString()
}
