package watch_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/alkime/broadcast/internal/tui/watch"
	"github.com/alkime/broadcast/pkg/broadcast"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
)

//nolint:gochecknoinits // recommended for CI by the bubbletea maintainers
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type checker struct {
	intervl, timeout time.Duration
}

func (c checker) CheckString(t *testing.T, tm *teatest.TestModel, substr string) {
	teatest.WaitFor(t, tm.Output(), func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	}, teatest.WithCheckInterval(c.intervl), teatest.WithDuration(c.timeout))
}

func TestWatchDashboardRendersHostProgressThenSummary(t *testing.T) {
	c := checker{intervl: 50 * time.Millisecond, timeout: 2 * time.Second}

	events := make(chan broadcast.Event, 8)
	m := watch.New("orders", events)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	events <- broadcast.Event{Kind: broadcast.EventAck, Host: "host-a"}
	c.CheckString(t, tm, "host-a")

	events <- broadcast.Event{Kind: broadcast.EventData, Host: "host-a", Body: []byte("chunk")}
	events <- broadcast.Event{Kind: broadcast.EventHostEnd, Host: "host-a"}
	c.CheckString(t, tm, "done")

	events <- broadcast.Event{Kind: broadcast.EventEnd, Responses: map[string][][]byte{"host-a": {[]byte("chunk")}}}
	close(events)
	c.CheckString(t, tm, "completed")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}
