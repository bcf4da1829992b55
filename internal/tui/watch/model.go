// Package watch renders a live dashboard of one in-flight conversation:
// a spinner while no host has replied yet, then a per-host progress list
// that turns into a final summary once the conversation ends.
package watch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alkime/broadcast/internal/tui/style"
	"github.com/alkime/broadcast/pkg/broadcast"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// eventMsg wraps one Conversation event as a tea.Msg.
type eventMsg broadcast.Event

// closedMsg signals the conversation's Events channel has closed.
type closedMsg struct{}

func waitForEvent(events <-chan broadcast.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(evt)
	}
}

// hostState tracks one expected host's progress through a conversation.
type hostState struct {
	acked  bool
	ended  bool
	chunks int
}

// stage is which section of the dashboard is on screen.
type stage int

const (
	stageAwaitingFirstReply stage = iota
	stageStreamingReplies
)

// Model is the top-level bubbletea model for `broadcastctl watch`.
type Model struct {
	name    string
	events  <-chan broadcast.Event
	spinner spinner.Model
	stage   stage

	hosts     map[string]*hostState
	order     []string
	done      bool
	err       error
	expecting []string
	responses int

	quit bool
}

// New builds a watch dashboard over a live conversation's event stream.
func New(name string, events <-chan broadcast.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		name:    name,
		events:  events,
		spinner: sp,
		stage:   stageAwaitingFirstReply,
		hosts:   make(map[string]*hostState),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.stage = stageStreamingReplies
		m.applyEvent(broadcast.Event(msg))
		if m.done {
			return m, nil
		}
		return m, waitForEvent(m.events)

	case closedMsg:
		m.done = true
		return m, nil
	}

	return m, nil
}

func (m *Model) applyEvent(evt broadcast.Event) {
	switch evt.Kind {
	case broadcast.EventAck:
		m.stateFor(evt.Host).acked = true
	case broadcast.EventData:
		m.stateFor(evt.Host).chunks++
	case broadcast.EventHostEnd:
		m.stateFor(evt.Host).ended = true
	case broadcast.EventEnd:
		m.done = true
		m.responses = len(evt.Responses)
		m.expecting = evt.Expecting
	case broadcast.EventError:
		m.done = true
		m.err = evt.Err
		m.expecting = evt.Expecting
	}
}

func (m *Model) stateFor(host string) *hostState {
	hs, ok := m.hosts[host]
	if !ok {
		hs = &hostState{}
		m.hosts[host] = hs
		m.order = append(m.order, host)
	}
	return hs
}

func (m Model) View() string {
	if m.quit {
		return ""
	}

	if m.stage == stageAwaitingFirstReply {
		var sb strings.Builder
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(style.Title.Render("Broadcasting " + m.name))
		sb.WriteString("\n\n")
		sb.WriteString(style.Subtitle.Render("waiting for the first reply"))
		sb.WriteString("\n\n")
		sb.WriteString(style.Help.Render("ctrl+c to cancel"))
		return sb.String()
	}

	var sb strings.Builder

	hosts := append([]string(nil), m.order...)
	sort.Strings(hosts)

	for _, h := range hosts {
		hs := m.hosts[h]
		status := style.Progress.Render("streaming")
		if hs.ended {
			status = style.Success.Render("done")
		}
		fmt.Fprintf(&sb, "%s %s (%d chunk(s))\n", style.Label.Render(h), status, hs.chunks)
	}

	if m.done {
		sb.WriteString("\n")
		if m.err != nil {
			sb.WriteString(style.Error.Render(m.err.Error()))
		} else {
			sb.WriteString(style.Success.Render(fmt.Sprintf("completed: %d host(s) replied", m.responses)))
		}
		sb.WriteString("\n")
		if len(m.expecting) > 0 {
			sb.WriteString(style.Warning.Render("still expecting: "+strings.Join(m.expecting, ", ")) + "\n")
		}
	}

	return sb.String()
}
