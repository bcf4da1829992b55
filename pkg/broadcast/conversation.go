package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/alkime/broadcast/pkg/collections"
)

const (
	tickInterval       = 10 * time.Millisecond
	conversationBuffer = 64
)

// phase names the Aggregator's position in its own state machine. It is
// recorded for observability only; nothing outside this package reads it.
type phase int

const (
	phaseInit phase = iota
	phaseSubscribing
	phaseAwaitingFirst
	phaseStreaming
	phaseTornDown
)

func (p phase) String() string {
	switch p {
	case phaseInit:
		return "Init"
	case phaseSubscribing:
		return "Subscribing"
	case phaseAwaitingFirst:
		return "AwaitingFirst"
	case phaseStreaming:
		return "Streaming"
	case phaseTornDown:
		return "TornDown"
	default:
		return "Unknown"
	}
}

// Requester issues broadcasts and aggregates their replies.
type Requester struct {
	bus      Bus
	self     Identity
	presence PresenceRegistry
	idgen    IDGenerator
	log      Logger
}

// NewRequester constructs a Requester. log may be nil.
func NewRequester(bus Bus, self Identity, presence PresenceRegistry, idgen IDGenerator, log Logger) *Requester {
	if log == nil {
		log = noopLogger{}
	}
	return &Requester{bus: bus, self: self, presence: presence, idgen: idgen, log: log}
}

// Conversation is one requester-side broadcast: it owns the reply
// subscription, runs the timeout driver, and aggregates incoming frames
// until it emits exactly one terminal event.
type Conversation struct {
	name string
	bus  Bus
	self Identity
	log  Logger

	broadcastID string

	connectTimeout time.Duration
	idleTimeout    time.Duration

	events chan Event

	// fields below are only ever touched from the single run goroutine
	inbound     chan Frame
	handle      Handle
	expect      []string
	responses   map[string][][]byte
	expecting   map[string]struct{}
	startedAt   time.Time
	lastMessage time.Time
	phase       phase
	teardownDo  sync.Once
	terminal    bool
}

// Request generates a fresh broadcast id, subscribes to its reply
// channel, publishes the request frame, and begins aggregating replies.
// If opts leave expect empty (no WithExpect and an empty presence
// snapshot), the conversation ends immediately and asynchronously with
// end({}, []), performing no subscribe or publish.
func (r *Requester) Request(ctx context.Context, name string, data []byte, opts ...RequestOption) *Conversation {
	cfg := defaultRequestConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.expectSet {
		cfg.expect = r.presence.Hosts()
	}

	c := &Conversation{
		name:           name,
		bus:            r.bus,
		self:           r.self,
		log:            r.log,
		connectTimeout: cfg.connectTimeout,
		idleTimeout:    cfg.idleTimeout,
		events:         make(chan Event, conversationBuffer),
		inbound:        make(chan Frame, conversationBuffer),
		expect:         cfg.expect,
		responses:      map[string][][]byte{},
		expecting:      setOf(cfg.expect),
		phase:          phaseInit,
	}

	if len(cfg.expect) == 0 {
		go func() {
			c.events <- Event{Kind: EventEnd, Responses: map[string][][]byte{}, Expecting: []string{}}
			close(c.events)
		}()
		return c
	}

	c.broadcastID = r.idgen.NewBroadcastID()
	go c.start(ctx, data)
	return c
}

// Events delivers non-terminal events (EventAck, EventData,
// EventHostEnd) followed by exactly one terminal event (EventEnd or
// EventError), after which the channel is closed.
func (c *Conversation) Events() <-chan Event {
	return c.events
}

// BroadcastID returns the broadcast id generated for this conversation,
// or "" for the degenerate empty-expect case.
func (c *Conversation) BroadcastID() string {
	return c.broadcastID
}

func (c *Conversation) start(ctx context.Context, data []byte) {
	c.phase = phaseSubscribing

	handle, err := c.bus.Open(ctx, ReplyChannel(c.name, c.broadcastID))
	if err != nil {
		c.fatal(newTransportError(OpOpen, err))
		return
	}
	c.handle = handle

	if err := subscribeSync(ctx, c.bus, handle, c.inbound); err != nil {
		c.fatal(newTransportError(OpSubscribe, err))
		return
	}

	c.startedAt = time.Now()

	reqHandle, err := c.bus.Open(ctx, RequestChannel(c.name))
	if err != nil {
		c.fatal(newTransportError(OpOpen, err))
		return
	}

	publishErr := publishSync(ctx, c.bus, reqHandle, Frame{
		Type:        FrameRequest,
		Host:        c.self.Hostname(),
		BroadcastID: c.broadcastID,
		Body:        data,
	})
	_ = closeSync(ctx, c.bus, reqHandle) // request channel handle is publish-only; best effort release

	if publishErr != nil {
		c.fatal(newTransportError(OpPublish, publishErr))
		return
	}

	c.phase = phaseAwaitingFirst
	c.run()
}

// fatal tears down a conversation that failed before any frame could be
// processed and always emits EventError: a subscribe/publish failure
// during setup is fatal regardless of the (necessarily empty) responses
// map.
func (c *Conversation) fatal(err error) {
	c.teardown(context.Background())
	c.log.Error("conversation setup failed", "name", c.name, "broadcastId", c.broadcastID, "error", err)
	c.emitTerminal(Event{Kind: EventError, Err: err, Expecting: collections.Keys(c.expecting)})
}

func (c *Conversation) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case f := <-c.inbound:
			c.handleFrame(f)
			if c.terminal {
				return
			}
		case <-ticker.C:
			c.handleTick()
			if c.terminal {
				return
			}
		}
	}
}

func (c *Conversation) handleFrame(f Frame) {
	switch f.Type {
	case FrameAck:
		c.lastMessage = time.Now()
		c.phase = phaseStreaming
		c.expecting[f.Host] = struct{}{}
		if _, ok := c.responses[f.Host]; !ok {
			c.responses[f.Host] = [][]byte{}
		}
		c.emit(Event{Kind: EventAck, Host: f.Host})

	case FrameData:
		c.lastMessage = time.Now()
		c.phase = phaseStreaming
		c.responses[f.Host] = append(c.responses[f.Host], f.Body)
		c.expecting[f.Host] = struct{}{}
		c.emit(Event{Kind: EventData, Host: f.Host, Body: f.Body})

	case FrameEnd:
		c.lastMessage = time.Now()
		c.phase = phaseStreaming
		delete(c.expecting, f.Host)
		c.emit(Event{Kind: EventHostEnd, Host: f.Host, HostResponses: c.responses[f.Host]})

		if len(c.expecting) == 0 {
			c.teardown(context.Background())
			c.emitTerminal(Event{Kind: EventEnd, Responses: cloneResponses(c.responses)})
		}

	default:
		// unknown frame types are ignored by the requester
	}
}

func (c *Conversation) handleTick() {
	now := time.Now()

	if c.lastMessage.IsZero() && now.After(c.startedAt.Add(c.connectTimeout)) {
		c.teardown(context.Background())
		if len(c.responses) == 0 {
			err := newWithMessage(ErrConnectTimeout, connectTimeoutMessage(c.connectTimeout.Milliseconds()))
			c.emitTerminal(Event{Kind: EventError, Err: err, Expecting: collections.Keys(c.expecting)})
		} else {
			c.emitTerminal(Event{Kind: EventEnd, Responses: cloneResponses(c.responses), Expecting: collections.Keys(c.expecting)})
		}
		return
	}

	if !c.lastMessage.IsZero() && now.After(c.lastMessage.Add(c.idleTimeout)) {
		c.teardown(context.Background())
		if len(c.responses) == 0 {
			err := newWithMessage(ErrIdleTimeout, idleTimeoutMessage(c.idleTimeout.Milliseconds()))
			c.emitTerminal(Event{Kind: EventError, Err: err, Expecting: collections.Keys(c.expecting)})
		} else {
			c.emitTerminal(Event{Kind: EventEnd, Responses: cloneResponses(c.responses), Expecting: collections.Keys(c.expecting)})
		}
	}
}

// teardown stops the timeout driver, closes the inbound subscription,
// and is idempotent: invoking it twice has no additional observable
// effect.
func (c *Conversation) teardown(ctx context.Context) {
	c.teardownDo.Do(func() {
		c.phase = phaseTornDown
		if c.handle != nil {
			if err := closeSync(ctx, c.bus, c.handle); err != nil {
				c.log.Warn("reply subscription close failed", "name", c.name, "broadcastId", c.broadcastID, "error", err)
			}
		}
	})
}

// emit delivers a non-terminal event.
func (c *Conversation) emit(e Event) {
	c.events <- e
}

// emitTerminal delivers the conversation's single terminal event and
// closes the channel, marking the run loop for exit.
func (c *Conversation) emitTerminal(e Event) {
	c.events <- e
	close(c.events)
	c.terminal = true
}

func setOf(hosts []string) map[string]struct{} {
	s := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		s[h] = struct{}{}
	}
	return s
}

func cloneResponses(m map[string][][]byte) map[string][][]byte {
	out := make(map[string][][]byte, len(m))
	for k, v := range m {
		cp := make([][]byte, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}
