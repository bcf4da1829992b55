package broadcast

import (
	"context"
	"sync"
)

const requestEventBuffer = 32

// RequestEvent is surfaced to the listener's consumer for each inbound
// request frame, once that request's ack has been published
// successfully. Reply and End are bound to that request's own reply
// channel and enforce invariants 1 and 2 (closed is monotonic; a Reply
// after End fails without publishing).
type RequestEvent struct {
	Body  []byte
	Reply func(body []byte) error
	End   func() error
}

// Listener subscribes to named request channels and surfaces inbound
// requests to a consumer.
type Listener struct {
	bus  Bus
	self Identity
	log  Logger
}

// NewListener constructs a Listener. log may be nil, in which case
// logging is a no-op.
func NewListener(bus Bus, self Identity, log Logger) *Listener {
	if log == nil {
		log = noopLogger{}
	}
	return &Listener{bus: bus, self: self, log: log}
}

// Subscription is the event source returned by Listen. Requests() never
// yields before Listen has returned successfully, so a listener is always
// subscribed before any request it is meant to see can arrive.
type Subscription struct {
	name   string
	bus    Bus
	handle Handle
	self   Identity
	log    Logger

	events chan RequestEvent
	raw    chan Frame

	closeOnce sync.Once
}

// Listen subscribes to name's request channel. It blocks until the
// subscription is active (or failed), which is the Go rendering of the
// source's single "listen" event.
func (l *Listener) Listen(ctx context.Context, name string) (*Subscription, error) {
	handle, err := l.bus.Open(ctx, RequestChannel(name))
	if err != nil {
		return nil, newTransportError(OpOpen, err)
	}

	s := &Subscription{
		name:   name,
		bus:    l.bus,
		handle: handle,
		self:   l.self,
		log:    l.log,
		events: make(chan RequestEvent, requestEventBuffer),
		raw:    make(chan Frame, requestEventBuffer),
	}

	if err := subscribeSync(ctx, l.bus, handle, s.raw); err != nil {
		return nil, newTransportError(OpSubscribe, err)
	}

	go s.run(ctx)

	return s, nil
}

// Requests delivers one RequestEvent per inbound request frame, in the
// order acks were published successfully.
func (s *Subscription) Requests() <-chan RequestEvent {
	return s.events
}

// Close unsubscribes from the request channel. It does not affect any
// reply channels already handed out to the consumer.
func (s *Subscription) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		err = closeSync(ctx, s.bus, s.handle)
		close(s.events)
	})
	if err != nil {
		return newTransportError(OpClose, err)
	}
	return nil
}

func (s *Subscription) run(ctx context.Context) {
	for f := range s.raw {
		if f.Type != FrameRequest {
			continue
		}
		s.handleRequest(ctx, f)
	}
}

// handleRequest opens the dedicated reply channel for the incoming
// broadcastId, publishes an ack, and only on ack success surfaces the
// request to the consumer. An ack publish failure is logged and the
// request is silently dropped.
func (s *Subscription) handleRequest(ctx context.Context, req Frame) {
	replyHandle, err := s.bus.Open(ctx, ReplyChannel(s.name, req.BroadcastID))
	if err != nil {
		s.log.Error("open reply channel failed", "name", s.name, "broadcastId", req.BroadcastID, "error", err)
		return
	}

	reply := &replyChannel{
		bus:         s.bus,
		handle:      replyHandle,
		host:        s.self.Hostname(),
		broadcastID: req.BroadcastID,
		log:         s.log,
	}

	if err := publishSync(ctx, s.bus, replyHandle, Frame{Type: FrameAck, Host: reply.host}); err != nil {
		s.log.Error("ack publish failed, dropping request", "name", s.name, "broadcastId", req.BroadcastID, "error", err)
		return
	}

	evt := RequestEvent{
		Body:  req.Body,
		Reply: reply.Reply,
		End:   reply.End,
	}

	select {
	case s.events <- evt:
	case <-ctx.Done():
	}
}

// replyChannel is the listener-side per-request reply channel. closed is
// set true before any publish attempt in End, so a Reply racing with End
// always observes the terminal state.
type replyChannel struct {
	mu          sync.Mutex
	closed      bool
	bus         Bus
	handle      Handle
	host        string
	broadcastID string
	log         Logger
}

// Reply publishes one data frame. It fails with ErrAfterEnd, without
// publishing, once End has been called.
func (r *replyChannel) Reply(body []byte) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.Error("reply after end", "broadcastId", r.broadcastID)
		return ErrAfterEnd
	}
	r.mu.Unlock()

	ctx := context.Background()
	if err := publishSync(ctx, r.bus, r.handle, Frame{Type: FrameData, Host: r.host, Body: body}); err != nil {
		return newTransportError(OpPublish, err)
	}
	return nil
}

// End marks the reply channel closed, publishes the end frame, and
// closes the underlying channel. The first of the publish/close errors
// is returned; both are logged as warnings regardless.
func (r *replyChannel) End() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	ctx := context.Background()
	pubErr := publishSync(ctx, r.bus, r.handle, Frame{Type: FrameEnd, Host: r.host})
	if pubErr != nil {
		r.log.Warn("end publish failed", "broadcastId", r.broadcastID, "error", pubErr)
	}

	closeErr := closeSync(ctx, r.bus, r.handle)
	if closeErr != nil {
		r.log.Warn("reply channel close failed", "broadcastId", r.broadcastID, "error", closeErr)
	}

	if pubErr != nil {
		return newTransportError(OpPublish, pubErr)
	}
	if closeErr != nil {
		return newTransportError(OpClose, closeErr)
	}
	return nil
}
