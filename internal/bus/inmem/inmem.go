// Package inmem is an in-process implementation of broadcast.Bus.
//
// It is a dynamic-subscriber publish/subscribe hub keyed by channel
// name, generalized from the fan-out pattern in claude-ops's internal
// hub package (session id -> circular buffer of lines, clients map of
// channels) to channel name -> set of subscriber channels of
// broadcast.Frame. Unlike that hub it does not replay history to late
// subscribers: channels in this protocol are short-lived and
// subscription always precedes publication in the happy path, so no
// catch-up buffer is needed.
package inmem

import (
	"context"
	"sync"

	"github.com/alkime/broadcast/pkg/broadcast"
)

const subscriberBuffer = 64

// topic fans out frames published under one channel name to every
// currently-registered subscriber. Analogous to hub.session, but keyed
// by string channel name instead of int session id and carrying
// broadcast.Frame instead of log lines.
type topic struct {
	mu      sync.Mutex
	clients map[chan broadcast.Frame]struct{}
}

func newTopic() *topic {
	return &topic{clients: make(map[chan broadcast.Frame]struct{})}
}

func (t *topic) publish(f broadcast.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ch := range t.clients {
		sendFrameNonBlock(ch, f)
	}
}

// sendFrameNonBlock delivers f to ch without blocking the publisher; a
// subscriber that isn't keeping up simply misses frames instead of
// stalling every other subscriber of the same topic.
func sendFrameNonBlock(ch chan broadcast.Frame, f broadcast.Frame) {
	select {
	case ch <- f:
	default:
	}
}

func (t *topic) subscribe() chan broadcast.Frame {
	ch := make(chan broadcast.Frame, subscriberBuffer)
	t.mu.Lock()
	t.clients[ch] = struct{}{}
	t.mu.Unlock()
	return ch
}

func (t *topic) unsubscribe(ch chan broadcast.Frame) {
	t.mu.Lock()
	delete(t.clients, ch)
	t.mu.Unlock()
	close(ch)
}

// Bus is an in-process broadcast.Bus. The zero value is not usable;
// construct with New.
type Bus struct {
	mu     sync.Mutex
	topics map[string]*topic
}

// New returns a ready-to-use in-process Bus.
func New() *Bus {
	return &Bus{topics: make(map[string]*topic)}
}

func (b *Bus) topicFor(name string) *topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.topics[name]
	if !ok {
		t = newTopic()
		b.topics[name] = t
	}
	return t
}

// handle is the Handle this Bus hands back from Open.
type handle struct {
	name string
	ch   chan broadcast.Frame // non-nil once Subscribe has been called
}

// Open returns a handle for name; the topic itself is created on the
// first Subscribe or Publish under that name. Open never fails for the
// in-process bus.
func (b *Bus) Open(_ context.Context, name string) (broadcast.Handle, error) {
	return &handle{name: name}, nil
}

// Subscribe begins receiving frames published on h's channel name.
// onReady always fires with a nil error for the in-process bus.
func (b *Bus) Subscribe(ctx context.Context, h broadcast.Handle, onReady func(error), onFrame func(broadcast.Frame)) {
	hd := h.(*handle)
	t := b.topicFor(hd.name)
	hd.ch = t.subscribe()

	go func() {
		for {
			select {
			case f, ok := <-hd.ch:
				if !ok {
					return
				}
				onFrame(f)
			case <-ctx.Done():
				return
			}
		}
	}()

	onReady(nil)
}

// Publish fans f out to every current subscriber of h's channel name.
// onComplete always fires with a nil error for the in-process bus.
func (b *Bus) Publish(_ context.Context, h broadcast.Handle, f broadcast.Frame, onComplete func(error)) {
	hd := h.(*handle)
	t := b.topicFor(hd.name)
	t.publish(f)
	onComplete(nil)
}

// Close unsubscribes h, if it was ever subscribed, and releases its
// resources. onComplete always fires with a nil error for the
// in-process bus.
func (b *Bus) Close(_ context.Context, h broadcast.Handle, onComplete func(error)) {
	hd := h.(*handle)
	if hd.ch != nil {
		t := b.topicFor(hd.name)
		t.unsubscribe(hd.ch)
		hd.ch = nil
	}
	onComplete(nil)
}
