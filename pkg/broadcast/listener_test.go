package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/alkime/broadcast/internal/bus/inmem"
	"github.com/alkime/broadcast/internal/identity"
	"github.com/alkime/broadcast/pkg/broadcast"

	"github.com/stretchr/testify/require"
)

func publishRequest(t *testing.T, ctx context.Context, bus broadcast.Bus, name, host, broadcastID string, body []byte) {
	t.Helper()
	h, err := bus.Open(ctx, broadcast.RequestChannel(name))
	require.NoError(t, err)
	done := make(chan error, 1)
	bus.Publish(ctx, h, broadcast.Frame{
		Type:        broadcast.FrameRequest,
		Host:        host,
		BroadcastID: broadcastID,
		Body:        body,
	}, func(err error) { done <- err })
	require.NoError(t, <-done)
}

func TestListenerAcksThenSurfacesRequest(t *testing.T) {
	ctx := context.Background()
	bus := inmem.New()
	self := identity.NewWithHostname("listener-1")

	l := broadcast.NewListener(bus, self, nil)
	sub, err := l.Listen(ctx, "orders")
	require.NoError(t, err)
	defer sub.Close(ctx)

	replyHandle, err := bus.Open(ctx, broadcast.ReplyChannel("orders", "b1"))
	require.NoError(t, err)
	acks := make(chan broadcast.Frame, 4)
	ready := make(chan error, 1)
	bus.Subscribe(ctx, replyHandle, func(err error) { ready <- err }, func(f broadcast.Frame) { acks <- f })
	require.NoError(t, <-ready)

	publishRequest(t, ctx, bus, "orders", "requester-1", "b1", []byte("payload"))

	select {
	case f := <-acks:
		require.Equal(t, broadcast.FrameAck, f.Type)
		require.Equal(t, "listener-1", f.Host)
	case <-time.After(time.Second):
		t.Fatal("ack never published")
	}

	select {
	case evt := <-sub.Requests():
		require.Equal(t, []byte("payload"), evt.Body)
	case <-time.After(time.Second):
		t.Fatal("request never surfaced")
	}
}

func TestReplyChannelRejectsReplyAfterEnd(t *testing.T) {
	ctx := context.Background()
	bus := inmem.New()
	self := identity.NewWithHostname("listener-1")

	l := broadcast.NewListener(bus, self, nil)
	sub, err := l.Listen(ctx, "orders")
	require.NoError(t, err)
	defer sub.Close(ctx)

	publishRequest(t, ctx, bus, "orders", "requester-1", "b2", nil)

	var evt broadcast.RequestEvent
	select {
	case evt = <-sub.Requests():
	case <-time.After(time.Second):
		t.Fatal("request never surfaced")
	}

	require.NoError(t, evt.Reply([]byte("chunk-1")))
	require.NoError(t, evt.End())

	err = evt.Reply([]byte("too-late"))
	require.ErrorIs(t, err, broadcast.ErrAfterEnd)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	bus := inmem.New()
	self := identity.NewWithHostname("listener-1")

	l := broadcast.NewListener(bus, self, nil)
	sub, err := l.Listen(ctx, "orders")
	require.NoError(t, err)

	require.NoError(t, sub.Close(ctx))
	require.NoError(t, sub.Close(ctx))
}

func TestListenerIgnoresNonRequestFrames(t *testing.T) {
	ctx := context.Background()
	bus := inmem.New()
	self := identity.NewWithHostname("listener-1")

	l := broadcast.NewListener(bus, self, nil)
	sub, err := l.Listen(ctx, "orders")
	require.NoError(t, err)
	defer sub.Close(ctx)

	h, err := bus.Open(ctx, broadcast.RequestChannel("orders"))
	require.NoError(t, err)
	done := make(chan error, 1)
	bus.Publish(ctx, h, broadcast.Frame{Type: broadcast.FrameAck, Host: "someone-else"}, func(err error) { done <- err })
	require.NoError(t, <-done)

	select {
	case <-sub.Requests():
		t.Fatal("non-request frame should not surface")
	case <-time.After(100 * time.Millisecond):
	}
}
