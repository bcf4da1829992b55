package httpbus_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alkime/broadcast/internal/bus/httpbus"
	"github.com/alkime/broadcast/internal/config"
	"github.com/alkime/broadcast/pkg/broadcast"

	"github.com/stretchr/testify/require"
)

func TestClientSubscribeReceivesPublishedFrame(t *testing.T) {
	cfg := &config.Config{Env: "test"}
	srv := httpbus.NewServer(cfg, testLogger())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	client := httpbus.NewClient(ts.URL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subHandle, err := client.Open(ctx, "orders")
	require.NoError(t, err)

	got := make(chan broadcast.Frame, 1)
	ready := make(chan error, 1)
	client.Subscribe(ctx, subHandle, func(err error) { ready <- err }, func(f broadcast.Frame) { got <- f })
	require.NoError(t, <-ready)

	pubHandle, err := client.Open(ctx, "orders")
	require.NoError(t, err)

	done := make(chan error, 1)
	client.Publish(ctx, pubHandle, broadcast.Frame{Type: broadcast.FrameData, Host: "host-a", Body: []byte("hi")}, func(err error) { done <- err })
	require.NoError(t, <-done)

	select {
	case f := <-got:
		require.Equal(t, "host-a", f.Host)
		require.Equal(t, []byte("hi"), f.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the published frame")
	}

	closeDone := make(chan error, 1)
	client.Close(ctx, subHandle, func(err error) { closeDone <- err })
	require.NoError(t, <-closeDone)
}
