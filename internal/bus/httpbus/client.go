package httpbus

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/alkime/broadcast/pkg/broadcast"
)

// handle is the Handle this Client hands back from Open.
type handle struct {
	name   string
	cancel context.CancelFunc
}

// Client implements broadcast.Bus against a Server over HTTP, decoding
// its SSE "frame" events and re-encoding publishes as JSON POST bodies.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client talking to the Server rooted at baseURL
// (e.g. "http://bus.internal:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Open implements broadcast.Bus. It never fails: the channel name is
// only resolved to an actual HTTP request on Subscribe/Publish.
func (c *Client) Open(_ context.Context, name string) (broadcast.Handle, error) {
	return &handle{name: name}, nil
}

// Subscribe opens a long-lived SSE GET to the channel and forwards
// every decoded frame to onFrame until ctx is done or the server closes
// the stream.
func (c *Client) Subscribe(ctx context.Context, h broadcast.Handle, onReady func(error), onFrame func(broadcast.Frame)) {
	hd := h.(*handle)
	subCtx, cancel := context.WithCancel(ctx)
	hd.cancel = cancel

	req, err := http.NewRequestWithContext(subCtx, http.MethodGet, c.channelURL(hd.name), nil)
	if err != nil {
		cancel()
		onReady(err)
		return
	}

	resp, err := c.http.Do(req) //nolint:bodyclose // body is closed in the streaming goroutine below
	if err != nil {
		cancel()
		onReady(err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		onReady(fmt.Errorf("httpbus: subscribe %q: unexpected status %s", hd.name, resp.Status))
		return
	}

	onReady(nil)

	go func() {
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			const prefix = "data:"
			line := scanner.Text()
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			payload := strings.TrimPrefix(strings.TrimPrefix(line, prefix), " ")
			f, err := broadcast.DecodeFrame([]byte(payload))
			if err != nil {
				continue
			}
			onFrame(f)
		}
	}()
}

// Publish POSTs f's JSON encoding to the channel.
func (c *Client) Publish(ctx context.Context, h broadcast.Handle, f broadcast.Frame, onComplete func(error)) {
	hd := h.(*handle)

	encoded, err := broadcast.EncodeFrame(f)
	if err != nil {
		onComplete(err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.channelURL(hd.name), bytes.NewReader(encoded))
	if err != nil {
		onComplete(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		onComplete(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		onComplete(fmt.Errorf("httpbus: publish %q: unexpected status %s", hd.name, resp.Status))
		return
	}
	onComplete(nil)
}

// Close cancels the handle's subscription, if any.
func (c *Client) Close(_ context.Context, h broadcast.Handle, onComplete func(error)) {
	hd := h.(*handle)
	if hd.cancel != nil {
		hd.cancel()
	}
	onComplete(nil)
}

func (c *Client) channelURL(name string) string {
	return c.baseURL + "/v1/channels/" + name
}
