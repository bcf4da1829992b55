package broadcast

import "context"

// publishSync adapts Bus.Publish's callback into a blocking call.
func publishSync(ctx context.Context, bus Bus, h Handle, f Frame) error {
	done := make(chan error, 1)
	bus.Publish(ctx, h, f, func(err error) { done <- err })
	return <-done
}

// closeSync adapts Bus.Close's callback into a blocking call.
func closeSync(ctx context.Context, bus Bus, h Handle) error {
	done := make(chan error, 1)
	bus.Close(ctx, h, func(err error) { done <- err })
	return <-done
}

// subscribeSync adapts Bus.Subscribe's onReady callback into a blocking
// call, forwarding every decoded frame onto inbound for as long as ctx
// is alive. It returns once onReady has fired.
func subscribeSync(ctx context.Context, bus Bus, h Handle, inbound chan<- Frame) error {
	ready := make(chan error, 1)
	bus.Subscribe(ctx, h, func(err error) {
		ready <- err
	}, func(f Frame) {
		select {
		case inbound <- f:
		case <-ctx.Done():
		}
	})
	return <-ready
}
