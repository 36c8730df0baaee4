package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals are the signals that trigger a graceful shutdown.
var ShutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SignalError is the cancellation cause recorded when a shutdown signal arrives.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received signal %s", e.Signal)
}

// WithSignal returns a context that is canceled when one of ShutdownSignals
// is received. context.Cause on the returned context yields a *SignalError.
func WithSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, ShutdownSignals...)
	return watchSignals(ctx, sigCh, func() { signal.Stop(sigCh) })
}

func watchSignals(parent context.Context, sigCh <-chan os.Signal, release func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	go func() {
		select {
		case sig := <-sigCh:
			cancel(&SignalError{Signal: sig})
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		release()
		cancel(context.Canceled)
	}
}
