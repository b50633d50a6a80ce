// Package graceful ties process signals to context cancellation so that
// in-flight transfers are cancelled cooperatively on shutdown.
package graceful

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// Context returns a child of ctx that is cancelled on SIGINT or SIGTERM.
// Calling the returned CancelFunc releases the signal handler.
func Context(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Printf("Received %v, cancelling outstanding work...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
