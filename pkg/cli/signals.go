package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler creates a context that is cancelled on the first
// SIGINT or SIGTERM. A second signal exits the process immediately, so an
// operator can abort an operation whose cleanup hangs. The returned cancel
// function releases the context once the operation finishes.
func SetupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
			return
		}
		<-sigChan
		os.Exit(130)
	}()

	return ctx, cancel
}

// WaitForShutdown returns a channel that receives SIGINT and SIGTERM.
// Receiving from it blocks until a shutdown signal arrives.
func WaitForShutdown() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan
}
