package ctrlc

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// HandleCtrlC cancels on the first interrupt so the frame loop can flush its
// store, and exits hard on the second one or if shutdown takes too long.
func HandleCtrlC(cancel context.CancelFunc, grace time.Duration) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	logger := slog.Default().With("area", "ctrlc")
	go func() {
		<-c
		logger.Info("ctrl-c, shutting down", "grace", grace)
		cancel()

		select {
		case <-c:
			logger.Warn("second ctrl-c")
		case <-time.After(grace):
			logger.Warn("shutdown took too long")
		}
		os.Exit(1)
	}()
}
