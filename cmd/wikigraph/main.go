package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}
