package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"elecprice/internal/commands"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Cancel in-flight refreshes and stop serving on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.ExecuteContext(ctx, os.Args[1:])
}
