// pavrcon - a command-line RCON client for Pavlov VR dedicated servers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pavlovrcon/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pavrcon: %v\n", err)
		os.Exit(1)
	}
}
