// Command zipsig computes digests of ZIP archives and signs them by storing
// an Authenticode-style signature in the archive comment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "zipsig:", err)
		os.Exit(1)
	}
}
