// carve recovers browsing-history records from Firefox session documents,
// including truncated or corrupted ones.
//
// Usage:
//
//	carve extract [inputs...] [-o output] [-f csv|jsonl|table|sqlite]
//	carve watch <input> [-o output]
//	carve config init|show
//	carve version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "carve:", err)
		os.Exit(1)
	}
}
