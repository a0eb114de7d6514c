// Command kodebuild is the build glue a Kode OS PlatformIO project calls
// from its build hooks: compiler defines, post-build artifact handling,
// UF2 conversion and boot-logo staging.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
