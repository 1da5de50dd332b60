package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danieljhkim/stackplan/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()

	if err != nil {
		cli.PrintError(err.Error())
	}
	os.Exit(exitCode(err))
}
