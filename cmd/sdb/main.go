// Command sdb works with SimpleDB domains and items from the shell.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacentio/simpledb/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := &cli.App{
		Version:   version,
		BuildTime: buildTime,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
	code := app.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
