package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Serve    serveCmd    `cmd:"" help:"Serve the analytics pages, JSON API and page event streams."`
	Table    tableCmd    `cmd:"" help:"Print the derived view of a page table."`
	Routes   routesCmd   `cmd:"" help:"List the routed pages."`
	Validate validateCmd `cmd:"" help:"Validate a fixtures file against the page table schemas."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli{},
		kong.Name("dashctl"),
		kong.Description("Analytics dashboard server and tooling."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
