package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bookshelf/internal/devserver"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := devserver.LoadConfig(os.Args[1:])
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	srv := devserver.New(*cfg, devserver.WithLogger(logger))
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
