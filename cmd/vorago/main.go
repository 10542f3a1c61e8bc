package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	voragocmd "github.com/louisbranch/vorago/internal/cmd/vorago"
)

func main() {
	cfg, err := voragocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[VORAGO] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := voragocmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
