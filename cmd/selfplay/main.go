package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	selfplaycmd "github.com/louisbranch/vorago/internal/cmd/selfplay"
)

func main() {
	cfg, err := selfplaycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SELFPLAY] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := selfplaycmd.Run(ctx, cfg); err != nil {
		log.Fatalf("self-play failed: %v", err)
	}
}
