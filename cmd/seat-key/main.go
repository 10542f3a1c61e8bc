package main

import (
	"flag"
	"os"

	"github.com/louisbranch/vorago/internal/platform/config"
	"github.com/louisbranch/vorago/internal/tools/seatkey"
)

func main() {
	cfg, err := seatkey.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := seatkey.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("generate key: %v", err)
	}
}
