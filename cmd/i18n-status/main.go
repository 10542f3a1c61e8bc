package main

import (
	"flag"
	"os"

	"github.com/louisbranch/vorago/internal/platform/config"
	"github.com/louisbranch/vorago/internal/platform/i18n"
	"github.com/louisbranch/vorago/internal/tools/i18nstatus"
)

func main() {
	cfg, err := i18nstatus.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := i18nstatus.Run(cfg, i18n.Default(), os.Stdout); err != nil {
		config.Exitf("i18n status: %v", err)
	}
}
