package main

import (
	"context"
	"flag"
	"log"
	"os"

	seedcmd "github.com/cadieux/rostersync/internal/cmd/seed"
	"github.com/cadieux/rostersync/internal/platform/config"
)

func main() {
	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	log.SetPrefix("[SEED] ")

	if err := seedcmd.Run(context.Background(), cfg); err != nil {
		config.Exitf("Error: %v", err)
	}
}
