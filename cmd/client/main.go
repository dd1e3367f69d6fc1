package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/clouddemo/internal/client/cli"
	"github.com/dmitrijs2005/clouddemo/internal/client/config"
	"github.com/dmitrijs2005/clouddemo/internal/flagx"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
)

func main() {
	args := os.Args[1:]

	cfg := config.LoadConfig(args)
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	root := cli.NewRootCommand(cfg, log)
	root.SetArgs(flagx.StripArgs(args, config.FlagNames))

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
