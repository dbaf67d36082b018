package main

import (
	"fmt"
	"os"

	"github.com/insightdelivered/eod-ledger-converter/internal/commands"
	"github.com/insightdelivered/eod-ledger-converter/internal/config"
	"github.com/insightdelivered/eod-ledger-converter/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	flush, err := logger.Setup(logger.Options{Level: cfg.Logger.Level, Format: cfg.Logger.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	err = commands.NewRootCommand().Execute()
	flush()
	if err != nil {
		os.Exit(1)
	}
}
