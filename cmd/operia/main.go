package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"operia/internal/agent"
	"operia/internal/app"
	"operia/internal/config"
	"operia/internal/logger"
	"operia/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// .env is optional; deployments set real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, "operia")

	llmClient, err := app.NewLLM(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// The CLI runs one pipeline invocation and exits, so batches only need
	// to live for the lifetime of the process.
	st := store.NewMemoryStore()
	ag := agent.New(llmClient, st, log)

	cliApp := newCLIApp(ag, st)
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
