package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/larkspur-games/chronicle/internal/cmd/chronicled"
)

// main starts the narrative engine's MCP server on stdio.
func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := chronicled.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[chronicled] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := chronicled.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
