/*
Package main is the entry point for the mqchat server. It loads
configuration, initializes the global logger, brings up the chat
server, and waits for SIGINT/SIGTERM to run an orderly shutdown
(spec.md §4.7), generalizing the teacher's main (hzchat/cmd/main.go)
from an HTTP server to a mailbox-driven one.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mqchat/internal/app/chat"
	"mqchat/internal/configs"
	"mqchat/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("control_queue_key", cfg.ControlQueueKey).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := chat.NewServer(cfg)
	if err != nil {
		logx.Fatal(err, "Failed to bring up control mailbox")
	}

	server.Run()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	server.Shutdown()

	logx.Info("Server gracefully stopped.")
}
