/*
Package main is the terminal entry point for mqchat clients (spec.md
§4.8): it attaches to the server's well-known control mailbox, registers
a handle, then runs the sender (stdin) and receiver (private mailbox)
concurrently until QUIT or an interrupt. Generalizes
original_source/client.c's main(): signal(SIGINT)+pthread_create becomes
signal.NotifyContext+goroutines, and msgget/CONTROL_QUEUE_KEY becomes
mailbox.Send against the configured control queue key.
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mqchat/internal/client"
	"mqchat/internal/configs"
	"mqchat/internal/pkg/logx"

	"mqchat/internal/app/wire"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logx.InitGlobalLogger(cfg.Environment == "development")

	if len(os.Args) < 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: mqchat-client <handle>")
		os.Exit(1)
	}
	handle := os.Args[1]

	c, err := client.New(handle, cfg.ControlQueueKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not attach to server: %v\n", err)
		os.Exit(1)
	}

	if err := c.Register(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not register with server: %v\n", err)
		c.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go c.Run(func(reply wire.ReplyMessage) {
		fmt.Printf("\r%s: %s\n> ", reply.SenderLabel, reply.Text)
	})

	go runSender(c)

	<-ctx.Done()
	c.Close()
}

// runSender reads commands from stdin and forwards each to the server
// until QUIT or EOF (spec.md §4.8). Malformed lines are rejected locally
// with a re-prompt, never sent.
func runSender(c *client.Client) {
	fmt.Println("Enter commands (JOIN #room, MSG <text>, DM <handle> <text>, WHO #room, LEAVE, QUIT):")
	fmt.Print("> ")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd, err := client.ParseLine(scanner.Text())
		if err != nil {
			fmt.Printf("Unknown command or missing parameters: %v\n> ", err)
			continue
		}

		if sendErr := c.Send(cmd); sendErr != nil {
			fmt.Printf("\nFailed to reach server: %v\n", sendErr)
			c.Close()
			os.Exit(1)
		}

		if cmd.Kind == wire.CommandQuit {
			c.Close()
			os.Exit(0)
		}

		fmt.Print("> ")
	}

	c.Close()
}
