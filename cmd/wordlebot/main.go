// wordlebot plays the word-guessing game against a remote server over
// newline-delimited JSON, prints the reward flag, and keeps a local
// history of played games.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wordlebot/wordlebot/internal/cli"
	"github.com/wordlebot/wordlebot/internal/util"
)

func main() {
	// Defaults until the command has loaded its configuration.
	util.InitLogger(util.DefaultLogConfig())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.New(os.Stdout, os.Stderr).Run(ctx, os.Args[1:])
	stop()

	os.Exit(code)
}
