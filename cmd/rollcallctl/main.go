package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rollcall/internal/cli"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	cmd.SetContext(ctx)
	if err := cmd.Execute(); err != nil {
		stop()
		cmd.PrintErrln(err.Error())
		os.Exit(1)
	}
}
