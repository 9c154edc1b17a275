package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/starsense/config"
	"github.com/spacesedan/starsense/internal/cli"
	"github.com/spacesedan/starsense/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
