// Package main runs back-office operations against the directory database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bonitaforward/bonita-forward/internal/cmd/bfadmin"
	"github.com/bonitaforward/bonita-forward/internal/platform/config"
)

func main() {
	cfg, err := bfadmin.LoadConfig()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bfadmin.Execute(ctx, bfadmin.NewRootCommand(cfg), os.Args[1:]); err != nil {
		config.Exitf("bfadmin: %v", err)
	}
}
