package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gophermart.com/internal/market/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("market-service: %v", err)
	}
	log.Println("service stopped")
}
