package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swapstats-api/internal/cli"
	"swapstats-api/internal/config"
	"swapstats-api/internal/svc"
)

const shutdownTimeout = 30 * time.Second // Grace period for running refreshes

var configFile = flag.String("f", "etc/swapstats.yaml", "the config file")

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting cache refresher...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}
	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(cfg) {
		log.Printf("  - %s", line)
	}

	svcCtx := svc.NewServiceContext(*cfg)
	for _, e := range svcCtx.Calc.Entries() {
		log.Printf("  - Entry %s: every %s, expiry %dm", e.Name, e.Interval, e.ExpiryMinutes)
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcCtx.Calc.Start()
	if err := svcCtx.Scheduler.Start(ctx); err != nil {
		log.Fatalf("[main] Failed to start scheduler: %v", err)
	}
	log.Println("[main] Refresher started. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping jobs...")

	done := make(chan struct{})
	go func() {
		svcCtx.Scheduler.Stop()
		svcCtx.Calc.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[main] All jobs stopped cleanly")
	case <-time.After(shutdownTimeout):
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}
}
