package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/bdist/aviacao-service/internal/config"
	"github.com/bdist/aviacao-service/internal/logging"
	"github.com/bdist/aviacao-service/internal/queue"
)

// The consumer drains purchase.completed events into the purchase log.
func main() {
	cfg := config.Load()
	logging.Init(cfg.Env, cfg.LogLevel)
	if cfg.AMQPURL == "" {
		logrus.Fatal("AMQP_URL is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"queue": cfg.PurchaseQueue,
		"path":  cfg.PurchaseLogPath,
	}).Info("consuming purchase events")
	err := queue.StartPurchaseConsumer(ctx, cfg.AMQPURL, cfg.PurchaseQueue, cfg.PurchaseLogPath)
	if err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Fatal("consumer stopped")
	}
}
