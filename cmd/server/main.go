package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/bdist/aviacao-service/internal/config"
	"github.com/bdist/aviacao-service/internal/database"
	"github.com/bdist/aviacao-service/internal/handler"
	"github.com/bdist/aviacao-service/internal/logging"
	"github.com/bdist/aviacao-service/internal/middleware"
	"github.com/bdist/aviacao-service/internal/queue"
	"github.com/bdist/aviacao-service/internal/repository"
	"github.com/bdist/aviacao-service/internal/router"
	"github.com/bdist/aviacao-service/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.Env, cfg.LogLevel)

	db, err := database.Open(database.PoolConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()

	rdb := config.NewRedisClient(cfg.RateLimitStorageURI)
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher service.PurchasePublisher
	if cfg.AMQPURL != "" {
		publisher = queue.NewPublisher(cfg.AMQPURL, cfg.PurchaseQueue)
	}

	accounts := repository.NewAccountRepo(db)
	flights := repository.NewFlightRepo(db)
	seats := repository.NewSeatRepo(db)
	sales := repository.NewSaleRepo(db)
	purchases := service.NewPurchaseService(flights, seats, sales, service.Prices{
		FirstClass: cfg.FirstClassPrice,
		Economy:    cfg.EconomyPrice,
	}, publisher)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))
	e.Use(middleware.MaxInFlight(cfg.MaxInFlight))

	router.RegisterRoutes(e, router.Handlers{
		Accounts: handler.NewAccountHandler(accounts),
		Purchase: handler.NewPurchaseHandler(purchases),
		Flights:  handler.NewFlightHandler(flights, seats),
		Sales:    handler.NewSaleHandler(sales),
	}, middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	addr := ":" + cfg.Port
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("server stopped")
		return
	}
	logrus.Info("server stopped")
}
