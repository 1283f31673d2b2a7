// README: Entry point; loads config, wires stores and services, starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chowline/internal/config"
	httptransport "chowline/internal/http"
	"chowline/internal/infra"
	"chowline/internal/logger"
	"chowline/internal/modules/dispatch"
	"chowline/internal/modules/earnings"
	"chowline/internal/modules/notify"
	"chowline/internal/modules/order"
	"chowline/internal/modules/rider"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN, log)
	if err != nil {
		log.Error("db init", logger.Error(err))
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password)
	publisher := notify.NewPublisher(redisClient, log, cfg.Notify.PublishTimeout)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, publisher, log)

	riderStore := rider.NewStore(dbPool)

	dispatchStore := dispatch.NewStore(dbPool)
	dispatchSvc := dispatch.NewService(dispatchStore, orderStore, riderStore, publisher, log)

	earningsSvc := earnings.NewService(orderStore, riderStore)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Order:     orderSvc,
		Dispatch:  dispatchSvc,
		Earnings:  earningsSvc,
		Riders:    riderStore,
		JWTSecret: cfg.Auth.JWTSecret,
		Log:       log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("listening", logger.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server", logger.Error(err))
		os.Exit(1)
	}
}
