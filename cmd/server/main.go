package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderdesk-be/internal/address"
	"orderdesk-be/internal/audit"
	"orderdesk-be/internal/auth"
	"orderdesk-be/internal/business"
	"orderdesk-be/internal/config"
	"orderdesk-be/internal/db"
	"orderdesk-be/internal/dispatch"
	"orderdesk-be/internal/logger"
	"orderdesk-be/internal/middleware"
	"orderdesk-be/internal/notification"
	"orderdesk-be/internal/order"
	"orderdesk-be/internal/product"
	"orderdesk-be/internal/transport"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.MustLoad()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer database.Close()

	var sender notification.Sender = notification.LogSender{}
	if cfg.RabbitMQURL != "" {
		conn, err := notification.Dial(cfg.RabbitMQURL, cfg.NotificationExchange)
		if err != nil {
			log.Fatal("rabbitmq unavailable", zap.Error(err))
		}
		defer conn.Close()
		sender = notification.NewAMQPSender(conn.Channel, cfg.NotificationExchange)
		log.Info("publishing notifications to rabbitmq", zap.String("exchange", cfg.NotificationExchange))
	} else {
		log.Warn("RABBITMQ_URL not set, notifications are only logged")
	}

	dispatcher := dispatch.New(dispatch.Options{
		Workers:     cfg.DispatchWorkers,
		QueueSize:   cfg.DispatchQueueSize,
		MaxAttempts: cfg.DispatchMaxAttempts,
		Backoff:     cfg.RetryBackoff(),
	})
	dispatcher.Register(order.TopicOrderCreated, notification.HandlerName, notification.NewHandler(sender))
	sink, err := audit.NewSink(cfg.AuditSink, database)
	if err != nil {
		log.Fatal("audit sink unavailable", zap.Error(err))
	}
	log.Info("audit sink selected", zap.String("sink", cfg.AuditSink))
	dispatcher.Register(order.TopicOrderCreated, audit.HandlerName, audit.NewHandler(sink))
	dispatcher.Start()

	orderSvc := order.NewService(
		business.NewRepository(database),
		order.NewRepository(database),
		order.NewUnitOfWork(db.NewTxRunner(database)),
		dispatcher,
		order.WithDefaultTemplate(cfg.DefaultOrderTemplate),
		order.WithNormalizer(address.NewNormalizer(address.DefaultCountryPlaceholder)),
		order.WithPhoneRegion(cfg.DefaultPhoneRegion),
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	stopCleanup := make(chan struct{})
	go limiter.Run(stopCleanup)

	router := transport.NewRouter(transport.RouterDeps{
		Orders:         transport.NewOrderHandler(orderSvc),
		Products:       transport.NewProductHandler(product.NewService(product.NewRepository(database))),
		Tokens:         auth.NewTokenManager(cfg.JWTSecret),
		Limiter:        limiter,
		Health:         database.PingContext,
		RequestTimeout: cfg.RequestTimeout(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	close(stopCleanup)
	if err := dispatcher.Shutdown(ctx); err != nil {
		log.Error("dispatcher shutdown", zap.Error(err))
	}
}
