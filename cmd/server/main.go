package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocer-service/config"
	"grocer-service/internal/api"
	"grocer-service/internal/broker"
	"grocer-service/internal/jobs"
	"grocer-service/internal/kvstore"
	"grocer-service/internal/service"
	"grocer-service/internal/store"
	"grocer-service/internal/util"
	"grocer-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting grocer service")

	tp, err := util.InitTracer("grocer-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	kv, err := kvstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer kv.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	catalogService := service.NewCatalogService(db, kv, time.Duration(cfg.Business.CatalogCacheSeconds)*time.Second)
	cartService := service.NewCartService(kv, catalogService)
	checkoutService := service.NewCheckoutService(kv, kv, eventPublisher, service.CheckoutPricing{
		TaxRate:               cfg.Business.TaxRate,
		StandardFee:           cfg.Business.StandardFee,
		ExpressFee:            cfg.Business.ExpressFee,
		ScheduledFee:          cfg.Business.ScheduledFee,
		FreeDeliveryThreshold: cfg.Business.FreeDeliveryThreshold,
	})
	orderService := service.NewOrderService(kv, db, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	archiveConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	archiveWorker := worker.NewArchiveWorker(archiveConsumer, db)
	go func() {
		if err := archiveWorker.Start(workerCtx); err != nil {
			log.Printf("Archive worker error: %v", err)
		}
	}()

	statusJob := jobs.NewStatusProgressionJob(kv, eventPublisher, time.Duration(cfg.Business.StatusJobSeconds)*time.Second)
	if err := statusJob.Start(); err != nil {
		log.Fatalf("Failed to start status progression job: %v", err)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(cartService, checkoutService, orderService, catalogService, cfg.Auth.JWTSecret)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	statusJob.Stop()
	workerCancel()
	archiveWorker.Stop()

	log.Println("Server exited")
}
