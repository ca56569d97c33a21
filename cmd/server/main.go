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

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/app"
	"storefront/internal/broker"
	"storefront/internal/identity"
	"storefront/internal/localstore"
	"storefront/internal/remote"
	"storefront/internal/util"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront sync service")

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
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

	ctx := context.Background()

	store, err := remote.NewFirestoreStore(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer store.Close()
	log.Println("Firestore connected")

	provider := identity.NewFirebaseProvider(cfg.Identity.APIKey)

	submitted, closeSubmitted, err := newSubmittedOrders(cfg)
	if err != nil {
		log.Fatalf("Failed to open submitted-orders store: %v", err)
	}
	defer closeSubmitted()
	log.Printf("Submitted-orders backend: %s", cfg.Orders.Backend)

	opts := app.Options{
		Handoff: func(link string) {
			logger.Info("Handoff link prepared", zap.String("link", link))
		},
		Notice: func(code string) {
			logger.Warn("User notice", zap.String("code", code))
		},
	}

	var producer *broker.Producer
	if cfg.Kafka.Enabled {
		producer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		log.Println("Kafka producer initialized")

		publisher := broker.NewOrderPublisher(producer)
		opts.Publisher = publisher
		opts.Status = publisher
	}

	a := app.New(cfg, store, provider, submitted, opts)
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start sync: %v", err)
	}
	defer a.Stop()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var eventsWorker *worker.EventsWorker
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		eventsWorker = worker.NewEventsWorker(consumer)
		go func() {
			if err := eventsWorker.Start(workerCtx); err != nil {
				log.Printf("Events worker error: %v", err)
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(a)
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

	workerCancel()
	if eventsWorker != nil {
		eventsWorker.Stop()
	}

	log.Println("Server exited")
}

// newSubmittedOrders opens the configured allow-list backend.
func newSubmittedOrders(cfg *config.Config) (localstore.SubmittedOrders, func(), error) {
	switch cfg.Orders.Backend {
	case "redis":
		set, err := localstore.NewRedisSet(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Orders.StorageKey)
		if err != nil {
			return nil, nil, err
		}
		return set, func() { set.Close() }, nil
	case "postgres":
		set, err := localstore.NewSQLSet(cfg.Database.URL, cfg.Orders.StorageKey)
		if err != nil {
			return nil, nil, err
		}
		return set, func() { set.Close() }, nil
	default:
		set, err := localstore.NewFileSet(cfg.Orders.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return set, func() {}, nil
	}
}
