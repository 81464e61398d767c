package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaveNTravel/saventravel-backend/config"
	"github.com/SaveNTravel/saventravel-backend/db"
	"github.com/SaveNTravel/saventravel-backend/handlers"
	"github.com/SaveNTravel/saventravel-backend/internal/events"
	"github.com/SaveNTravel/saventravel-backend/internal/service"
	"github.com/SaveNTravel/saventravel-backend/internal/store"
	pgstore "github.com/SaveNTravel/saventravel-backend/internal/store/postgres"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	defer logger.Close()
	log := logger.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}

	if cfg.Server.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := db.Connect(ctx, &cfg.Database)
	cancel()
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalw("Failed to run migrations", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnw("Redis unreachable at startup, events may be delayed", "error", err)
	}
	cancel()

	// Stores share a single document store backed by Postgres.
	docStore := pgstore.NewDocumentStore(pool)
	requestStore := store.NewFriendRequestStore(docStore)
	splitStore := store.NewSplitStore(docStore)
	tripStore := store.NewTripStore(docStore)
	userStore := store.NewUserStore(docStore)
	budgetStore := store.NewBudgetStore(docStore)

	publisher := events.NewRedisPublisher(rdb)

	friendshipService := service.NewFriendshipService(requestStore, userStore, publisher)
	ledgerService := service.NewLedgerService(splitStore, budgetStore, tripStore, publisher)
	balanceService := service.NewBalanceService(splitStore, ledgerService, friendshipService)
	budgetService := service.NewBudgetService(budgetStore, ledgerService)
	tripService := service.NewTripService(tripStore, userStore, budgetStore, publisher)

	r := router.SetupRouter(router.Dependencies{
		Config:         cfg,
		FriendHandler:  handlers.NewFriendHandler(friendshipService),
		BalanceHandler: handlers.NewBalanceHandler(balanceService),
		SplitHandler:   handlers.NewSplitHandler(ledgerService),
		TripHandler:    handlers.NewTripHandler(tripService, budgetService),
		HealthHandler:  handlers.NewHealthHandler(pool, rdb, cfg.Server.Version),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	log.Info("Server exited")
}
