package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calendo/config"
	"calendo/cron"
	"calendo/database"
	appointmentRepo "calendo/database/repository/appointment"
	eventsRepo "calendo/database/repository/events"
	userRepoPkg "calendo/database/repository/user"
	"calendo/handlers"
	"calendo/middleware"
	"calendo/routes"
	"calendo/services/events"
	"calendo/services/scheduling"
	"calendo/services/user"
	"calendo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitCache()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	utils.StartHealthMonitor(rootCtx, utils.GetCacheClient(), database.MongoClient, 30*time.Second)

	// repositories.
	slotRepo := appointmentRepo.NewMongoAppointmentRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	eventRepo := eventsRepo.NewMongoEventRepo()

	indexCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	if err := slotRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("main: failed to ensure appointment indexes", zap.Error(err))
	}
	cancel()

	// services.
	loc := config.Location()
	workerDir := scheduling.NewWorkerDirectory(
		userRepo,
		scheduling.NewRedisWorkerCache(utils.GetCacheClient()),
		config.AppConfig.WorkerCacheTTL,
		logger.Named("workers"),
	)
	engine := scheduling.NewEngine(slotRepo, userRepo, workerDir, logger.Named("scheduling"), loc, config.AppConfig.DefaultSlotCapacity)
	userService := &user.DefaultUserService{Repo: userRepo, Workers: workerDir}
	eventService := events.NewEventService(eventRepo, loc, logger.Named("events"))

	// background slot generation.
	slotWorker := cron.InitSlotWorker(engine, logger.Named("slot-worker"))
	slotScheduler, err := cron.InitSlotScheduler(logger.Named("slot-scheduler"))
	if err != nil {
		logger.Warn("main: slot scheduler not started", zap.Error(err))
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware())

	handlerBundle := handlers.NewHandlerBundle(engine, userService, eventService)
	routes.RegisterRoutes(router, handlerBundle, userRepo)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if slotScheduler != nil {
		slotScheduler.Shutdown()
	}
	slotWorker.Shutdown()
	stopBackground()
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
