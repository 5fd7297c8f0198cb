package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sewa/config"
	"sewa/cron"
	"sewa/database"
	workerRepo "sewa/database/repository/worker"
	"sewa/handlers"
	"sewa/middleware"
	"sewa/routes"
	"sewa/services/admin"
	"sewa/services/notification"
	"sewa/services/worker"
	"sewa/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()
	utils.StartHealthMonitor(ctx, []*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient)

	documentStore, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize document storage: %v", err)
	}

	// repositories.
	workers := workerRepo.NewMongoWorkerRepo()
	snapshotCache := worker.NewRedisSnapshotCache(utils.GetCacheClient(), config.AppConfig.WorkerCacheTTL, logger)

	// services.
	notificationService, err := notification.NewDefaultNotificationService(workers, utils.FCMClient, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	workerService, err := worker.NewDefaultWorkerService(workers, snapshotCache, documentStore, notificationService, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	if n := config.AppConfig.AppLockMaxAttempts; n > 0 {
		workerService.AppLockMaxAttempts = n
	}
	if d := config.AppConfig.AppLockCooldown; d > 0 {
		workerService.AppLockCooldown = d
	}

	taskClient := asynq.NewClient(cron.RedisOpt())
	defer taskClient.Close()

	adminService, err := admin.NewDefaultAdminService(workers, snapshotCache, documentStore, taskClient, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	queueServer := cron.InitNotificationWorker(ctx, notificationService, logger)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		WorkerRepo: workers,
		AuthCache:  utils.GetAuthCacheClient(),
		AdminToken: config.AppConfig.AdminToken,
		Worker:     handlers.NewWorkerHandler(workerService),
		Admin:      handlers.NewAdminHandler(adminService),
	})

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	queueServer.Shutdown()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: failed to disconnect MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
