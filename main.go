package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"boliche-os/internal/auth"
	"boliche-os/internal/config"
	"boliche-os/internal/handlers"
	"boliche-os/internal/kafka"
	"boliche-os/internal/logger"
	"boliche-os/internal/middleware"
	"boliche-os/internal/models"
	rediswrap "boliche-os/internal/redis"
	"boliche-os/internal/services"
	"boliche-os/internal/storage"
	"boliche-os/internal/tasks"
	"boliche-os/internal/ws"
)

var log *logger.Logger

func main() {
	log = logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("ENV", "Error loading .env file, using environment variables")
	}

	log.LogProcess("STARTUP", "Boliche OS starting up...")

	cfg := config.Load()
	log.Info("CONFIG", "Configuration loaded successfully")

	var store storage.Store
	switch cfg.StorageBackend {
	case "mysql":
		log.LogProcess("DATABASE", "Initializing MySQL database...")
		mysqlStore, err := storage.NewMySQLStore(cfg.Database, log)
		if err != nil {
			log.Fatal("DATABASE", "Failed to initialize MySQL: "+err.Error())
		}
		defer mysqlStore.Close()
		store = mysqlStore
		log.LogDatabase("INIT", "mysql", "MySQL storage initialized successfully")
	default:
		store = storage.NewInMemoryStore()
		log.LogProcess("DATABASE", "In-memory storage initialized")
	}

	log.LogProcess("KAFKA", "Initializing Kafka producer...")
	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.MockMode, log)
	if err != nil {
		log.Fatal("KAFKA", "Failed to create Kafka producer: "+err.Error())
	}
	defer kafkaProducer.Close()
	log.LogKafka("INIT", "producer", "Kafka producer initialized successfully")

	var comandaLock services.ComandaLock
	if cfg.Redis.Addr != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr: cfg.Redis.Addr,
		})
		comandaLock = rediswrap.NewRedis(redisClient)
		log.LogProcess("SERVICE", "Redis comanda lock enabled")
	} else {
		log.Warn("REDIS", "REDIS_ADDR not set, comanda lock runs on the store only")
	}

	hub := ws.NewHub(log)
	go hub.Run()
	log.LogProcess("WS", "Lane broadcast hub running")

	venueService := services.NewVenueService(store, kafkaProducer, log, comandaLock, hub)
	if err := venueService.Bootstrap(); err != nil {
		log.Fatal("SERVICE", "Failed to bootstrap floor layout: "+err.Error())
	}
	log.LogProcess("SERVICE", "Venue service initialized")

	authService := auth.NewService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// The online booking channel only exists with real brokers.
	if !cfg.Kafka.MockMode {
		log.LogProcess("KAFKA", "Initializing Kafka consumer...")
		kafkaConsumer, err := kafka.NewReservationConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			log.Fatal("KAFKA", "Failed to create Kafka consumer: "+err.Error())
		}
		defer kafkaConsumer.Close()

		go func() {
			log.LogKafka("START", "consumer", "Starting Kafka consumer goroutine")
			if err := kafkaConsumer.ConsumeReservations(context.Background(), venueService.IngestReservationEvent); err != nil {
				log.Error("KAFKA", "Consumer error: "+err.Error())
			}
		}()
	}

	laneHandler := handlers.NewLaneHandler(venueService)
	reservationHandler := handlers.NewReservationHandler(venueService)
	waitingHandler := handlers.NewWaitingHandler(venueService)
	settingsHandler := handlers.NewSettingsHandler(venueService)
	reportHandler := handlers.NewReportHandler(venueService)
	authHandler := handlers.NewAuthHandler(authService)
	log.LogProcess("HANDLER", "All handlers initialized")

	scheduler := tasks.InitScheduler(venueService, log)
	defer scheduler.Stop()

	router := setupRouter(authService, hub, laneHandler, reservationHandler, waitingHandler, settingsHandler, reportHandler, authHandler)
	log.LogProcess("ROUTER", "HTTP router configured")

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.LogProcess("SERVER", "Starting HTTP server on port "+cfg.Server.Port)
		log.Info("STARTUP", "Dashboard API available at: http://localhost"+cfg.Server.Port+"/api/v1/lanes")
		log.Info("STARTUP", "Health check available at: http://localhost"+cfg.Server.Port+"/health")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "Server failed to start: "+err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("SHUTDOWN", "Received shutdown signal, initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("SHUTDOWN", "Server forced to shutdown: "+err.Error())
	}

	log.Info("SHUTDOWN", "Boliche OS shutdown completed successfully")
}

func setupRouter(
	authService *auth.Service,
	hub *ws.Hub,
	laneHandler *handlers.LaneHandler,
	reservationHandler *handlers.ReservationHandler,
	waitingHandler *handlers.WaitingHandler,
	settingsHandler *handlers.SettingsHandler,
	reportHandler *handlers.ReportHandler,
	authHandler *handlers.AuthHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.EnhancedLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(log))
	router.Use(middleware.SecurityHeaders(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "boliche-os",
			"version":   "1.0.0",
		})
	})

	// Wall displays connect without a token.
	router.GET("/ws/lanes", hub.ServeWS)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(auth.Middleware(authService))
		{
			lanes := protected.Group("/lanes")
			{
				lanes.GET("", laneHandler.ListLanes)
				lanes.GET("/reserved-soon", laneHandler.ReservedSoon)
				lanes.GET("/:id", laneHandler.GetLaneDetail)
				lanes.POST("/:id/open", laneHandler.OpenLane)
				lanes.POST("/:id/close", laneHandler.CloseLane)
				lanes.POST("/:id/maintenance", laneHandler.SetMaintenance)
				lanes.DELETE("/:id/maintenance", laneHandler.ClearMaintenance)
				lanes.POST("/:id/block", laneHandler.BlockLane)
				lanes.DELETE("/:id/block", laneHandler.UnblockLane)
				lanes.POST("/:id/correct-start", laneHandler.CorrectStartTime)
				lanes.POST("/:id/transfer", laneHandler.TransferSession)
			}

			reservations := protected.Group("/reservations")
			{
				reservations.GET("", reservationHandler.ListReservations)
				reservations.POST("", reservationHandler.AddReservation)
				reservations.DELETE("/:id", reservationHandler.CancelReservation)
				reservations.PUT("/:id/status", reservationHandler.UpdateStatus)
				reservations.POST("/:id/check-in", reservationHandler.CheckIn)
			}

			waiting := protected.Group("/waiting")
			{
				waiting.GET("", waitingHandler.ListWaiting)
				waiting.POST("", waitingHandler.AddWaiting)
				waiting.DELETE("/:id", waitingHandler.RemoveWaiting)
			}

			reports := protected.Group("/reports")
			{
				reports.GET("/consumption", reportHandler.GetConsumptionReport)
				reports.GET("/audit", reportHandler.GetAuditTrail)
				reports.GET("/receipts/:number", reportHandler.ReprintReceipt)
			}

			settings := protected.Group("/settings")
			{
				settings.GET("/pricing", settingsHandler.GetPricingRules)
				settings.GET("/holidays", settingsHandler.ListHolidays)

				manager := settings.Group("")
				manager.Use(auth.RequireRole(models.RoleGerente))
				{
					manager.PUT("/pricing", settingsHandler.UpdatePricingRules)
					manager.POST("/holidays", settingsHandler.AddHoliday)
					manager.DELETE("/holidays/:date", settingsHandler.RemoveHoliday)
				}
			}
		}
	}

	log.LogProcess("ROUTER", "All routes registered successfully")
	return router
}
