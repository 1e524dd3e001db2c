package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prepworks/scoring-service/internal/cache"
	"github.com/prepworks/scoring-service/internal/config"
	"github.com/prepworks/scoring-service/internal/handlers"
	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/repositories"
	"github.com/prepworks/scoring-service/internal/repositories/postgres"
	"github.com/prepworks/scoring-service/internal/services"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/prepworks/scoring-service/internal/validator"
	"github.com/prepworks/scoring-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		log.Fatal(err)
	}

	// The service degrades to disk-only question loading without Redis.
	var cacheService cache.CacheService
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, question set caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, logger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		log.Fatal(err)
	}
	defer publisher.Close()

	questionRepo := repositories.NewFileQuestionRepository(cfg.QuestionDataDir, cacheService, logger)
	userRepo := postgres.NewUserRepository(db)

	v := validator.New()
	serviceManager := services.NewServiceManager(questionRepo, userRepo, publisher, logger, v)
	handlerManager := handlers.NewHandlerManager(serviceManager, v, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager.SetupRoutes(router)

	logger.Info("Starting scoring service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server exited", "error", err)
		log.Fatal(err)
	}
}
