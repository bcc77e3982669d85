package main

import (
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"driftline/internal/config"
	"driftline/internal/domain"
	"driftline/internal/repository"
	"driftline/internal/server"
	"driftline/pkg/database"
	"driftline/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(appLogger)

	db, err := database.Connect(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.Message{},
		&domain.Chat{},
		&domain.Post{},
		&domain.Profile{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	hub := server.NewHub()
	publisher := server.NewPublisher(hub, redisClient, appLogger)

	messages := repository.NewMessageRepository(db)
	chats := repository.NewChatRepository(db)
	posts := repository.NewPostRepository(db)
	profiles := repository.NewProfileRepository(db)

	authService := server.NewAuthService(profiles, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	handlers := server.NewHandlers(messages, chats, posts, profiles, publisher)
	realtime := server.NewRealtimeHandler(hub, appLogger)

	r := server.Router(authService, handlers, realtime)

	appLogger.Infof("stubd listening on port %s", cfg.Server.Port)
	if err := r.Run(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
