package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"artmarket/internal/config"
	"artmarket/internal/db"
	"artmarket/internal/email"
	apihttp "artmarket/internal/http"
	"artmarket/internal/repository"
	"artmarket/internal/service"
	"artmarket/internal/ws"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	artistRepo := repository.NewPgArtistRepository(pool)
	requesterRepo := repository.NewPgRequesterRepository(pool)
	jobRepo := repository.NewPgJobRepository(pool)
	applicationRepo := repository.NewPgApplicationRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	reviewRepo := repository.NewPgReviewRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	limiter := service.NewMemoryRateLimiter(10*time.Minute, 3)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	tokenSvc := service.NewTokenService(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLHours)*time.Hour,
	)

	hub := ws.NewHub(logger)

	sessionSvc := service.NewSessionService(logger, userRepo, tokenSvc, emailSender, limiter)
	userSvc := service.NewUserService(logger, userRepo)
	messageSvc := service.NewMessageService(logger, messageRepo, userRepo, hub)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:       logger,
		Pool:         pool,
		Tokens:       tokenSvc,
		Users:        userRepo,
		Sessions:     apihttp.NewSessionHandler(logger, sessionSvc, tokenSvc, cfg.Production()),
		UserH:        apihttp.NewUserHandler(logger, userSvc),
		Artists:      apihttp.NewArtistHandler(logger, artistRepo, reviewRepo),
		Requesters:   apihttp.NewRequesterHandler(logger, requesterRepo, jobRepo, reviewRepo),
		Jobs:         apihttp.NewJobHandler(logger, jobRepo, applicationRepo, artistRepo, requesterRepo),
		Applications: apihttp.NewApplicationHandler(logger, applicationRepo, artistRepo, requesterRepo),
		Messages:     apihttp.NewMessageHandler(logger, messageSvc),
		Statistics:   apihttp.NewStatisticsHandler(logger, jobRepo, applicationRepo, artistRepo, requesterRepo),
		WS:           apihttp.NewWSHandler(logger, hub),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
