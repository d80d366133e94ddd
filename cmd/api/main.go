package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/osler-labs/clinsim-go-api/internal/config"
	"github.com/osler-labs/clinsim-go-api/internal/database"
	"github.com/osler-labs/clinsim-go-api/internal/handler"
	"github.com/osler-labs/clinsim-go-api/internal/middleware"
	"github.com/osler-labs/clinsim-go-api/internal/models"
	"github.com/osler-labs/clinsim-go-api/internal/repository"
	"github.com/osler-labs/clinsim-go-api/internal/router"
	"github.com/osler-labs/clinsim-go-api/internal/service"
	"github.com/osler-labs/clinsim-go-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Symptom{},
		&models.Patient{},
		&models.Prompt{},
		&models.Assignment{},
		&models.ChatModel{},
		&models.APIKey{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)

	generator := buildGenerator(cfg, apiKeyRepo, logger)

	scoringService := service.NewScoringService(assignmentRepo, patientRepo, generator, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, patientRepo, studentRepo, validate, logger)
	reattemptService := service.NewReattemptService(assignmentRepo, validate, logger)
	statsService := service.NewStatsService(studentRepo, patientRepo, assignmentRepo, redisClient, cfg.StatsCacheTTL, logger)
	adminKeyService := service.NewAdminKeyService(apiKeyRepo, generator, validate, logger)

	deps := router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		ScoringHandler:    handler.NewScoringHandler(scoringService, logger),
		ReattemptHandler:  handler.NewReattemptHandler(reattemptService, logger),
		AdminKeyHandler:   handler.NewAdminKeyHandler(adminKeyService, logger),
		StatsHandler:      handler.NewStatsHandler(statsService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
	})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildGenerator wires the provider cache over stored API keys, falling back
// to a key from the environment until one is registered through the admin API.
func buildGenerator(cfg config.Config, apiKeyRepo repository.APIKeyRepository, logger zerolog.Logger) *ai.ProviderCache {
	source := ai.FallbackSource{
		Primary: service.NewKeyCredentialSource(apiKeyRepo),
		Fallback: ai.Credential{
			Key:       cfg.OpenAIAPIKey,
			Model:     cfg.AIModel,
			MaxTokens: cfg.AIMaxTokens,
		},
	}

	factory := func(cred ai.Credential) (ai.Generator, error) {
		if cfg.AIProvider == "anthropic" {
			return ai.NewAnthropicGenerator(ai.AnthropicConfig{
				APIKey:    cfg.AnthropicKey,
				Model:     cred.Model,
				MaxTokens: cred.MaxTokens,
				Timeout:   cfg.AITimeout,
			})
		}
		return ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:    cred.Key,
			Model:     cred.Model,
			MaxTokens: cred.MaxTokens,
			Timeout:   cfg.AITimeout,
			Logger:    logger,
		})
	}

	return ai.NewProviderCache(models.KeyServiceOpenAI, source, factory)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
