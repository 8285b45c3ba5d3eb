package container

import (
	"context"
	"fmt"

	"github.com/blindmatch/backend/internal/config"
	deliveryhttp "github.com/blindmatch/backend/internal/delivery/http"
	"github.com/blindmatch/backend/internal/delivery/http/handler"
	"github.com/blindmatch/backend/internal/delivery/http/middleware"
	"github.com/blindmatch/backend/internal/infrastructure/database"
	"github.com/blindmatch/backend/internal/infrastructure/gemini"
	"github.com/blindmatch/backend/internal/infrastructure/server"
	"github.com/blindmatch/backend/internal/infrastructure/twilio"
	"github.com/blindmatch/backend/internal/repository/postgres"
	redisrepo "github.com/blindmatch/backend/internal/repository/redis"
	"github.com/blindmatch/backend/internal/usecase/admin"
	"github.com/blindmatch/backend/internal/usecase/conversation"
	"github.com/blindmatch/backend/internal/usecase/matching"
	"github.com/blindmatch/backend/internal/usecase/notify"
	"github.com/blindmatch/backend/internal/usecase/orchestrator"
	"github.com/blindmatch/backend/internal/usecase/ratelimit"
	"github.com/blindmatch/backend/internal/usecase/scoring"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Gemini *gemini.Client
	Server *server.Server
}

// NewContainer wires the full dependency graph.
func NewContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	geminiClient, err := gemini.NewClient(ctx, &cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	twilioClient := twilio.NewClient(&cfg.Twilio, log)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	prefsRepo := postgres.NewPreferencesRepository(db)
	answerRepo := postgres.NewAnswerRepository(db)
	vectorRepo := postgres.NewVectorRepository(db)
	availRepo := postgres.NewAvailabilityRepository(db)
	proposalRepo := postgres.NewProposalRepository(db)
	convRepo := postgres.NewConversationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	stateCache := redisrepo.NewStateCache(redisClient)
	counterStore := redisrepo.NewCounterStore(redisClient)

	// Use cases
	sender := notify.NewService(twilioClient, messageRepo, auditRepo, log)
	limiter := ratelimit.New(&cfg.RateLimit, counterStore)
	scorer := scoring.NewScorer(cfg.Matching.ScoreThreshold)
	filter := matching.NewCandidateFilter(userRepo, profileRepo, prefsRepo, vectorRepo, answerRepo, availRepo, log)
	proposals := matching.NewProposalService(&cfg.Matching, filter, scorer, proposalRepo, userRepo, profileRepo, sender, log)
	conversations := conversation.NewService(
		&cfg.Redis,
		convRepo, stateCache,
		userRepo, profileRepo, prefsRepo, answerRepo, vectorRepo, availRepo,
		messageRepo, auditRepo,
		limiter, geminiClient, geminiClient, proposals, sender, log,
	)
	batches := orchestrator.NewService(
		userRepo, profileRepo, availRepo, proposalRepo, auditRepo,
		conversations, proposals, sender, log,
	)
	adminService := admin.NewService(&cfg.Admin, userRepo, profileRepo, availRepo, proposalRepo)

	// Delivery
	webhookHandler := handler.NewWebhookHandler(conversations, sender, log)
	batchHandler := handler.NewBatchHandler(batches)
	adminHandler := handler.NewAdminHandler(adminService)
	authMiddleware := middleware.NewAuthMiddleware(adminService, cfg.CronSecret)
	twilioMiddleware := middleware.NewTwilioMiddleware(cfg.Twilio.AuthToken, log)

	router := deliveryhttp.NewRouter(webhookHandler, batchHandler, adminHandler, authMiddleware, twilioMiddleware)
	srv := server.NewServer(&cfg.Server, router.Setup(), log)

	return &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		Redis:  redisClient,
		Gemini: geminiClient,
		Server: srv,
	}, nil
}

// Close releases all held resources.
func (c *Container) Close() {
	if c.Gemini != nil {
		c.Gemini.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Log.Warn("failed to close database", zap.Error(err))
		}
	}
}
