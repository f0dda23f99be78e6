package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobboard-api/config"
	"jobboard-api/internal/filestore"
	"jobboard-api/internal/geocoder"
	"jobboard-api/internal/mailer"
	"jobboard-api/internal/services"
	"jobboard-api/internal/storage"
	"jobboard-api/internal/storage/postgres"
	"jobboard-api/internal/storage/redisstore"
)

// Application holds core application dependencies.
type Application struct {
	Config      *config.Config
	Logger      *zap.Logger
	DBPool      *pgxpool.Pool
	RedisClient *redis.Client
	Validator   *validator.Validate

	RateLimiter           storage.RateLimiter
	JobService            services.JobService
	JobApplicationService services.JobApplicationService
	UserService           services.UserService
}

// New wires repositories, adapters and services on top of the open connections.
func New(cfg *config.Config, logger *zap.Logger, pool *pgxpool.Pool, rdb *redis.Client) (*Application, error) {
	files, err := filestore.NewDisk(cfg.Uploads.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	var geo geocoder.Geocoder = geocoder.NewMapQuest(cfg.Geocoder.BaseURL, cfg.Geocoder.APIKey, cfg.Geocoder.Timeout)
	if cfg.Geocoder.CacheTTL > 0 {
		geo = geocoder.NewCached(geo, rdb, cfg.Geocoder.CacheTTL, logger)
	}

	jobRepo := postgres.NewJobRepo(pool, logger)
	userRepo := postgres.NewUserRepo(pool, logger)
	tokens := services.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)

	return &Application{
		Config:      cfg,
		Logger:      logger,
		DBPool:      pool,
		RedisClient: rdb,
		Validator:   validator.New(),
		RateLimiter: redisstore.NewFixedWindowLimiter(rdb),
		JobService:  services.NewJobService(jobRepo, geo, files, logger),
		JobApplicationService: services.NewJobApplicationService(jobRepo, files, services.UploadPolicy{
			MaxFileSize:       cfg.Uploads.MaxFileSize,
			AllowedExtensions: cfg.Uploads.AllowedExtensions,
		}, logger),
		UserService: services.NewUserService(
			userRepo,
			tokens,
			redisstore.NewTokenDenylist(rdb),
			mailer.NewLogMailer(cfg.Mail.From, logger),
			services.PasswordResetOptions{TokenTTL: cfg.PasswordReset.TokenTTL, URLBase: cfg.PasswordReset.URLBase},
			logger,
		),
	}, nil
}
