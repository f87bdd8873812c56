package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/config"
	s3infra "github.com/sylveur65/Projet-goodyfans-sub000/internal/infra/s3"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/jobs/rescan"
	pgrepo "github.com/sylveur65/Projet-goodyfans-sub000/internal/repo/postgres"
	redrepo "github.com/sylveur65/Projet-goodyfans-sub000/internal/repo/redis"
	authsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/auth"
	contentsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/content"
	mediasvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/media"
	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
	purchasesvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/purchases"
	userssvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	rescanJob  *rescan.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	statsRepo := redrepo.NewModerationStatsRepo(redisClient, 0)

	userRepo := pgrepo.NewUserRepo(pool)
	contentRepo := pgrepo.NewContentRepo(pool)
	moderationRepo := pgrepo.NewModerationRepo(pool)
	purchaseRepo := pgrepo.NewPurchaseRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	userService := userssvc.NewService(userRepo)

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaStorage)
	mediaService.AttachRateLimit(rateRepo)

	classifier := modsvc.NewClassifier(modsvc.ClassifierConfig{
		Endpoint: cfg.Classifier.Endpoint,
		APIKey:   cfg.Classifier.APIKey,
		Timeout:  cfg.Classifier.Timeout,
		CacheTTL: cfg.Classifier.CacheTTL,
	}, log)

	// contentService and moderationService reference each other: moderation
	// enumerates content for bulk re-scans, content gates activation on
	// moderation outcomes. The content source is attached after both exist.
	moderationService := modsvc.NewService(moderationRepo, classifier, nil, log)
	moderationService.AttachStatsCache(statsRepo)
	contentService := contentsvc.NewService(contentRepo, moderationService, mediaService, log)
	moderationService.AttachContentSource(contentService)

	purchaseService := purchasesvc.NewService(purchaseRepo, contentRepo, mediaService)

	var rescanJob *rescan.Job
	if cfg.Rescan.Enabled {
		rescanJob = rescan.New(moderationService, cfg.Rescan.Interval, log)
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:        jwtManager,
		UserService:       userService,
		MediaService:      mediaService,
		ContentService:    contentService,
		ModerationService: moderationService,
		PurchaseService:   purchaseService,
		Logger:            log,
		Config:            cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		rescanJob:  rescanJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartJobs launches background workers. They stop when ctx is cancelled.
func (a *App) StartJobs(ctx context.Context) {
	if a.rescanJob != nil {
		go a.rescanJob.Start(ctx)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
