package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rokyuddin/billping-api/internal/cache"
	"github.com/rokyuddin/billping-api/internal/config"
	"github.com/rokyuddin/billping-api/internal/emailer"
	handlers "github.com/rokyuddin/billping-api/internal/handlers/http"
	"github.com/rokyuddin/billping-api/internal/metrics"
	"github.com/rokyuddin/billping-api/internal/notifier"
	"github.com/rokyuddin/billping-api/internal/pusher"
	"github.com/rokyuddin/billping-api/internal/repository/sqlite"
	"github.com/rokyuddin/billping-api/internal/services/category"
	"github.com/rokyuddin/billping-api/internal/services/email"
	serviceLogger "github.com/rokyuddin/billping-api/internal/services/logger"
	"github.com/rokyuddin/billping-api/internal/services/subscriptions"
)

const (
	timeoutDuration = 5 * time.Second

	fileMode = 0o644

	breakerInterval = time.Minute
	breakerTimeout  = 30 * time.Second
	breakerFailures = 3
)

type ServiceContainer struct {
	SubscriptionService *subscriptions.Service
	CategoryService     *category.Service
	EmailService        *email.Service
	PushService         *pusher.Service
	Notificator         *notifier.Notifier
	SubRepository       *sqlite.SubscriptionRepository
	ProfileRepository   *sqlite.ProfileRepository

	Router     *gin.Engine
	Srv        *http.Server
	Db         *sql.DB
	Redis      *redis.Client
	M          *metrics.Metrics
	fileLogger *zap.Logger
}

type App struct {
	cfg config.Config
	l   zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *App {
	logger = logger.With().Str("service", "billping-api").Timestamp().Logger()
	return &App{cfg: cfg, l: logger}
}

func (a *App) Start(ctx context.Context) error {
	srvContainer, err := a.init(ctx)
	if err != nil {
		return err
	}

	srvContainer.Router.Use(gin.Recovery(), srvContainer.M.HTTPMiddleware())

	subHandler := handlers.NewHandler(srvContainer.SubscriptionService)
	profileHandler := handlers.NewProfileHandler(srvContainer.ProfileRepository)
	pushHandler := handlers.NewPushHandler(srvContainer.ProfileRepository, a.cfg.Push.VAPIDPublicKey)
	categoryHandler := handlers.NewCategoryHandler(srvContainer.CategoryService)
	reminderHandler := handlers.NewReminderHandler(srvContainer.Notificator, a.cfg.Reminders.CronSecret)

	api := srvContainer.Router.Group("/api")
	{
		user := api.Group("", handlers.RequireUser())
		{
			user.POST("/subscriptions", subHandler.Create)
			user.GET("/subscriptions", subHandler.List)
			user.GET("/subscriptions/summary", subHandler.Summary)
			user.GET("/subscriptions/:id", subHandler.Get)
			user.PUT("/subscriptions/:id", subHandler.Update)
			user.DELETE("/subscriptions/:id", subHandler.Delete)

			user.GET("/profile", profileHandler.Get)
			user.PUT("/profile", profileHandler.Update)

			user.POST("/push/subscribe", pushHandler.Subscribe)
			user.POST("/push/unsubscribe", pushHandler.Unsubscribe)

			user.POST("/categorize", categoryHandler.Categorize)
		}

		api.GET("/push/vapid-key", pushHandler.VAPIDKey)
		api.POST("/reminders/dispatch", reminderHandler.Dispatch)
	}

	srvContainer.Router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))
	srvContainer.Router.GET("/metrics", gin.WrapH(srvContainer.M.Handler()))

	srvContainer.Notificator.Start(ctx)
	a.l.Info().Msg("Notifier started")

	go func() {
		a.l.Info().Str("http_addr", a.cfg.ServerAddress()).Msg("HTTP server listening")
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.l.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-ctx.Done()
	a.l.Info().Msg("Shutdown signal received")
	return a.Stop(srvContainer)
}

func (a *App) Stop(srvContainer ServiceContainer) error {
	a.l.Info().Msg("Stopping application")

	srvContainer.Notificator.Stop()
	a.l.Info().Msg("Notifier stopped")

	ctx, cancel := context.WithTimeout(context.Background(), timeoutDuration)
	defer cancel()
	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		a.l.Error().Err(err).Msg("HTTP shutdown error")
	} else {
		a.l.Info().Msg("HTTP server stopped")
	}

	if err := srvContainer.Redis.Close(); err != nil {
		a.l.Error().Err(err).Msg("Redis close error")
	}

	if err := srvContainer.Db.Close(); err != nil {
		a.l.Error().Err(err).Msg("Database close error")
	} else {
		a.l.Info().Msg("Database closed")
	}

	if err := srvContainer.fileLogger.Sync(); err != nil {
		a.l.Debug().Err(err).Msg("file logger sync error")
	}

	a.l.Info().Msg("Application shutdown complete")
	return nil
}

func (a *App) init(ctx context.Context) (ServiceContainer, error) {
	a.l.Info().Msg("Initializing application")

	dbCtx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()
	db, err := CreateSqliteDb(dbCtx, a.cfg.DB.Dialect, a.cfg.DB.Source)
	if err != nil {
		a.l.Error().Err(err).Msg("DB open error")
		return ServiceContainer{}, err
	}
	if err := InitSqliteDb(db, a.cfg.DB.Dialect, a.cfg.DB.MigrationsPath); err != nil {
		a.l.Error().Err(err).Msg("DB migration error")
		return ServiceContainer{}, err
	}

	m := metrics.NewMetrics("billping", db, a.cfg.DB.Source)

	router := gin.New()

	httpSrv := &http.Server{
		Addr:        a.cfg.ServerAddress(),
		Handler:     router,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	subRepo := sqlite.NewSubscriptionRepository(db, a.l, m)
	profileRepo := sqlite.NewProfileRepository(db, a.l, m)

	fileLogger, err := newFileLogger(outboundLogPath(a.cfg.LogsPath))
	if err != nil {
		a.l.Error().Err(err).Msg("failed to create outbound HTTP logger")
		return ServiceContainer{}, err
	}
	httpLogClient := &http.Client{
		Transport: serviceLogger.NewRoundTripper(fileLogger),
	}

	resendClient := emailer.NewResendClient(
		a.cfg.Email.APIKey,
		a.cfg.Email.BaseURL,
		a.cfg.Email.From,
		httpLogClient,
		a.l,
	)
	emailService := email.NewService(
		resendClient,
		a.cfg.TemplatesDir,
		a.cfg.SiteURL,
		a.cfg.Email.OverrideTo,
		a.l,
	)

	pushService := pusher.New(
		a.cfg.Push.VAPIDPublicKey,
		a.cfg.Push.VAPIDPrivateKey,
		a.cfg.Push.Subject,
		a.cfg.Push.TTL,
		httpLogClient,
		a.l,
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
	})
	categoryCache := cache.NewRedisClient[string](
		redisClient,
		a.l,
		time.Duration(a.cfg.Category.CacheTTLMin)*time.Minute,
	)

	groqClient := category.NewGroqClient(
		a.cfg.Category.GroqAPIKey,
		a.cfg.Category.BaseURL,
		a.cfg.Category.Model,
		httpLogClient,
	)
	breakerClient := category.NewBreakerClient("groq", category.BreakerConfig{
		TimeInterval: breakerInterval,
		TimeTimeOut:  breakerTimeout,
		RepeatNumber: breakerFailures,
	}, groqClient)
	categoryService := category.NewService(breakerClient, categoryCache, a.l, m)

	subService := subscriptions.NewService(subRepo, a.l, m)

	n := notifier.New(subRepo, emailService, pushService, a.l, a.cfg.Reminders.Schedule, m)

	return ServiceContainer{
		SubscriptionService: subService,
		CategoryService:     categoryService,
		EmailService:        emailService,
		PushService:         pushService,
		Notificator:         n,
		SubRepository:       subRepo,
		ProfileRepository:   profileRepo,
		Router:              router,
		Srv:                 httpSrv,
		Db:                  db,
		Redis:               redisClient,
		M:                   m,
		fileLogger:          fileLogger,
	}, nil
}

func CreateSqliteDb(ctx context.Context, dialect, name string) (*sql.DB, error) {
	if name == "" {
		return nil, errors.New("database name cannot be empty")
	}
	connectionString := "file:" + name + "?cache=shared&mode=rwc"
	db, err := sql.Open(dialect, connectionString)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func InitSqliteDb(db *sql.DB, dialect, migrationPath string) error {
	log.Println("Initializing migrations:", migrationPath)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	if err := goose.Up(db, migrationPath); err != nil {
		return err
	}

	return nil
}

func outboundLogPath(logsPath string) string {
	dir := filepath.Dir(logsPath)
	return filepath.Join(dir, "outbound_http.log")
}

func newFileLogger(filePath string) (*zap.Logger, error) {
	file, err := os.OpenFile(filepath.Clean(filePath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, err
	}

	writer := zapcore.AddSync(file)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		writer,
		zap.InfoLevel,
	)
	return zap.New(core), nil
}
