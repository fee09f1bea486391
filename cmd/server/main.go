package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-sentiment/internal/auth"
	"todo-sentiment/internal/config"
	apphttp "todo-sentiment/internal/http"
	"todo-sentiment/internal/repository/sqldb"
	"todo-sentiment/internal/sentiment"
	"todo-sentiment/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		logger.Warnf("unknown log level %q, keeping %s", cfg.Log.Level, logger.GetLevel())
	} else {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqldb.Open(ctx, cfg.Database.Driver, cfg.DataSource())
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqldb.NewUserRepository(db)
	todoRepo := sqldb.NewTodoRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := todoRepo.Init(ctx); err != nil {
		logger.Fatalf("init todo repository: %v", err)
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	userService := service.NewUserService(userRepo, auth.NewPasswordHasher(cfg.Auth.BcryptCost))
	todoService := service.NewTodoService(todoRepo, sentiment.New(), service.TodoOptions{
		EnforceOwnership: cfg.Todo.EnforceOwnership,
	})
	exportService := service.NewExportService(todoRepo, storageSvc, service.ExportConfig{
		Bucket:     cfg.Storage.Bucket,
		KeyPrefix:  cfg.Storage.KeyPrefix,
		PresignTTL: cfg.PresignTTL(),
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		todoService,
		exportService,
		auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":      cfg.Server.Addr,
			"driver":    db.Dialect(),
			"ownership": cfg.Todo.EnforceOwnership,
			"lexicon":   sentiment.LexiconVersion,
		}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
