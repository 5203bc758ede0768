package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/cache"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/config"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/database"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/handlers"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/logger"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/metrics"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/middleware"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/rbac"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/services"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("starting hotel backoffice API",
		zap.String("env", cfg.App.Env),
		zap.String("store_driver", cfg.Store.Driver),
	)

	metrics.Init(cfg)
	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	var (
		store     repository.Store
		userStore repository.UserStore
		dbManager *database.Manager
	)

	switch cfg.Store.Driver {
	case "memory":
		store = repository.NewMemoryStore()
		userStore = repository.NewMemoryUserStore()
	default:
		dbManager = database.GetManager(cfg)
		if err := dbManager.InitPool(ctx); err != nil {
			log.Fatal("failed to initialize database pool", zap.Error(err))
		}
		store = repository.NewPostgresStore(dbManager.GetPool())
		userStore = repository.NewPostgresUserStore(dbManager.GetPool())
	}

	// Redis is an accelerator, not a dependency. Run without it if it is down.
	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	evaluator := rbac.NewEvaluator(userStore)

	resourceService := services.NewResourceService(store, userStore, evaluator, redisClient)
	userService := services.NewUserService(userStore, store, evaluator, redisClient)

	authHandler := handlers.NewAuthHandler(cfg, userStore, evaluator)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	userHandler := handlers.NewUserHandler(userService)

	router := setupRouter(cfg, userStore, redisClient, authHandler, resourceHandler, userHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced to shutdown", zap.Error(err))
	}

	if dbManager != nil {
		dbManager.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Info("exited")
}

func setupRouter(
	cfg *config.Config,
	userStore repository.UserStore,
	redisClient *cache.Client,
	authHandler *handlers.AuthHandler,
	resourceHandler *handlers.ResourceHandler,
	userHandler *handlers.UserHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "hotel-backoffice-api"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(cfg, userStore, redisClient))
	{
		// Generic resource surface, kind is one of hotel/workspace/bot/folder
		protected.GET("/resources/:kind", resourceHandler.List)
		protected.POST("/resources/:kind", resourceHandler.Create)
		protected.GET("/resources/:kind/:id", resourceHandler.GetByID)
		protected.PUT("/resources/:kind/:id", resourceHandler.Update)
		protected.DELETE("/resources/:kind/:id", resourceHandler.Delete)
		protected.PATCH("/resources/:kind/:id/activate", resourceHandler.Activate)

		// Folder tree operations
		protected.PATCH("/resources/folder/:id/move", resourceHandler.Move)
		protected.PATCH("/resources/folder/reorder", resourceHandler.Reorder)

		// User management
		protected.POST("/users", userHandler.Create)
		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.GetByID)
		protected.PUT("/users/:id", userHandler.Update)
		protected.DELETE("/users/:id", userHandler.Delete)
		protected.PUT("/users/:id/password", userHandler.ChangePassword)
		protected.PUT("/users/:id/permissions", userHandler.SetPermissions)
		protected.POST("/users/:id/hotel-grants/:hotel_id", userHandler.AddHotelGrant)
		protected.DELETE("/users/:id/hotel-grants/:hotel_id", userHandler.RemoveHotelGrant)
		protected.GET("/users/:id/hotel-grants", userHandler.ListHotelGrants)
	}

	return router
}
