package main

import (
	"fmt"
	"log"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/mst-api/api/swagger"
	internalhandler "github.com/noah-isme/mst-api/internal/handler"
	internalmiddleware "github.com/noah-isme/mst-api/internal/middleware"
	"github.com/noah-isme/mst-api/internal/models"
	"github.com/noah-isme/mst-api/internal/repository"
	"github.com/noah-isme/mst-api/internal/service"
	"github.com/noah-isme/mst-api/pkg/cache"
	"github.com/noah-isme/mst-api/pkg/config"
	"github.com/noah-isme/mst-api/pkg/database"
	"github.com/noah-isme/mst-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/mst-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/mst-api/pkg/middleware/requestid"
)

// defaultWorkspace is the single timetable.Store document this gateway
// serves. The core engine and its persistence are workspace-scoped so a
// future multi-tenant deployment only needs to thread a real workspace
// key through the handler layer; today there is exactly one.
const defaultWorkspace = "default"

// @title Multi-School Timetable API
// @version 0.1.0
// @description Conflict-free multi-school timetable generation service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("board cache disabled", "error", err)
	} else {
		defer client.Close()
		cacheRepo = repository.NewCacheRepository(client, logr)
	}
	boardCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.BoardCacheTTL, logr, cacheRepo != nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		registerPprof(r)
	}

	api := r.Group(cfg.APIPrefix)

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "mst-api",
		Audience:           []string{"mst-clients"},
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
	authRoutes.POST("/reset-password", authHandler.ResetPassword)
	protectedAuth := authRoutes.Group("")
	protectedAuth.Use(internalmiddleware.JWT(authSvc))
	protectedAuth.GET("/me", authHandler.Me)
	protectedAuth.POST("/logout", authHandler.Logout)
	protectedAuth.POST("/change-password", authHandler.ChangePassword)

	userSvc := service.NewUserService(userRepo, nil, logr)
	userHandler := internalhandler.NewUserHandler(userSvc)

	storeRepo := repository.NewStoreRepository(db)
	timetableSvc := service.NewTimetableService(storeRepo, boardCache, nil, logr, metricsSvc, cfg.Timetable, defaultWorkspace)
	timetableHandler := internalhandler.NewTimetableHandler(timetableSvc)

	sweepSvc := service.NewWeeklySweepService(timetableSvc, logr)
	sweepSvc.Start(cfg.Timetable.WeeklySweepInterval)
	defer sweepSvc.Stop()

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	usersGroup := secured.Group("/users")
	usersGroup.Use(internalmiddleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleAdmin)))
	usersGroup.GET("", userHandler.List)
	usersGroup.POST("", userHandler.Create)
	usersGroup.GET("/:id", userHandler.Get)
	usersGroup.PUT("/:id", userHandler.Update)
	usersGroup.DELETE("/:id", internalmiddleware.RBAC(string(models.RoleSuperAdmin)), userHandler.Delete)

	timetableGroup := secured.Group("/timetable")
	timetableGroup.Use(internalmiddleware.WithResponseMeta())

	viewers := internalmiddleware.RBAC(string(models.RoleTeacher), string(models.RoleAdmin), string(models.RoleSuperAdmin))
	editors := internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin))

	timetableGroup.GET("/schools", viewers, timetableHandler.ListSchools)
	timetableGroup.POST("/schools", editors, timetableHandler.AddSchool)
	timetableGroup.GET("/schools/:id", viewers, timetableHandler.GetSchool)
	timetableGroup.PUT("/schools/:id", editors, timetableHandler.RenameSchool)
	timetableGroup.DELETE("/schools/:id", editors, timetableHandler.RemoveSchool)
	timetableGroup.PUT("/schools/:id/time-slots", editors, timetableHandler.UpdateTimeSlots)
	timetableGroup.POST("/schools/:id/locked-sessions", editors, timetableHandler.AddLockedSession)
	timetableGroup.DELETE("/schools/:id/locked-sessions/:lockedId", editors, timetableHandler.RemoveLockedSession)
	timetableGroup.POST("/schools/:id/sessions/move", editors, timetableHandler.MoveSession)

	timetableGroup.GET("/teachers", viewers, timetableHandler.ListTeachers)
	timetableGroup.POST("/teachers", editors, timetableHandler.AddTeacher)
	timetableGroup.PUT("/teachers/:id", editors, timetableHandler.UpdateTeacher)
	timetableGroup.DELETE("/teachers/:id", editors, timetableHandler.RemoveTeacher)

	timetableGroup.POST("/generate", editors, timetableHandler.Generate)
	timetableGroup.POST("/clear", editors, timetableHandler.Clear)
	timetableGroup.POST("/resolve-conflicts", editors, timetableHandler.ResolveConflicts)
	timetableGroup.GET("/sessions/:sessionId/is-conflict", viewers, timetableHandler.IsConflict)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerPprof(r *gin.Engine) {
	group := r.Group("/debug/pprof")
	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	group.GET("/profile", gin.WrapF(pprof.Profile))
	group.POST("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/trace", gin.WrapF(pprof.Trace))
	group.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
	group.GET("/block", gin.WrapH(pprof.Handler("block")))
	group.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	group.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	group.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	group.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
}
