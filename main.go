package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"querygateapi/bootstrap"
	"querygateapi/config"
	"querygateapi/controllers"
	_ "querygateapi/docs"
	"querygateapi/pkg/logger"
	"querygateapi/repository"
	"querygateapi/services"
	"querygateapi/services/access"
	"querygateapi/services/cache"
	"querygateapi/services/executor"
	"querygateapi/services/pipeline"
	"querygateapi/services/sandbox"
	"querygateapi/services/schema"
	"querygateapi/services/validation"
	"querygateapi/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           querygateapi
// @version         1.0
// @description     Secure SQL query execution API

// @BasePath  /api

func main() {
	// 1) Load config
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("LoadConfig error: %v", err)
	}

	// 2) Sandbox mode: boot the embedded server first and point the
	// connection settings at it. Everything downstream connects the same
	// way it would to a real database.
	var sb *sandbox.Sandbox
	if config.Cfg.SandboxEnabled {
		var err error
		sb, err = sandbox.Start(context.Background(), config.Cfg.DBName)
		if err != nil {
			log.Fatalf("Sandbox start error: %v", err)
		}
		config.Cfg.DBHost = "127.0.0.1"
		config.Cfg.DBPort = sb.Port
		config.Cfg.DBUser = "root"
		config.Cfg.DBPass = ""
	}

	// 3) Connect DB (GORM control handle + raw query pool)
	if err := config.ConnectDB(); err != nil {
		log.Fatalf("ConnectDB error: %v", err)
	}
	if config.DB == nil {
		log.Fatal("Database is nil after ConnectDB")
	}
	if err := config.ConnectQueryPool(); err != nil {
		log.Fatalf("ConnectQueryPool error: %v", err)
	}

	// 4) Control tables. The sandbox defines its tables up front, so it
	// only needs the demo accounts; real databases get migrated instead.
	if config.Cfg.SandboxEnabled {
		if err := bootstrap.SeedDemo(); err != nil {
			log.Fatalf("Seed error: %v", err)
		}
	} else {
		if err := bootstrap.Migrate(); err != nil {
			log.Fatalf("Migrate error: %v", err)
		}
	}

	// 5) Cache store: Redis when configured, in-process otherwise.
	var store cache.Store
	if config.Cfg.RedisAddr != "" {
		rs, err := cache.NewRedisStore(config.Cfg.RedisAddr, config.Cfg.RedisPassword, config.Cfg.RedisDB)
		if err != nil {
			log.Fatalf("Redis connect error: %v", err)
		}
		store = rs
	} else {
		store = cache.NewMemoryStore()
	}
	cacheMgr := cache.NewManager(store, config.Cfg.QueryCacheTTL, config.Cfg.SchemaCacheTTL, config.Cfg.PermissionCacheTTL)

	// 6) Pipeline stages
	schemaSrc := schema.NewCached(schema.NewDBSource(config.QueryDB), cacheMgr)
	permSource := access.NewCachedPermissionSource(
		access.NewDBPermissionSource(repository.NewUserRepository(), repository.NewRolePermissionRepository()),
		cacheMgr,
	)
	engine := access.NewEngine(permSource, schemaSrc, config.Cfg.DBName)
	exec := executor.New(config.QueryDB, config.Cfg.QueryTimeout, config.Cfg.PoolTimeout, config.Cfg.MaxRows)
	history := services.NewHistoryService()

	pipe := pipeline.New(pipeline.Options{
		Validator:  validation.New(),
		Engine:     engine,
		Executor:   exec,
		Cache:      cacheMgr,
		Recorder:   history,
		RateLimit:  int64(config.Cfg.RateLimitPerUser),
		RateWindow: config.Cfg.RateLimitWindow,
	})

	controllers.SetQueryPipeline(pipe)
	controllers.SetHistoryService(history)
	controllers.SetSavedQueryService(services.NewSavedQueryService())
	controllers.SetPermissionService(services.NewPermissionService(cacheMgr))
	controllers.SetSchemaService(services.NewSchemaService(schemaSrc))
	controllers.SetHealthCache(cacheMgr)

	// 7) Init structured logger with config
	utils.InitLoggerWithConfig(
		config.Cfg.LogFile,
		config.Cfg.LogLevel,
		config.Cfg.LogMaxSize,
		config.Cfg.LogMaxBackups,
		config.Cfg.LogMaxAge,
		config.Cfg.LogCompress,
	)
	logger.Infof("Starting Query Gate API with log level: %s", config.Cfg.LogLevel)

	if err := bootstrap.WarmSchema(context.Background(), schemaSrc); err != nil {
		logger.Warnf("Schema warm-up skipped: %v", err)
	}

	sweeper := services.NewRetentionSweeper(history, time.Duration(config.Cfg.HistoryRetentionDays)*24*time.Hour)
	sweeper.Start()

	// 8) Setup Gin
	router := gin.Default()
	router.Use(utils.LoggerMiddleware())

	v1 := router.Group("/api")
	{
		controllers.RegisterQueryRoutes(v1)
		controllers.RegisterHistoryRoutes(v1)
		controllers.RegisterSavedQueryRoutes(v1)
		controllers.RegisterSchemaRoutes(v1)
		controllers.RegisterPermissionRoutes(v1)
	}
	controllers.RegisterHealthRoutes(router)

	// 9) Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 10) Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Infof("Received shutdown signal, stopping retention sweeper...")
		sweeper.Stop()
		if sb != nil {
			if err := sb.Close(); err != nil {
				logger.Warnf("Sandbox close error: %v", err)
			}
		}
		logger.Infof("Application shutdown complete")
		os.Exit(0)
	}()

	// 11) Run
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	logger.Infof("Starting server at port %s", port)
	router.Run("0.0.0.0:" + port)
}
