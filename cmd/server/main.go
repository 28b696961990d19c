package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"               // Loads .env files for local development
	"github.com/labstack/echo/v4"            // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's built-in middleware (recover, request log)

	"github.com/iliyamo/todo-list-api/internal/config"     // Internal config loader
	"github.com/iliyamo/todo-list-api/internal/database"   // MySQL connection
	"github.com/iliyamo/todo-list-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/todo-list-api/internal/middleware" // identity, rate limit and cache middleware
	"github.com/iliyamo/todo-list-api/internal/queue"      // item activity consumer
	"github.com/iliyamo/todo-list-api/internal/repository" // data access
	"github.com/iliyamo/todo-list-api/internal/router"     // route registration
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: a nil client disables the response cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, response cache disabled")
	}

	users := repository.NewUserRepo(db)
	items := repository.NewItemRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users)
	itemHandler := handler.NewItemHandler(items, cacheCfg, rdb)

	authLimiter, generalLimiter := middleware.NewRateLimiters(rlCfg)
	auth := middleware.JWTAuth(cfg)
	cache := middleware.NewUserCache(cacheCfg, rdb)

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, authLimiter)
	router.RegisterItems(e, itemHandler, generalLimiter, auth, cache)

	// Consume item activity events in the background; the consumer keeps
	// reconnecting on broker trouble and never takes the server down.
	go func() {
		if err := queue.StartItemActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
