package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/luciamoran/table-reservation/internal/cache"
	"github.com/luciamoran/table-reservation/internal/config"
	"github.com/luciamoran/table-reservation/internal/database"
	"github.com/luciamoran/table-reservation/internal/handler"
	"github.com/luciamoran/table-reservation/internal/logger"
	"github.com/luciamoran/table-reservation/internal/middleware"
	"github.com/luciamoran/table-reservation/internal/queue"
	"github.com/luciamoran/table-reservation/internal/repository"
	"github.com/luciamoran/table-reservation/internal/reservation"
	"github.com/luciamoran/table-reservation/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis and the broker are optional: without them the service
	// still takes reservations, just without caching, rate limiting
	// or lifecycle events.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.InfoLogger.Info("redis unavailable, response cache and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	publicCache := cacheCfg
	publicCache.KeyStrategy = "locale_route_query"
	userCache := cacheCfg
	userCache.KeyStrategy = "user_route"

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tables := repository.NewTableRepo(db)
	reservations := repository.NewReservationRepo(db)
	content := repository.NewContentRepo(db)

	var views reservation.ViewInvalidator
	if rdb != nil {
		views = cache.NewInvalidator(rdb, userCache.Prefix, cfg.SupportedLocales)
	}
	var events reservation.EventSink
	if cfg.QueueURL != "" {
		events = queue.NewPublisher(cfg.QueueURL)
		go func() {
			if err := queue.StartReservationConsumer(cfg.QueueURL); err != nil {
				logger.ErrorLogger.Errorf("reservation consumer stopped: %v", err)
			}
		}()
	} else {
		logger.InfoLogger.Info("QUEUE_URL not set, reservation events disabled")
	}

	engine := reservation.NewEngine(reservations, tables, middleware.ContextIdentity{}, views, events)

	e := echo.New()
	e.Use(middleware.ResolveLocale(cfg.SupportedLocales))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewPublicHandler(tables, content, cfg.DefaultLocale()),
		middleware.NewRedisCache(rdb, publicCache),
	)
	router.RegisterReservations(e,
		handler.NewReservationHandler(engine, reservations, cfg.DefaultLocale()),
		cfg.JWTSecret,
		middleware.NewRedisCache(rdb, userCache),
		middleware.NewTokenBucket(rateCfg, rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
