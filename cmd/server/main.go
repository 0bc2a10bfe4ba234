package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/gymtrack/session-scheduler/internal/config"
    "github.com/gymtrack/session-scheduler/internal/database"
    "github.com/gymtrack/session-scheduler/internal/handler"
    "github.com/gymtrack/session-scheduler/internal/middleware"
    "github.com/gymtrack/session-scheduler/internal/queue"
    "github.com/gymtrack/session-scheduler/internal/repository"
    "github.com/gymtrack/session-scheduler/internal/router"
    "github.com/gymtrack/session-scheduler/internal/scheduler"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments set env directly
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient() // nil when Redis is unreachable; middleware passes through

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    members := repository.NewMemberRepo(db)
    trainers := repository.NewTrainerRepo(db)
    bookings := repository.NewBookingRepo(db)

    engine := scheduler.NewEngine(bookings)

    authH := handler.NewAuthHandler(cfg, users, tokens, members, trainers)
    memberH := handler.NewMemberSessionHandler(engine, members, trainers)
    trainerH := handler.NewTrainerSessionHandler(engine, members, trainers)

    e := echo.New()
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterMember(e, memberH, cfg.JWTSecret, cache)
    router.RegisterTrainer(e, trainerH, cfg.JWTSecret)

    go func() {
        if err := queue.StartSessionConsumer(); err != nil {
            log.Printf("session consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
