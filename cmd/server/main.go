package main

import (
	"net/http"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/config"
	"FreshKeeper/internal/handlers"
	"FreshKeeper/internal/middleware"
	"FreshKeeper/internal/notify"
	"FreshKeeper/internal/repo"
	"FreshKeeper/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	redisClient, err := notify.NewRedisClient(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		sugar.Fatalw("failed to connect to redis", "error", err)
	}
	notifier := notify.NewRedisService(redisClient, sugar)

	clk := clock.NewInLocation(time.Local)

	itemRepo := repo.NewItemRepository(gormDB)
	bucketRepo := repo.NewBucketRepository(gormDB)
	recipeRepo := repo.NewRecipeRepository(gormDB)

	grouping := service.NewGroupingEngine(itemRepo, bucketRepo, clk, sugar)
	reminders := service.NewReminderScheduler(notifier, clk, cfg.ReminderHour, cfg.ReminderMinute, sugar)
	lifecycle := service.NewLifecycleCoordinator(gormDB, itemRepo, recipeRepo, grouping, reminders, clk, sugar)
	resync := service.NewResyncCoordinator(itemRepo, grouping, reminders, clk, sugar)

	h := handlers.NewHandler(lifecycle, resync, itemRepo, bucketRepo, notifier, clk, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"RedisAddr", cfg.RedisAddr,
		"ReminderTime", time.Date(0, 1, 1, cfg.ReminderHour, cfg.ReminderMinute, 0, 0, time.UTC).Format("15:04"),
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
