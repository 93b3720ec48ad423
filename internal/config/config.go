package config

import (
	"flag"
	"regexp"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	ServerURL   string `env:"-"`

	// Notification ticket store
	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB"`

	// Локальное время срабатывания напоминаний
	ReminderHour   int `env:"REMINDER_HOUR"`
	ReminderMinute int `env:"REMINDER_MINUTE"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	// -1 — маркер «не задано», чтобы отличать от валидного нуля
	cfg := &Config{ReminderHour: -1, ReminderMinute: -1}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the FreshKeeper server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "адрес Redis для хранилища напоминаний")
	flag.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "номер БД Redis")
	flag.IntVar(&cfg.ReminderHour, "reminder-hour", cfg.ReminderHour, "час срабатывания напоминаний (0-23)")
	flag.IntVar(&cfg.ReminderMinute, "reminder-minute", cfg.ReminderMinute, "минута срабатывания напоминаний (0-59)")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	// Время по умолчанию — 15:06, как в мобильном приложении
	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		cfg.ReminderHour = 15
	}
	if cfg.ReminderMinute < 0 || cfg.ReminderMinute > 59 {
		cfg.ReminderMinute = 6
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	return cfg
}
