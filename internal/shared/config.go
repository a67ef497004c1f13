package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	JWTSecret     string
	TokenTTL      time.Duration
	CacheTTL      time.Duration
	StorageDir    string
	MigrationsDir string
	HoldTTL       time.Duration
	SweepWorkers  int
	LoginRPS      int
	AutoMigrate   bool
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/stayhub?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),
		JWTSecret:     env("JWT_SECRET", ""),
		TokenTTL:      time.Duration(envInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		CacheTTL:      time.Duration(envInt("CACHE_TTL_SECONDS", 900)) * time.Second,
		StorageDir:    env("STORAGE_DIR", "./storage"),
		MigrationsDir: env("MIGRATIONS_DIR", "./migrations"),
		HoldTTL:       time.Duration(envInt("HOLD_TTL_HOURS", 48)) * time.Hour,
		SweepWorkers:  envInt("SWEEP_WORKERS", 8),
		LoginRPS:      envInt("LOGIN_RPS", 5),
		AutoMigrate:   env("AUTO_MIGRATE", "true") == "true",
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; tokens are signed with an insecure default")
		c.JWTSecret = "insecure-dev-secret"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
