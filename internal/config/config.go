package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // QUEUE_TIMEZONE must resolve on images without zoneinfo

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Log      LogConfig
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool
}

type ServerConfig struct {
	Host string
	Port int
	// AdminToken guards staff endpoints when non-empty.
	AdminToken     string
	TrustedProxies []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

type QueueConfig struct {
	Location       *time.Location
	TakeCooldown   time.Duration
	WaitPerTicket  time.Duration
	StatusCacheTTL time.Duration
	HourlyFrom     int
	HourlyTo       int
}

type LogConfig struct {
	Level  string
	Format string
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host:           strEnv("SERVER_HOST", "localhost"),
		Port:           serverPort,
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		TrustedProxies: listEnv("TRUSTED_PROXIES"),
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	maxConns, err := intEnv("POSTGRES_MAX_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     strEnv("POSTGRES_HOST", "localhost"),
		Port:     postgresPort,
		SSLMode:  strEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(maxConns),
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     strEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	queueCfg, err := newQueueConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	autoMigrate, err := boolEnv("AUTO_MIGRATE", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Queue:    queueCfg,
		Log: LogConfig{
			Level:  strEnv("LOG_LEVEL", "info"),
			Format: strEnv("LOG_FORMAT", "text"),
		},
		AutoMigrate: autoMigrate,
	}, nil
}

func newQueueConfig() (QueueConfig, error) {
	tz := strEnv("QUEUE_TIMEZONE", "Asia/Jakarta")

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return QueueConfig{}, fmt.Errorf("invalid QUEUE_TIMEZONE: %w", err)
	}

	cooldown, err := durationEnv("TAKE_COOLDOWN", 5*time.Minute)
	if err != nil {
		return QueueConfig{}, err
	}

	perTicket, err := durationEnv("WAIT_PER_TICKET", 5*time.Minute)
	if err != nil {
		return QueueConfig{}, err
	}

	cacheTTL, err := durationEnv("STATUS_CACHE_TTL", 2*time.Second)
	if err != nil {
		return QueueConfig{}, err
	}

	from, err := intEnv("HOURLY_FROM", 8)
	if err != nil {
		return QueueConfig{}, err
	}

	to, err := intEnv("HOURLY_TO", 17)
	if err != nil {
		return QueueConfig{}, err
	}

	if from < 0 || to > 23 || from > to {
		return QueueConfig{}, fmt.Errorf("invalid hourly range %d..%d", from, to)
	}

	return QueueConfig{
		Location:       loc,
		TakeCooldown:   cooldown,
		WaitPerTicket:  perTicket,
		StatusCacheTTL: cacheTTL,
		HourlyFrom:     from,
		HourlyTo:       to,
	}, nil
}

func strEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration", key)
	}

	return d, nil
}

func listEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
