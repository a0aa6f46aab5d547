package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JudgeURL       string
	JudgeAuthToken string
	JudgeTimeout   time.Duration
	JudgeRetries   int
	JudgeBackoff   time.Duration

	MaxConcurrentExecutions int64
	DispatchOverhead        time.Duration

	DefaultTimeLimitMs   int
	DefaultMemoryLimitKb int

	RunResultTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort: getEnv("API_PORT", "8080"),
		JWTKey:  []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:  time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "judgeflow_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JudgeURL:       getEnv("JUDGE_URL", "http://localhost:2358"),
		JudgeAuthToken: getEnv("JUDGE_AUTH_TOKEN", ""),
		JudgeTimeout:   time.Duration(getEnvAsInt("JUDGE_TIMEOUT_SECONDS", 20)) * time.Second,
		JudgeRetries:   getEnvAsInt("JUDGE_RETRIES", 2),
		JudgeBackoff:   time.Duration(getEnvAsInt("JUDGE_BACKOFF_MS", 250)) * time.Millisecond,

		MaxConcurrentExecutions: int64(getEnvAsInt("MAX_CONCURRENT_EXECUTIONS", 8)),
		DispatchOverhead:        time.Duration(getEnvAsInt("DISPATCH_OVERHEAD_SECONDS", 10)) * time.Second,

		DefaultTimeLimitMs:   getEnvAsInt("DEFAULT_TIME_LIMIT_MS", 2000),
		DefaultMemoryLimitKb: getEnvAsInt("DEFAULT_MEMORY_LIMIT_KB", 65536),

		RunResultTTL: time.Duration(getEnvAsInt("RUN_RESULT_TTL_SECONDS", 3600)) * time.Second,
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
