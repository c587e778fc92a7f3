package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Solver        SolverConfig
	Constraints   ConstraintConfig
	Detection     DetectionConfig
	Notifications NotificationConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig tunes the constraint-satisfaction search.
type SolverConfig struct {
	DefaultStrategy string
	Workers         int
	TimeBudget      time.Duration
	MaxIterations   int
	StatsCacheTTL   time.Duration
}

// ConstraintConfig carries the policy knobs consumed by constraint evaluators.
type ConstraintConfig struct {
	AllowOversubscription    bool
	MaxOversubscriptionRatio float64
	MaxConsecutiveHours      int
	MinBreakBetweenClasses   time.Duration
	TeacherScoreWeight       float64
	ClassroomScoreWeight     float64
	TimeSlotScoreWeight      float64
}

// DetectionConfig governs the conflict detection engine and lifecycle thresholds.
type DetectionConfig struct {
	DedupWindow   time.Duration
	OverdueAfter  time.Duration
	WindowStart   string
	WindowEnd     string
	StatsCacheTTL time.Duration
}

// NotificationConfig sizes the fire-and-forget conflict notification queue.
type NotificationConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		DefaultStrategy: v.GetString("SOLVER_DEFAULT_STRATEGY"),
		Workers:         v.GetInt("SOLVER_WORKERS"),
		TimeBudget:      parseDuration(v.GetString("SOLVER_TIME_BUDGET"), 30*time.Second),
		MaxIterations:   v.GetInt("SOLVER_MAX_ITERATIONS"),
		StatsCacheTTL:   parseDuration(v.GetString("SOLVER_STATS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Constraints = ConstraintConfig{
		AllowOversubscription:    v.GetBool("CONSTRAINT_ALLOW_OVERSUBSCRIPTION"),
		MaxOversubscriptionRatio: v.GetFloat64("CONSTRAINT_MAX_OVERSUBSCRIPTION_RATIO"),
		MaxConsecutiveHours:      v.GetInt("CONSTRAINT_MAX_CONSECUTIVE_HOURS"),
		MinBreakBetweenClasses:   parseDuration(v.GetString("CONSTRAINT_MIN_BREAK"), 10*time.Minute),
		TeacherScoreWeight:       v.GetFloat64("CONSTRAINT_TEACHER_SCORE_WEIGHT"),
		ClassroomScoreWeight:     v.GetFloat64("CONSTRAINT_CLASSROOM_SCORE_WEIGHT"),
		TimeSlotScoreWeight:      v.GetFloat64("CONSTRAINT_TIMESLOT_SCORE_WEIGHT"),
	}

	cfg.Detection = DetectionConfig{
		DedupWindow:   parseDuration(v.GetString("DETECTION_DEDUP_WINDOW"), time.Hour),
		OverdueAfter:  parseDuration(v.GetString("DETECTION_OVERDUE_AFTER"), 72*time.Hour),
		WindowStart:   v.GetString("DETECTION_WINDOW_START"),
		WindowEnd:     v.GetString("DETECTION_WINDOW_END"),
		StatsCacheTTL: parseDuration(v.GetString("DETECTION_STATS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Notifications = NotificationConfig{
		Workers:    v.GetInt("NOTIFICATION_WORKERS"),
		BufferSize: v.GetInt("NOTIFICATION_BUFFER_SIZE"),
		MaxRetries: v.GetInt("NOTIFICATION_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFICATION_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_DEFAULT_STRATEGY", "BACKTRACKING_FORWARD_CHECKING")
	v.SetDefault("SOLVER_WORKERS", 4)
	v.SetDefault("SOLVER_TIME_BUDGET", "30s")
	v.SetDefault("SOLVER_MAX_ITERATIONS", 1000)
	v.SetDefault("SOLVER_STATS_CACHE_TTL", "5m")

	v.SetDefault("CONSTRAINT_ALLOW_OVERSUBSCRIPTION", false)
	v.SetDefault("CONSTRAINT_MAX_OVERSUBSCRIPTION_RATIO", 1.1)
	v.SetDefault("CONSTRAINT_MAX_CONSECUTIVE_HOURS", 4)
	v.SetDefault("CONSTRAINT_MIN_BREAK", "10m")
	v.SetDefault("CONSTRAINT_TEACHER_SCORE_WEIGHT", 0.4)
	v.SetDefault("CONSTRAINT_CLASSROOM_SCORE_WEIGHT", 0.35)
	v.SetDefault("CONSTRAINT_TIMESLOT_SCORE_WEIGHT", 0.25)

	v.SetDefault("DETECTION_DEDUP_WINDOW", "1h")
	v.SetDefault("DETECTION_OVERDUE_AFTER", "72h")
	v.SetDefault("DETECTION_WINDOW_START", "08:00")
	v.SetDefault("DETECTION_WINDOW_END", "21:00")
	v.SetDefault("DETECTION_STATS_CACHE_TTL", "5m")

	v.SetDefault("NOTIFICATION_WORKERS", 2)
	v.SetDefault("NOTIFICATION_BUFFER_SIZE", 64)
	v.SetDefault("NOTIFICATION_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATION_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
