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
	Attendance    AttendanceConfig
	DeviceLinking DeviceLinkingConfig
	Notification  NotificationConfig
	Presentations PresentationsConfig
	Exports       ExportsConfig
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

// JWTConfig holds the parameters used to validate bearer tokens issued by the
// campus identity provider. This service never issues tokens itself.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AttendanceConfig tunes the session token lifecycle.
type AttendanceConfig struct {
	TokenTTL time.Duration
}

// DeviceLinkingConfig governs the device link reconciliation sweep.
type DeviceLinkingConfig struct {
	ApprovalWindowMonths int
	JobInterval          time.Duration
}

// NotificationConfig configures delivery of flagged device-link alerts.
type NotificationConfig struct {
	Recipient string
	SMTPHost  string
	SMTPPort  int
	From      string
}

// PresentationsConfig bounds the presentation link cache.
type PresentationsConfig struct {
	CacheTTL time.Duration
}

// ExportsConfig controls archived attendance sheets and their download links.
type ExportsConfig struct {
	Dir        string
	LinkSecret string
	LinkTTL    time.Duration
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
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Attendance = AttendanceConfig{
		TokenTTL: parseDuration(v.GetString("ATTENDANCE_TOKEN_TTL"), 5*time.Minute),
	}

	cfg.DeviceLinking = DeviceLinkingConfig{
		ApprovalWindowMonths: v.GetInt("DEVICE_LINK_APPROVAL_WINDOW_MONTHS"),
		JobInterval:          parseDuration(v.GetString("DEVICE_LINK_JOB_INTERVAL"), 5*time.Minute),
	}

	cfg.Notification = NotificationConfig{
		Recipient: v.GetString("NOTIFICATION_RECIPIENT"),
		SMTPHost:  v.GetString("SMTP_HOST"),
		SMTPPort:  v.GetInt("SMTP_PORT"),
		From:      v.GetString("SMTP_FROM"),
	}

	cfg.Presentations = PresentationsConfig{
		CacheTTL: parseDuration(v.GetString("PRESENTATION_CACHE_TTL"), 30*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Dir:        v.GetString("EXPORTS_DIR"),
		LinkSecret: v.GetString("EXPORT_LINK_SECRET"),
		LinkTTL:    parseDuration(v.GetString("EXPORT_LINK_TTL"), 24*time.Hour),
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
	v.SetDefault("DB_NAME", "presence")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ATTENDANCE_TOKEN_TTL", "5m")

	v.SetDefault("DEVICE_LINK_APPROVAL_WINDOW_MONTHS", 6)
	v.SetDefault("DEVICE_LINK_JOB_INTERVAL", "5m")

	v.SetDefault("NOTIFICATION_RECIPIENT", "it-support@edupulse.dev")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 25)
	v.SetDefault("SMTP_FROM", "noreply@edupulse.dev")

	v.SetDefault("PRESENTATION_CACHE_TTL", "30m")

	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("EXPORT_LINK_SECRET", "dev_export_secret")
	v.SetDefault("EXPORT_LINK_TTL", "24h")
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
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
