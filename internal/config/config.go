package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Gateway     GatewayConfig
	Email       EmailConfig
	JWT         JWTConfig
	Credentials CredentialsConfig
	Uplift      UpliftConfig
	Jobs        JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration for the platform events channel
type RedisConfig struct {
	URL      string
	Password string
	Channel  string
}

// GatewayConfig holds the external API gateway client configuration
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// EmailConfig holds the mailer service client configuration
type EmailConfig struct {
	BaseURL string
	From    string
	Timeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// CredentialsConfig holds client secret issuance configuration
type CredentialsConfig struct {
	SecretLimit  int
	BcryptCost   int
	HashPoolSize int
}

// UpliftConfig holds the uplift verification window configuration
type UpliftConfig struct {
	VerificationValidity time.Duration
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	ExpirySweepEnabled  bool
	ExpirySweepInterval time.Duration
	ReconcileEnabled    bool
	ReconcileInterval   time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "devhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			Channel:  getEnv("REDIS_EVENTS_CHANNEL", "platform.events"),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:9443"),
			APIKey:  getEnv("GATEWAY_API_KEY", ""),
			Timeout: getEnvAsDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
		Email: EmailConfig{
			BaseURL: getEnv("EMAIL_BASE_URL", "http://localhost:9444"),
			From:    getEnv("EMAIL_FROM", "no-reply@devhub.example"),
			Timeout: getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-this-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 15*time.Minute),
		},
		Credentials: CredentialsConfig{
			SecretLimit:  getEnvAsInt("CLIENT_SECRET_LIMIT", 5),
			BcryptCost:   getEnvAsInt("SECRET_BCRYPT_COST", 12),
			HashPoolSize: getEnvAsInt("SECRET_HASH_POOL_SIZE", 4),
		},
		Uplift: UpliftConfig{
			VerificationValidity: getEnvAsDuration("UPLIFT_VERIFICATION_VALIDITY", 90*24*time.Hour),
		},
		Jobs: JobsConfig{
			ExpirySweepEnabled:  getEnvAsBool("EXPIRY_SWEEP_ENABLED", true),
			ExpirySweepInterval: getEnvAsDuration("EXPIRY_SWEEP_INTERVAL", 6*time.Hour),
			ReconcileEnabled:    getEnvAsBool("GATEWAY_RECONCILE_ENABLED", true),
			ReconcileInterval:   getEnvAsDuration("GATEWAY_RECONCILE_INTERVAL", time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
