package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	App    AppConfig
	DB     DBConfig
	Server ServerConfig
	Seeder SeederConfig
	Mail   MailConfig
	Auth   AuthConfig
	Files  FilesConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env string
}

// IsDevelopment reports whether the app runs in development mode
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path points SQLite at a database file. Empty means in-memory.
	Path string
}

// SeederConfig holds settings for the initial data import
type SeederConfig struct {
	Enabled bool
	DataDir string
}

// MailProvider selects the mailer implementation
type MailProvider string

const (
	MailProviderLocal MailProvider = "local"
	MailProviderCloud MailProvider = "cloud"
)

// MailConfig holds notification mail settings
type MailConfig struct {
	Provider MailProvider
	From     string
	To       string
}

// AuthConfig holds token issuing settings
type AuthConfig struct {
	Secret        string
	Issuer        string
	Audience      string
	TokenLifetime time.Duration
	Required      bool
	// Users maps user names to bcrypt hashes. Empty means any credentials are accepted.
	Users map[string]string
}

// Enabled reports whether tokens can be issued
func (c AuthConfig) Enabled() bool {
	return c.Secret != ""
}

// FilesConfig holds the downloadable files location
type FilesConfig struct {
	Dir string
}

const minSecretLength = 32

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		return ""
	case DBTypeSQLite:
		if c.Path != "" {
			return fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", c.Path)
		}
		if c.Name != "" && c.Name != "cityinfo" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", c.Name)
		}
		return "file::memory:?cache=shared&_foreign_keys=on"
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using the in-process map store
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// IsSQLite returns true if using SQLite
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeSQLite
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	// AllowedOrigins enables CORS for the listed origins. Empty disables CORS.
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "sqlite"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeSQLite && dbType != DBTypeMemory {
		dbType = DBTypeSQLite
	}

	mailProvider := MailProvider(getEnv("MAIL_PROVIDER", "local"))
	if mailProvider != MailProviderLocal && mailProvider != MailProviderCloud {
		mailProvider = MailProviderLocal
	}

	users, err := parseUsers()
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Env: getEnv("APP_ENV", "production"),
		},
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "cityinfo"),
			Password: getEnv("DB_PASSWORD", "cityinfo_password"),
			Name:     getEnv("DB_NAME", "cityinfo"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     os.Getenv("DB_PATH"),
		},
		Server: ServerConfig{
			Port:               getEnv("APP_PORT", "8080"),
			AllowedOrigins:     getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
			RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 0),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Seeder: SeederConfig{
			Enabled: getEnvAsBool("SEEDER_ENABLED", true),
			DataDir: getEnv("SEEDER_DATA_DIR", "data"),
		},
		Mail: MailConfig{
			Provider: mailProvider,
			From:     getEnv("MAIL_FROM", "noreply@cityinfo.example"),
			To:       getEnv("MAIL_TO", "admin@cityinfo.example"),
		},
		Auth: AuthConfig{
			Secret:        os.Getenv("AUTH_SECRET"),
			Issuer:        getEnv("AUTH_ISSUER", "cityinfo-api"),
			Audience:      getEnv("AUTH_AUDIENCE", "cityinfo-api"),
			TokenLifetime: time.Duration(getEnvAsInt("AUTH_TOKEN_LIFETIME_MINUTES", 60)) * time.Minute,
			Required:      getEnvAsBool("AUTH_REQUIRED", false),
			Users:         users,
		},
		Files: FilesConfig{
			Dir: getEnv("FILES_DIR", "files"),
		},
	}

	if config.Auth.Secret != "" && len(config.Auth.Secret) < minSecretLength {
		return nil, fmt.Errorf("AUTH_SECRET must be at least %d characters", minSecretLength)
	}
	if config.Auth.Required && !config.Auth.Enabled() {
		return nil, fmt.Errorf("AUTH_REQUIRED is set but AUTH_SECRET is empty")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseUsers reads AUTH_USERS as "name:bcrypthash" pairs separated by commas.
func parseUsers() (map[string]string, error) {
	entries := getEnvAsSlice("AUTH_USERS")
	if len(entries) == 0 {
		return nil, nil
	}
	users := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, hash, ok := strings.Cut(entry, ":")
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("invalid AUTH_USERS entry %q", entry)
		}
		users[name] = hash
	}
	return users, nil
}
