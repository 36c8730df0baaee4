package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the application
type Config struct {
	Env    string
	DB     DatabaseConfig
	App    AppConfig
	Auth   AuthConfig
	HTTP   HTTPConfig
	Logger LoggerConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	AutoMigrate     bool
}

// AppConfig holds configuration for the servers
type AppConfig struct {
	HTTPPort               string
	GRPCPort               string
	GRPCEnabled            bool
	ShutdownTimeoutSeconds int
}

// AuthConfig holds the defaults and hashing parameters of the auth service
type AuthConfig struct {
	DefaultPicture string
	DefaultStatus  string
	BcryptCost     int
}

// HTTPConfig holds the request preprocessing toggles and limits
type HTTPConfig struct {
	CORSOrigins            []string
	BodyLimitBytes         int64
	UploadMaxBytes         int64
	UploadMaxMemoryBytes   int64
	UploadTempDir          string
	CompressionEnabled     bool
	SecurityHeadersEnabled bool
	SanitizeEnabled        bool
	RequestLogging         bool
	SwaggerEnabled         bool
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig reads configuration from path/app.env and the environment.
// Environment variables take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app") // app.env
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}
	if env == "" {
		env = "development"
	}
	setDefaults(v, env)

	var cfg Config
	cfg.Env = env

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	cfg.DB.SSLMode = v.GetString("DB_SSLMODE")
	cfg.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	cfg.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")

	cfg.App.HTTPPort = v.GetString("PORT")
	cfg.App.GRPCPort = v.GetString("GRPC_PORT")
	cfg.App.GRPCEnabled = v.GetBool("GRPC_ENABLED")
	cfg.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	cfg.Auth.DefaultPicture = v.GetString("DEFAULT_PICTURE")
	cfg.Auth.DefaultStatus = v.GetString("DEFAULT_STATUS")
	cfg.Auth.BcryptCost = v.GetInt("BCRYPT_COST")

	cfg.HTTP.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.HTTP.BodyLimitBytes = v.GetInt64("BODY_LIMIT_BYTES")
	cfg.HTTP.UploadMaxBytes = v.GetInt64("UPLOAD_MAX_BYTES")
	cfg.HTTP.UploadMaxMemoryBytes = v.GetInt64("UPLOAD_MAX_MEMORY_BYTES")
	cfg.HTTP.UploadTempDir = v.GetString("UPLOAD_TEMP_DIR")
	cfg.HTTP.CompressionEnabled = v.GetBool("COMPRESSION_ENABLED")
	cfg.HTTP.SecurityHeadersEnabled = v.GetBool("SECURITY_HEADERS_ENABLED")
	cfg.HTTP.SanitizeEnabled = v.GetBool("SANITIZE_ENABLED")
	cfg.HTTP.RequestLogging = v.GetBool("REQUEST_LOGGING")
	cfg.HTTP.SwaggerEnabled = v.GetBool("SWAGGER_ENABLED")

	cfg.Logger.Level = v.GetString("LOG_LEVEL")
	cfg.Logger.Format = v.GetString("LOG_FORMAT")
	cfg.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	cfg.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	cfg.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	cfg.Logger.ServiceName = v.GetString("SERVICE_NAME")
	cfg.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &cfg, nil
}

func setDefaults(v *viper.Viper, env string) {
	production := env == "production"

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "auth_service")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("PORT", "8000")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("GRPC_ENABLED", true)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	v.SetDefault("DEFAULT_PICTURE", "https://res.cloudinary.com/dkd5jblv5/image/upload/v1675976806/Default_ProfilePicture_gjngnb.png")
	v.SetDefault("DEFAULT_STATUS", "Hey there! I am using this app")
	v.SetDefault("BCRYPT_COST", 12)

	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BODY_LIMIT_BYTES", 100<<10)
	v.SetDefault("UPLOAD_MAX_BYTES", 50<<20)
	v.SetDefault("UPLOAD_MAX_MEMORY_BYTES", 1<<20)
	v.SetDefault("UPLOAD_TEMP_DIR", os.TempDir())
	v.SetDefault("COMPRESSION_ENABLED", true)
	v.SetDefault("SECURITY_HEADERS_ENABLED", true)
	v.SetDefault("SANITIZE_ENABLED", true)
	v.SetDefault("REQUEST_LOGGING", !production)
	v.SetDefault("SWAGGER_ENABLED", !production)

	if production {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "auth-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks the configuration for values the servers cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if err := validatePort("PORT", c.App.HTTPPort); err != nil {
		errs = append(errs, err)
	}
	if c.App.GRPCEnabled {
		if err := validatePort("GRPC_PORT", c.App.GRPCPort); err != nil {
			errs = append(errs, err)
		}
		if c.App.GRPCPort == c.App.HTTPPort {
			errs = append(errs, errors.New("GRPC_PORT must differ from PORT"))
		}
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.HTTP.BodyLimitBytes <= 0 {
		errs = append(errs, errors.New("BODY_LIMIT_BYTES must be positive"))
	}
	if c.HTTP.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.HTTP.UploadMaxMemoryBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_MEMORY_BYTES must be positive"))
	}
	if c.DB.Host == "" || c.DB.Name == "" {
		errs = append(errs, errors.New("DB_HOST and DB_NAME are required"))
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func validatePort(name, port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", name, port)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
