package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config agrupa toda la configuración del servicio.
// Orden de carga: defaults -> archivo YAML (CONFIG_FILE, opcional) -> variables de entorno.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Uploads UploadsConfig `yaml:"uploads"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustProxy habilita X-Forwarded-For / X-Real-IP. Solo detrás de un proxy propio.
	TrustProxy bool `yaml:"trust_proxy"`
}

// StorageConfig: Driver vacío => se infiere (mongo si hay MongoURI, postgres si hay PostgresDSN, si no memory).
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	MongoURI    string `yaml:"mongo_uri"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// UploadsConfig: Driver = disk | cloudinary | s3.
type UploadsConfig struct {
	Driver  string `yaml:"driver"`
	DiskDir string `yaml:"disk_dir"`

	CloudinaryName      string `yaml:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `yaml:"cloudinary_api_key"`
	CloudinaryAPISecret string `yaml:"cloudinary_api_secret"`

	S3Region    string `yaml:"s3_region"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3Endpoint  string `yaml:"s3_endpoint"`
}

// RedisConfig: si URI está vacío no hay rate limit.
type RedisConfig struct {
	URI            string        `yaml:"uri"`
	RateLimitMax   int           `yaml:"rate_limit_max"`
	RateLimitEvery time.Duration `yaml:"rate_limit_window"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

const (
	StorageMemory   = "memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"

	UploadsDisk       = "disk"
	UploadsCloudinary = "cloudinary"
	UploadsS3         = "s3"
)

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           "5000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Auth: AuthConfig{
			JWTSecret:  "nossosecret",
			TokenTTL:   24 * time.Hour,
			BcryptCost: 12,
		},
		Uploads: UploadsConfig{
			Driver:  UploadsDisk,
			DiskDir: "public/images",
		},
		Redis: RedisConfig{
			RateLimitMax:   25,
			RateLimitEvery: 2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			App:    "get-a-pet",
		},
	}
}

// Load arma la config final. El .env (godotenv) ya debe estar cargado por main.
func Load() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Storage.Driver = resolveStorageDriver(cfg.Storage)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	if origins := parseList(os.Getenv("ALLOWED_ORIGINS")); len(origins) > 0 {
		cfg.Server.AllowedOrigins = origins
	}

	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRUST_PROXY: %w", err)
		}
		cfg.Server.TrustProxy = b
	}

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.MongoURI = getEnv("MONGODB_URI", getEnv("MONGO_URI", cfg.Storage.MongoURI))
	cfg.Storage.PostgresDSN = getEnv("DB_DSN", cfg.Storage.PostgresDSN)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		cfg.Auth.TokenTTL = d
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		cfg.Auth.BcryptCost = n
	}

	cfg.Uploads.Driver = getEnv("UPLOADS_DRIVER", cfg.Uploads.Driver)
	cfg.Uploads.DiskDir = getEnv("UPLOADS_DIR", cfg.Uploads.DiskDir)
	cfg.Uploads.CloudinaryName = getEnv("CLOUDINARY_CLOUD_NAME", cfg.Uploads.CloudinaryName)
	cfg.Uploads.CloudinaryAPIKey = getEnv("CLOUDINARY_API_KEY", cfg.Uploads.CloudinaryAPIKey)
	cfg.Uploads.CloudinaryAPISecret = getEnv("CLOUDINARY_API_SECRET", cfg.Uploads.CloudinaryAPISecret)
	cfg.Uploads.S3Region = getEnv("S3_REGION", cfg.Uploads.S3Region)
	cfg.Uploads.S3Bucket = getEnv("S3_BUCKET", cfg.Uploads.S3Bucket)
	cfg.Uploads.S3AccessKey = getEnv("S3_ACCESS_KEY", cfg.Uploads.S3AccessKey)
	cfg.Uploads.S3SecretKey = getEnv("S3_SECRET_KEY", cfg.Uploads.S3SecretKey)
	cfg.Uploads.S3Endpoint = getEnv("S3_ENDPOINT", cfg.Uploads.S3Endpoint)

	cfg.Redis.URI = getEnv("REDIS_URI", cfg.Redis.URI)
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_MAX: %w", err)
		}
		cfg.Redis.RateLimitMax = n
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.App = getEnv("APP_NAME", cfg.Log.App)
	return nil
}

func resolveStorageDriver(s StorageConfig) string {
	if d := strings.ToLower(strings.TrimSpace(s.Driver)); d != "" {
		return d
	}
	switch {
	case s.MongoURI != "":
		return StorageMongo
	case s.PostgresDSN != "":
		return StoragePostgres
	default:
		return StorageMemory
	}
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("storage driver mongo requires MONGODB_URI")
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage driver postgres requires DB_DSN")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch strings.ToLower(c.Uploads.Driver) {
	case UploadsDisk:
		if c.Uploads.DiskDir == "" {
			return fmt.Errorf("uploads driver disk requires UPLOADS_DIR")
		}
	case UploadsCloudinary:
		if c.Uploads.CloudinaryName == "" || c.Uploads.CloudinaryAPIKey == "" || c.Uploads.CloudinaryAPISecret == "" {
			return fmt.Errorf("uploads driver cloudinary requires CLOUDINARY_* credentials")
		}
	case UploadsS3:
		if c.Uploads.S3Bucket == "" || c.Uploads.S3Region == "" {
			return fmt.Errorf("uploads driver s3 requires S3_BUCKET and S3_REGION")
		}
	default:
		return fmt.Errorf("unknown uploads driver %q", c.Uploads.Driver)
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	return nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
