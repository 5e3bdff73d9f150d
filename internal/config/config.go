package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Accounting struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		RedirectURI  string `mapstructure:"redirect_uri"`
		// Sandbox and production use different hosts; all three are
		// overridable so tests can point at a local server.
		AuthBaseURL string `mapstructure:"auth_base_url"`
		TokenURL    string `mapstructure:"token_url"`
		APIBaseURL  string `mapstructure:"api_base_url"`
		Scopes      string `mapstructure:"scopes"`
	} `mapstructure:"accounting"`

	Archive struct {
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"archive"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "farrier-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "farrier_db")
	v.SetDefault("accounting.auth_base_url", "https://appcenter.intuit.com/connect/oauth2")
	v.SetDefault("accounting.token_url", "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer")
	v.SetDefault("accounting.api_base_url", "https://quickbooks.api.intuit.com")
	v.SetDefault("accounting.scopes", "com.intuit.quickbooks.accounting")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	// Override JWT secret from environment if not set
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not found in environment or config file")
		}
	}

	// Accounting provider credentials come from the environment in production
	if id := os.Getenv("ACCOUNTING_CLIENT_ID"); id != "" {
		cfg.Accounting.ClientID = id
	}
	if secret := os.Getenv("ACCOUNTING_CLIENT_SECRET"); secret != "" {
		cfg.Accounting.ClientSecret = secret
	}
	if uri := os.Getenv("ACCOUNTING_REDIRECT_URI"); uri != "" {
		cfg.Accounting.RedirectURI = uri
	}

	// Archive (S3-compatible object storage) settings from environment
	if ep := os.Getenv("ARCHIVE_ENDPOINT"); ep != "" {
		cfg.Archive.Endpoint = ep
	}
	if b := os.Getenv("ARCHIVE_BUCKET"); b != "" {
		cfg.Archive.Bucket = b
	}
	if k := os.Getenv("ARCHIVE_ACCESS_KEY"); k != "" {
		cfg.Archive.AccessKey = k
	}
	if k := os.Getenv("ARCHIVE_SECRET_KEY"); k != "" {
		cfg.Archive.SecretKey = k
	}
	if r := os.Getenv("ARCHIVE_REGION"); r != "" {
		cfg.Archive.Region = r
	}

	return &cfg
}
