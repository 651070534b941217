package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret"`
		TTL        int    `yaml:"ttl"`         // access token TTL, minutes
		RefreshTTL int    `yaml:"refresh_ttl"` // refresh token TTL, hours
	} `yaml:"jwt"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Storage struct {
		Type       string `yaml:"type"`      // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"` // for local storage
		BaseURL    string `yaml:"base_url"`  // public URL base
		Bucket     string `yaml:"bucket"`
		Region     string `yaml:"region"`
		AccessKey  string `yaml:"access_key"`
		SecretKey  string `yaml:"secret_key"`
		Endpoint   string `yaml:"endpoint"` // for R2 or custom S3
		UseSSL     bool   `yaml:"use_ssl"`
		PublicRead bool   `yaml:"public_read"`
	} `yaml:"storage"`

	Upload struct {
		MaxAvatarSize int64    `yaml:"max_avatar_size"` // bytes
		MaxFileSize   int64    `yaml:"max_file_size"`   // bytes
		AllowedTypes  []string `yaml:"allowed_types"`   // MIME types for attachments
		ImageQuality  int      `yaml:"image_quality"`   // JPEG quality (1-100)
	} `yaml:"upload"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	Billing struct {
		APIBaseURL    string  `yaml:"api_base_url"`
		SecretKey     string  `yaml:"secret_key"`
		WebhookSecret string  `yaml:"webhook_secret"`
		PremiumPrice  float64 `yaml:"premium_price"` // monthly, in currency units
		Currency      string  `yaml:"currency"`
		SuccessURL    string  `yaml:"success_url"`
		CancelURL     string  `yaml:"cancel_url"`
	} `yaml:"billing"`

	Google struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURL  string `yaml:"redirect_url"`
	} `yaml:"google"`

	Frontend struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"frontend"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`

	Messaging struct {
		FreeMessageLimit int `yaml:"free_message_limit"`
	} `yaml:"messaging"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, then lets environment variables override
// it. With DATABASE_URL set the yaml file is skipped entirely (test mode).
func LoadConfig() {
	var cfg Config

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyEnvOverrides(&cfg)
		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60
	cfg.JWT.RefreshTTL = 24 * 7

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	AppConfig = &cfg
}

// GetConfig returns the loaded configuration.
func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func applyEnvOverrides(cfg *Config) {
	setIfEnv(&cfg.JWT.Secret, "JWT_SECRET")
	setIfEnv(&cfg.Redis.Addr, "REDIS_ADDR")
	setIfEnv(&cfg.Redis.Password, "REDIS_PASSWORD")
	setIfEnv(&cfg.Billing.SecretKey, "BILLING_SECRET_KEY")
	setIfEnv(&cfg.Billing.WebhookSecret, "BILLING_WEBHOOK_SECRET")
	setIfEnv(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	setIfEnv(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setIfEnv(&cfg.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	setIfEnv(&cfg.Frontend.BaseURL, "FRONTEND_BASE_URL")
	setIfEnv(&cfg.Admin.Email, "ADMIN_EMAIL")
	setIfEnv(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setIfEnv(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setIfEnv(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setIfEnv(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.JWT.RefreshTTL == 0 {
		cfg.JWT.RefreshTTL = 24 * 7
	}
	// Redis.Addr stays empty unless configured; an empty addr means
	// single-instance websocket delivery without pub/sub fanout.
	if cfg.Upload.MaxAvatarSize == 0 {
		cfg.Upload.MaxAvatarSize = 5 * 1024 * 1024
	}
	if cfg.Upload.MaxFileSize == 0 {
		cfg.Upload.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{
			"image/jpeg", "image/png", "image/gif", "image/webp",
			"application/pdf",
		}
	}
	if cfg.Upload.ImageQuality == 0 {
		cfg.Upload.ImageQuality = 85
	}
	if cfg.Messaging.FreeMessageLimit == 0 {
		cfg.Messaging.FreeMessageLimit = 10
	}
	if cfg.Billing.PremiumPrice == 0 {
		cfg.Billing.PremiumPrice = 9.99
	}
	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = "usd"
	}
	if cfg.Frontend.BaseURL == "" {
		cfg.Frontend.BaseURL = "http://localhost:3000"
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
