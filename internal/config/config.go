package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Server      struct {
		Port            string   `env:"PORT" envDefault:"5000"`
		ReadTimeout     int      `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int      `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int      `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int      `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
		FrontendURL     string   `env:"FRONTEND_URL"`
	} `envPrefix:"SERVER_"`
	Database struct {
		Driver         string `env:"DRIVER" envDefault:"postgres"`
		DSN            string `env:"DSN"`
		Name           string `env:"NAME" envDefault:"hirehub"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout   int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		MaxOpenConns   int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns   int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime    int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Name     string `env:"NAME" envDefault:"Admin"`
		Email    string `env:"EMAIL" envDefault:"admin@hirehub.com"`
		Password string `env:"PASSWORD,required,notEmpty"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"2592000"` // 30 days
		Secret     string `env:"SECRET,required,notEmpty"`
		Issuer     string `env:"ISSUER" envDefault:"hirehub"`
	} `envPrefix:"JWT_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		DB               int    `env:"DB" envDefault:"0"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration int `env:"EXPIRATION" envDefault:"900"` // 15 minutes
		Length     int `env:"LENGTH" envDefault:"6"`
	} `envPrefix:"OTP_"`
	Storage struct {
		Driver        string `env:"DRIVER" envDefault:"local"`
		LocalDir      string `env:"LOCAL_DIR" envDefault:"./uploads"`
		PublicPrefix  string `env:"PUBLIC_PREFIX" envDefault:"/uploads"`
		GCSBucket     string `env:"GCS_BUCKET"`
		// per-object public ACLs only work on buckets with fine-grained access
		// control; leave it off when the bucket grants read access through IAM
		GCSPublicRead bool   `env:"GCS_PUBLIC_READ" envDefault:"false"`
		MaxResumeSize int64  `env:"MAX_RESUME_SIZE" envDefault:"5242880"` // 5 MiB
	} `envPrefix:"STORAGE_"`
	Email struct {
		From string `env:"FROM" envDefault:"HireHub <no-reply@hirehub.com>"`
		SMTP struct {
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	Seed struct {
		Password    string `env:"PASSWORD" envDefault:"password123"`
		EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"example.com"`
		JobsPerUser int    `env:"JOBS_PER_EMPLOYER" envDefault:"3"`
		MaxApplies  int    `env:"MAX_APPLICATIONS" envDefault:"5"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	// a missing .env file is fine, the process environment is used as is
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// only the first error, keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Database.Driver {
	case "postgres", "mongo":
		if cfg.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %q", cfg.Database.Driver)
		}
	case "memory":
		if cfg.IsProduction() {
			return errors.New("the memory database driver cannot be used in production")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}

	switch cfg.Storage.Driver {
	case "local":
	case "gcs":
		if cfg.Storage.GCSBucket == "" {
			return errors.New("STORAGE_GCS_BUCKET is required for the gcs storage driver")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return nil
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == "production"
}

// Origins returns the CORS allow-list including the configured frontend URL.
func (cfg *Config) Origins() []string {
	origins := make([]string, 0, len(cfg.Server.AllowedOrigins)+1)
	for _, o := range cfg.Server.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if cfg.Server.FrontendURL != "" {
		origins = append(origins, cfg.Server.FrontendURL)
	}
	return origins
}
