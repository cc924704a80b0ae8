package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("INITIAL_ADMIN_PASSWORD", "admin123")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_DRIVER", "memory")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "admin@hirehub.com", cfg.InitialAdmin.Email)
	assert.Equal(t, 2592000, cfg.JWT.Expiration)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "/uploads", cfg.Storage.PublicPrefix)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigMissingSecret(t *testing.T) {
	t.Setenv("INITIAL_ADMIN_PASSWORD", "admin123")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_DRIVER", "memory")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigDriverValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"postgres without dsn", map[string]string{"DATABASE_DRIVER": "postgres", "DATABASE_DSN": ""}, true},
		{"postgres with dsn", map[string]string{"DATABASE_DRIVER": "postgres", "DATABASE_DSN": "postgres://localhost/hirehub"}, false},
		{"unknown database", map[string]string{"DATABASE_DRIVER": "sqlite"}, true},
		{"memory in production", map[string]string{"ENVIRONMENT": "production"}, true},
		{"postgres in production", map[string]string{"ENVIRONMENT": "production", "DATABASE_DRIVER": "postgres", "DATABASE_DSN": "postgres://localhost/hirehub"}, false},
		{"gcs without bucket", map[string]string{"STORAGE_DRIVER": "gcs", "STORAGE_GCS_BUCKET": ""}, true},
		{"gcs with bucket", map[string]string{"STORAGE_DRIVER": "gcs", "STORAGE_GCS_BUCKET": "resumes"}, false},
		{"unknown storage", map[string]string{"STORAGE_DRIVER": "s3"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{}
	cfg.Server.AllowedOrigins = []string{" http://localhost:5173 ", ""}
	cfg.Server.FrontendURL = "https://hirehub.example.com"

	assert.Equal(t, []string{"http://localhost:5173", "https://hirehub.example.com"}, cfg.Origins())
}
