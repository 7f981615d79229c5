package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.False(t, cfg.HTTP.EnableHTTPS)
	assert.Equal(t, "datasite", cfg.ServerType)
	assert.Equal(t, 24*time.Hour, cfg.JWT.SessionTTL)
	assert.True(t, cfg.ResetToken.ASCII)
	assert.True(t, cfg.ResetToken.Numbers)
	assert.Equal(t, 12, cfg.ResetToken.Length)
	assert.Equal(t, 30*time.Minute, cfg.ResetToken.Expiry)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("SERVER_NAME", "research-node")
	t.Setenv("SERVER_TYPE", "gateway")
	t.Setenv("DATABASE_DSN", "postgres://u:p@db:5432/datasite")
	t.Setenv("JWT_SECRET", "supersecret")
	t.Setenv("JWT_SESSION_TTL", "2h")
	t.Setenv("RESET_TOKEN_LENGTH", "20")
	t.Setenv("RESET_TOKEN_EXPIRY", "10m")
	t.Setenv("MINIO_BUCKET_NAME", "blobs")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("ROOT_EMAIL", "root@example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, "research-node", cfg.ServerName)
	assert.Equal(t, "gateway", cfg.ServerType)
	assert.Equal(t, "postgres://u:p@db:5432/datasite", cfg.Database.DSN)
	assert.Equal(t, "supersecret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.SessionTTL)
	assert.Equal(t, 20, cfg.ResetToken.Length)
	assert.Equal(t, 10*time.Minute, cfg.ResetToken.Expiry)
	assert.Equal(t, "blobs", cfg.Storage.Bucket)
	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.Equal(t, "root@example.com", cfg.Root.Email)
}

func TestNewConfig_EmptyTokenAlphabetRejected(t *testing.T) {
	t.Setenv("RESET_TOKEN_ASCII", "false")
	t.Setenv("RESET_TOKEN_NUMBERS", "false")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfig_NonPositiveTokenLengthRejected(t *testing.T) {
	t.Setenv("RESET_TOKEN_LENGTH", "0")

	_, err := NewConfig()
	assert.Error(t, err)
}
