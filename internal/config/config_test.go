package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:           "development",
		Port:          "5000",
		SessionSecret: "secure-secret-at-least-32-chars-long",
		DBDriver:      DriverSQLite,
		DBPath:        "biolink.db",
		UploadDir:     "static/uploads",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing session secret", func(c *Config) { c.SessionSecret = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }, true},
		{"postgres without host", func(c *Config) {
			c.DBDriver = DriverPostgres
			c.DBHost = ""
			c.DBName = "biolink"
		}, true},
		{"missing upload dir", func(c *Config) { c.UploadDir = "" }, true},
		{"production with default secret", func(c *Config) {
			c.Env = "production"
			c.SessionSecret = DefaultSessionSecret
		}, true},
		{"production with short secret", func(c *Config) {
			c.Env = "prod"
			c.SessionSecret = "short"
		}, true},
		{"production postgres with default password", func(c *Config) {
			c.Env = "production"
			c.DBDriver = DriverPostgres
			c.DBHost = "db"
			c.DBName = "biolink"
			c.DBPassword = "password"
		}, true},
		{"production sqlite with strong secret", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	c := validConfig()
	assert.Equal(t, 7*24*time.Hour, c.SessionTTL())
	c.SessionTTLHours = 2
	assert.Equal(t, 2*time.Hour, c.SessionTTL())

	assert.Equal(t, time.Duration(0), c.PublicProfileCacheTTL())
	c.PublicProfileCacheTTLSeconds = 60
	assert.Equal(t, time.Minute, c.PublicProfileCacheTTL())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_DRIVER")
	defer os.Unsetenv("PORT")

	os.Setenv("APP_ENV", "test")
	os.Setenv("DB_DRIVER", "  SQLITE ")
	os.Setenv("PORT", "9090")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, DriverSQLite, c.DBDriver)
	assert.Equal(t, "static/uploads", c.UploadDir)
	assert.Equal(t, 5, c.AvatarMaxUploadSizeMB)
}
