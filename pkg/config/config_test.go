package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_ValoresDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APPROVAL_REQUIRE", "false")
	t.Setenv("APPROVAL_AUTO_APPROVE_BELOW", "25")
	t.Setenv("APPROVAL_LOCATIONS", " Lilongwe, Zomba ,,")
	t.Setenv("SETTINGS_CACHE_TTL_SECONDS", "60")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.App.StoreDriver)
	assert.False(t, cfg.Approval.RequireApproval)
	assert.Equal(t, 25, cfg.Approval.AutoApproveBelow)
	assert.Equal(t, []string{"Lilongwe", "Zomba"}, cfg.Approval.Locations)
	assert.Equal(t, time.Minute, cfg.Redis.SettingsCacheTTL)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_UmbralNegativo(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APPROVAL_AUTO_APPROVE_BELOW", "-3")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "retail_ops", SSLMode: "disable"}
	dsn := c.ConnectionString()
	assert.Contains(t, dsn, "@db:5432/retail_ops?sslmode=disable")
	assert.NotContains(t, dsn, "p@ss")

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
