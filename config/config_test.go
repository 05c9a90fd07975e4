package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadFromDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	c, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "yatube.db", c.DBName)
	assert.Equal(t, "memory", c.CacheBackend)
	assert.Equal(t, 20, c.IndexCacheSeconds)
	assert.Equal(t, 0, c.GroupCacheSeconds)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 168, c.SessionTTLHours)
}

func TestLoadFromJSON(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{
		"app": {"AppPort": "9000", "JWTSecret": "from-file", "AdminUsernames": ["root"]},
		"database": {"DBDriver": "postgres", "DBName": "blog"},
		"cache": {"Backend": "redis", "IndexCacheSeconds": 0, "GroupCacheSeconds": 5}
	}`)

	c, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "from-file", c.JWTSecret)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "5432", c.DBPort)
	assert.Equal(t, "redis", c.CacheBackend)
	assert.Equal(t, 0, c.IndexCacheSeconds, "explicit zero disables the index cache")
	assert.Equal(t, 5, c.GroupCacheSeconds)
	assert.True(t, c.IsAdmin("ROOT"))
	assert.False(t, c.IsAdmin("leo"))
}

func TestLoadFromYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
app:
  JWTSecret: yaml-secret
log:
  Level: debug
admin:
  Usernames: [alice]
`)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("INDEX_CACHE_SECONDS", "45")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	c, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "yaml-secret", c.JWTSecret)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 45, c.IndexCacheSeconds)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, []string{"alice"}, c.AdminUsernames)
}

func TestLoadFromErrors(t *testing.T) {
	t.Run("Missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadFrom(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("Bad integer", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("REDIS_PORT", "many")
		_, err := LoadFrom(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("Malformed file", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		dir := t.TempDir()
		writeFile(t, dir, "config.json", `{"app": `)
		_, err := LoadFrom(dir)
		assert.Error(t, err)
	})
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(AppConfig{DBDriver: driver, DBName: "x"})
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}
	_, err := Dialector(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestOpenDatabaseSQLiteUsesOneConnection(t *testing.T) {
	for _, driver := range []string{"sqlite", "sqlite3", "SQLite"} {
		t.Run(driver, func(t *testing.T) {
			db, err := OpenDatabase(AppConfig{
				DBDriver:    driver,
				DatabaseURI: filepath.Join(t.TempDir(), "yatube.db"),
				LogLevel:    "error",
			})
			require.NoError(t, err)
			sqlDB, err := db.DB()
			require.NoError(t, err)
			defer sqlDB.Close()
			assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
		})
	}
	assert.False(t, isSQLite("mysql"))
}
