package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, nil, err)
	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, true, cfg.DB.AutoMigrate)
	assert.Equal(t, "postgres://localhost/test", cfg.DB.DSN)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
server:
  addr: ":9000"
db:
  driver: sqlite
  dsn: "file:test.db"
  auto_migrate: true
log:
  level: debug
`)
	t.Setenv("DB_AUTO_MIGRATE", "no")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	assert.Equal(t, nil, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, false, cfg.DB.AutoMigrate)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "db:\n  driver: oracle\n")
	_, err := Load(path)
	assert.NotEqual(t, nil, err)

	writeFile(t, path, "db: [\n")
	_, err = Load(path)
	assert.NotEqual(t, nil, err)

	writeFile(t, path, "db:\n  driver: sqlite\n")
	t.Setenv("AUTH_ENABLED", "maybe")
	_, err = Load(path)
	assert.NotEqual(t, nil, err)
}

func TestValidate_PostgresNeedsDSN(t *testing.T) {
	cfg := Default()
	assert.NotEqual(t, nil, cfg.Validate())
	cfg.DB.DSN = "postgres://x"
	assert.Equal(t, nil, cfg.Validate())
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = ""
	assert.NotEqual(t, nil, cfg.Validate())
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "db:\n  driver: sqlite\nlog:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan Config, 1)
	go func() {
		_ = Watch(ctx, path, func(c Config) {
			select {
			case changed <- c:
			default:
			}
		}, nil)
	}()

	// give the watcher time to register before writing
	time.Sleep(200 * time.Millisecond)
	writeFile(t, path, "db:\n  driver: sqlite\nlog:\n  level: debug\n")

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config change")
	}
}
