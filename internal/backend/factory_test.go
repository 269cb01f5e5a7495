package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite", Config{Driver: "sqlite", DSN: "budget.db"}, false},
		{"postgres", Config{Driver: "postgres", DSN: "postgres://localhost/budget"}, false},
		{"unknown driver", Config{Driver: "mysql", DSN: "x"}, true},
		{"missing dsn", Config{Driver: "sqlite"}, true},
		{"amqp without queue", Config{Driver: "sqlite", DSN: "x", AMQPURL: "amqp://localhost", AMQPExchange: "budget"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	app := &config.Config{
		DBDriver:         config.DriverSQLite,
		SQLiteDBPath:     "./data/budget.db",
		SQLiteTestDBPath: "./data/budget_test.db",
		AppEnv:           config.EnvTest,
		CacheSize:        8,
		CacheTTL:         time.Minute,
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "./data/budget_test.db", cfg.DSN)
	assert.Equal(t, 8, cfg.CacheSize)
}

func TestCreateBackend_SQLite(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(log.Discard())

	b, err := f.CreateBackend(ctx, Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "budget.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Cleanup() })

	assert.Nil(t, b.Publisher)
	require.NoError(t, b.Service.Ping(ctx))

	id, err := b.Service.CreateCategory(ctx, core.CategoryInput{Name: "food", Amount: "100"})
	require.NoError(t, err)

	cat, err := b.Store.FindCategory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Food", cat.Name)
}
