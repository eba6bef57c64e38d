package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "WAITING", cfg.Orders.StatusWaiting)
	assert.Equal(t, "PAID", cfg.Orders.StatusPaid)
	assert.Equal(t, 100000, cfg.Orders.MaxLineQuantity)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 25, cfg.DB.MaxConns)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("ORDER_STATUS_IN_PROGRESS", "Em andamento")
	t.Setenv("ORDER_MAX_LINE_QUANTITY", "50")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DB_PORT", "no-es-numero")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "Em andamento", cfg.Orders.StatusInProgress)
	assert.Equal(t, 50, cfg.Orders.MaxLineQuantity)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5432, cfg.DB.Port)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := Load()

	assert.Error(t, err)
}

func TestDSN_EscapaContrasena(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "taller", SSLMode: "disable"}

	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/taller?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
