package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medclimate/backend/internal/config"
)

func TestSampleRecord(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := sampleRecord(now)

	require.NoError(t, rec.Validate())
	assert.Equal(t, now, rec.Timestamp)
	assert.Equal(t, "New York", *rec.Location)
	assert.Equal(t, 23.5, *rec.Temperature)
}

func TestOpenStore_Memory(t *testing.T) {
	repo, closeStore, err := openStore(context.Background(), &config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	defer closeStore()

	id, err := repo.Insert(context.Background(), sampleRecord(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := openStore(context.Background(), &config.Config{StoreDriver: "sqlite"})
	assert.Error(t, err)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["init-db"])
	assert.True(t, names["seed"])
}
