package main

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veonhoon/bible-reader-sub000/internal/config"
	"github.com/veonhoon/bible-reader-sub000/internal/database"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		DatabasePath:         filepath.Join(t.TempDir(), "devotional.db"),
		Port:                 "0",
		Timezone:             "UTC",
		NotifierDriver:       "local",
		DocstoreDriver:       "sqlite",
		DocstorePollInterval: time.Minute,
		ScheduleCollection:   domain.DefaultScheduleCollection,
		ScheduleDocumentID:   domain.DefaultScheduleDocumentID,
		ContentCollection:    domain.DefaultContentCollection,
		EntitlementMode:      domain.EntitlementModeAlways,
		QuietHoursStart:      domain.DefaultQuietHoursStart,
		QuietHoursEnd:        domain.DefaultQuietHoursEnd,
		HorizonWeeks:         domain.PlanningHorizonWeeks,
	}
}

func runAsync(ctx context.Context, cfg *config.Config) <-chan error {
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()
	return done
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, cfg)

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	// the database was migrated and released
	db, err := database.New(cfg.DatabasePath)
	require.NoError(t, err)
	defer db.Close()

	_, _, err = database.NewInstance(db, time.Second).KeyValue().GetItem(context.Background(), domain.KeyNotificationsEnabled)
	assert.NoError(t, err)
}

func TestRun_ReturnsServerErrors(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(t)
	cfg.Port = strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	select {
	case err := <-runAsync(context.Background(), cfg):
		require.ErrorContains(t, err, "failed to start server")
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return on a bind failure")
	}
}

func TestRun_ReturnsDatabaseErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabasePath = filepath.Join(t.TempDir(), "missing", "dir", "devotional.db")

	err := run(context.Background(), cfg)
	require.ErrorContains(t, err, "failed to initialize database")
}
