package postgres_test

import (
	"context"
	"testing"
	"time"

	"pairwatch/internal/market"
	"pairwatch/pkg/storage/postgres"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestClient opens an in-memory sqlite DB so the store logic runs without a server.
func newTestClient(t *testing.T) *postgres.PostgresClient {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	client := &postgres.PostgresClient{DB: db}
	if err := client.AutoMigrateBarRecord(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return client
}

func testBar(periodMillis int64, closePrice float64) market.Bar {
	return market.Bar{
		Symbol:      "BTCUSDT",
		Timeframe:   "1s",
		PeriodStart: periodMillis,
		Open:        closePrice - 1,
		High:        closePrice + 1,
		Low:         closePrice - 2,
		Close:       closePrice,
		Volume:      10,
	}
}

// go test -v --run TestUpsertBarIdempotent
func TestUpsertBarIdempotent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	bar := testBar(1000, 100)
	if err := client.UpsertBar(ctx, bar); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := client.UpsertBar(ctx, bar); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	count, err := client.CountBars(ctx, "BTCUSDT", "1s")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after double upsert, got %d", count)
	}

	bars, err := client.ReadBars(ctx, "BTCUSDT", "1s", 10)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(bars) != 1 || bars[0] != bar {
		t.Errorf("stored bar changed after second upsert: %+v", bars)
	}
}

// go test -v --run TestUpsertBarOverwrite
func TestUpsertBarOverwrite(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if err := client.UpsertBar(ctx, testBar(1000, 100)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Late resample of the same period: last write wins.
	late := testBar(1000, 200)
	if err := client.UpsertBar(ctx, late); err != nil {
		t.Fatalf("overwrite upsert failed: %v", err)
	}

	record, err := client.GetBar(ctx, "BTCUSDT", "1s", time.UnixMilli(1000).UTC())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if record.Close != 200 {
		t.Errorf("expected overwritten close 200, got %f", record.Close)
	}
	if record.Revision != 1 {
		t.Errorf("expected revision 1 after first overwrite, got %d", record.Revision)
	}

	// A second overwrite bumps the revision again.
	if err := client.UpsertBar(ctx, testBar(1000, 300)); err != nil {
		t.Fatalf("second overwrite upsert failed: %v", err)
	}
	record, err = client.GetBar(ctx, "BTCUSDT", "1s", time.UnixMilli(1000).UTC())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if record.Close != 300 {
		t.Errorf("expected overwritten close 300, got %f", record.Close)
	}
	if record.Revision != 2 {
		t.Errorf("expected revision 2 after two overwrites, got %d", record.Revision)
	}
}

// go test -v --run TestReadBarsOrderAndLimit
func TestReadBarsOrderAndLimit(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		bar := testBar(int64(i+1)*1000, float64(100+i))
		if err := client.UpsertBar(ctx, bar); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	bars, err := client.ReadBars(ctx, "BTCUSDT", "1s", 3)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}

	// Most recent 3, ascending.
	for i, want := range []int64{3000, 4000, 5000} {
		if bars[i].PeriodStart != want {
			t.Errorf("bar %d: expected period %d, got %d", i, want, bars[i].PeriodStart)
		}
	}

	// Unknown symbol reads empty, not an error.
	bars, err = client.ReadBars(ctx, "DOGEUSDT", "1s", 3)
	if err != nil {
		t.Fatalf("read of unknown symbol failed: %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("expected no bars for unknown symbol, got %d", len(bars))
	}
}

// go test -v --run TestDeleteOldBars
func TestDeleteOldBars(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := client.UpsertBar(ctx, testBar(int64(i+1)*1000, 100)); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	if err := client.DeleteOldBars(ctx, time.UnixMilli(3000).UTC()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	bars, err := client.ReadBars(ctx, "BTCUSDT", "1s", 0)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars after cutoff delete, got %d", len(bars))
	}
	if bars[0].PeriodStart != 3000 {
		t.Errorf("unexpected oldest surviving period: %d", bars[0].PeriodStart)
	}
}
