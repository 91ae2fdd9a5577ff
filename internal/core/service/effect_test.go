package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/adapter/storage"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
)

func TestSettle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	settle(logger, "noop", nil, Effect{Name: "a"}, Effect{Name: "b"})
	assert.Equal(t, 0, logs.Len())

	settle(logger, "dispatch", []zap.Field{zap.String("order_id", "o-1")},
		Effect{Name: "a", Err: errors.New("boom")},
		Effect{Name: "b"},
		Effect{Name: "c", Err: errors.New("bang")},
	)

	entries := logs.FilterMessage("side effects failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "o-1", entries[0].ContextMap()["order_id"])
	assert.Equal(t, int64(2), entries[0].ContextMap()["failed"])
	assert.Equal(t, "dispatch", entries[0].ContextMap()["op"])
	assert.Contains(t, entries[0].ContextMap()["error"], "a: boom")
	assert.Contains(t, entries[0].ContextMap()["error"], "c: bang")
}

func TestSequenceTrackingNumbers(t *testing.T) {
	cache := storage.NewMemoryCache()
	gen := NewSequenceTrackingNumbers(cache)
	gen.now = func() time.Time { return time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	scope := domain.Scope{WarehouseID: "wh-east"}

	first, err := gen.NextTrackingNumber(ctx, scope)
	require.NoError(t, err)
	second, err := gen.NextTrackingNumber(ctx, scope)
	require.NoError(t, err)

	assert.Equal(t, "TRK-WH-EAST-20240309-000001", first)
	assert.Equal(t, "TRK-WH-EAST-20240309-000002", second)

	other, err := gen.NextTrackingNumber(ctx, domain.Scope{WarehouseID: "wh-west"})
	require.NoError(t, err)
	assert.Equal(t, "TRK-WH-WEST-20240309-000001", other)
}

func TestFallbackTrackingNumber(t *testing.T) {
	a, b := fallbackTrackingNumber(), fallbackTrackingNumber()
	assert.Regexp(t, `^TRK-[0-9A-F]{16}$`, a)
	assert.NotEqual(t, a, b)
}
