package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

const trackingSequenceTTL = 48 * time.Hour

// SequenceTrackingNumbers issues tracking numbers of the form
// TRK-<warehouse>-<yyyymmdd>-<seq> from a per-warehouse daily counter.
type SequenceTrackingNumbers struct {
	cache port.CacheRepository
	now   func() time.Time
}

func NewSequenceTrackingNumbers(cache port.CacheRepository) *SequenceTrackingNumbers {
	return &SequenceTrackingNumbers{cache: cache, now: time.Now}
}

func (g *SequenceTrackingNumbers) NextTrackingNumber(ctx context.Context, scope domain.Scope) (string, error) {
	day := g.now().UTC().Format("20060102")
	seq, err := g.cache.NextSequence(ctx, fmt.Sprintf("tracking:%s:%s", scope.WarehouseID, day), trackingSequenceTTL)
	if err != nil {
		return "", fmt.Errorf("next tracking sequence: %w", err)
	}
	return fmt.Sprintf("TRK-%s-%s-%06d", strings.ToUpper(scope.WarehouseID), day, seq), nil
}

func fallbackTrackingNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRK-" + strings.ToUpper(id[:16])
}
