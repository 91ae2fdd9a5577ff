package port

import (
	"context"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
)

// MovementRecorder appends stock movements to the audit trail.
type MovementRecorder interface {
	Record(ctx context.Context, movement domain.StockMovement) (domain.StockMovement, error)
}
