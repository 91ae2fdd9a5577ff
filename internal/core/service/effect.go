package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

// Effect is the outcome of a side effect that runs after a transition has
// committed. A failed Effect is logged by the caller and never returned.
type Effect struct {
	Name string
	Err  error
}

func (e Effect) Failed() bool {
	return e.Err != nil
}

// settle logs every failed effect in one combined entry.
func settle(logger *zap.Logger, op string, fields []zap.Field, effects ...Effect) {
	var combined error
	for _, e := range effects {
		if !e.Failed() {
			continue
		}
		combined = multierr.Append(combined, fmt.Errorf("%s: %w", e.Name, e.Err))
	}
	if combined == nil {
		return
	}
	logger.Warn("side effects failed",
		append(fields,
			zap.String("op", op),
			zap.Int("failed", len(multierr.Errors(combined))),
			zap.Error(combined),
		)...,
	)
}

func recordMovement(ctx context.Context, recorder port.MovementRecorder, m domain.StockMovement) Effect {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := recorder.Record(ctx, m)
	return Effect{Name: fmt.Sprintf("record %s movement", m.Kind), Err: err}
}
