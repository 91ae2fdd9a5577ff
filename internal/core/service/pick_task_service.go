package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

type PickTaskService struct {
	store     port.Store
	movements port.MovementRecorder
	logger    *zap.Logger
	now       func() time.Time
}

func NewPickTaskService(store port.Store, movements port.MovementRecorder, logger *zap.Logger) *PickTaskService {
	return &PickTaskService{
		store:     store,
		movements: movements,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *PickTaskService) GetPickTask(ctx context.Context, scope domain.Scope, taskID string) (*domain.PickTask, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var task *domain.PickTask
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		task, err = tx.GetPickTask(ctx, scope, taskID)
		return err
	})
	return task, err
}

func (s *PickTaskService) ListPickTasks(ctx context.Context, scope domain.Scope, orderID string) ([]domain.PickTask, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var tasks []domain.PickTask
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		if _, err := tx.GetOrder(ctx, scope, orderID); err != nil {
			return err
		}
		var err error
		tasks, err = tx.ListPickTasks(ctx, scope, orderID)
		return err
	})
	return tasks, err
}

// StartPickTask moves an assigned task to IN_PROGRESS and records the pick
// movement. actor is used when the task has no assignee yet.
func (s *PickTaskService) StartPickTask(ctx context.Context, scope domain.Scope, taskID, actor string) (*domain.PickTask, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var task *domain.PickTask
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		task, err = tx.GetPickTask(ctx, scope, taskID)
		if err != nil {
			return err
		}
		if err := task.Transition(domain.PickTaskStatusInProgress, s.now()); err != nil {
			return err
		}
		return tx.UpdatePickTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	picker := task.AssignedTo
	if picker == "" {
		picker = actor
	}
	effect := recordMovement(ctx, s.movements, domain.StockMovement{
		WarehouseID:    scope.WarehouseID,
		ProductID:      task.ProductID,
		FromLocationID: task.LocationID,
		Quantity:       task.Quantity,
		Kind:           domain.MovementPick,
		ReferenceType:  domain.ReferencePickTask,
		ReferenceID:    task.ID,
		Actor:          picker,
		CreatedAt:      s.now(),
	})
	settle(s.logger, "start pick task", []zap.Field{zap.String("task_id", task.ID)}, effect)

	s.logger.Info("pick task started",
		zap.String("task_id", task.ID),
		zap.String("order_id", task.OrderID),
		zap.String("picker", picker),
	)
	return task, nil
}

// CompletePickTask completes an in-progress task, removing its units from
// the shelf and releasing their reservation in the same transaction. When
// it is the last open task of a pick-assigned order, the order moves to
// PICKED as part of that transaction.
func (s *PickTaskService) CompletePickTask(ctx context.Context, scope domain.Scope, taskID, notes string) (*domain.PickTask, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var (
		task        *domain.PickTask
		orderPicked bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		task, err = tx.GetPickTask(ctx, scope, taskID)
		if err != nil {
			return err
		}

		// Completions of one order's tasks serialize on the order row, so
		// exactly one of them observes the last task completing.
		if _, err := tx.GetOrder(ctx, scope, task.OrderID); err != nil {
			return fmt.Errorf("lock order %s: %w", task.OrderID, err)
		}

		now := s.now()
		if err := task.Transition(domain.PickTaskStatusCompleted, now); err != nil {
			return err
		}
		if notes != "" {
			task.Notes = notes
		}

		_, err = tx.ApplyStockDelta(ctx, scope, task.InventoryID, domain.StockDelta{
			Quantity:      -task.Quantity,
			Reserved:      -task.Quantity,
			FloorReserved: true,
		})
		if err != nil {
			return fmt.Errorf("consume stock for task %s: %w", task.ID, err)
		}
		if err := tx.UpdatePickTask(ctx, task); err != nil {
			return err
		}

		orderPicked, err = s.autoMarkPicked(ctx, tx, scope, task.OrderID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pick task completed",
		zap.String("task_id", task.ID),
		zap.String("order_id", task.OrderID),
		zap.Int("quantity", task.Quantity),
		zap.Bool("order_picked", orderPicked),
	)
	return task, nil
}

// autoMarkPicked applies the PICKED transition when every task of the order
// is complete. It only fires from PICK_ASSIGNED, so re-checking an order
// that is already PICKED does nothing.
func (s *PickTaskService) autoMarkPicked(ctx context.Context, tx port.Tx, scope domain.Scope, orderID string, now time.Time) (bool, error) {
	order, err := loadOrder(ctx, tx, scope, orderID)
	if err != nil {
		return false, fmt.Errorf("load order %s: %w", orderID, err)
	}
	if order.Status != domain.OrderStatusPickAssigned || !domain.AllCompleted(order.Tasks) {
		return false, nil
	}
	if err := markPicked(ctx, tx, order, now); err != nil {
		return false, err
	}
	return true, nil
}
