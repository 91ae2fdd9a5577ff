package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

// CreateOrderRequest is a new sales order as submitted by a client.
type CreateOrderRequest struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	Lines           []domain.LineItem
}

func (r CreateOrderRequest) validate() error {
	if strings.TrimSpace(r.OrderNumber) == "" {
		return domain.Validationf("order number is required")
	}
	if strings.TrimSpace(r.CustomerName) == "" {
		return domain.Validationf("customer name is required")
	}
	if len(r.Lines) == 0 {
		return domain.Validationf("order %s has no line items", r.OrderNumber)
	}
	for i, line := range r.Lines {
		if line.ProductID == "" {
			return domain.Validationf("line %d: product id is required", i+1)
		}
		if line.Quantity <= 0 {
			return domain.Validationf("line %d: quantity for product %s must be positive", i+1, line.ProductID)
		}
	}
	return nil
}

// FulfillmentService drives orders from creation through dispatch.
type FulfillmentService struct {
	store     port.Store
	cache     port.CacheRepository
	allocator *StockAllocator
	movements port.MovementRecorder
	shipments port.ShipmentService
	tracking  port.TrackingNumberGenerator
	logger    *zap.Logger
	now       func() time.Time
}

func NewFulfillmentService(
	store port.Store,
	cache port.CacheRepository,
	movements port.MovementRecorder,
	shipments port.ShipmentService,
	tracking port.TrackingNumberGenerator,
	logger *zap.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		store:     store,
		cache:     cache,
		allocator: NewStockAllocator(logger),
		movements: movements,
		shipments: shipments,
		tracking:  tracking,
		logger:    logger,
		now:       time.Now,
	}
}

func idempotencyKey(scope domain.Scope, orderNumber string) string {
	return fmt.Sprintf("order:%s:%s", scope.WarehouseID, orderNumber)
}

// CreateOrder allocates every line and persists the order with one pick
// task per allocation. Either every line is allocated and the order is
// stored, or nothing is: no order, no tasks, no reservations.
func (s *FulfillmentService) CreateOrder(ctx context.Context, scope domain.Scope, req CreateOrderRequest) (*domain.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	key := idempotencyKey(scope, req.OrderNumber)
	ok, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, domain.Validationf("order %s was already submitted", req.OrderNumber)
	}

	order, err := s.createOrder(ctx, scope, req)
	if err != nil {
		if relErr := s.cache.ReleaseIdempotency(ctx, key); relErr != nil {
			s.logger.Error("release idempotency key",
				zap.String("key", key),
				zap.Error(relErr),
			)
		}
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("warehouse_id", scope.WarehouseID),
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("total_items", order.TotalItems),
		zap.Int("pick_tasks", len(order.Tasks)),
	)
	return order, nil
}

func (s *FulfillmentService) createOrder(ctx context.Context, scope domain.Scope, req CreateOrderRequest) (*domain.Order, error) {
	now := s.now()
	order := &domain.Order{
		ID:              uuid.NewString(),
		WarehouseID:     scope.WarehouseID,
		OrderNumber:     req.OrderNumber,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, line := range req.Lines {
		order.TotalItems += line.Quantity
	}

	var tasks []domain.PickTask
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		tasks = tasks[:0]
		for _, line := range req.Lines {
			allocations, err := s.allocator.Allocate(ctx, tx, scope, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			for _, a := range allocations {
				tasks = append(tasks, domain.PickTask{
					ID:          uuid.NewString(),
					WarehouseID: scope.WarehouseID,
					OrderID:     order.ID,
					ProductID:   line.ProductID,
					LocationID:  a.LocationID,
					InventoryID: a.InventoryID,
					Quantity:    a.Quantity,
					Status:      domain.PickTaskStatusAssigned,
					CreatedAt:   now,
					UpdatedAt:   now,
				})
			}
		}

		if err := tx.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := tx.InsertPickTasks(ctx, tasks); err != nil {
			return fmt.Errorf("insert pick tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Tasks = tasks
	return order, nil
}

// GetOrder returns the order with its pick tasks.
func (s *FulfillmentService) GetOrder(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		order, err = loadOrder(ctx, tx, scope, orderID)
		return err
	})
	return order, err
}

// AssignPickers hands every task of a pending order to assignee.
func (s *FulfillmentService) AssignPickers(ctx context.Context, scope domain.Scope, orderID, assignee string) (*domain.Order, error) {
	if strings.TrimSpace(assignee) == "" {
		return nil, domain.Validationf("assignee is required")
	}

	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		order, err = loadOrder(ctx, tx, scope, orderID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := order.Transition(domain.OrderStatusPickAssigned, now); err != nil {
			return err
		}

		for i := range order.Tasks {
			task := &order.Tasks[i]
			task.AssignedTo = assignee
			task.UpdatedAt = now
			if err := tx.UpdatePickTask(ctx, task); err != nil {
				return fmt.Errorf("update pick task %s: %w", task.ID, err)
			}
		}
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pickers assigned",
		zap.String("order_id", order.ID),
		zap.String("assignee", assignee),
		zap.Int("pick_tasks", len(order.Tasks)),
	)
	return order, nil
}

// MarkPicked moves a pick-assigned order to PICKED once all its tasks are
// completed. Task completion calls the same transition automatically.
func (s *FulfillmentService) MarkPicked(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		order, err = loadOrder(ctx, tx, scope, orderID)
		if err != nil {
			return err
		}
		return markPicked(ctx, tx, order, s.now())
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func markPicked(ctx context.Context, tx port.Tx, order *domain.Order, now time.Time) error {
	if order.Status != domain.OrderStatusPickAssigned {
		return domain.IllegalTransitionf("order %s: cannot move from %s to %s",
			order.OrderNumber, order.Status, domain.OrderStatusPicked)
	}
	if !domain.AllCompleted(order.Tasks) {
		return domain.IncompleteTasksf("order %s: %d of %d pick tasks completed",
			order.OrderNumber, countCompleted(order.Tasks), len(order.Tasks))
	}
	if err := order.Transition(domain.OrderStatusPicked, now); err != nil {
		return err
	}
	return tx.UpdateOrder(ctx, order)
}

func (s *FulfillmentService) MarkPacked(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		order, err = loadOrder(ctx, tx, scope, orderID)
		if err != nil {
			return err
		}
		if err := order.Transition(domain.OrderStatusPacked, s.now()); err != nil {
			return err
		}
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// MarkDispatched dispatches a packed order. Dispatching an already
// dispatched order returns it unchanged. Outbound movements and the
// shipment are created after the dispatch commits; their failures are
// logged and do not affect the result.
func (s *FulfillmentService) MarkDispatched(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error) {
	var (
		order      *domain.Order
		dispatched bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		order, err = loadOrder(ctx, tx, scope, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderStatusDispatched {
			return nil
		}
		if err := order.Transition(domain.OrderStatusDispatched, s.now()); err != nil {
			return err
		}
		dispatched = true
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	if !dispatched {
		return order, nil
	}

	s.logger.Info("order dispatched",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
	)
	s.dispatchEffects(ctx, scope, order)
	return order, nil
}

func (s *FulfillmentService) dispatchEffects(ctx context.Context, scope domain.Scope, order *domain.Order) {
	effects := make([]Effect, 0, len(order.Tasks)+1)
	for _, task := range order.Tasks {
		effects = append(effects, recordMovement(ctx, s.movements, domain.StockMovement{
			WarehouseID:    scope.WarehouseID,
			ProductID:      task.ProductID,
			FromLocationID: task.LocationID,
			Quantity:       task.Quantity,
			Kind:           domain.MovementOutbound,
			ReferenceType:  domain.ReferenceOrder,
			ReferenceID:    order.OrderNumber,
			Actor:          task.AssignedTo,
			CreatedAt:      s.now(),
		}))
	}
	effects = append(effects, s.createShipment(ctx, scope, order))

	settle(s.logger, "dispatch", []zap.Field{zap.String("order_id", order.ID)}, effects...)
}

func (s *FulfillmentService) createShipment(ctx context.Context, scope domain.Scope, order *domain.Order) Effect {
	const name = "create shipment"

	tracking, err := s.tracking.NextTrackingNumber(ctx, scope)
	if err != nil {
		tracking = fallbackTrackingNumber()
		s.logger.Warn("tracking number sequence unavailable",
			zap.String("order_id", order.ID),
			zap.String("tracking_number", tracking),
			zap.Error(err),
		)
	}

	shipment, err := s.shipments.Create(ctx, scope, order.ID, "", tracking)
	if err != nil {
		return Effect{Name: name, Err: err}
	}

	_, err = s.shipments.UpdateStatus(ctx, scope, shipment.ID, domain.ShipmentStatusDispatched, "",
		fmt.Sprintf("dispatched with order %s", order.OrderNumber))
	if err != nil {
		return Effect{Name: "mark shipment dispatched", Err: err}
	}

	s.logger.Info("shipment dispatched",
		zap.String("order_id", order.ID),
		zap.String("shipment_id", shipment.ID),
		zap.String("tracking_number", tracking),
	)
	return Effect{Name: name}
}

// CancelOrder cancels an order that has not been dispatched, releasing the
// reservations still held by its open tasks. Completed tasks keep their
// effects.
func (s *FulfillmentService) CancelOrder(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error) {
	var (
		order    *domain.Order
		released int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		order, err = loadOrder(ctx, tx, scope, orderID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := order.Transition(domain.OrderStatusCancelled, now); err != nil {
			return err
		}

		released = 0
		for i := range order.Tasks {
			task := &order.Tasks[i]
			if !task.Status.Open() {
				continue
			}

			_, err := tx.ApplyStockDelta(ctx, scope, task.InventoryID, domain.StockDelta{
				Reserved:      -task.Quantity,
				FloorReserved: true,
			})
			switch {
			case errors.Is(err, domain.ErrNotFound):
				s.logger.Warn("inventory for cancelled task is gone",
					zap.String("task_id", task.ID),
					zap.String("inventory_id", task.InventoryID),
				)
			case err != nil:
				return fmt.Errorf("release reservation for task %s: %w", task.ID, err)
			default:
				released += task.Quantity
			}

			if err := task.Transition(domain.PickTaskStatusCancelled, now); err != nil {
				return err
			}
			if err := tx.UpdatePickTask(ctx, task); err != nil {
				return fmt.Errorf("update pick task %s: %w", task.ID, err)
			}
		}
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", order.ID),
		zap.Int("released", released),
	)
	return order, nil
}

func loadOrder(ctx context.Context, tx port.Tx, scope domain.Scope, orderID string) (*domain.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	order, err := tx.GetOrder(ctx, scope, orderID)
	if err != nil {
		return nil, err
	}
	order.Tasks, err = tx.ListPickTasks(ctx, scope, orderID)
	if err != nil {
		return nil, fmt.Errorf("list pick tasks: %w", err)
	}
	return order, nil
}

func countCompleted(tasks []domain.PickTask) int {
	n := 0
	for _, t := range tasks {
		if t.Status == domain.PickTaskStatusCompleted {
			n++
		}
	}
	return n
}
