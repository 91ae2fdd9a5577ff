package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

// InventoryService changes stock outside the order flow: adjustments,
// receipts, damage and transfers between locations.
type InventoryService struct {
	store     port.Store
	movements port.MovementRecorder
	logger    *zap.Logger
	now       func() time.Time
}

func NewInventoryService(store port.Store, movements port.MovementRecorder, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		store:     store,
		movements: movements,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *InventoryService) GetInventory(ctx context.Context, scope domain.Scope, inventoryID string) (*domain.Inventory, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var inv *domain.Inventory
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		inv, err = tx.GetInventory(ctx, scope, inventoryID)
		return err
	})
	return inv, err
}

func (s *InventoryService) ListInventory(ctx context.Context, scope domain.Scope, productID string) ([]domain.Inventory, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var records []domain.Inventory
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		records, err = tx.ListInventoryByProduct(ctx, scope, productID)
		return err
	})
	return records, err
}

// AdjustStock changes the physical quantity of a record by delta. A delta
// that would leave reserved or damaged units uncovered is rejected.
func (s *InventoryService) AdjustStock(ctx context.Context, scope domain.Scope, inventoryID string, delta int, actor, reason string) (*domain.Inventory, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, domain.Validationf("adjustment delta must be non-zero")
	}

	var inv *domain.Inventory
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		inv, err = tx.ApplyStockDelta(ctx, scope, inventoryID, domain.StockDelta{Quantity: delta})
		return err
	})
	if err != nil {
		return nil, err
	}

	m := domain.StockMovement{
		WarehouseID:   scope.WarehouseID,
		ProductID:     inv.ProductID,
		Quantity:      abs(delta),
		Kind:          domain.MovementAdjustment,
		ReferenceType: domain.ReferenceAdjustment,
		ReferenceID:   inv.ID,
		Actor:         actor,
		CreatedAt:     s.now(),
	}
	if delta > 0 {
		m.ToLocationID = inv.LocationID
	} else {
		m.FromLocationID = inv.LocationID
	}
	settle(s.logger, "adjust stock", []zap.Field{zap.String("inventory_id", inv.ID)}, recordMovement(ctx, s.movements, m))

	s.logger.Info("stock adjusted",
		zap.String("inventory_id", inv.ID),
		zap.Int("delta", delta),
		zap.Int("quantity", inv.Quantity),
		zap.String("reason", reason),
	)
	return inv, nil
}

// ReceiveStock books inbound units into the record for (product, location),
// creating the record on first receipt.
func (s *InventoryService) ReceiveStock(ctx context.Context, scope domain.Scope, productID, locationID string, quantity int, actor, reference string) (*domain.Inventory, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	switch {
	case productID == "":
		return nil, domain.Validationf("product id is required")
	case locationID == "":
		return nil, domain.Validationf("location id is required")
	case quantity <= 0:
		return nil, domain.Validationf("received quantity must be positive")
	}

	var inv *domain.Inventory
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		inv, err = s.addToLocation(ctx, tx, scope, productID, locationID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	effect := recordMovement(ctx, s.movements, domain.StockMovement{
		WarehouseID:   scope.WarehouseID,
		ProductID:     productID,
		ToLocationID:  locationID,
		Quantity:      quantity,
		Kind:          domain.MovementInbound,
		ReferenceType: domain.ReferenceReceipt,
		ReferenceID:   reference,
		Actor:         actor,
		CreatedAt:     s.now(),
	})
	settle(s.logger, "receive stock", []zap.Field{zap.String("inventory_id", inv.ID)}, effect)

	return inv, nil
}

// MarkDamaged moves available units into the damaged bucket.
func (s *InventoryService) MarkDamaged(ctx context.Context, scope domain.Scope, inventoryID string, quantity int, actor string) (*domain.Inventory, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.Validationf("damaged quantity must be positive")
	}

	var inv *domain.Inventory
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		inv, err = tx.ApplyStockDelta(ctx, scope, inventoryID, domain.StockDelta{Damaged: quantity})
		return err
	})
	if err != nil {
		return nil, err
	}

	effect := recordMovement(ctx, s.movements, domain.StockMovement{
		WarehouseID:    scope.WarehouseID,
		ProductID:      inv.ProductID,
		FromLocationID: inv.LocationID,
		Quantity:       quantity,
		Kind:           domain.MovementAdjustment,
		ReferenceType:  domain.ReferenceAdjustment,
		ReferenceID:    inv.ID,
		Actor:          actor,
		CreatedAt:      s.now(),
	})
	settle(s.logger, "mark damaged", []zap.Field{zap.String("inventory_id", inv.ID)}, effect)

	return inv, nil
}

// TransferStock moves available units from one record to the record of the
// same product at toLocationID.
func (s *InventoryService) TransferStock(ctx context.Context, scope domain.Scope, inventoryID, toLocationID string, quantity int, actor string) (from, to *domain.Inventory, err error) {
	if err := scope.Validate(); err != nil {
		return nil, nil, err
	}
	if quantity <= 0 {
		return nil, nil, domain.Validationf("transfer quantity must be positive")
	}
	if toLocationID == "" {
		return nil, nil, domain.Validationf("destination location is required")
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		src, err := tx.GetInventory(ctx, scope, inventoryID)
		if err != nil {
			return err
		}
		if src.LocationID == toLocationID {
			return domain.Validationf("inventory %s is already at location %s", src.ID, toLocationID)
		}

		from, err = tx.ApplyStockDelta(ctx, scope, src.ID, domain.StockDelta{Quantity: -quantity})
		if err != nil {
			return err
		}
		to, err = s.addToLocation(ctx, tx, scope, src.ProductID, toLocationID, quantity)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	effect := recordMovement(ctx, s.movements, domain.StockMovement{
		WarehouseID:    scope.WarehouseID,
		ProductID:      from.ProductID,
		FromLocationID: from.LocationID,
		ToLocationID:   to.LocationID,
		Quantity:       quantity,
		Kind:           domain.MovementTransfer,
		ReferenceType:  domain.ReferenceTransfer,
		ReferenceID:    from.ID,
		Actor:          actor,
		CreatedAt:      s.now(),
	})
	settle(s.logger, "transfer stock", []zap.Field{zap.String("inventory_id", from.ID)}, effect)

	return from, to, nil
}

func (s *InventoryService) addToLocation(ctx context.Context, tx port.Tx, scope domain.Scope, productID, locationID string, quantity int) (*domain.Inventory, error) {
	existing, err := tx.FindInventory(ctx, scope, productID, locationID)
	switch {
	case err == nil:
		return tx.ApplyStockDelta(ctx, scope, existing.ID, domain.StockDelta{Quantity: quantity})
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("find inventory: %w", err)
	}

	now := s.now()
	inv := &domain.Inventory{
		ID:          uuid.NewString(),
		WarehouseID: scope.WarehouseID,
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.InsertInventory(ctx, inv); err != nil {
		return nil, fmt.Errorf("insert inventory: %w", err)
	}
	return inv, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
