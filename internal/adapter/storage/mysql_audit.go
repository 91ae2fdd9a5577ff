package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
)

// MySQLMovements appends stock movements to the stock_movements table.
type MySQLMovements struct {
	db *sql.DB
}

func NewMySQLMovements(db *sql.DB) *MySQLMovements {
	return &MySQLMovements{db: db}
}

func (m *MySQLMovements) Record(ctx context.Context, mv domain.StockMovement) (domain.StockMovement, error) {
	if mv.ID == "" {
		mv.ID = uuid.NewString()
	}
	if mv.CreatedAt.IsZero() {
		mv.CreatedAt = time.Now()
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO stock_movements (id, warehouse_id, product_id, from_location_id, to_location_id,
			quantity, kind, reference_type, reference_id, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mv.ID, mv.WarehouseID, mv.ProductID, nullString(mv.FromLocationID), nullString(mv.ToLocationID),
		mv.Quantity, mv.Kind, mv.ReferenceType, mv.ReferenceID, mv.Actor, mv.CreatedAt,
	)
	if err != nil {
		return mv, fmt.Errorf("insert stock movement: %w", err)
	}
	return mv, nil
}

// MySQLShipments is the shipment collaborator backed by the shipments table.
type MySQLShipments struct {
	db *sql.DB
}

func NewMySQLShipments(db *sql.DB) *MySQLShipments {
	return &MySQLShipments{db: db}
}

func (m *MySQLShipments) Create(ctx context.Context, scope domain.Scope, orderID, shipperID, trackingNumber string) (*domain.Shipment, error) {
	now := time.Now()
	sh := &domain.Shipment{
		ID:             uuid.NewString(),
		WarehouseID:    scope.WarehouseID,
		OrderID:        orderID,
		ShipperID:      shipperID,
		TrackingNumber: trackingNumber,
		Status:         domain.ShipmentStatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO shipments (id, warehouse_id, order_id, shipper_id, tracking_number, status,
			location, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '', '', ?, ?)`,
		sh.ID, sh.WarehouseID, sh.OrderID, sh.ShipperID, sh.TrackingNumber, sh.Status,
		sh.CreatedAt, sh.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shipment: %w", err)
	}
	return sh, nil
}

func (m *MySQLShipments) UpdateStatus(ctx context.Context, scope domain.Scope, shipmentID string, status domain.ShipmentStatus, location, notes string) (*domain.Shipment, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE shipments
		SET status = ?,
			location = IF(? = '', location, ?),
			notes = IF(? = '', notes, ?),
			updated_at = ?
		WHERE id = ? AND warehouse_id = ?`,
		status, location, location, notes, notes, time.Now(), shipmentID, scope.WarehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("update shipment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.NotFoundf("shipment %s not found", shipmentID)
	}

	var sh domain.Shipment
	err = m.db.QueryRowContext(ctx, `
		SELECT id, warehouse_id, order_id, shipper_id, tracking_number, status, location, notes,
			created_at, updated_at
		FROM shipments WHERE id = ? AND warehouse_id = ?`, shipmentID, scope.WarehouseID,
	).Scan(&sh.ID, &sh.WarehouseID, &sh.OrderID, &sh.ShipperID, &sh.TrackingNumber, &sh.Status,
		&sh.Location, &sh.Notes, &sh.CreatedAt, &sh.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("shipment %s not found", shipmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("query shipment: %w", err)
	}
	return &sh, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
