package domain

import "time"

type MovementKind string

const (
	MovementInbound    MovementKind = "INBOUND"
	MovementPutaway    MovementKind = "PUTAWAY"
	MovementPick       MovementKind = "PICK"
	MovementTransfer   MovementKind = "TRANSFER"
	MovementAdjustment MovementKind = "ADJUSTMENT"
	MovementOutbound   MovementKind = "OUTBOUND"
)

type ReferenceType string

const (
	ReferenceOrder      ReferenceType = "ORDER"
	ReferencePickTask   ReferenceType = "PICK_TASK"
	ReferenceAdjustment ReferenceType = "ADJUSTMENT"
	ReferenceTransfer   ReferenceType = "TRANSFER"
	ReferenceReceipt    ReferenceType = "RECEIPT"
)

// StockMovement is an immutable audit entry for a quantity-affecting event.
type StockMovement struct {
	ID             string
	WarehouseID    string
	ProductID      string
	FromLocationID string
	ToLocationID   string
	Quantity       int
	Kind           MovementKind
	ReferenceType  ReferenceType
	ReferenceID    string
	Actor          string
	CreatedAt      time.Time
}
