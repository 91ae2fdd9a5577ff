package domain

import "time"

type Inventory struct {
	ID               string
	WarehouseID      string
	ProductID        string
	LocationID       string
	Quantity         int
	ReservedQuantity int
	DamagedQuantity  int
	MinLevel         int
	MaxLevel         int
	Version          uint64 // optimistic locking
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available is the only amount eligible for new allocation.
func (i Inventory) Available() int {
	return i.Quantity - i.ReservedQuantity - i.DamagedQuantity
}

// StockDelta is a relative change to the counters of one Inventory record.
// Stores apply it as a single guarded update so concurrent deltas never
// overwrite each other.
type StockDelta struct {
	Quantity int
	Reserved int
	Damaged  int

	// FloorReserved clamps the resulting reserved quantity at zero instead
	// of rejecting the delta.
	FloorReserved bool
}

// Apply returns the record with d applied, or an InsufficientStock error if
// the result would break a counter invariant. The receiver is not modified.
func (i Inventory) Apply(d StockDelta) (Inventory, error) {
	next := i
	next.Quantity += d.Quantity
	next.ReservedQuantity += d.Reserved
	next.DamagedQuantity += d.Damaged
	if d.FloorReserved && next.ReservedQuantity < 0 {
		next.ReservedQuantity = 0
	}

	switch {
	case next.Quantity < 0:
		return i, InsufficientStockf("inventory %s: quantity would become %d", i.ID, next.Quantity)
	case next.ReservedQuantity < 0:
		return i, InsufficientStockf("inventory %s: reserved quantity would become %d", i.ID, next.ReservedQuantity)
	case next.DamagedQuantity < 0:
		return i, InsufficientStockf("inventory %s: damaged quantity would become %d", i.ID, next.DamagedQuantity)
	case next.Available() < 0:
		return i, InsufficientStockf("inventory %s: available would become %d", i.ID, next.Available())
	}
	return next, nil
}

// Allocation is one (location, quantity) share of a requested line item.
type Allocation struct {
	InventoryID string
	LocationID  string
	Quantity    int
}
