package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "PENDING"
	OrderStatusPickAssigned OrderStatus = "PICK_ASSIGNED"
	OrderStatusPicked       OrderStatus = "PICKED"
	OrderStatusPacked       OrderStatus = "PACKED"
	OrderStatusDispatched   OrderStatus = "DISPATCHED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

// CanTransitionTo reports whether next is a legal edge out of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPickAssigned || next == OrderStatusCancelled
	case OrderStatusPickAssigned:
		return next == OrderStatusPicked || next == OrderStatusCancelled
	case OrderStatusPicked:
		return next == OrderStatusPacked || next == OrderStatusCancelled
	case OrderStatusPacked:
		return next == OrderStatusDispatched || next == OrderStatusCancelled
	default:
		return false
	}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPickAssigned, OrderStatusPicked,
		OrderStatusPacked, OrderStatusDispatched, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              string
	WarehouseID     string
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	Status          OrderStatus
	TotalItems      int
	PickedAt        *time.Time
	PackedAt        *time.Time
	DispatchedAt    *time.Time
	Version         uint64 // optimistic locking
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Tasks []PickTask
}

// Transition moves the order to next and stamps the milestone timestamp
// that belongs to it. Milestones are only ever set once.
func (o *Order) Transition(next OrderStatus, at time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return IllegalTransitionf("order %s: cannot move from %s to %s", o.OrderNumber, o.Status, next)
	}

	switch next {
	case OrderStatusPicked:
		setOnce(&o.PickedAt, at)
	case OrderStatusPacked:
		setOnce(&o.PackedAt, at)
	case OrderStatusDispatched:
		setOnce(&o.DispatchedAt, at)
	}

	o.Status = next
	o.UpdatedAt = at
	return nil
}

func setOnce(field **time.Time, at time.Time) {
	if *field == nil {
		t := at
		*field = &t
	}
}

// LineItem is one requested (product, quantity) pair of a new order.
type LineItem struct {
	ProductID string
	Quantity  int
}
