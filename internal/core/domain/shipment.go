package domain

import "time"

type ShipmentStatus string

const (
	ShipmentStatusCreated    ShipmentStatus = "CREATED"
	ShipmentStatusDispatched ShipmentStatus = "DISPATCHED"
	ShipmentStatusInTransit  ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered  ShipmentStatus = "DELIVERED"
)

type Shipment struct {
	ID             string
	WarehouseID    string
	OrderID        string
	ShipperID      string
	TrackingNumber string
	Status         ShipmentStatus
	Location       string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
