package port

import (
	"context"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
)

// ShipmentService is the shipping collaborator invoked on dispatch.
type ShipmentService interface {
	Create(ctx context.Context, scope domain.Scope, orderID, shipperID, trackingNumber string) (*domain.Shipment, error)
	UpdateStatus(ctx context.Context, scope domain.Scope, shipmentID string, status domain.ShipmentStatus, location, notes string) (*domain.Shipment, error)
}

type TrackingNumberGenerator interface {
	NextTrackingNumber(ctx context.Context, scope domain.Scope) (string, error)
}
