package handler

import (
	"time"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/service"
)

// Request and response bodies shared by the HTTP and gRPC transports. IDs
// taken from the URL path over HTTP travel in the body over gRPC.

type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	OrderNumber     string      `json:"order_number"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderLine `json:"items"`
}

func (r CreateOrderRequest) toService() service.CreateOrderRequest {
	out := service.CreateOrderRequest{
		OrderNumber:     r.OrderNumber,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		ShippingAddress: r.ShippingAddress,
	}
	for _, item := range r.Items {
		out.Lines = append(out.Lines, domain.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

type OrderRequest struct {
	OrderID string `json:"order_id"`
}

type AssignPickersRequest struct {
	OrderID  string `json:"order_id"`
	Assignee string `json:"assignee"`
}

type PickTaskRequest struct {
	TaskID string `json:"task_id"`
	Actor  string `json:"actor,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type InventoryRequest struct {
	InventoryID string `json:"inventory_id"`
}

type ListInventoryRequest struct {
	ProductID string `json:"product_id"`
}

type AdjustStockRequest struct {
	InventoryID string `json:"inventory_id"`
	Delta       int    `json:"delta"`
	Actor       string `json:"actor"`
	Reason      string `json:"reason"`
}

type MarkDamagedRequest struct {
	InventoryID string `json:"inventory_id"`
	Quantity    int    `json:"quantity"`
	Actor       string `json:"actor"`
}

type TransferStockRequest struct {
	InventoryID  string `json:"inventory_id"`
	ToLocationID string `json:"to_location_id"`
	Quantity     int    `json:"quantity"`
	Actor        string `json:"actor"`
}

type ReceiveStockRequest struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
	Actor      string `json:"actor"`
	Reference  string `json:"reference"`
}

type OrderJSON struct {
	ID              string         `json:"id"`
	WarehouseID     string         `json:"warehouse_id"`
	OrderNumber     string         `json:"order_number"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email,omitempty"`
	ShippingAddress string         `json:"shipping_address,omitempty"`
	Status          string         `json:"status"`
	TotalItems      int            `json:"total_items"`
	PickedAt        *time.Time     `json:"picked_at,omitempty"`
	PackedAt        *time.Time     `json:"packed_at,omitempty"`
	DispatchedAt    *time.Time     `json:"dispatched_at,omitempty"`
	Version         uint64         `json:"version"`
	Tasks           []PickTaskJSON `json:"tasks,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type PickTaskJSON struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"order_id"`
	ProductID   string     `json:"product_id"`
	LocationID  string     `json:"location_id"`
	InventoryID string     `json:"inventory_id"`
	Quantity    int        `json:"quantity"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Version     uint64     `json:"version"`
}

type PickTaskList struct {
	Tasks []PickTaskJSON `json:"tasks"`
}

type InventoryJSON struct {
	ID               string `json:"id"`
	WarehouseID      string `json:"warehouse_id"`
	ProductID        string `json:"product_id"`
	LocationID       string `json:"location_id"`
	Quantity         int    `json:"quantity"`
	ReservedQuantity int    `json:"reserved_quantity"`
	DamagedQuantity  int    `json:"damaged_quantity"`
	Available        int    `json:"available"`
	Version          uint64 `json:"version"`
}

type InventoryList struct {
	Records []InventoryJSON `json:"records"`
}

type TransferStockResponse struct {
	From InventoryJSON `json:"from"`
	To   InventoryJSON `json:"to"`
}

func toOrderJSON(o *domain.Order) OrderJSON {
	out := OrderJSON{
		ID:              o.ID,
		WarehouseID:     o.WarehouseID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		TotalItems:      o.TotalItems,
		PickedAt:        o.PickedAt,
		PackedAt:        o.PackedAt,
		DispatchedAt:    o.DispatchedAt,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, t := range o.Tasks {
		out.Tasks = append(out.Tasks, toPickTaskJSON(t))
	}
	return out
}

func toPickTaskJSON(t domain.PickTask) PickTaskJSON {
	return PickTaskJSON{
		ID:          t.ID,
		OrderID:     t.OrderID,
		ProductID:   t.ProductID,
		LocationID:  t.LocationID,
		InventoryID: t.InventoryID,
		Quantity:    t.Quantity,
		AssignedTo:  t.AssignedTo,
		Status:      string(t.Status),
		Notes:       t.Notes,
		CompletedAt: t.CompletedAt,
		Version:     t.Version,
	}
}

func toPickTaskList(tasks []domain.PickTask) PickTaskList {
	out := PickTaskList{Tasks: make([]PickTaskJSON, 0, len(tasks))}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, toPickTaskJSON(t))
	}
	return out
}

func toInventoryJSON(inv domain.Inventory) InventoryJSON {
	return InventoryJSON{
		ID:               inv.ID,
		WarehouseID:      inv.WarehouseID,
		ProductID:        inv.ProductID,
		LocationID:       inv.LocationID,
		Quantity:         inv.Quantity,
		ReservedQuantity: inv.ReservedQuantity,
		DamagedQuantity:  inv.DamagedQuantity,
		Available:        inv.Available(),
		Version:          inv.Version,
	}
}

func toInventoryList(records []domain.Inventory) InventoryList {
	out := InventoryList{Records: make([]InventoryJSON, 0, len(records))}
	for _, inv := range records {
		out.Records = append(out.Records, toInventoryJSON(inv))
	}
	return out
}
