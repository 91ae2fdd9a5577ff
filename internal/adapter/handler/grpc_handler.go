package handler

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/service"
)

const (
	ServiceName = "fulfillment.v1.FulfillmentService"

	// WarehouseMetadataKey is the gRPC counterpart of WarehouseHeader.
	WarehouseMetadataKey = "x-warehouse-id"
)

// FulfillmentServer is the server API of the fulfillment gRPC service.
type FulfillmentServer interface {
	CreateOrder(context.Context, *CreateOrderRequest) (*OrderJSON, error)
	GetOrder(context.Context, *OrderRequest) (*OrderJSON, error)
	AssignPickers(context.Context, *AssignPickersRequest) (*OrderJSON, error)
	MarkPicked(context.Context, *OrderRequest) (*OrderJSON, error)
	MarkPacked(context.Context, *OrderRequest) (*OrderJSON, error)
	MarkDispatched(context.Context, *OrderRequest) (*OrderJSON, error)
	CancelOrder(context.Context, *OrderRequest) (*OrderJSON, error)

	ListPickTasks(context.Context, *OrderRequest) (*PickTaskList, error)
	GetPickTask(context.Context, *PickTaskRequest) (*PickTaskJSON, error)
	StartPickTask(context.Context, *PickTaskRequest) (*PickTaskJSON, error)
	CompletePickTask(context.Context, *PickTaskRequest) (*PickTaskJSON, error)

	GetInventory(context.Context, *InventoryRequest) (*InventoryJSON, error)
	ListInventory(context.Context, *ListInventoryRequest) (*InventoryList, error)
	AdjustStock(context.Context, *AdjustStockRequest) (*InventoryJSON, error)
	ReceiveStock(context.Context, *ReceiveStockRequest) (*InventoryJSON, error)
	MarkDamaged(context.Context, *MarkDamagedRequest) (*InventoryJSON, error)
	TransferStock(context.Context, *TransferStockRequest) (*TransferStockResponse, error)
}

// unary builds the method descriptor for one request/response call.
func unary[Req any, Resp any](method string, call func(FulfillmentServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FulfillmentServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FulfillmentServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var FulfillmentServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FulfillmentServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateOrder", FulfillmentServer.CreateOrder),
		unary("GetOrder", FulfillmentServer.GetOrder),
		unary("AssignPickers", FulfillmentServer.AssignPickers),
		unary("MarkPicked", FulfillmentServer.MarkPicked),
		unary("MarkPacked", FulfillmentServer.MarkPacked),
		unary("MarkDispatched", FulfillmentServer.MarkDispatched),
		unary("CancelOrder", FulfillmentServer.CancelOrder),
		unary("ListPickTasks", FulfillmentServer.ListPickTasks),
		unary("GetPickTask", FulfillmentServer.GetPickTask),
		unary("StartPickTask", FulfillmentServer.StartPickTask),
		unary("CompletePickTask", FulfillmentServer.CompletePickTask),
		unary("GetInventory", FulfillmentServer.GetInventory),
		unary("ListInventory", FulfillmentServer.ListInventory),
		unary("AdjustStock", FulfillmentServer.AdjustStock),
		unary("ReceiveStock", FulfillmentServer.ReceiveStock),
		unary("MarkDamaged", FulfillmentServer.MarkDamaged),
		unary("TransferStock", FulfillmentServer.TransferStock),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fulfillment/v1/fulfillment.proto",
}

func RegisterFulfillmentServer(s grpc.ServiceRegistrar, srv FulfillmentServer) {
	s.RegisterService(&FulfillmentServiceDesc, srv)
}

type GRPCHandler struct {
	orders    *service.FulfillmentService
	tasks     *service.PickTaskService
	inventory *service.InventoryService
	logger    *zap.Logger
}

var _ FulfillmentServer = (*GRPCHandler)(nil)

func NewGRPCHandler(orders *service.FulfillmentService, tasks *service.PickTaskService, inventory *service.InventoryService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{orders: orders, tasks: tasks, inventory: inventory, logger: logger}
}

func (h *GRPCHandler) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderJSON, error) {
	order, err := h.orders.CreateOrder(ctx, scopeFromContext(ctx), req.toService())
	return h.orderResponse(order, err)
}

func (h *GRPCHandler) GetOrder(ctx context.Context, req *OrderRequest) (*OrderJSON, error) {
	order, err := h.orders.GetOrder(ctx, scopeFromContext(ctx), req.OrderID)
	return h.orderResponse(order, err)
}

func (h *GRPCHandler) AssignPickers(ctx context.Context, req *AssignPickersRequest) (*OrderJSON, error) {
	order, err := h.orders.AssignPickers(ctx, scopeFromContext(ctx), req.OrderID, req.Assignee)
	return h.orderResponse(order, err)
}

func (h *GRPCHandler) MarkPicked(ctx context.Context, req *OrderRequest) (*OrderJSON, error) {
	order, err := h.orders.MarkPicked(ctx, scopeFromContext(ctx), req.OrderID)
	return h.orderResponse(order, err)
}

func (h *GRPCHandler) MarkPacked(ctx context.Context, req *OrderRequest) (*OrderJSON, error) {
	order, err := h.orders.MarkPacked(ctx, scopeFromContext(ctx), req.OrderID)
	return h.orderResponse(order, err)
}

func (h *GRPCHandler) MarkDispatched(ctx context.Context, req *OrderRequest) (*OrderJSON, error) {
	order, err := h.orders.MarkDispatched(ctx, scopeFromContext(ctx), req.OrderID)
	return h.orderResponse(order, err)
}

func (h *GRPCHandler) CancelOrder(ctx context.Context, req *OrderRequest) (*OrderJSON, error) {
	order, err := h.orders.CancelOrder(ctx, scopeFromContext(ctx), req.OrderID)
	return h.orderResponse(order, err)
}

func (h *GRPCHandler) ListPickTasks(ctx context.Context, req *OrderRequest) (*PickTaskList, error) {
	tasks, err := h.tasks.ListPickTasks(ctx, scopeFromContext(ctx), req.OrderID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	out := toPickTaskList(tasks)
	return &out, nil
}

func (h *GRPCHandler) GetPickTask(ctx context.Context, req *PickTaskRequest) (*PickTaskJSON, error) {
	task, err := h.tasks.GetPickTask(ctx, scopeFromContext(ctx), req.TaskID)
	return h.taskResponse(task, err)
}

func (h *GRPCHandler) StartPickTask(ctx context.Context, req *PickTaskRequest) (*PickTaskJSON, error) {
	task, err := h.tasks.StartPickTask(ctx, scopeFromContext(ctx), req.TaskID, req.Actor)
	return h.taskResponse(task, err)
}

func (h *GRPCHandler) CompletePickTask(ctx context.Context, req *PickTaskRequest) (*PickTaskJSON, error) {
	task, err := h.tasks.CompletePickTask(ctx, scopeFromContext(ctx), req.TaskID, req.Notes)
	return h.taskResponse(task, err)
}

func (h *GRPCHandler) GetInventory(ctx context.Context, req *InventoryRequest) (*InventoryJSON, error) {
	inv, err := h.inventory.GetInventory(ctx, scopeFromContext(ctx), req.InventoryID)
	return h.inventoryResponse(inv, err)
}

func (h *GRPCHandler) ListInventory(ctx context.Context, req *ListInventoryRequest) (*InventoryList, error) {
	records, err := h.inventory.ListInventory(ctx, scopeFromContext(ctx), req.ProductID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	out := toInventoryList(records)
	return &out, nil
}

func (h *GRPCHandler) AdjustStock(ctx context.Context, req *AdjustStockRequest) (*InventoryJSON, error) {
	inv, err := h.inventory.AdjustStock(ctx, scopeFromContext(ctx), req.InventoryID, req.Delta, req.Actor, req.Reason)
	return h.inventoryResponse(inv, err)
}

func (h *GRPCHandler) ReceiveStock(ctx context.Context, req *ReceiveStockRequest) (*InventoryJSON, error) {
	inv, err := h.inventory.ReceiveStock(ctx, scopeFromContext(ctx), req.ProductID, req.LocationID, req.Quantity, req.Actor, req.Reference)
	return h.inventoryResponse(inv, err)
}

func (h *GRPCHandler) MarkDamaged(ctx context.Context, req *MarkDamagedRequest) (*InventoryJSON, error) {
	inv, err := h.inventory.MarkDamaged(ctx, scopeFromContext(ctx), req.InventoryID, req.Quantity, req.Actor)
	return h.inventoryResponse(inv, err)
}

func (h *GRPCHandler) TransferStock(ctx context.Context, req *TransferStockRequest) (*TransferStockResponse, error) {
	from, to, err := h.inventory.TransferStock(ctx, scopeFromContext(ctx), req.InventoryID, req.ToLocationID, req.Quantity, req.Actor)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &TransferStockResponse{From: toInventoryJSON(*from), To: toInventoryJSON(*to)}, nil
}

func (h *GRPCHandler) orderResponse(order *domain.Order, err error) (*OrderJSON, error) {
	if err != nil {
		return nil, h.toStatus(err)
	}
	out := toOrderJSON(order)
	return &out, nil
}

func (h *GRPCHandler) taskResponse(task *domain.PickTask, err error) (*PickTaskJSON, error) {
	if err != nil {
		return nil, h.toStatus(err)
	}
	out := toPickTaskJSON(*task)
	return &out, nil
}

func (h *GRPCHandler) inventoryResponse(inv *domain.Inventory, err error) (*InventoryJSON, error) {
	if err != nil {
		return nil, h.toStatus(err)
	}
	out := toInventoryJSON(*inv)
	return &out, nil
}

func scopeFromContext(ctx context.Context) domain.Scope {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.Scope{}
	}
	if v := md.Get(WarehouseMetadataKey); len(v) > 0 {
		return domain.Scope{WarehouseID: v[0]}
	}
	return domain.Scope{}
}

func codeFor(kind domain.ErrorKind) codes.Code {
	switch kind {
	case domain.KindValidation:
		return codes.InvalidArgument
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindConcurrencyConflict:
		return codes.Aborted
	case domain.KindIllegalTransition, domain.KindIncompleteTasks, domain.KindInsufficientStock:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

func (h *GRPCHandler) toStatus(err error) error {
	code := codeFor(domain.KindOf(err))
	if code == codes.Internal {
		h.logger.Error("rpc failed", zap.Error(err))
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
