package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/service"
)

// WarehouseHeader carries the warehouse a request is scoped to.
const WarehouseHeader = "X-Warehouse-ID"

type HTTPHandler struct {
	orders    *service.FulfillmentService
	tasks     *service.PickTaskService
	inventory *service.InventoryService
	logger    *zap.Logger
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry,omitempty"`
}

func NewHTTPHandler(orders *service.FulfillmentService, tasks *service.PickTaskService, inventory *service.InventoryService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{orders: orders, tasks: tasks, inventory: inventory, logger: logger}
}

// Register mounts every route on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.orderAction(h.orders.GetOrder))
	mux.HandleFunc("POST /api/orders/{id}/assign", h.AssignPickers)
	mux.HandleFunc("POST /api/orders/{id}/picked", h.orderAction(h.orders.MarkPicked))
	mux.HandleFunc("POST /api/orders/{id}/packed", h.orderAction(h.orders.MarkPacked))
	mux.HandleFunc("POST /api/orders/{id}/dispatch", h.orderAction(h.orders.MarkDispatched))
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.orderAction(h.orders.CancelOrder))
	mux.HandleFunc("GET /api/orders/{id}/tasks", h.ListPickTasks)

	mux.HandleFunc("GET /api/tasks/{id}", h.GetPickTask)
	mux.HandleFunc("POST /api/tasks/{id}/start", h.StartPickTask)
	mux.HandleFunc("POST /api/tasks/{id}/complete", h.CompletePickTask)

	mux.HandleFunc("GET /api/inventory", h.ListInventory)
	mux.HandleFunc("POST /api/inventory/receipts", h.ReceiveStock)
	mux.HandleFunc("GET /api/inventory/{id}", h.GetInventory)
	mux.HandleFunc("POST /api/inventory/{id}/adjust", h.AdjustStock)
	mux.HandleFunc("POST /api/inventory/{id}/damage", h.MarkDamaged)
	mux.HandleFunc("POST /api/inventory/{id}/transfer", h.TransferStock)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), scopeOf(r), req.toService())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderJSON(order))
}

func (h *HTTPHandler) AssignPickers(w http.ResponseWriter, r *http.Request) {
	var req AssignPickersRequest
	if !decode(w, r, &req) {
		return
	}

	order, err := h.orders.AssignPickers(r.Context(), scopeOf(r), r.PathValue("id"), req.Assignee)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderJSON(order))
}

type orderFunc func(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error)

// orderAction adapts the order operations that take nothing but the order id.
func (h *HTTPHandler) orderAction(fn orderFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := fn(r.Context(), scopeOf(r), r.PathValue("id"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderJSON(order))
	}
}

func (h *HTTPHandler) ListPickTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListPickTasks(r.Context(), scopeOf(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPickTaskList(tasks))
}

func (h *HTTPHandler) GetPickTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.GetPickTask(r.Context(), scopeOf(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPickTaskJSON(*task))
}

func (h *HTTPHandler) StartPickTask(w http.ResponseWriter, r *http.Request) {
	var req PickTaskRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	task, err := h.tasks.StartPickTask(r.Context(), scopeOf(r), r.PathValue("id"), req.Actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPickTaskJSON(*task))
}

func (h *HTTPHandler) CompletePickTask(w http.ResponseWriter, r *http.Request) {
	var req PickTaskRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	task, err := h.tasks.CompletePickTask(r.Context(), scopeOf(r), r.PathValue("id"), req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPickTaskJSON(*task))
}

func (h *HTTPHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		h.writeError(w, domain.Validationf("product_id query parameter is required"))
		return
	}

	records, err := h.inventory.ListInventory(r.Context(), scopeOf(r), productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryList(records))
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := h.inventory.GetInventory(r.Context(), scopeOf(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryJSON(*inv))
}

func (h *HTTPHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if !decode(w, r, &req) {
		return
	}

	inv, err := h.inventory.AdjustStock(r.Context(), scopeOf(r), r.PathValue("id"), req.Delta, req.Actor, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryJSON(*inv))
}

func (h *HTTPHandler) MarkDamaged(w http.ResponseWriter, r *http.Request) {
	var req MarkDamagedRequest
	if !decode(w, r, &req) {
		return
	}

	inv, err := h.inventory.MarkDamaged(r.Context(), scopeOf(r), r.PathValue("id"), req.Quantity, req.Actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryJSON(*inv))
}

func (h *HTTPHandler) TransferStock(w http.ResponseWriter, r *http.Request) {
	var req TransferStockRequest
	if !decode(w, r, &req) {
		return
	}

	from, to, err := h.inventory.TransferStock(r.Context(), scopeOf(r), r.PathValue("id"), req.ToLocationID, req.Quantity, req.Actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TransferStockResponse{From: toInventoryJSON(*from), To: toInventoryJSON(*to)})
}

func (h *HTTPHandler) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	var req ReceiveStockRequest
	if !decode(w, r, &req) {
		return
	}

	inv, err := h.inventory.ReceiveStock(r.Context(), scopeOf(r), req.ProductID, req.LocationID, req.Quantity, req.Actor, req.Reference)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryJSON(*inv))
}

func scopeOf(r *http.Request) domain.Scope {
	return domain.Scope{WarehouseID: r.Header.Get(WarehouseHeader)}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeInvalidBody(w)
		return false
	}
	return true
}

// decodeOptional accepts an empty body, chunked or not.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeInvalidBody(w)
		return false
	}
	return true
}

func writeInvalidBody(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    domain.KindValidation.String(),
		Message: "invalid request body",
	})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConcurrencyConflict:
		return http.StatusConflict
	case domain.KindIllegalTransition, domain.KindIncompleteTasks, domain.KindInsufficientStock:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	resp := errorResponse{Code: kind.String(), Message: err.Error()}
	if kind == domain.KindConcurrencyConflict {
		resp.Retry = true
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		resp.Message = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
