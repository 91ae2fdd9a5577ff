package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

var ErrOptimisticLock = domain.ConcurrencyConflictf("optimistic lock conflict")

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// MySQLStore is the port.Store backed by MySQL. Transactions run at READ
// COMMITTED; single-row reads are locking reads that hold the row until
// commit, list reads are not.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (m *MySQLStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &mysqlTx{tx: tx}); err != nil {
		return mapMySQLError(err)
	}

	if err := tx.Commit(); err != nil {
		return mapMySQLError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// mapMySQLError turns lock contention into a conflict the caller can retry.
func mapMySQLError(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return fmt.Errorf("%w: %s", ErrOptimisticLock, me.Message)
		}
	}
	return err
}

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

type mysqlTx struct {
	tx *sql.Tx
}

const orderColumns = `id, warehouse_id, order_number, customer_name, customer_email, shipping_address,
	status, total_items, picked_at, packed_at, dispatched_at, version, created_at, updated_at`

func (t *mysqlTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		order.ID, order.WarehouseID, order.OrderNumber, order.CustomerName, order.CustomerEmail,
		order.ShippingAddress, order.Status, order.TotalItems, order.PickedAt, order.PackedAt,
		order.DispatchedAt, order.CreatedAt, order.UpdatedAt,
	)
	if isDuplicateEntry(err) {
		return domain.Validationf("order number %s already exists", order.OrderNumber)
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	order.Version = 1
	return nil
}

func (t *mysqlTx) GetOrder(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error) {
	var (
		o                           domain.Order
		picked, packed, dispatched sql.NullTime
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = ? AND warehouse_id = ? AND deleted_at IS NULL
		FOR UPDATE`, orderID, scope.WarehouseID,
	).Scan(&o.ID, &o.WarehouseID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.ShippingAddress,
		&o.Status, &o.TotalItems, &picked, &packed, &dispatched, &o.Version, &o.CreatedAt, &o.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("order %s not found", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	o.PickedAt = timePtr(picked)
	o.PackedAt = timePtr(packed)
	o.DispatchedAt = timePtr(dispatched)
	return &o, nil
}

func (t *mysqlTx) UpdateOrder(ctx context.Context, order *domain.Order) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, customer_name = ?, customer_email = ?, shipping_address = ?, total_items = ?,
			picked_at = ?, packed_at = ?, dispatched_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND warehouse_id = ? AND version = ? AND deleted_at IS NULL`,
		order.Status, order.CustomerName, order.CustomerEmail, order.ShippingAddress, order.TotalItems,
		order.PickedAt, order.PackedAt, order.DispatchedAt, order.UpdatedAt,
		order.ID, order.WarehouseID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return t.missingOrStale(ctx, "orders", order.ID, order.WarehouseID)
	}

	order.Version++
	return nil
}

const pickTaskColumns = `id, warehouse_id, order_id, product_id, location_id, inventory_id, quantity,
	assigned_to, status, notes, completed_at, version, created_at, updated_at`

func (t *mysqlTx) InsertPickTasks(ctx context.Context, tasks []domain.PickTask) error {
	if len(tasks) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(tasks))
	args := make([]any, 0, len(tasks)*13)
	for _, task := range tasks {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)")
		args = append(args,
			task.ID, task.WarehouseID, task.OrderID, task.ProductID, task.LocationID, task.InventoryID,
			task.Quantity, task.AssignedTo, task.Status, task.Notes, task.CompletedAt,
			task.CreatedAt, task.UpdatedAt,
		)
	}

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO pick_tasks (`+pickTaskColumns+`) VALUES `+strings.Join(placeholders, ", "),
		args...,
	)
	if err != nil {
		return fmt.Errorf("insert pick tasks: %w", err)
	}

	for i := range tasks {
		tasks[i].Version = 1
	}
	return nil
}

func scanPickTask(row interface{ Scan(...any) error }) (domain.PickTask, error) {
	var (
		task      domain.PickTask
		completed sql.NullTime
	)
	err := row.Scan(&task.ID, &task.WarehouseID, &task.OrderID, &task.ProductID, &task.LocationID,
		&task.InventoryID, &task.Quantity, &task.AssignedTo, &task.Status, &task.Notes, &completed,
		&task.Version, &task.CreatedAt, &task.UpdatedAt)
	task.CompletedAt = timePtr(completed)
	return task, err
}

func (t *mysqlTx) GetPickTask(ctx context.Context, scope domain.Scope, taskID string) (*domain.PickTask, error) {
	task, err := scanPickTask(t.tx.QueryRowContext(ctx, `
		SELECT `+pickTaskColumns+`
		FROM pick_tasks
		WHERE id = ? AND warehouse_id = ? AND deleted_at IS NULL
		FOR UPDATE`, taskID, scope.WarehouseID))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("pick task %s not found", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("query pick task: %w", err)
	}
	return &task, nil
}

func (t *mysqlTx) ListPickTasks(ctx context.Context, scope domain.Scope, orderID string) ([]domain.PickTask, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+pickTaskColumns+`
		FROM pick_tasks
		WHERE order_id = ? AND warehouse_id = ? AND deleted_at IS NULL
		ORDER BY created_at, seq`, orderID, scope.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("query pick tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.PickTask
	for rows.Next() {
		task, err := scanPickTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pick task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (t *mysqlTx) UpdatePickTask(ctx context.Context, task *domain.PickTask) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE pick_tasks
		SET assigned_to = ?, status = ?, notes = ?, completed_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND warehouse_id = ? AND version = ? AND deleted_at IS NULL`,
		task.AssignedTo, task.Status, task.Notes, task.CompletedAt, task.UpdatedAt,
		task.ID, task.WarehouseID, task.Version,
	)
	if err != nil {
		return fmt.Errorf("update pick task: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return t.missingOrStale(ctx, "pick_tasks", task.ID, task.WarehouseID)
	}

	task.Version++
	return nil
}

const inventoryColumns = `id, warehouse_id, product_id, location_id, quantity, reserved_quantity,
	damaged_quantity, min_level, max_level, version, created_at, updated_at`

func scanInventory(row interface{ Scan(...any) error }) (domain.Inventory, error) {
	var inv domain.Inventory
	err := row.Scan(&inv.ID, &inv.WarehouseID, &inv.ProductID, &inv.LocationID, &inv.Quantity,
		&inv.ReservedQuantity, &inv.DamagedQuantity, &inv.MinLevel, &inv.MaxLevel, &inv.Version,
		&inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (t *mysqlTx) GetInventory(ctx context.Context, scope domain.Scope, inventoryID string) (*domain.Inventory, error) {
	inv, err := scanInventory(t.tx.QueryRowContext(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory
		WHERE id = ? AND warehouse_id = ? AND deleted_at IS NULL
		FOR UPDATE`, inventoryID, scope.WarehouseID))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("inventory %s not found", inventoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &inv, nil
}

func (t *mysqlTx) ListInventoryByProduct(ctx context.Context, scope domain.Scope, productID string) ([]domain.Inventory, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory
		WHERE product_id = ? AND warehouse_id = ? AND deleted_at IS NULL
		ORDER BY created_at, id`, productID, scope.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var records []domain.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		records = append(records, inv)
	}
	return records, rows.Err()
}

func (t *mysqlTx) FindInventory(ctx context.Context, scope domain.Scope, productID, locationID string) (*domain.Inventory, error) {
	inv, err := scanInventory(t.tx.QueryRowContext(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory
		WHERE product_id = ? AND location_id = ? AND warehouse_id = ? AND deleted_at IS NULL
		FOR UPDATE`, productID, locationID, scope.WarehouseID))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("no inventory for product %s at location %s", productID, locationID)
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &inv, nil
}

func (t *mysqlTx) InsertInventory(ctx context.Context, inv *domain.Inventory) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO inventory (`+inventoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		inv.ID, inv.WarehouseID, inv.ProductID, inv.LocationID, inv.Quantity, inv.ReservedQuantity,
		inv.DamagedQuantity, inv.MinLevel, inv.MaxLevel, inv.CreatedAt, inv.UpdatedAt,
	)
	if isDuplicateEntry(err) {
		return fmt.Errorf("inventory for product %s at location %s: %w", inv.ProductID, inv.LocationID, ErrOptimisticLock)
	}
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	inv.Version = 1
	return nil
}

// ApplyStockDelta applies the delta in one guarded UPDATE. The WHERE clause
// evaluates the invariants against the row as it is at write time, so a
// check and its increment can never be split by a concurrent writer.
func (t *mysqlTx) ApplyStockDelta(ctx context.Context, scope domain.Scope, inventoryID string, delta domain.StockDelta) (*domain.Inventory, error) {
	reserved := "reserved_quantity + ?"
	if delta.FloorReserved {
		reserved = "GREATEST(reserved_quantity + ?, 0)"
	}

	query := fmt.Sprintf(`
		UPDATE inventory
		SET quantity = quantity + ?,
			reserved_quantity = %[1]s,
			damaged_quantity = damaged_quantity + ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND warehouse_id = ? AND deleted_at IS NULL
			AND quantity + ? >= 0
			AND %[1]s >= 0
			AND damaged_quantity + ? >= 0
			AND (quantity + ?) - (%[1]s) - (damaged_quantity + ?) >= 0`, reserved)

	dq, dr, dd := delta.Quantity, delta.Reserved, delta.Damaged
	result, err := t.tx.ExecContext(ctx, query,
		dq, dr, dd, time.Now(),
		inventoryID, scope.WarehouseID,
		dq, dr, dd, dq, dr, dd,
	)
	if err != nil {
		return nil, fmt.Errorf("update inventory: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		current, err := t.GetInventory(ctx, scope, inventoryID)
		if err != nil {
			return nil, err
		}
		return nil, domain.InsufficientStockf(
			"inventory %s: cannot apply quantity %+d, reserved %+d, damaged %+d with %d available",
			inventoryID, dq, dr, dd, current.Available())
	}

	return t.GetInventory(ctx, scope, inventoryID)
}

func (t *mysqlTx) missingOrStale(ctx context.Context, table, id, warehouseID string) error {
	var exists int
	err := t.tx.QueryRowContext(ctx,
		`SELECT 1 FROM `+table+` WHERE id = ? AND warehouse_id = ? AND deleted_at IS NULL`,
		id, warehouseID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("%s %s not found", strings.TrimSuffix(table, "s"), id)
	}
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	return fmt.Errorf("%s %s: %w", table, id, ErrOptimisticLock)
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
