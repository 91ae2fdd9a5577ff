package storage

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id               VARCHAR(36)  NOT NULL PRIMARY KEY,
		warehouse_id     VARCHAR(64)  NOT NULL,
		order_number     VARCHAR(64)  NOT NULL,
		customer_name    VARCHAR(255) NOT NULL,
		customer_email   VARCHAR(255) NOT NULL DEFAULT '',
		shipping_address TEXT         NOT NULL,
		status           VARCHAR(32)  NOT NULL,
		total_items      INT          NOT NULL DEFAULT 0,
		picked_at        DATETIME(6)  NULL,
		packed_at        DATETIME(6)  NULL,
		dispatched_at    DATETIME(6)  NULL,
		version          BIGINT UNSIGNED NOT NULL DEFAULT 1,
		deleted_at       DATETIME(6)  NULL,
		created_at       DATETIME(6)  NOT NULL,
		updated_at       DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_orders_number (warehouse_id, order_number)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id                VARCHAR(36) NOT NULL PRIMARY KEY,
		warehouse_id      VARCHAR(64) NOT NULL,
		product_id        VARCHAR(64) NOT NULL,
		location_id       VARCHAR(64) NOT NULL,
		quantity          INT NOT NULL DEFAULT 0,
		reserved_quantity INT NOT NULL DEFAULT 0,
		damaged_quantity  INT NOT NULL DEFAULT 0,
		min_level         INT NOT NULL DEFAULT 0,
		max_level         INT NOT NULL DEFAULT 0,
		version           BIGINT UNSIGNED NOT NULL DEFAULT 1,
		deleted_at        DATETIME(6) NULL,
		created_at        DATETIME(6) NOT NULL,
		updated_at        DATETIME(6) NOT NULL,
		UNIQUE KEY uq_inventory_location (warehouse_id, product_id, location_id),
		CONSTRAINT chk_inventory_available CHECK (quantity - reserved_quantity - damaged_quantity >= 0),
		CONSTRAINT chk_inventory_reserved CHECK (reserved_quantity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS pick_tasks (
		id           VARCHAR(36)  NOT NULL PRIMARY KEY,
		seq          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT UNIQUE,
		warehouse_id VARCHAR(64)  NOT NULL,
		order_id     VARCHAR(36)  NOT NULL,
		product_id   VARCHAR(64)  NOT NULL,
		location_id  VARCHAR(64)  NOT NULL,
		inventory_id VARCHAR(36)  NOT NULL,
		quantity     INT          NOT NULL,
		assigned_to  VARCHAR(64)  NOT NULL DEFAULT '',
		status       VARCHAR(32)  NOT NULL,
		notes        TEXT         NOT NULL,
		completed_at DATETIME(6)  NULL,
		version      BIGINT UNSIGNED NOT NULL DEFAULT 1,
		deleted_at   DATETIME(6)  NULL,
		created_at   DATETIME(6)  NOT NULL,
		updated_at   DATETIME(6)  NOT NULL,
		KEY idx_pick_tasks_order (warehouse_id, order_id),
		CONSTRAINT fk_pick_tasks_order FOREIGN KEY (order_id) REFERENCES orders (id),
		CONSTRAINT fk_pick_tasks_inventory FOREIGN KEY (inventory_id) REFERENCES inventory (id)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id               VARCHAR(36) NOT NULL PRIMARY KEY,
		warehouse_id     VARCHAR(64) NOT NULL,
		product_id       VARCHAR(64) NOT NULL,
		from_location_id VARCHAR(64) NULL,
		to_location_id   VARCHAR(64) NULL,
		quantity         INT         NOT NULL,
		kind             VARCHAR(32) NOT NULL,
		reference_type   VARCHAR(32) NOT NULL DEFAULT '',
		reference_id     VARCHAR(64) NOT NULL DEFAULT '',
		actor            VARCHAR(64) NOT NULL DEFAULT '',
		created_at       DATETIME(6) NOT NULL,
		KEY idx_stock_movements_product (warehouse_id, product_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS shipments (
		id              VARCHAR(36)  NOT NULL PRIMARY KEY,
		warehouse_id    VARCHAR(64)  NOT NULL,
		order_id        VARCHAR(36)  NOT NULL,
		shipper_id      VARCHAR(64)  NOT NULL DEFAULT '',
		tracking_number VARCHAR(64)  NOT NULL DEFAULT '',
		status          VARCHAR(32)  NOT NULL,
		location        VARCHAR(255) NOT NULL DEFAULT '',
		notes           TEXT         NOT NULL,
		created_at      DATETIME(6)  NOT NULL,
		updated_at      DATETIME(6)  NOT NULL,
		KEY idx_shipments_order (warehouse_id, order_id)
	)`,
}

// Migrate creates the tables the store needs if they do not exist.
func (m *MySQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
