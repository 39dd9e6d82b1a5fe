package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the tables the lifecycle engine reads and writes.  Every
// statement is idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sellers (
		id                   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		approval_status      VARCHAR(16)     NOT NULL DEFAULT 'PENDING',
		rejection_reason     VARCHAR(512)    NOT NULL DEFAULT '',
		blacklist_reason     VARCHAR(512)    NULL,
		blacklisted_at       DATETIME(3)     NULL,
		blacklisted_by       BIGINT UNSIGNED NULL,
		blacklist_expires_at DATETIME(3)     NULL,
		reapply_submitted_at DATETIME(3)     NULL,
		reapply_reason       VARCHAR(512)    NULL,
		reapply_decision     VARCHAR(16)     NULL,
		reapply_decided_at   DATETIME(3)     NULL,
		reapply_decided_by   BIGINT UNSIGNED NULL,
		version              BIGINT UNSIGNED NOT NULL DEFAULT 1,
		created_at           DATETIME(3)     NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at           DATETIME(3)     NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS products (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		seller_id         BIGINT UNSIGNED NOT NULL,
		name              VARCHAR(255)    NOT NULL,
		description       TEXT            NOT NULL,
		price_cents       INT UNSIGNED    NOT NULL DEFAULT 0,
		status            VARCHAR(16)     NOT NULL DEFAULT 'DRAFT',
		is_admin_approved BOOLEAN         NOT NULL DEFAULT FALSE,
		is_admin_rejected BOOLEAN         NOT NULL DEFAULT FALSE,
		rejection_reason  VARCHAR(512)    NULL,
		version           BIGINT UNSIGNED NOT NULL DEFAULT 1,
		created_at        DATETIME(3)     NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at        DATETIME(3)     NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		PRIMARY KEY (id),
		KEY idx_products_seller_status (seller_id, status),
		CONSTRAINT fk_products_seller FOREIGN KEY (seller_id) REFERENCES sellers (id),
		CONSTRAINT chk_products_admin_flags CHECK (NOT (is_admin_approved AND is_admin_rejected))
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the sellers and products tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
