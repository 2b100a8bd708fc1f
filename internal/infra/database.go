package infra

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"cipriano/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate for
// the festival tables, then applies the idempotent SQL patches that GORM cannot
// express (partial indexes, check constraints).
//
// lockTimeout bounds every row-lock wait so a stuck station surfaces as a
// retryable error instead of hanging the scanner.
func NewDatabase(dsn string, lockTimeout time.Duration) (*gorm.DB, error) {
	dsn, err := withLockTimeout(dsn, lockTimeout)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// runMigrations creates or updates the schema.
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Lote{},
		&model.Pizza{},
		&model.EventoEscaneo{},
		&model.Mesero{},
		&model.Operador{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// undo picks the newest pending event; keep that lookup an index scan
		{"idx_eventos_pendientes", `
CREATE INDEX IF NOT EXISTS idx_eventos_pendientes
    ON eventos_escaneo (created_at DESC, id DESC)
    WHERE deshecho = false AND modo <> 'UNDO'`},
		// waiter attribution on sold pizzas
		{"idx_eventos_venta_mesero", `
CREATE INDEX IF NOT EXISTS idx_eventos_venta_mesero
    ON eventos_escaneo (pizza_id)
    WHERE modo = 'SALES' AND estado_hasta = 'VENDIDA' AND deshecho = false`},
		// LIKE 'PREFIX-%' for the id allocator
		{"idx_pizzas_id_pattern", `
CREATE INDEX IF NOT EXISTS idx_pizzas_id_pattern
    ON pizzas (id varchar_pattern_ops)`},
		{"chk_pizzas_estado", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pizzas_estado') THEN
    ALTER TABLE pizzas ADD CONSTRAINT chk_pizzas_estado
      CHECK (estado IN ('PREPARACION', 'LISTA', 'VENDIDA', 'CANCELADA', 'MERMA'));
  END IF;
END $$`},
		{"chk_pizzas_precio", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pizzas_precio') THEN
    ALTER TABLE pizzas ADD CONSTRAINT chk_pizzas_precio CHECK (precio >= 0);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// withLockTimeout adds lock_timeout as a pgx runtime parameter. Both URL and
// keyword/value DSNs are accepted.
func withLockTimeout(dsn string, d time.Duration) (string, error) {
	if d <= 0 {
		return dsn, nil
	}
	ms := fmt.Sprintf("%d", d.Milliseconds())
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn + " lock_timeout=" + ms, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("database url: %w", err)
	}
	q := u.Query()
	q.Set("lock_timeout", ms)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
