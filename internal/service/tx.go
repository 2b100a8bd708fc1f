package service

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Actor is who performs an operation, as supplied by the auth layer.
type Actor struct {
	Nombre string
	Rol    string
}

func normalizar(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
