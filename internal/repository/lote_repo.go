package repository

import (
	"context"

	"cipriano/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoteRepository interface {
	FindByCodigo(ctx context.Context, codigo string) (*model.Lote, error)
	// FindOrCreateForUpdateTx inserts l unless its Codigo already exists, then
	// returns the stored row locked for the rest of the transaction.
	FindOrCreateForUpdateTx(tx *gorm.DB, l *model.Lote) (*model.Lote, error)
}

type loteRepo struct{ db *gorm.DB }

func NewLoteRepository(db *gorm.DB) LoteRepository { return &loteRepo{db: db} }

func (r *loteRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Lote, error) {
	var l model.Lote
	err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&l).Error
	return &l, err
}

func (r *loteRepo) FindOrCreateForUpdateTx(tx *gorm.DB, l *model.Lote) (*model.Lote, error) {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "codigo"}},
		DoNothing: true,
	}).Create(l).Error
	if err != nil {
		return nil, err
	}
	var stored model.Lote
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("codigo = ?", l.Codigo).First(&stored).Error
	return &stored, err
}
