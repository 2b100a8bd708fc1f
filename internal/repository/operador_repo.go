package repository

import (
	"context"

	"cipriano/internal/model"

	"gorm.io/gorm"
)

type OperadorRepository interface {
	Create(ctx context.Context, o *model.Operador) error
	FindByUsername(ctx context.Context, username string) (*model.Operador, error)
	Update(ctx context.Context, o *model.Operador) error
}

type operadorRepo struct{ db *gorm.DB }

func NewOperadorRepository(db *gorm.DB) OperadorRepository { return &operadorRepo{db: db} }

func (r *operadorRepo) Create(ctx context.Context, o *model.Operador) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// FindByUsername returns the operator regardless of Activo; callers decide.
func (r *operadorRepo) FindByUsername(ctx context.Context, username string) (*model.Operador, error) {
	var o model.Operador
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&o).Error
	return &o, err
}

func (r *operadorRepo) Update(ctx context.Context, o *model.Operador) error {
	return r.db.WithContext(ctx).Save(o).Error
}
