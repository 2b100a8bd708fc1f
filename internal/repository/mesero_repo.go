package repository

import (
	"context"

	"cipriano/internal/model"

	"gorm.io/gorm"
)

type MeseroRepository interface {
	ListActivos(ctx context.Context) ([]model.Mesero, error)
	ListByCodigos(ctx context.Context, codigos []string) ([]model.Mesero, error)
	FindActivoByCodigoTx(tx *gorm.DB, codigo string) (*model.Mesero, error)
	CreateTx(tx *gorm.DB, m *model.Mesero) error
	// MaxSecuenciaTx locks the meseros table against concurrent code allocation
	// and returns the highest numeric suffix after prefijo.
	MaxSecuenciaTx(tx *gorm.DB, prefijo string) (int, error)
	DB() *gorm.DB
}

type meseroRepo struct{ db *gorm.DB }

func NewMeseroRepository(db *gorm.DB) MeseroRepository { return &meseroRepo{db: db} }

func (r *meseroRepo) DB() *gorm.DB { return r.db }

func (r *meseroRepo) ListActivos(ctx context.Context) ([]model.Mesero, error) {
	var meseros []model.Mesero
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC, codigo ASC").Find(&meseros).Error
	return meseros, err
}

func (r *meseroRepo) ListByCodigos(ctx context.Context, codigos []string) ([]model.Mesero, error) {
	var meseros []model.Mesero
	err := r.db.WithContext(ctx).
		Where("codigo IN ? AND activo = true", codigos).
		Order("nombre ASC, codigo ASC").
		Find(&meseros).Error
	return meseros, err
}

func (r *meseroRepo) FindActivoByCodigoTx(tx *gorm.DB, codigo string) (*model.Mesero, error) {
	var m model.Mesero
	err := tx.Where("codigo = ? AND activo = true", codigo).First(&m).Error
	return &m, err
}

func (r *meseroRepo) CreateTx(tx *gorm.DB, m *model.Mesero) error {
	return tx.Create(m).Error
}

func (r *meseroRepo) MaxSecuenciaTx(tx *gorm.DB, prefijo string) (int, error) {
	if err := tx.Exec("LOCK TABLE meseros IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
		return 0, err
	}
	return maxSecuencia(tx, "meseros", "codigo", prefijo)
}

