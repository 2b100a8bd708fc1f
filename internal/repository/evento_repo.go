package repository

import (
	"context"
	"time"

	"cipriano/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventoFilter defines filters for listing scan events.
type EventoFilter struct {
	Modo         string
	EstadoHasta  string
	PizzaID      string // substring match
	Sabor        string
	MeseroNombre string
	Desde        *time.Time // on the pizza's sold date
	Hasta        *time.Time
	Page         int
	Limit        int
}

type EventoRepository interface {
	CreateTx(tx *gorm.DB, e *model.EventoEscaneo) error
	// UltimoPendienteForUpdateTx returns the newest event that is neither undone
	// nor itself an undo, locked for the rest of the transaction.
	UltimoPendienteForUpdateTx(tx *gorm.DB) (*model.EventoEscaneo, error)
	// MarcarDeshechoTx flips deshecho to true; it fails if it was already true.
	MarcarDeshechoTx(tx *gorm.DB, id uint64) error
	List(ctx context.Context, filter EventoFilter) ([]model.EventoEscaneo, int64, error)
}

type eventoRepo struct{ db *gorm.DB }

func NewEventoRepository(db *gorm.DB) EventoRepository { return &eventoRepo{db: db} }

func (r *eventoRepo) CreateTx(tx *gorm.DB, e *model.EventoEscaneo) error {
	return tx.Omit("Pizza").Create(e).Error
}

// undoLockKey is the pg_advisory_xact_lock key taken by every undo. Concurrent
// undos queue on it, so each one picks its target from a fresh snapshot
// instead of re-checking a row the previous undo just marked.
const undoLockKey = 0x5049_5a5a

func (r *eventoRepo) UltimoPendienteForUpdateTx(tx *gorm.DB) (*model.EventoEscaneo, error) {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", undoLockKey).Error; err != nil {
		return nil, err
	}
	var e model.EventoEscaneo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("deshecho = false AND modo <> ?", model.ModoUndo).
		Order("created_at DESC, id DESC").
		First(&e).Error
	return &e, err
}

func (r *eventoRepo) MarcarDeshechoTx(tx *gorm.DB, id uint64) error {
	res := tx.Model(&model.EventoEscaneo{}).
		Where("id = ? AND deshecho = false", id).
		Update("deshecho", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventoRepo) List(ctx context.Context, filter EventoFilter) ([]model.EventoEscaneo, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.EventoEscaneo{}).
		Joins("JOIN pizzas ON pizzas.id = eventos_escaneo.pizza_id")
	if filter.Modo != "" {
		q = q.Where("eventos_escaneo.modo = ?", filter.Modo)
	}
	if filter.EstadoHasta != "" {
		q = q.Where("eventos_escaneo.estado_hasta = ?", filter.EstadoHasta)
	}
	if filter.PizzaID != "" {
		q = q.Where("pizzas.id ILIKE ?", "%"+escapeLike(filter.PizzaID)+"%")
	}
	if filter.Sabor != "" {
		q = q.Where("pizzas.sabor = ?", filter.Sabor)
	}
	if filter.MeseroNombre != "" {
		q = q.Where("eventos_escaneo.mesero_nombre ILIKE ?", "%"+escapeLike(filter.MeseroNombre)+"%")
	}
	if filter.Desde != nil {
		q = q.Where("DATE(pizzas.sold_at) >= ?", filter.Desde.Format("2006-01-02"))
	}
	if filter.Hasta != nil {
		q = q.Where("DATE(pizzas.sold_at) <= ?", filter.Hasta.Format("2006-01-02"))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	var eventos []model.EventoEscaneo
	err := q.Preload("Pizza").
		Order("eventos_escaneo.created_at DESC, eventos_escaneo.id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&eventos).Error
	return eventos, total, err
}
