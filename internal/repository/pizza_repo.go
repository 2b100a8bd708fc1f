package repository

import (
	"context"
	"strings"
	"time"

	"cipriano/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentasFilter narrows sold pizzas for revenue and export. Zero values mean "no filter".
type VentasFilter struct {
	Sabor        string
	MeseroNombre string
	Desde        *time.Time
	Hasta        *time.Time
}

// PizzaRepository defines the data access contract for pizzas.
// Methods ending in Tx must run on the caller's transaction.
type PizzaRepository interface {
	FindByID(ctx context.Context, id string) (*model.Pizza, error)
	ListByLote(ctx context.Context, codigoLote, desdeID, hastaID string) ([]model.Pizza, error)
	ContarPorEstado(ctx context.Context) (map[string]int64, error)
	SumarVendidas(ctx context.Context, f VentasFilter) (decimal.Decimal, error)
	ListVendidas(ctx context.Context, f VentasFilter) ([]VentaRow, error)

	// FindByIDForUpdateTx locks the row until the transaction ends.
	FindByIDForUpdateTx(tx *gorm.DB, id string) (*model.Pizza, error)
	UpdateTx(tx *gorm.DB, p *model.Pizza) error
	// CreateManyTx inserts all pizzas in a single statement.
	CreateManyTx(tx *gorm.DB, pizzas []model.Pizza) error
	// MaxSecuenciaTx returns the highest all-digit suffix among ids starting
	// with prefijo, or 0 when there is none.
	MaxSecuenciaTx(tx *gorm.DB, prefijo string) (int, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type pizzaRepo struct{ db *gorm.DB }

func NewPizzaRepository(db *gorm.DB) PizzaRepository { return &pizzaRepo{db: db} }

func (r *pizzaRepo) DB() *gorm.DB { return r.db }

func (r *pizzaRepo) FindByID(ctx context.Context, id string) (*model.Pizza, error) {
	var p model.Pizza
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *pizzaRepo) ListByLote(ctx context.Context, codigoLote, desdeID, hastaID string) ([]model.Pizza, error) {
	q := r.db.WithContext(ctx).Model(&model.Pizza{}).
		Joins("JOIN lotes ON lotes.id = pizzas.lote_id").
		Where("lotes.codigo = ?", codigoLote)
	if desdeID != "" {
		q = q.Where("pizzas.id >= ?", desdeID)
	}
	if hastaID != "" {
		q = q.Where("pizzas.id <= ?", hastaID)
	}
	var pizzas []model.Pizza
	err := q.Order("pizzas.id ASC").Find(&pizzas).Error
	return pizzas, err
}

func (r *pizzaRepo) ContarPorEstado(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Estado string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Pizza{}).
		Select("estado, COUNT(*) AS total").
		Group("estado").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Estado] = row.Total
	}
	return counts, nil
}

func (r *pizzaRepo) SumarVendidas(ctx context.Context, f VentasFilter) (decimal.Decimal, error) {
	var res struct{ Total decimal.NullDecimal }
	err := r.vendidas(ctx, f).Select("SUM(precio) AS total").Scan(&res).Error
	if err != nil || !res.Total.Valid {
		return decimal.Zero, err
	}
	return res.Total.Decimal, nil
}

// VentaRow is a sold pizza plus the waiter of its current sale event.
type VentaRow struct {
	model.Pizza
	MeseroNombre string
}

func (r *pizzaRepo) ListVendidas(ctx context.Context, f VentasFilter) ([]VentaRow, error) {
	var rows []VentaRow
	err := r.vendidas(ctx, f).
		Select(`pizzas.*, (SELECT e.mesero_nombre FROM eventos_escaneo e
			WHERE e.pizza_id = pizzas.id AND e.modo = ? AND e.estado_hasta = ? AND e.deshecho = false
			ORDER BY e.created_at DESC, e.id DESC LIMIT 1) AS mesero_nombre`,
			model.ModoVentas, model.EstadoVendida).
		Order("sold_at ASC, id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *pizzaRepo) vendidas(ctx context.Context, f VentasFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Pizza{}).Where("estado = ?", model.EstadoVendida)
	if f.Sabor != "" {
		q = q.Where("sabor = ?", f.Sabor)
	}
	if f.MeseroNombre != "" {
		// The waiter lives on the sale event, not on the pizza.
		q = q.Where(`id IN (SELECT pizza_id FROM eventos_escaneo
			WHERE modo = ? AND estado_hasta = ? AND deshecho = false AND mesero_nombre ILIKE ?)`,
			model.ModoVentas, model.EstadoVendida, "%"+escapeLike(f.MeseroNombre)+"%")
	}
	if f.Desde != nil {
		q = q.Where("DATE(sold_at) >= ?", f.Desde.Format("2006-01-02"))
	}
	if f.Hasta != nil {
		q = q.Where("DATE(sold_at) <= ?", f.Hasta.Format("2006-01-02"))
	}
	return q
}

func (r *pizzaRepo) FindByIDForUpdateTx(tx *gorm.DB, id string) (*model.Pizza, error) {
	var p model.Pizza
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *pizzaRepo) UpdateTx(tx *gorm.DB, p *model.Pizza) error {
	return tx.Omit("Lote").Save(p).Error
}

func (r *pizzaRepo) CreateManyTx(tx *gorm.DB, pizzas []model.Pizza) error {
	if len(pizzas) == 0 {
		return nil
	}
	return tx.Omit("Lote").Create(&pizzas).Error
}

func (r *pizzaRepo) MaxSecuenciaTx(tx *gorm.DB, prefijo string) (int, error) {
	return maxSecuencia(tx, "pizzas", "id", prefijo)
}

// maxSecuencia computes MAX over the numeric suffix of column for rows whose
// value starts with prefijo. Non-numeric suffixes (e.g. a longer lote code
// sharing the prefix) are ignored.
func maxSecuencia(tx *gorm.DB, table, column, prefijo string) (int, error) {
	var max int
	from := len(prefijo) + 1
	err := tx.Table(table).
		Select("COALESCE(MAX(CAST(SUBSTRING("+column+" FROM ?) AS INTEGER)), 0)", from).
		Where(column+" LIKE ?", escapeLike(prefijo)+"%").
		Where("SUBSTRING("+column+" FROM ?) ~ '^[0-9]{1,9}$'", from).
		Scan(&max).Error
	return max, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
