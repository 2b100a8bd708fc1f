package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pizza is one trackable unit. ID has the form <LOTE>-<0001> and never changes.
// Each *At/*By pair is written by the transition that reaches that status and
// cleared only when that transition is undone.
type Pizza struct {
	ID     string          `gorm:"type:varchar(32);primaryKey"`
	Sabor  string          `gorm:"type:varchar(40)"`
	Tamano string          `gorm:"type:varchar(20)"`
	Precio decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`
	Estado string          `gorm:"type:varchar(16);not null;default:'PREPARACION';index"`
	LoteID *uuid.UUID      `gorm:"type:uuid;index"`

	CreatedAt  time.Time
	ReadyAt    *time.Time
	SoldAt     *time.Time
	CanceledAt *time.Time

	CreatedBy  string `gorm:"type:varchar(80)"`
	ReadyBy    string `gorm:"type:varchar(80)"`
	SoldBy     string `gorm:"type:varchar(80)"`
	CanceledBy string `gorm:"type:varchar(80)"`

	Lote *Lote `gorm:"foreignKey:LoteID;constraint:OnDelete:SET NULL"`
}

func (Pizza) TableName() string { return "pizzas" }

// MarcarTransicion stamps the timestamp/actor pair that belongs to estado.
// PREPARACION has no pair.
func (p *Pizza) MarcarTransicion(estado, actor string, now time.Time) {
	switch estado {
	case EstadoLista:
		p.ReadyAt, p.ReadyBy = &now, actor
	case EstadoVendida:
		p.SoldAt, p.SoldBy = &now, actor
	case EstadoCancelada, EstadoMerma:
		p.CanceledAt, p.CanceledBy = &now, actor
	}
}

// LimpiarTransicion clears the pair written when the pizza reached estado.
func (p *Pizza) LimpiarTransicion(estado string) {
	switch estado {
	case EstadoLista:
		p.ReadyAt, p.ReadyBy = nil, ""
	case EstadoVendida:
		p.SoldAt, p.SoldBy = nil, ""
	case EstadoCancelada, EstadoMerma:
		p.CanceledAt, p.CanceledBy = nil, ""
	}
}
