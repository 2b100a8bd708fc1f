package model

import "time"

// EventoEscaneo is an immutable audit record of one status change.
// Only Deshecho may change, and only from false to true.
// Events are ordered by (CreatedAt, ID); ID is a bigserial so it breaks ties.
type EventoEscaneo struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	PizzaID      string `gorm:"type:varchar(32);not null;index"`
	Modo         string `gorm:"type:varchar(20);not null"`
	ActorNombre  string `gorm:"type:varchar(80)"`
	ActorRol     string `gorm:"type:varchar(16)"`
	EstadoDesde  string `gorm:"type:varchar(16);not null"`
	EstadoHasta  string `gorm:"type:varchar(16);not null"`
	MeseroCodigo string `gorm:"type:varchar(24)"`
	MeseroNombre string `gorm:"type:varchar(80)"`
	Nota         string `gorm:"type:varchar(200)"`
	Deshecho     bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time

	Pizza *Pizza `gorm:"foreignKey:PizzaID;constraint:OnDelete:CASCADE"`
}

func (EventoEscaneo) TableName() string { return "eventos_escaneo" }
