package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles de operador (login).
const (
	OperadorCocina = "KITCHEN"
	OperadorVentas = "SALES"
	OperadorLotes  = "BATCHES"
	OperadorAdmin  = "ADMIN"
)

// Operador is a station login. The PIN is stored as a bcrypt hash.
type Operador struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username  string    `gorm:"type:varchar(40);uniqueIndex;not null"`
	PinHash   string    `gorm:"type:varchar(128);not null"`
	Rol       string    `gorm:"type:varchar(12);not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (Operador) TableName() string { return "operadores" }
