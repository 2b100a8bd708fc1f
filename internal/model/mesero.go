package model

import (
	"time"

	"github.com/google/uuid"
)

// Mesero is a waiter that can be attributed on a sale. Codigo is MES-0001 style.
type Mesero struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo    string    `gorm:"type:varchar(24);uniqueIndex;not null"`
	Nombre    string    `gorm:"type:varchar(80);not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedBy string    `gorm:"type:varchar(80)"`
	CreatedAt time.Time
}

func (Mesero) TableName() string { return "meseros" }
