package model

import (
	"time"

	"github.com/google/uuid"
)

// Lote is a named production run. Codigo is DIA-PREFIJO or just PREFIJO.
// Deleting a lote does not delete its pizzas (FK is ON DELETE SET NULL).
type Lote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo    string    `gorm:"type:varchar(24);uniqueIndex;not null"`
	Dia       time.Time `gorm:"type:date;not null"`
	Notas     string    `gorm:"type:varchar(200)"`
	CreatedBy string    `gorm:"type:varchar(80)"`
	CreatedAt time.Time
}

func (Lote) TableName() string { return "lotes" }
