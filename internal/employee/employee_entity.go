package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Email       string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_email"`
	Department  string    `gorm:"type:varchar(255);index"`
	Designation string    `gorm:"type:varchar(255)"`
	Role        string    `gorm:"type:varchar(32);not null;default:employee"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
