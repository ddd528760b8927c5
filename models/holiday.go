package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holiday is a public holiday visible to a whole service.
type Holiday struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Date      time.Time `gorm:"not null;type:date;uniqueIndex:idx_holidays_service_date" json:"date"`
	Label     string    `gorm:"not null;size:200" json:"label"`
	Year      int       `gorm:"not null;index" json:"year"`
	ServiceID string    `gorm:"not null;size:100;default:'default';uniqueIndex:idx_holidays_service_date" json:"serviceId"`
}

func (h *Holiday) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
