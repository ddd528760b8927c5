package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"socialconnect/prestation"
)

// HoraireHabituel is a gestionnaire's usual daily schedule, used to prefill
// the prestation form and to supply the standard shift duration to the
// breakdown calculator. One record per gestionnaire.
type HoraireHabituel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	GestionnaireID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"gestionnaireId"`
	Name             string    `gorm:"size:100" json:"name"`
	Start            string    `gorm:"not null;size:5" json:"start"`
	End              string    `gorm:"not null;size:5" json:"end"`
	Pause            int       `gorm:"not null" json:"pause"`
	StandardDuration int       `gorm:"not null" json:"standardDuration"`
}

func (h *HoraireHabituel) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// DefaultHoraire is the schedule applied when a gestionnaire has not saved
// one: 09:00-17:00 with a 30 minute break and a 7h30 standard day.
func DefaultHoraire(gestionnaireID uuid.UUID) HoraireHabituel {
	return HoraireHabituel{
		GestionnaireID:   gestionnaireID,
		Name:             "Horaire flottant particulier",
		Start:            "09:00",
		End:              "17:00",
		Pause:            prestation.MinBreakMinutes,
		StandardDuration: prestation.StandardDayMinutes,
	}
}

// Normalize applies the mandatory break floor, both on save and on read so
// records written before the rule still come back compliant.
func (h *HoraireHabituel) Normalize() {
	h.Pause = prestation.FloorBreak(h.Pause)
	if h.StandardDuration <= 0 {
		h.StandardDuration = prestation.StandardDayMinutes
	}
}
