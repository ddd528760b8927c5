package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prestation is one recorded work or leave entry for one gestionnaire on one
// calendar day. DureeNet, IsOvertime and Bonis are derived server-side from
// the submitted times and never trusted from input.
type Prestation struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	GestionnaireID uuid.UUID      `gorm:"type:uuid;not null;index:idx_prestations_gestionnaire_date" json:"gestionnaireId"`
	Gestionnaire   *Gestionnaire  `gorm:"foreignKey:GestionnaireID" json:"gestionnaire,omitempty"`
	ServiceID      string         `gorm:"not null;index;size:100;default:'default'" json:"serviceId"`
	Date           time.Time      `gorm:"not null;type:date;index:idx_prestations_gestionnaire_date" json:"date"`
	HeureDebut     string         `gorm:"not null;size:5" json:"heureDebut"`
	HeureFin       string         `gorm:"not null;size:5" json:"heureFin"`
	Pause          int            `gorm:"not null;default:0" json:"pause"`
	Motif          string         `gorm:"not null;size:100;index" json:"motif"`
	Commentaire    string         `gorm:"size:500" json:"commentaire,omitempty"`
	DureeNet       int            `gorm:"not null" json:"dureeNet"`
	IsOvertime     bool           `gorm:"not null;default:false" json:"isOvertime"`
	Bonis          int            `gorm:"not null;default:0" json:"bonis"`
}

func (p *Prestation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PrestationFilter narrows prestation listings.
type PrestationFilter struct {
	GestionnaireID uuid.UUID
	StartDate      *time.Time
	EndDate        *time.Time
}
