package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"socialconnect/prestation"
)

// SoldeConge is the annual leave quota for one gestionnaire, in minutes per
// category. At most one record per (gestionnaire, annee); upserts replace
// every field.
type SoldeConge struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	GestionnaireID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_soldes_gestionnaire_annee" json:"gestionnaireId"`
	Annee                 int       `gorm:"not null;uniqueIndex:idx_soldes_gestionnaire_annee" json:"annee"`
	ServiceID             string    `gorm:"not null;index;size:100;default:'default'" json:"serviceId"`
	VacancesAnnuelles     int       `gorm:"not null;default:0" json:"vacancesAnnuelles"`
	ConsultationMedicale  int       `gorm:"not null;default:0" json:"consultationMedicale"`
	ForceMajeure          int       `gorm:"not null;default:0" json:"forceMajeure"`
	CongesReglementaires  int       `gorm:"not null;default:0" json:"congesReglementaires"`
	CreditHeures          int       `gorm:"not null;default:0" json:"creditHeures"`
	HeuresSupplementaires int       `gorm:"not null;default:0" json:"heuresSupplementaires"`
}

func (s *SoldeConge) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Quota converts the stored record into the engine's quota value. The zero
// SoldeConge yields the all-zero quota required when no record exists.
func (s *SoldeConge) Quota() prestation.Quota {
	return prestation.Quota{
		VacancesAnnuelles:     s.VacancesAnnuelles,
		ConsultationMedicale:  s.ConsultationMedicale,
		ForceMajeure:          s.ForceMajeure,
		CongesReglementaires:  s.CongesReglementaires,
		CreditHeures:          s.CreditHeures,
		HeuresSupplementaires: s.HeuresSupplementaires,
	}
}
