package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleAdmin        Role = "ADMIN"
	RoleGestionnaire Role = "GESTIONNAIRE"
)

// Gestionnaire is a staff member (case manager) account. Every record
// carries the service it belongs to; queries never cross services.
type Gestionnaire struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Email              string         `gorm:"uniqueIndex;not null;size:200" json:"email"`
	Prenom             string         `gorm:"not null;size:100" json:"prenom"`
	Nom                string         `gorm:"not null;size:100" json:"nom"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Role               Role           `gorm:"not null;size:20" json:"role"`
	ServiceID          string         `gorm:"not null;index;size:100;default:'default'" json:"service_id"`
	CouleurMedaillon   string         `gorm:"size:20" json:"couleur_medaillon"`
	MustChangePassword bool           `gorm:"default:true" json:"must_change_password"`
	Prestations        []Prestation   `gorm:"foreignKey:GestionnaireID" json:"prestations,omitempty"`
}

func (g *Gestionnaire) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (g *Gestionnaire) DisplayName() string {
	if g.Prenom != "" || g.Nom != "" {
		return g.Prenom + " " + g.Nom
	}
	return g.Email
}

func (g *Gestionnaire) IsAdmin() bool {
	return g.Role == RoleAdmin || g.Role == RoleSuperAdmin
}

// CanManagePrestationsFor reports whether the gestionnaire may create or
// delete entries owned by gestionnaireID. Editing existing entries is
// stricter (admins only) and checked at the handler.
func (g *Gestionnaire) CanManagePrestationsFor(gestionnaireID uuid.UUID) bool {
	if g.IsAdmin() {
		return true
	}
	return g.ID == gestionnaireID
}

func (g *Gestionnaire) CanViewAllPrestations() bool {
	return g.IsAdmin()
}

func (g *Gestionnaire) CanExport() bool {
	return g.IsAdmin()
}

func (g *Gestionnaire) CanManageQuotas() bool {
	return g.IsAdmin()
}
