package prestation

import "strings"

// Category is a leave-quota bucket. Every motif maps to exactly one
// category; CategoryNone means the entry counts toward worked time only.
type Category string

const (
	CategoryNone                 Category = ""
	CategoryVacancesAnnuelles    Category = "vacancesAnnuelles"
	CategoryConsultationMedicale Category = "consultationMedicale"
	CategoryForceMajeure         Category = "forceMajeure"
	CategoryCongesReglementaires Category = "congesReglementaires"
	CategoryCreditHeures         Category = "creditHeures"
	// CategoryMaladie is informational: sickness has no quota and never
	// offsets another category.
	CategoryMaladie Category = "maladie"
)

// Motif labels used by the prestation form. Free text is allowed for
// anything not listed; unknown motifs map to CategoryNone.
const (
	MotifPresence             = "Présence"
	MotifTeletravail          = "Télétravail"
	MotifCongeVA              = "Congé VA"
	MotifCongeCH              = "Congé CH"
	MotifConsultationMedicale = "Consultation médicale"
	MotifForceMajeure         = "Force majeure"
	MotifMaladie              = "Maladie"
	MotifMaladieCertificat    = "Maladie (certificat)"
	MotifJourSansCertificat   = "1 jour sans certificat"
	MotifJourFerie            = "Jour férié"
	MotifFormation            = "Formation"
	MotifReunionExterne       = "Réunion externe"
	MotifHeuresSupp           = "Heures supp"
)

// CategoryOf maps a motif label to its leave category. Exact matches except
// for the regulatory-leave rule, which matches any label containing
// "règlementaire".
//
// TODO: confirm the canonical "congé règlementaire" label and replace the
// substring rule with an exact match.
func CategoryOf(motif string) Category {
	switch motif {
	case MotifCongeVA:
		return CategoryVacancesAnnuelles
	case MotifConsultationMedicale:
		return CategoryConsultationMedicale
	case MotifForceMajeure:
		return CategoryForceMajeure
	case MotifCongeCH:
		return CategoryCreditHeures
	case MotifMaladie, MotifMaladieCertificat:
		return CategoryMaladie
	}
	if strings.Contains(motif, "règlementaire") {
		return CategoryCongesReglementaires
	}
	return CategoryNone
}
