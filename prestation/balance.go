package prestation

import "time"

// Quota is a gestionnaire's annual allotment per leave category, in minutes.
// HeuresSupplementaires is an informational overtime stock with no matching
// consumption bucket.
type Quota struct {
	VacancesAnnuelles     int `json:"vacancesAnnuelles"`
	ConsultationMedicale  int `json:"consultationMedicale"`
	ForceMajeure          int `json:"forceMajeure"`
	CongesReglementaires  int `json:"congesReglementaires"`
	CreditHeures          int `json:"creditHeures"`
	HeuresSupplementaires int `json:"heuresSupplementaires"`
}

// Consumed holds per-category minute sums for one year. Maladie is tracked
// for display but has no quota.
type Consumed struct {
	VacancesAnnuelles    int `json:"vacancesAnnuelles"`
	ConsultationMedicale int `json:"consultationMedicale"`
	ForceMajeure         int `json:"forceMajeure"`
	CongesReglementaires int `json:"congesReglementaires"`
	CreditHeures         int `json:"creditHeures"`
	Maladie              int `json:"maladie"`
}

// Remaining is quota minus consumed per category. Values may be negative:
// an overdraft is displayable, not an error.
type Remaining struct {
	VacancesAnnuelles    int `json:"vacancesAnnuelles"`
	ConsultationMedicale int `json:"consultationMedicale"`
	ForceMajeure         int `json:"forceMajeure"`
	CongesReglementaires int `json:"congesReglementaires"`
	CreditHeures         int `json:"creditHeures"`
}

// Balance is the computed view for one (gestionnaire, year).
type Balance struct {
	Quotas   Quota     `json:"quotas"`
	Consomme Consumed  `json:"consomme"`
	Restant  Remaining `json:"restant"`
}

// Entry is the slice of a prestation the reconciliation cares about.
type Entry struct {
	Date       time.Time
	Motif      string
	NetMinutes int
}

// YearWindow returns the inclusive-start, exclusive-end UTC bounds of a
// calendar year. Used uniformly for reconciliation and admission queries.
func YearWindow(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// InYear reports whether a date falls within the UTC calendar year.
func InYear(date time.Time, year int) bool {
	start, end := YearWindow(year)
	d := date.UTC()
	return !d.Before(start) && d.Before(end)
}

// ComputeBalance reconciles a year's entries against the annual quota.
// Entries outside the year window are ignored; entries whose motif maps to
// no category contribute to no bucket. Callers with no stored quota pass the
// zero Quota, making each remaining value simply -consumed.
//
// Read-only and deterministic.
func ComputeBalance(year int, quota Quota, entries []Entry) Balance {
	var consumed Consumed
	for _, entry := range entries {
		if !InYear(entry.Date, year) {
			continue
		}
		switch CategoryOf(entry.Motif) {
		case CategoryVacancesAnnuelles:
			consumed.VacancesAnnuelles += entry.NetMinutes
		case CategoryConsultationMedicale:
			consumed.ConsultationMedicale += entry.NetMinutes
		case CategoryForceMajeure:
			consumed.ForceMajeure += entry.NetMinutes
		case CategoryCongesReglementaires:
			consumed.CongesReglementaires += entry.NetMinutes
		case CategoryCreditHeures:
			consumed.CreditHeures += entry.NetMinutes
		case CategoryMaladie:
			consumed.Maladie += entry.NetMinutes
		}
	}

	return Balance{
		Quotas:   quota,
		Consomme: consumed,
		Restant: Remaining{
			VacancesAnnuelles:    quota.VacancesAnnuelles - consumed.VacancesAnnuelles,
			ConsultationMedicale: quota.ConsultationMedicale - consumed.ConsultationMedicale,
			ForceMajeure:         quota.ForceMajeure - consumed.ForceMajeure,
			CongesReglementaires: quota.CongesReglementaires - consumed.CongesReglementaires,
			CreditHeures:         quota.CreditHeures - consumed.CreditHeures,
		},
	}
}
