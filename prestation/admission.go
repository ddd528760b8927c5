package prestation

import "time"

// NoCertificateCap is the hard annual limit on "1 jour sans certificat"
// entries per gestionnaire.
const NoCertificateCap = 3

// CheckNoCertificate validates a new no-certificate day against the
// gestionnaire's existing entries of the same motif for that year. existing
// must be the complete set of such dates, fetched by the caller; for the
// check to hold under concurrent submissions the caller runs it inside the
// same transaction that inserts the entry, with the existing rows locked.
//
// Returns *QuotaExceededError once the cap is reached and *AdjacencyError
// when an existing day sits immediately before or after the requested date.
func CheckNoCertificate(date time.Time, existing []time.Time) error {
	year := date.UTC().Year()

	count := 0
	for _, d := range existing {
		if !InYear(d, year) {
			continue
		}
		count++
		if adjacentDays(date, d) {
			return &AdjacencyError{Motif: MotifJourSansCertificat, Date: date, Existing: d}
		}
	}

	if count >= NoCertificateCap {
		return &QuotaExceededError{Motif: MotifJourSansCertificat, Cap: NoCertificateCap, Year: year}
	}

	return nil
}

// adjacentDays reports whether two UTC calendar days are exactly one day
// apart.
func adjacentDays(a, b time.Time) bool {
	da := truncateDay(a)
	db := truncateDay(b)
	return da.AddDate(0, 0, 1).Equal(db) || db.AddDate(0, 0, 1).Equal(da)
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
