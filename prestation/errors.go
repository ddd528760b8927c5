package prestation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a shift's end time is not after its start
// time. Detected before any computation.
var ErrInvalidRange = errors.New("l'heure de fin doit être après l'heure de début")

// QuotaExceededError is returned when an annual cap for a motif is already
// reached.
type QuotaExceededError struct {
	Motif string
	Cap   int
	Year  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota atteint pour %q: maximum %d par an (%d)", e.Motif, e.Cap, e.Year)
}

// AdjacencyError is returned when an entry of a no-consecutive-days motif
// would sit on the day immediately before or after an existing one.
type AdjacencyError struct {
	Motif    string
	Date     time.Time
	Existing time.Time
}

func (e *AdjacencyError) Error() string {
	return fmt.Sprintf("deux jours %q ne peuvent pas être consécutifs: %s est adjacent à %s",
		e.Motif, e.Date.Format("2006-01-02"), e.Existing.Format("2006-01-02"))
}
