package prestation

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a clock time within a single day, stored as minutes since
// midnight. Prestations never span midnight, so this is all the precision
// the engine needs.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("heure invalide %q: format attendu HH:MM", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("heure invalide %q: format attendu HH:MM", s)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("heure invalide %q: format attendu HH:MM", s)
	}

	return TimeOfDay(hours*60 + minutes), nil
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// FormatMinutes renders a minute count as "HH:MM", with a leading minus sign
// for negative values (overdrafted balances are displayable).
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}
