package prestation

// Business rules for the timesheet module:
//   - Standard day = 7h30 (450 minutes), configurable per gestionnaire.
//   - Bonis = any net time beyond the standard day.
//   - A shift counts as overtime when it ends at or after 19:00.

const (
	// StandardDayMinutes is the default standard shift length (7h30).
	StandardDayMinutes = 450

	// MinBreakMinutes is the mandatory minimum break. The engine does not
	// floor its input; callers apply FloorBreak when admitting a shift or
	// saving a schedule.
	MinBreakMinutes = 30

	// OvertimeCutoff is the evening clock time at or after which a shift
	// end marks the whole shift as overtime.
	OvertimeCutoff = TimeOfDay(19 * 60)
)

// Breakdown is the derived view of one shift.
type Breakdown struct {
	// TotalMinutes is the net worked time: raw span minus break, never
	// negative.
	TotalMinutes int
	// BonusMinutes is net time beyond the standard day.
	BonusMinutes int
	// OvertimeMinutes is the span worked at or after the cutoff,
	// informational only.
	OvertimeMinutes int
	// Overtime is true when the shift ends at or after the cutoff,
	// regardless of duration.
	Overtime bool
}

// ComputeBreakdown derives net minutes, bonus and the overtime flag for a
// shift. standardDuration is the gestionnaire's configured standard day;
// pass StandardDayMinutes when no personal schedule exists. Returns
// ErrInvalidRange unless end is strictly after start.
//
// Pure and deterministic: recomputing an unchanged shift yields the same
// breakdown.
func ComputeBreakdown(start, end TimeOfDay, breakMinutes, standardDuration int) (Breakdown, error) {
	raw := end.Minutes() - start.Minutes()
	if raw <= 0 {
		return Breakdown{}, ErrInvalidRange
	}

	if standardDuration <= 0 {
		standardDuration = StandardDayMinutes
	}

	net := raw - breakMinutes
	if net < 0 {
		net = 0
	}

	bonus := net - standardDuration
	if bonus < 0 {
		bonus = 0
	}

	var overtimeMinutes int
	if end >= OvertimeCutoff {
		overtimeMinutes = end.Minutes() - max(start.Minutes(), OvertimeCutoff.Minutes())
	}

	return Breakdown{
		TotalMinutes:    net,
		BonusMinutes:    bonus,
		OvertimeMinutes: overtimeMinutes,
		Overtime:        end >= OvertimeCutoff,
	}, nil
}

// FloorBreak applies the mandatory 30-minute minimum to a configured or
// submitted break value.
func FloorBreak(breakMinutes int) int {
	if breakMinutes < MinBreakMinutes {
		return MinBreakMinutes
	}
	return breakMinutes
}
