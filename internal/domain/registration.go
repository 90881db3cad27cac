package domain

import "time"

// Registration records one user's per-day availability for one camp.
// At most one registration exists per (UserID, CampID).
type Registration struct {
	ID     RegistrationID
	UserID UserID
	CampID CampID

	// DayAvailability maps CampDay ids to availability. Absent keys mean unknown.
	DayAvailability map[CampDayID]bool

	RegistrationDate time.Time
}

// AvailableDays counts the days marked available.
func (r Registration) AvailableDays() int {
	n := 0
	for _, ok := range r.DayAvailability {
		if ok {
			n++
		}
	}
	return n
}

func (r Registration) Clone() Registration {
	out := r
	out.DayAvailability = CloneAvailability(r.DayAvailability)
	return out
}

func CloneAvailability(m map[CampDayID]bool) map[CampDayID]bool {
	if m == nil {
		return nil
	}
	out := make(map[CampDayID]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Attendance is a derived, read-only view of a registration against its camp.
type Attendance struct {
	Registration  Registration
	User          UserSummary
	AvailableDays int
	TotalDays     int
	// Percentage is in [0, 100], rounded to the nearest integer.
	Percentage int
}
