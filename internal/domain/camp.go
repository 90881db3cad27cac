package domain

import "time"

// CampDay is one scheduled day of a camp.
type CampDay struct {
	ID CampDayID
	// DayNumber is the 1-based position of the day within Camp.Days.
	DayNumber  int
	Date       time.Time
	Activities []string
}

// Camp is the domain representation of a camp and its day-by-day schedule.
type Camp struct {
	ID          CampID
	Name        string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
	ImageURL    string

	// Days is ordered by DayNumber ascending.
	Days []CampDay

	// OwnerID is the admin that created the camp. Empty means any admin may edit it.
	OwnerID UserID
}

// RenumberDays rewrites DayNumber so that Days[i].DayNumber == i+1.
func (c *Camp) RenumberDays() {
	for i := range c.Days {
		c.Days[i].DayNumber = i + 1
	}
}

// DayIndex returns the position of the day with the given id, or -1.
func (c Camp) DayIndex(id CampDayID) int {
	for i, d := range c.Days {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (c Camp) HasDay(id CampDayID) bool { return c.DayIndex(id) >= 0 }

// DayIDs returns the set of day ids currently on the camp.
func (c Camp) DayIDs() map[CampDayID]struct{} {
	out := make(map[CampDayID]struct{}, len(c.Days))
	for _, d := range c.Days {
		out[d.ID] = struct{}{}
	}
	return out
}

// Clone returns a deep copy of c.
func (c Camp) Clone() Camp {
	out := c
	if c.Days != nil {
		out.Days = make([]CampDay, len(c.Days))
		for i, d := range c.Days {
			out.Days[i] = d.Clone()
		}
	}
	return out
}

func (d CampDay) Clone() CampDay {
	out := d
	if d.Activities != nil {
		out.Activities = append([]string(nil), d.Activities...)
	}
	return out
}
