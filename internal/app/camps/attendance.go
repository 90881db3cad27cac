package camps

import (
	"math"

	"github.com/campflow/camp-registration-api/internal/domain"
)

// ComputeAttendance derives availability counts for reg against camp.
// Percentage is 0 when the camp has no days.
func ComputeAttendance(camp domain.Camp, reg domain.Registration) domain.Attendance {
	available := reg.AvailableDays()
	total := len(camp.Days)
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(available) / float64(total) * 100))
	}
	return domain.Attendance{
		Registration:  reg,
		AvailableDays: available,
		TotalDays:     total,
		Percentage:    pct,
	}
}

// CanEditCamp reports whether caller may change camp: admins only, and only when the camp
// has no owner or is owned by the caller.
func CanEditCamp(caller domain.User, camp domain.Camp) bool {
	if !caller.Role.Allows(domain.RoleAdmin) {
		return false
	}
	return camp.OwnerID == "" || camp.OwnerID == caller.ID
}
