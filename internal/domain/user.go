package domain

import (
	"sort"
	"strings"
	"time"
)

// Role is a user's permission level. Roles form a strict hierarchy.
type Role string

const (
	RoleGuest  Role = "GUEST"
	RoleJoiner Role = "JOINER"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleJoiner:
		return 1
	case RoleGuest:
		return 0
	default:
		return -1
	}
}

// Allows reports whether r satisfies the required role.
func (r Role) Allows(required Role) bool {
	return r.rank() >= 0 && r.rank() >= required.rank()
}

func (r Role) Valid() bool { return r.rank() >= 0 }

// ParseRole accepts role names (case-insensitive) and the legacy numeric codes "0", "1", "2".
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN", "2":
		return RoleAdmin, true
	case "JOINER", "1":
		return RoleJoiner, true
	case "GUEST", "0":
		return RoleGuest, true
	}
	return "", false
}

// Region is the user's home region.
type Region string

const (
	RegionBangkok Region = "BKK"
	RegionEast    Region = "EAST"
	RegionCentral Region = "CEN"
	RegionPari    Region = "PARI"
)

func ParseRegion(s string) (Region, bool) {
	switch r := Region(strings.ToUpper(strings.TrimSpace(s))); r {
	case RegionBangkok, RegionEast, RegionCentral, RegionPari:
		return r, true
	}
	return "", false
}

// User is the domain representation of a user profile.
type User struct {
	ID      UserID
	Subject SubjectID

	Firstname string
	Surname   string
	Nickname  string
	Email     string
	Phone     string
	Role      Role
	Region    *Region

	LineID                   *string
	FoodAllergy              *string
	PersonalMedicalCondition *string
	Bio                      *string
	Title                    *string

	JoinedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName prefers the nickname, then the full name.
func (u User) DisplayName() string {
	if n := NormalizeHumanName(u.Nickname); n != "" {
		return n
	}
	return NormalizeHumanName(u.Firstname + " " + u.Surname)
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, DisplayName: u.DisplayName(), Role: u.Role, Region: u.Region}
}

// UserSummary is the public subset of a user shown next to registrations.
type UserSummary struct {
	ID          UserID
	DisplayName string
	Role        Role
	Region      *Region
}

// CloneUser deep-copies the optional profile fields of u.
func CloneUser(u User) User {
	out := u
	out.Region = clonePtr(u.Region)
	out.LineID = clonePtr(u.LineID)
	out.FoodAllergy = clonePtr(u.FoodAllergy)
	out.PersonalMedicalCondition = clonePtr(u.PersonalMedicalCondition)
	out.Bio = clonePtr(u.Bio)
	out.Title = clonePtr(u.Title)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SortUsersByDisplayName orders users by case-insensitive display name, ties broken by ID.
func SortUsersByDisplayName(us []User) {
	sort.Slice(us, func(i, j int) bool {
		di := strings.ToLower(us[i].DisplayName())
		dj := strings.ToLower(us[j].DisplayName())
		if di == dj {
			return string(us[i].ID) < string(us[j].ID)
		}
		return di < dj
	})
}
