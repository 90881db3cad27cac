// Package seed loads the demo directory and camp catalog used for local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
	"github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

// SubjectPrefix prefixes the subject bound to every demo user, so that "seed|1" authenticates as user 1
// in dev auth mode.
const SubjectPrefix = "seed|"

// Result counts the records created by Load. Records that already existed are not counted.
type Result struct {
	Camps int
	Users int
}

// Load inserts the demo users and camps. It is idempotent: existing records are left untouched.
func Load(ctx context.Context, camps camprepo.Repository, users userrepo.Repository) (Result, error) {
	var res Result
	for _, u := range DemoUsers() {
		err := users.Create(ctx, u)
		switch {
		case err == nil:
			res.Users++
		case errors.Is(err, userrepo.ErrAlreadyExists), errors.Is(err, userrepo.ErrSubjectAlreadyBound):
		default:
			return res, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	for _, c := range DemoCamps() {
		err := camps.Create(ctx, c)
		switch {
		case err == nil:
			res.Camps++
		case errors.Is(err, camprepo.ErrAlreadyExists):
		default:
			return res, fmt.Errorf("seed camp %s: %w", c.ID, err)
		}
	}
	return res, nil
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func DemoCamps() []domain.Camp {
	return []domain.Camp{
		{
			ID:          "1",
			Name:        "Camp Happy New Year 2024",
			Description: "Celebrate the new year with outdoor activities and fun!",
			Location:    "Pine Forest Retreat",
			StartDate:   date(2024, 1, 1),
			EndDate:     date(2024, 1, 3),
			ImageURL:    "https://images.unsplash.com/photo-1496080174650-637e3f22fa03?auto=format&fit=crop&w=1000&q=80",
			Days: []domain.CampDay{
				{ID: "d1", DayNumber: 1, Date: date(2024, 1, 1), Activities: []string{"Welcome Breakfast", "Campfire Games"}},
				{ID: "d2", DayNumber: 2, Date: date(2024, 1, 2), Activities: []string{"Sunrise Hike", "Swimming"}},
				{ID: "d3", DayNumber: 3, Date: date(2024, 1, 3), Activities: []string{"Nature Walk", "Farewell Lunch"}},
			},
		},
		{
			ID:          "2",
			Name:        "Summer Adventure Camp",
			Description: "Explore nature and learn outdoor survival skills",
			Location:    "Mountain Valley",
			StartDate:   date(2024, 6, 15),
			EndDate:     date(2024, 6, 17),
			ImageURL:    "https://images.unsplash.com/photo-1504280390367-361c6d9f38f4?auto=format&fit=crop&w=1000&q=80",
			Days: []domain.CampDay{
				{ID: "d4", DayNumber: 1, Date: date(2024, 6, 15), Activities: []string{"Campfire Games", "Night Sky Observation"}},
				{ID: "d5", DayNumber: 2, Date: date(2024, 6, 16), Activities: []string{"Arts and Crafts", "Swimming"}},
				{ID: "d6", DayNumber: 3, Date: date(2024, 6, 17), Activities: []string{"Nature Hike", "Survival Skills Workshop"}},
			},
		},
	}
}

func DemoUsers() []domain.User {
	created := date(2024, 1, 1)
	user := func(id, first, last, nick, email string, role domain.Role, joined time.Time) domain.User {
		return domain.User{
			ID:        domain.UserID(id),
			Subject:   domain.SubjectID(SubjectPrefix + id),
			Firstname: first,
			Surname:   last,
			Nickname:  nick,
			Email:     email,
			Role:      role,
			JoinedAt:  joined,
			CreatedAt: created,
			UpdatedAt: created,
		}
	}

	jane := user("1", "Jane", "Cooper", "J", "jane@example.com", domain.RoleAdmin, date(2022, 1, 1))
	jane.Phone = "+1-202-555-0156"
	jane.Region = ptr(domain.RegionBangkok)
	jane.LineID = ptr("jane_cooper")
	jane.Title = ptr("Regional Paradigm Technician")
	jane.Bio = ptr("Strategic regional paradigm")

	john := user("2", "John", "Smith", "Johnny", "john@example.com", domain.RoleJoiner, date(2023, 6, 15))
	john.Phone = "+1-303-555-0187"
	john.Region = ptr(domain.RegionEast)
	john.LineID = ptr("johnny_s")
	john.Title = ptr("Outdoor Enthusiast")
	john.Bio = ptr("Love camping and hiking")

	frame := user("5", "เขมิกา", "รัตน์แสง", "เฟรม", "frame@example.com", domain.RoleJoiner, date(2023, 1, 1))
	frame.Phone = "0641674440"
	frame.Region = ptr(domain.RegionEast)
	frame.LineID = ptr("0641674440")
	frame.Title = ptr("Camp Participant")
	frame.Bio = ptr("Active camp member")

	return []domain.User{
		jane,
		john,
		user("3", "Emily", "Davis", "", "emily@example.com", domain.RoleJoiner, created),
		user("4", "Michael", "Brown", "", "michael@example.com", domain.RoleJoiner, created),
		frame,
	}
}
