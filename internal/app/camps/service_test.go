package camps

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	memcamprepo "github.com/campflow/camp-registration-api/internal/adapters/memory/camprepo"
	memclock "github.com/campflow/camp-registration-api/internal/adapters/memory/clock"
	memregistrationrepo "github.com/campflow/camp-registration-api/internal/adapters/memory/registrationrepo"
	memuserrepo "github.com/campflow/camp-registration-api/internal/adapters/memory/userrepo"
	"github.com/campflow/camp-registration-api/internal/domain"
)

type testDeps struct {
	svc   *Service
	users *memuserrepo.Repo
	regs  *memregistrationrepo.Repo
	clk   *memclock.ManualClock
}

func newTestService(t *testing.T) testDeps {
	t.Helper()

	users := memuserrepo.NewRepo()
	regs := memregistrationrepo.NewRepo()
	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(memcamprepo.NewRepo(), regs, users, clk)

	var campN, dayN, regN atomic.Int64
	svc.SetIDGeneratorsForTest(
		func() domain.CampID { return domain.CampID(fmt.Sprintf("c%d", campN.Add(1))) },
		func() domain.CampDayID { return domain.CampDayID(fmt.Sprintf("g%d", dayN.Add(1))) },
		func() domain.RegistrationID { return domain.RegistrationID(fmt.Sprintf("r%d", regN.Add(1))) },
	)
	return testDeps{svc: svc, users: users, regs: regs, clk: clk}
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// newYearCamp creates a three-day camp with day ids d1, d2, d3.
func newYearCamp(t *testing.T, svc *Service) domain.Camp {
	t.Helper()

	c, err := svc.CreateCamp(context.Background(), "admin-1", CreateCampInput{
		Name:        "Camp Happy New Year 2024",
		Description: "A festive retreat",
		Location:    "Pine Forest Retreat",
		StartDate:   day(2024, 1, 1),
		EndDate:     day(2024, 1, 3),
		Days: []DayInput{
			{ID: "d1", Date: day(2024, 1, 1), Activities: []string{"Check-in", "Campfire"}},
			{ID: "d2", Date: day(2024, 1, 2), Activities: []string{"Hiking"}},
			{ID: "d3", Date: day(2024, 1, 3), Activities: []string{"Checkout"}},
		},
	})
	if err != nil {
		t.Fatalf("CreateCamp err=%v", err)
	}
	return c
}

func requireAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != status || ae.Code != code {
		t.Fatalf("err=%v (type=%T), want %s %d", err, err, code, status)
	}
}

func TestService_CreateCamp_NormalizesAndDefaultsOwner(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	c, err := d.svc.CreateCamp(context.Background(), "admin-1", CreateCampInput{
		Name:      "  Summer   Adventure Camp ",
		StartDate: time.Date(2024, 6, 15, 18, 30, 0, 0, time.FixedZone("ICT", 7*3600)),
		EndDate:   day(2024, 6, 17),
		Days: []DayInput{
			{Date: day(2024, 6, 15)},
			{Date: day(2024, 6, 16)},
		},
	})
	if err != nil {
		t.Fatalf("CreateCamp err=%v", err)
	}
	if c.ID != "c1" || c.Name != "Summer Adventure Camp" || c.OwnerID != "admin-1" {
		t.Fatalf("camp=%+v", c)
	}
	if !c.StartDate.Equal(day(2024, 6, 15)) {
		t.Fatalf("startDate=%v", c.StartDate)
	}
	if len(c.Days) != 2 || c.Days[0].ID != "g1" || c.Days[1].DayNumber != 2 {
		t.Fatalf("days=%+v", c.Days)
	}
}

func TestService_CreateCamp_Validation(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()

	cases := map[string]CreateCampInput{
		"blank name":    {Name: "  ", StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 2)},
		"missing start": {Name: "x", EndDate: day(2024, 1, 2)},
		"end before":    {Name: "x", StartDate: day(2024, 1, 2), EndDate: day(2024, 1, 1)},
		"day no date":   {Name: "x", StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 2), Days: []DayInput{{}}},
		"dup day id": {Name: "x", StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 2), Days: []DayInput{
			{ID: "a", Date: day(2024, 1, 1)}, {ID: "a", Date: day(2024, 1, 2)},
		}},
	}
	for name, in := range cases {
		if _, err := d.svc.CreateCamp(ctx, "admin-1", in); err == nil {
			t.Fatalf("%s: expected error", name)
		} else {
			requireAppError(t, err, 422, CodeValidation)
		}
	}
	all, err := d.svc.ListCamps(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("ListCamps len=%d err=%v", len(all), err)
	}
}

// Registering, re-registering, editing and deleting a camp end to end.
func TestService_RegistrationLifecycle(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()
	c := newYearCamp(t, d.svc)

	reg, err := d.svc.RegisterForCamp(ctx, "1", c.ID, map[domain.CampDayID]bool{"d1": true, "d2": true, "d3": false})
	if err != nil {
		t.Fatalf("RegisterForCamp err=%v", err)
	}
	if !reg.RegistrationDate.Equal(d.clk.Now()) {
		t.Fatalf("registrationDate=%v", reg.RegistrationDate)
	}

	parts, found, err := d.svc.CampParticipants(ctx, c.ID)
	if err != nil || !found || len(parts) != 1 {
		t.Fatalf("CampParticipants len=%d found=%v err=%v", len(parts), found, err)
	}
	if parts[0].Percentage != 67 || parts[0].AvailableDays != 2 || parts[0].TotalDays != 3 {
		t.Fatalf("attendance=%+v", parts[0])
	}

	_, err = d.svc.RegisterForCamp(ctx, "1", c.ID, map[domain.CampDayID]bool{"d1": false})
	requireAppError(t, err, 409, CodeAlreadyRegistered)

	got, found, err := d.svc.GetRegistrationByCampAndUser(ctx, c.ID, "1")
	if err != nil || !found {
		t.Fatalf("GetRegistrationByCampAndUser found=%v err=%v", found, err)
	}
	if !got.DayAvailability["d1"] || len(got.DayAvailability) != 3 {
		t.Fatalf("registration mutated by rejected attempt: %+v", got.DayAvailability)
	}

	updated, found, err := d.svc.UpdateRegistration(ctx, reg.ID, map[domain.CampDayID]bool{"d1": true, "d2": true, "d3": true})
	if err != nil || !found {
		t.Fatalf("UpdateRegistration found=%v err=%v", found, err)
	}
	if a := ComputeAttendance(c, updated); a.Percentage != 100 {
		t.Fatalf("percentage=%d", a.Percentage)
	}

	found, err = d.svc.DeleteCamp(ctx, c.ID)
	if err != nil || !found {
		t.Fatalf("DeleteCamp found=%v err=%v", found, err)
	}
	mine, err := d.svc.ListUserRegistrations(ctx, "1")
	if err != nil || len(mine) != 0 {
		t.Fatalf("ListUserRegistrations len=%d err=%v", len(mine), err)
	}
}

func TestService_RegisterForCamp_UnknownCampAndDays(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()
	c := newYearCamp(t, d.svc)

	_, err := d.svc.RegisterForCamp(ctx, "1", "missing", nil)
	requireAppError(t, err, 404, CodeCampNotFound)

	_, err = d.svc.RegisterForCamp(ctx, "1", c.ID, map[domain.CampDayID]bool{"d1": true, "zz": true})
	requireAppError(t, err, 422, CodeValidation)

	all, _ := d.svc.ListRegistrations(ctx)
	if len(all) != 0 {
		t.Fatalf("registrations=%d", len(all))
	}
}

func TestService_RegisterForCamp_ConcurrentSamePair(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()
	c := newYearCamp(t, d.svc)

	var wins, dupes atomic.Int64
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := d.svc.RegisterForCamp(ctx, "1", c.ID, map[domain.CampDayID]bool{"d1": true})
			ae := (*Error)(nil)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.As(err, &ae) && ae.Code == CodeAlreadyRegistered:
				dupes.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected err=%v", err)
	}
	if wins.Load() != 1 || dupes.Load() != 15 {
		t.Fatalf("wins=%d dupes=%d", wins.Load(), dupes.Load())
	}
}

func TestService_RemoveDay_RenumbersAndPrunesAvailability(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()
	c := newYearCamp(t, d.svc)

	reg, err := d.svc.RegisterForCamp(ctx, "1", c.ID, map[domain.CampDayID]bool{"d1": true, "d2": true, "d3": false})
	if err != nil {
		t.Fatalf("RegisterForCamp err=%v", err)
	}

	got, found, err := d.svc.RemoveDay(ctx, c.ID, "d2")
	if err != nil || !found {
		t.Fatalf("RemoveDay found=%v err=%v", found, err)
	}
	if len(got.Days) != 2 || got.Days[0].ID != "d1" || got.Days[1].ID != "d3" || got.Days[1].DayNumber != 2 {
		t.Fatalf("days=%+v", got.Days)
	}

	after, _, err := d.svc.GetRegistration(ctx, reg.ID)
	if err != nil {
		t.Fatalf("GetRegistration err=%v", err)
	}
	if _, ok := after.DayAvailability["d2"]; ok || len(after.DayAvailability) != 2 {
		t.Fatalf("availability=%+v", after.DayAvailability)
	}

	_, _, err = d.svc.RemoveDay(ctx, c.ID, "d2")
	requireAppError(t, err, 404, CodeDayNotFound)

	_, found, err = d.svc.RemoveDay(ctx, "missing", "d1")
	if err != nil || found {
		t.Fatalf("RemoveDay(missing camp) found=%v err=%v", found, err)
	}
}

func TestService_AddDayAndActivities(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()
	c := newYearCamp(t, d.svc)

	got, _, err := d.svc.AddDay(ctx, c.ID, DayInput{Date: day(2024, 1, 4)})
	if err != nil {
		t.Fatalf("AddDay err=%v", err)
	}
	last := got.Days[len(got.Days)-1]
	if last.DayNumber != 4 || len(last.Activities) != 1 || last.Activities[0] != "" {
		t.Fatalf("last=%+v", last)
	}

	_, _, err = d.svc.AddDay(ctx, c.ID, DayInput{ID: "d1", Date: day(2024, 1, 5)})
	requireAppError(t, err, 422, CodeValidation)

	got, _, err = d.svc.AddActivity(ctx, c.ID, "d2", "  Kayaking ")
	if err != nil {
		t.Fatalf("AddActivity err=%v", err)
	}
	if acts := got.Days[1].Activities; len(acts) != 2 || acts[1] != "Kayaking" {
		t.Fatalf("activities=%v", acts)
	}

	got, _, err = d.svc.RemoveActivity(ctx, c.ID, "d2", 0)
	if err != nil {
		t.Fatalf("RemoveActivity err=%v", err)
	}
	if acts := got.Days[1].Activities; len(acts) != 1 || acts[0] != "Kayaking" {
		t.Fatalf("activities=%v", acts)
	}

	_, _, err = d.svc.RemoveActivity(ctx, c.ID, "d2", 5)
	requireAppError(t, err, 422, CodeValidation)
}

func TestService_UpdateCamp_ReplacesDaysAndPrunes(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()
	c := newYearCamp(t, d.svc)

	reg, err := d.svc.RegisterForCamp(ctx, "1", c.ID, map[domain.CampDayID]bool{"d1": true, "d3": true})
	if err != nil {
		t.Fatalf("RegisterForCamp err=%v", err)
	}

	got, found, err := d.svc.UpdateCamp(ctx, c.ID, UpdateCampInput{
		Location: Null[string](),
		Days: Some([]DayInput{
			{ID: "d3", Date: day(2024, 1, 3)},
			{ID: "d1", Date: day(2024, 1, 1)},
		}),
	})
	if err != nil || !found {
		t.Fatalf("UpdateCamp found=%v err=%v", found, err)
	}
	if got.Location != "" || got.Name != c.Name {
		t.Fatalf("camp=%+v", got)
	}
	if got.Days[0].ID != "d3" || got.Days[0].DayNumber != 1 || got.Days[1].DayNumber != 2 {
		t.Fatalf("days=%+v", got.Days)
	}

	after, _, _ := d.svc.GetRegistration(ctx, reg.ID)
	if len(after.DayAvailability) != 2 {
		t.Fatalf("availability=%+v", after.DayAvailability)
	}

	_, _, err = d.svc.UpdateCamp(ctx, c.ID, UpdateCampInput{Name: Null[string]()})
	requireAppError(t, err, 422, CodeValidation)

	_, _, err = d.svc.UpdateCamp(ctx, c.ID, UpdateCampInput{EndDate: Some(day(2023, 12, 1))})
	requireAppError(t, err, 422, CodeValidation)

	_, found, err = d.svc.UpdateCamp(ctx, "missing", UpdateCampInput{})
	if err != nil || found {
		t.Fatalf("UpdateCamp(missing) found=%v err=%v", found, err)
	}
}

func TestService_SearchCamps_CaseInsensitive(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()
	newYearCamp(t, d.svc)
	if _, err := d.svc.CreateCamp(ctx, "admin-1", CreateCampInput{
		Name:      "Summer Adventure Camp",
		Location:  "Mountain Valley",
		StartDate: day(2024, 6, 15),
		EndDate:   day(2024, 6, 17),
	}); err != nil {
		t.Fatalf("CreateCamp err=%v", err)
	}

	for term, want := range map[string]int{"": 2, "   ": 2, "CAMP": 2, "pine": 1, "VALLEY": 1, "festive": 1, "nowhere": 0} {
		got, err := d.svc.SearchCamps(ctx, term)
		if err != nil {
			t.Fatalf("SearchCamps(%q) err=%v", term, err)
		}
		if len(got) != want {
			t.Fatalf("SearchCamps(%q) len=%d want %d", term, len(got), want)
		}
	}
}

func TestService_CampParticipants_JoinsUsers(t *testing.T) {
	t.Parallel()

	d := newTestService(t)
	ctx := context.Background()
	c := newYearCamp(t, d.svc)

	if err := d.users.Create(ctx, domain.User{ID: "1", Firstname: "Jane", Surname: "Cooper", Role: domain.RoleJoiner}); err != nil {
		t.Fatalf("users.Create err=%v", err)
	}
	if _, err := d.svc.RegisterForCamp(ctx, "1", c.ID, map[domain.CampDayID]bool{"d1": true}); err != nil {
		t.Fatalf("RegisterForCamp err=%v", err)
	}
	if _, err := d.svc.RegisterForCamp(ctx, "ghost", c.ID, nil); err != nil {
		t.Fatalf("RegisterForCamp err=%v", err)
	}

	parts, _, err := d.svc.CampParticipants(ctx, c.ID)
	if err != nil || len(parts) != 2 {
		t.Fatalf("CampParticipants len=%d err=%v", len(parts), err)
	}
	if parts[0].User.DisplayName != "Jane Cooper" || parts[0].Percentage != 33 {
		t.Fatalf("first=%+v", parts[0])
	}
	if parts[1].User.DisplayName != "ghost" || parts[1].User.Role != domain.RoleGuest || parts[1].Percentage != 0 {
		t.Fatalf("second=%+v", parts[1])
	}

	_, found, err := d.svc.CampParticipants(ctx, "missing")
	if err != nil || found {
		t.Fatalf("CampParticipants(missing) found=%v err=%v", found, err)
	}
}
