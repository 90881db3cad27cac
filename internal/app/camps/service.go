package camps

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/platform/idgen"
	"github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
	"github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
	"github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

// Service owns camps, their schedules, and registrations.
//
// Absence is reported through a found=false result rather than an error. Conflicts and
// validation failures are *Error values; anything else is an infrastructure error.
type Service struct {
	camps camprepo.Repository
	regs  registrationrepo.Repository
	users userrepo.Repository
	clk   clockport.Clock

	// campLocks serializes read-modify-write sequences per camp, including registration
	// check-then-create and availability validation against the camp's days.
	campLocks *keyedMutex

	newCampID         func() domain.CampID
	newDayID          func() domain.CampDayID
	newRegistrationID func() domain.RegistrationID
}

func NewService(campsRepo camprepo.Repository, regsRepo registrationrepo.Repository, usersRepo userrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		camps:             campsRepo,
		regs:              regsRepo,
		users:             usersRepo,
		clk:               clk,
		campLocks:         newKeyedMutex(),
		newCampID:         idgen.CampID,
		newDayID:          idgen.CampDayID,
		newRegistrationID: idgen.RegistrationID,
	}
}

// SetIDGeneratorsForTest overrides ID generation for deterministic tests. Nil arguments are ignored.
// It should not be used in production code.
func (s *Service) SetIDGeneratorsForTest(camp func() domain.CampID, day func() domain.CampDayID, reg func() domain.RegistrationID) {
	if camp != nil {
		s.newCampID = camp
	}
	if day != nil {
		s.newDayID = day
	}
	if reg != nil {
		s.newRegistrationID = reg
	}
}

func (s *Service) ListCamps(ctx context.Context) ([]domain.Camp, error) {
	return s.camps.List(ctx)
}

func (s *Service) GetCamp(ctx context.Context, id domain.CampID) (domain.Camp, bool, error) {
	c, err := s.camps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, camprepo.ErrNotFound) {
			return domain.Camp{}, false, nil
		}
		return domain.Camp{}, false, err
	}
	return c, true, nil
}

// SearchCamps matches term as a case-folded substring of name, description, or location.
// A blank term returns every camp.
func (s *Service) SearchCamps(ctx context.Context, term string) ([]domain.Camp, error) {
	all, err := s.camps.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.TrimSpace(term)
	if q == "" {
		return all, nil
	}

	fold := cases.Fold()
	needle := fold.String(q)
	out := make([]domain.Camp, 0)
	for _, c := range all {
		if strings.Contains(fold.String(c.Name), needle) ||
			strings.Contains(fold.String(c.Description), needle) ||
			strings.Contains(fold.String(c.Location), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) CreateCamp(ctx context.Context, caller domain.UserID, in CreateCampInput) (domain.Camp, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.Camp{}, validationError("name", "must be non-empty")
	}
	start, end := domain.DateOnly(in.StartDate), domain.DateOnly(in.EndDate)
	if err := validateDateRange(start, end); err != nil {
		return domain.Camp{}, err
	}
	days, err := s.buildDays(in.Days)
	if err != nil {
		return domain.Camp{}, err
	}

	owner := in.OwnerID
	if owner == "" {
		owner = caller
	}
	c := domain.Camp{
		ID:          s.newCampID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		StartDate:   start,
		EndDate:     end,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Days:        days,
		OwnerID:     owner,
	}
	if err := s.camps.Create(ctx, c); err != nil {
		if errors.Is(err, camprepo.ErrAlreadyExists) {
			return domain.Camp{}, &Error{Status: 409, Code: CodeCampIDTaken, Message: "camp id conflict"}
		}
		return domain.Camp{}, err
	}
	return c, nil
}

func (s *Service) UpdateCamp(ctx context.Context, id domain.CampID, in UpdateCampInput) (domain.Camp, bool, error) {
	unlock := s.campLocks.Lock(string(id))
	defer unlock()

	c, err := s.camps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, camprepo.ErrNotFound) {
			return domain.Camp{}, false, nil
		}
		return domain.Camp{}, false, err
	}

	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return domain.Camp{}, true, validationError("name", "cannot be null")
		}
		name := domain.NormalizeHumanName(in.Name.Value())
		if name == "" {
			return domain.Camp{}, true, validationError("name", "must be non-empty")
		}
		c.Name = name
	}

	applyString := func(dst *string, o Optional[string]) {
		if !o.IsSpecified() {
			return
		}
		if o.IsNull() {
			*dst = ""
			return
		}
		*dst = strings.TrimSpace(o.Value())
	}
	applyString(&c.Description, in.Description)
	applyString(&c.Location, in.Location)
	applyString(&c.ImageURL, in.ImageURL)

	if in.StartDate.IsSpecified() {
		if in.StartDate.IsNull() {
			return domain.Camp{}, true, validationError("startDate", "cannot be null")
		}
		c.StartDate = domain.DateOnly(in.StartDate.Value())
	}
	if in.EndDate.IsSpecified() {
		if in.EndDate.IsNull() {
			return domain.Camp{}, true, validationError("endDate", "cannot be null")
		}
		c.EndDate = domain.DateOnly(in.EndDate.Value())
	}
	if err := validateDateRange(c.StartDate, c.EndDate); err != nil {
		return domain.Camp{}, true, err
	}

	droppedDays := false
	if in.Days.IsSpecified() {
		next := []domain.CampDay{}
		if !in.Days.IsNull() {
			next, err = s.buildDays(in.Days.Value())
			if err != nil {
				return domain.Camp{}, true, err
			}
		}
		kept := make(map[domain.CampDayID]struct{}, len(next))
		for _, d := range next {
			kept[d.ID] = struct{}{}
		}
		for _, d := range c.Days {
			if _, ok := kept[d.ID]; !ok {
				droppedDays = true
				break
			}
		}
		c.Days = next
	}

	if in.OwnerID.IsSpecified() {
		if in.OwnerID.IsNull() {
			c.OwnerID = ""
		} else {
			c.OwnerID = in.OwnerID.Value()
		}
	}

	if err := s.camps.Update(ctx, c); err != nil {
		if errors.Is(err, camprepo.ErrNotFound) {
			return domain.Camp{}, false, nil
		}
		return domain.Camp{}, false, err
	}
	if droppedDays {
		if err := s.pruneAvailability(ctx, c); err != nil {
			return c, true, err
		}
	}
	return c, true, nil
}

// DeleteCamp removes the camp and every registration that references it.
func (s *Service) DeleteCamp(ctx context.Context, id domain.CampID) (bool, error) {
	unlock := s.campLocks.Lock(string(id))
	defer unlock()

	found := true
	if err := s.camps.Delete(ctx, id); err != nil {
		if !errors.Is(err, camprepo.ErrNotFound) {
			return false, err
		}
		found = false
	}
	// Also sweeps registrations left behind by an earlier partially failed delete.
	if _, err := s.regs.DeleteByCamp(ctx, id); err != nil {
		return found, fmt.Errorf("delete registrations for camp %s: %w", id, err)
	}
	return found, nil
}

// AddDay appends a day to the camp's schedule. A day with no activities starts with one empty entry.
func (s *Service) AddDay(ctx context.Context, campID domain.CampID, in DayInput) (domain.Camp, bool, error) {
	return s.editCamp(ctx, campID, func(c *domain.Camp) error {
		if in.Date.IsZero() {
			return validationError("date", "is required")
		}
		id := in.ID
		if id == "" {
			id = s.newDayID()
		} else if c.HasDay(id) {
			return validationError("id", "already exists on this camp")
		}
		acts := append([]string(nil), in.Activities...)
		if len(acts) == 0 {
			acts = []string{""}
		}
		c.Days = append(c.Days, domain.CampDay{ID: id, Date: domain.DateOnly(in.Date), Activities: acts})
		c.RenumberDays()
		return nil
	})
}

// RemoveDay drops a day, renumbers the remaining days, and prunes availability for it.
func (s *Service) RemoveDay(ctx context.Context, campID domain.CampID, dayID domain.CampDayID) (domain.Camp, bool, error) {
	unlock := s.campLocks.Lock(string(campID))
	defer unlock()

	c, found, err := s.editCampLocked(ctx, campID, func(c *domain.Camp) error {
		i := c.DayIndex(dayID)
		if i < 0 {
			return dayNotFound()
		}
		c.Days = append(c.Days[:i:i], c.Days[i+1:]...)
		c.RenumberDays()
		return nil
	})
	if err != nil || !found {
		return c, found, err
	}
	if err := s.pruneAvailability(ctx, c); err != nil {
		return c, true, err
	}
	return c, true, nil
}

func (s *Service) AddActivity(ctx context.Context, campID domain.CampID, dayID domain.CampDayID, activity string) (domain.Camp, bool, error) {
	return s.editCamp(ctx, campID, func(c *domain.Camp) error {
		i := c.DayIndex(dayID)
		if i < 0 {
			return dayNotFound()
		}
		a := strings.TrimSpace(activity)
		if a == "" {
			return validationError("activity", "must be non-empty")
		}
		c.Days[i].Activities = append(c.Days[i].Activities, a)
		return nil
	})
}

func (s *Service) RemoveActivity(ctx context.Context, campID domain.CampID, dayID domain.CampDayID, index int) (domain.Camp, bool, error) {
	return s.editCamp(ctx, campID, func(c *domain.Camp) error {
		i := c.DayIndex(dayID)
		if i < 0 {
			return dayNotFound()
		}
		acts := c.Days[i].Activities
		if index < 0 || index >= len(acts) {
			return validationError("index", fmt.Sprintf("must be between 0 and %d", len(acts)-1))
		}
		c.Days[i].Activities = append(acts[:index:index], acts[index+1:]...)
		return nil
	})
}

func (s *Service) ListRegistrations(ctx context.Context) ([]domain.Registration, error) {
	return s.regs.List(ctx)
}

func (s *Service) ListUserRegistrations(ctx context.Context, userID domain.UserID) ([]domain.Registration, error) {
	return s.regs.ListByUser(ctx, userID)
}

func (s *Service) ListCampRegistrations(ctx context.Context, campID domain.CampID) ([]domain.Registration, error) {
	return s.regs.ListByCamp(ctx, campID)
}

func (s *Service) GetRegistration(ctx context.Context, id domain.RegistrationID) (domain.Registration, bool, error) {
	r, err := s.regs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, registrationrepo.ErrNotFound) {
			return domain.Registration{}, false, nil
		}
		return domain.Registration{}, false, err
	}
	return r, true, nil
}

func (s *Service) GetRegistrationByCampAndUser(ctx context.Context, campID domain.CampID, userID domain.UserID) (domain.Registration, bool, error) {
	r, err := s.regs.GetByCampAndUser(ctx, campID, userID)
	if err != nil {
		if errors.Is(err, registrationrepo.ErrNotFound) {
			return domain.Registration{}, false, nil
		}
		return domain.Registration{}, false, err
	}
	return r, true, nil
}

// RegisterForCamp creates the user's registration for the camp. A second registration for the
// same (user, camp) pair is rejected with ALREADY_REGISTERED and changes nothing.
func (s *Service) RegisterForCamp(ctx context.Context, userID domain.UserID, campID domain.CampID, availability map[domain.CampDayID]bool) (domain.Registration, error) {
	if userID == "" {
		return domain.Registration{}, validationError("userId", "must be non-empty")
	}

	unlock := s.campLocks.Lock(string(campID))
	defer unlock()

	camp, err := s.camps.GetByID(ctx, campID)
	if err != nil {
		if errors.Is(err, camprepo.ErrNotFound) {
			return domain.Registration{}, campNotFound()
		}
		return domain.Registration{}, err
	}
	if err := validateAvailability(camp, availability); err != nil {
		return domain.Registration{}, err
	}

	if _, err := s.regs.GetByCampAndUser(ctx, campID, userID); err == nil {
		return domain.Registration{}, alreadyRegistered()
	} else if !errors.Is(err, registrationrepo.ErrNotFound) {
		return domain.Registration{}, err
	}

	reg := domain.Registration{
		ID:               s.newRegistrationID(),
		UserID:           userID,
		CampID:           campID,
		DayAvailability:  copyAvailability(availability),
		RegistrationDate: s.clk.Now(),
	}
	if err := s.regs.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, registrationrepo.ErrAlreadyRegistered):
			return domain.Registration{}, alreadyRegistered()
		case errors.Is(err, registrationrepo.ErrAlreadyExists):
			return domain.Registration{}, &Error{Status: 409, Code: CodeRegistrationIDTaken, Message: "registration id conflict"}
		default:
			return domain.Registration{}, err
		}
	}
	return reg, nil
}

// UpdateRegistration replaces the registration's availability map wholesale.
func (s *Service) UpdateRegistration(ctx context.Context, id domain.RegistrationID, availability map[domain.CampDayID]bool) (domain.Registration, bool, error) {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, registrationrepo.ErrNotFound) {
			return domain.Registration{}, false, nil
		}
		return domain.Registration{}, false, err
	}

	unlock := s.campLocks.Lock(string(reg.CampID))
	defer unlock()

	camp, err := s.camps.GetByID(ctx, reg.CampID)
	if err != nil {
		if errors.Is(err, camprepo.ErrNotFound) {
			// Orphaned by a camp delete in flight.
			return domain.Registration{}, false, nil
		}
		return domain.Registration{}, false, err
	}
	if err := validateAvailability(camp, availability); err != nil {
		return domain.Registration{}, true, err
	}

	reg.DayAvailability = copyAvailability(availability)
	if err := s.regs.Update(ctx, reg); err != nil {
		if errors.Is(err, registrationrepo.ErrNotFound) {
			return domain.Registration{}, false, nil
		}
		return domain.Registration{}, false, err
	}
	return reg, true, nil
}

// CampParticipants lists attendance for every registration of the camp, joined with user
// summaries. Registrations whose user is unknown get a GUEST placeholder.
func (s *Service) CampParticipants(ctx context.Context, campID domain.CampID) ([]domain.Attendance, bool, error) {
	camp, found, err := s.GetCamp(ctx, campID)
	if err != nil || !found {
		return nil, found, err
	}
	regs, err := s.regs.ListByCamp(ctx, campID)
	if err != nil {
		return nil, true, err
	}

	out := make([]domain.Attendance, 0, len(regs))
	for _, r := range regs {
		a := ComputeAttendance(camp, r)
		u, err := s.users.GetByID(ctx, r.UserID)
		switch {
		case err == nil:
			a.User = u.Summary()
		case errors.Is(err, userrepo.ErrNotFound):
			a.User = domain.UserSummary{ID: r.UserID, DisplayName: string(r.UserID), Role: domain.RoleGuest}
		default:
			return nil, true, err
		}
		out = append(out, a)
	}
	return out, true, nil
}

func (s *Service) editCamp(ctx context.Context, id domain.CampID, mutate func(*domain.Camp) error) (domain.Camp, bool, error) {
	unlock := s.campLocks.Lock(string(id))
	defer unlock()
	return s.editCampLocked(ctx, id, mutate)
}

func (s *Service) editCampLocked(ctx context.Context, id domain.CampID, mutate func(*domain.Camp) error) (domain.Camp, bool, error) {
	c, err := s.camps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, camprepo.ErrNotFound) {
			return domain.Camp{}, false, nil
		}
		return domain.Camp{}, false, err
	}
	if err := mutate(&c); err != nil {
		return domain.Camp{}, true, err
	}
	if err := s.camps.Update(ctx, c); err != nil {
		if errors.Is(err, camprepo.ErrNotFound) {
			return domain.Camp{}, false, nil
		}
		return domain.Camp{}, false, err
	}
	return c, true, nil
}

// pruneAvailability removes availability entries for days no longer on the camp.
// Callers hold the camp lock.
func (s *Service) pruneAvailability(ctx context.Context, camp domain.Camp) error {
	regs, err := s.regs.ListByCamp(ctx, camp.ID)
	if err != nil {
		return err
	}
	days := camp.DayIDs()
	for _, r := range regs {
		changed := false
		for k := range r.DayAvailability {
			if _, ok := days[k]; !ok {
				delete(r.DayAvailability, k)
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := s.regs.Update(ctx, r); err != nil && !errors.Is(err, registrationrepo.ErrNotFound) {
			return fmt.Errorf("prune availability for registration %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *Service) buildDays(in []DayInput) ([]domain.CampDay, error) {
	out := make([]domain.CampDay, 0, len(in))
	seen := make(map[domain.CampDayID]struct{}, len(in))
	for i, d := range in {
		if d.Date.IsZero() {
			return nil, validationError(fmt.Sprintf("days[%d].date", i), "is required")
		}
		id := d.ID
		if id == "" {
			id = s.newDayID()
		}
		if _, dup := seen[id]; dup {
			return nil, validationError(fmt.Sprintf("days[%d].id", i), "must be unique within the camp")
		}
		seen[id] = struct{}{}
		acts := append([]string{}, d.Activities...)
		out = append(out, domain.CampDay{ID: id, DayNumber: i + 1, Date: domain.DateOnly(d.Date), Activities: acts})
	}
	return out, nil
}

func validateDateRange(start, end time.Time) error {
	if start.IsZero() {
		return validationError("startDate", "is required")
	}
	if end.IsZero() {
		return validationError("endDate", "is required")
	}
	if end.Before(start) {
		return validationError("endDate", "must not be before startDate")
	}
	return nil
}

func validateAvailability(camp domain.Camp, availability map[domain.CampDayID]bool) error {
	days := camp.DayIDs()
	var unknown []string
	for k := range availability {
		if _, ok := days[k]; !ok {
			unknown = append(unknown, string(k))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &Error{
		Status:  422,
		Code:    CodeValidation,
		Message: "invalid dayAvailability",
		Details: map[string]any{"dayAvailability": map[string]any{"unknownDayIds": unknown}},
	}
}

func copyAvailability(m map[domain.CampDayID]bool) map[domain.CampDayID]bool {
	out := make(map[domain.CampDayID]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func campNotFound() *Error {
	return &Error{Status: 404, Code: CodeCampNotFound, Message: "camp not found"}
}

func dayNotFound() *Error {
	return &Error{Status: 404, Code: CodeDayNotFound, Message: "camp day not found"}
}
