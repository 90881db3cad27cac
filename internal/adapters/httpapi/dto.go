package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/campflow/camp-registration-api/internal/app/camps"
	"github.com/campflow/camp-registration-api/internal/app/users"
	"github.com/campflow/camp-registration-api/internal/domain"
)

type CampDay struct {
	Id         string             `json:"id"`
	DayNumber  int                `json:"dayNumber"`
	Date       openapi_types.Date `json:"date"`
	Activities []string           `json:"activities"`
}

type Camp struct {
	Id          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	ImageUrl    string             `json:"imageUrl"`
	Days        []CampDay          `json:"days"`
	OwnerId     *string            `json:"ownerId,omitempty"`
}

type Registration struct {
	Id               string          `json:"id"`
	UserId           string          `json:"userId"`
	CampId           string          `json:"campId"`
	DayAvailability  map[string]bool `json:"dayAvailability"`
	RegistrationDate time.Time       `json:"registrationDate"`
}

type UserSummary struct {
	Id          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Role        string  `json:"role"`
	Region      *string `json:"region,omitempty"`
}

type Participant struct {
	Registration  Registration `json:"registration"`
	User          UserSummary  `json:"user"`
	AvailableDays int          `json:"availableDays"`
	TotalDays     int          `json:"totalDays"`
	Percentage    int          `json:"percentage"`
}

type User struct {
	Id                       string     `json:"id"`
	Firstname                string     `json:"firstname"`
	Surname                  string     `json:"surname"`
	Nickname                 string     `json:"nickname"`
	DisplayName              string     `json:"displayName"`
	Email                    string     `json:"email"`
	Phone                    string     `json:"phone"`
	Role                     string     `json:"role"`
	Region                   *string    `json:"region,omitempty"`
	LineId                   *string    `json:"lineId,omitempty"`
	FoodAllergy              *string    `json:"foodAllergy,omitempty"`
	PersonalMedicalCondition *string    `json:"personalMedicalCondition,omitempty"`
	Bio                      *string    `json:"bio,omitempty"`
	Title                    *string    `json:"title,omitempty"`
	JoinedAt                 *time.Time `json:"joinedAt,omitempty"`
}

type CampResponse struct {
	Camp Camp `json:"camp"`
}

type CampListResponse struct {
	Camps []Camp `json:"camps"`
}

type RegistrationResponse struct {
	Registration Registration `json:"registration"`
	Attendance   *Attendance  `json:"attendance,omitempty"`
}

// Attendance is the per-registration summary returned next to the caller's own registration.
type Attendance struct {
	AvailableDays int `json:"availableDays"`
	TotalDays     int `json:"totalDays"`
	Percentage    int `json:"percentage"`
}

type RegistrationListResponse struct {
	Registrations []Registration `json:"registrations"`
}

type ParticipantListResponse struct {
	Participants []Participant `json:"participants"`
}

type UserResponse struct {
	User User `json:"user"`
}

type UserListResponse struct {
	Users []User `json:"users"`
}

// Requests.

type DayRequest struct {
	Id         string             `json:"id,omitempty"`
	Date       openapi_types.Date `json:"date"`
	Activities []string           `json:"activities,omitempty"`
}

type CreateCampRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Location    string             `json:"location,omitempty"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	ImageUrl    string             `json:"imageUrl,omitempty"`
	Days        []DayRequest       `json:"days,omitempty"`
	OwnerId     string             `json:"ownerId,omitempty"`
}

type UpdateCampRequest struct {
	Name        nullable.Nullable[string]             `json:"name,omitempty"`
	Description nullable.Nullable[string]             `json:"description,omitempty"`
	Location    nullable.Nullable[string]             `json:"location,omitempty"`
	StartDate   nullable.Nullable[openapi_types.Date] `json:"startDate,omitempty"`
	EndDate     nullable.Nullable[openapi_types.Date] `json:"endDate,omitempty"`
	ImageUrl    nullable.Nullable[string]             `json:"imageUrl,omitempty"`
	Days        nullable.Nullable[[]DayRequest]       `json:"days,omitempty"`
	OwnerId     nullable.Nullable[string]             `json:"ownerId,omitempty"`
}

type AddActivityRequest struct {
	Activity string `json:"activity"`
}

type AvailabilityRequest struct {
	DayAvailability map[string]bool `json:"dayAvailability"`
}

type ProvisionMeRequest struct {
	Firstname                string  `json:"firstname"`
	Surname                  string  `json:"surname,omitempty"`
	Nickname                 string  `json:"nickname,omitempty"`
	Email                    string  `json:"email"`
	Phone                    string  `json:"phone,omitempty"`
	Region                   *string `json:"region,omitempty"`
	LineId                   *string `json:"lineId,omitempty"`
	FoodAllergy              *string `json:"foodAllergy,omitempty"`
	PersonalMedicalCondition *string `json:"personalMedicalCondition,omitempty"`
	Bio                      *string `json:"bio,omitempty"`
	Title                    *string `json:"title,omitempty"`
}

type UpdateMeRequest struct {
	Firstname                nullable.Nullable[string] `json:"firstname,omitempty"`
	Surname                  nullable.Nullable[string] `json:"surname,omitempty"`
	Nickname                 nullable.Nullable[string] `json:"nickname,omitempty"`
	Email                    nullable.Nullable[string] `json:"email,omitempty"`
	Phone                    nullable.Nullable[string] `json:"phone,omitempty"`
	Region                   nullable.Nullable[string] `json:"region,omitempty"`
	LineId                   nullable.Nullable[string] `json:"lineId,omitempty"`
	FoodAllergy              nullable.Nullable[string] `json:"foodAllergy,omitempty"`
	PersonalMedicalCondition nullable.Nullable[string] `json:"personalMedicalCondition,omitempty"`
	Bio                      nullable.Nullable[string] `json:"bio,omitempty"`
	Title                    nullable.Nullable[string] `json:"title,omitempty"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// Domain -> wire.

func campFromDomain(c domain.Camp) Camp {
	out := Camp{
		Id:          string(c.ID),
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
		StartDate:   openapi_types.Date{Time: c.StartDate},
		EndDate:     openapi_types.Date{Time: c.EndDate},
		ImageUrl:    c.ImageURL,
		Days:        make([]CampDay, 0, len(c.Days)),
	}
	for _, d := range c.Days {
		acts := d.Activities
		if acts == nil {
			acts = []string{}
		}
		out.Days = append(out.Days, CampDay{
			Id:         string(d.ID),
			DayNumber:  d.DayNumber,
			Date:       openapi_types.Date{Time: d.Date},
			Activities: acts,
		})
	}
	if c.OwnerID != "" {
		owner := string(c.OwnerID)
		out.OwnerId = &owner
	}
	return out
}

func campsFromDomain(cs []domain.Camp) []Camp {
	out := make([]Camp, 0, len(cs))
	for _, c := range cs {
		out = append(out, campFromDomain(c))
	}
	return out
}

func registrationFromDomain(r domain.Registration) Registration {
	avail := make(map[string]bool, len(r.DayAvailability))
	for k, v := range r.DayAvailability {
		avail[string(k)] = v
	}
	return Registration{
		Id:               string(r.ID),
		UserId:           string(r.UserID),
		CampId:           string(r.CampID),
		DayAvailability:  avail,
		RegistrationDate: r.RegistrationDate.UTC(),
	}
}

func registrationsFromDomain(rs []domain.Registration) []Registration {
	out := make([]Registration, 0, len(rs))
	for _, r := range rs {
		out = append(out, registrationFromDomain(r))
	}
	return out
}

func participantFromDomain(a domain.Attendance) Participant {
	return Participant{
		Registration: registrationFromDomain(a.Registration),
		User: UserSummary{
			Id:          string(a.User.ID),
			DisplayName: a.User.DisplayName,
			Role:        string(a.User.Role),
			Region:      regionPtr(a.User.Region),
		},
		AvailableDays: a.AvailableDays,
		TotalDays:     a.TotalDays,
		Percentage:    a.Percentage,
	}
}

func userFromDomain(u domain.User) User {
	out := User{
		Id:                       string(u.ID),
		Firstname:                u.Firstname,
		Surname:                  u.Surname,
		Nickname:                 u.Nickname,
		DisplayName:              u.DisplayName(),
		Email:                    u.Email,
		Phone:                    u.Phone,
		Role:                     string(u.Role),
		Region:                   regionPtr(u.Region),
		LineId:                   u.LineID,
		FoodAllergy:              u.FoodAllergy,
		PersonalMedicalCondition: u.PersonalMedicalCondition,
		Bio:                      u.Bio,
		Title:                    u.Title,
	}
	if !u.JoinedAt.IsZero() {
		t := u.JoinedAt.UTC()
		out.JoinedAt = &t
	}
	return out
}

func regionPtr(r *domain.Region) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}

// Wire -> app inputs.

func availabilityFromRequest(m map[string]bool) map[domain.CampDayID]bool {
	out := make(map[domain.CampDayID]bool, len(m))
	for k, v := range m {
		out[domain.CampDayID(k)] = v
	}
	return out
}

func dayInputsFromRequest(ds []DayRequest) []camps.DayInput {
	out := make([]camps.DayInput, 0, len(ds))
	for _, d := range ds {
		out = append(out, camps.DayInput{
			ID:         domain.CampDayID(d.Id),
			Date:       d.Date.Time,
			Activities: d.Activities,
		})
	}
	return out
}

func createCampInputFromRequest(req CreateCampRequest) camps.CreateCampInput {
	return camps.CreateCampInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   req.StartDate.Time,
		EndDate:     req.EndDate.Time,
		ImageURL:    req.ImageUrl,
		Days:        dayInputsFromRequest(req.Days),
		OwnerID:     domain.UserID(req.OwnerId),
	}
}

func updateCampInputFromRequest(req UpdateCampRequest) camps.UpdateCampInput {
	return camps.UpdateCampInput{
		Name:        campOptional(req.Name, identity[string]),
		Description: campOptional(req.Description, identity[string]),
		Location:    campOptional(req.Location, identity[string]),
		StartDate:   campOptional(req.StartDate, dateTime),
		EndDate:     campOptional(req.EndDate, dateTime),
		ImageURL:    campOptional(req.ImageUrl, identity[string]),
		Days:        campOptional(req.Days, dayInputsFromRequest),
		OwnerID:     campOptional(req.OwnerId, func(s string) domain.UserID { return domain.UserID(s) }),
	}
}

func provisionMeInputFromRequest(req ProvisionMeRequest) (users.ProvisionMeInput, bool) {
	in := users.ProvisionMeInput{
		Firstname:                req.Firstname,
		Surname:                  req.Surname,
		Nickname:                 req.Nickname,
		Email:                    req.Email,
		Phone:                    req.Phone,
		LineID:                   req.LineId,
		FoodAllergy:              req.FoodAllergy,
		PersonalMedicalCondition: req.PersonalMedicalCondition,
		Bio:                      req.Bio,
		Title:                    req.Title,
	}
	if req.Region != nil {
		r, ok := domain.ParseRegion(*req.Region)
		if !ok {
			return users.ProvisionMeInput{}, false
		}
		in.Region = &r
	}
	return in, true
}

func updateMeInputFromRequest(req UpdateMeRequest) users.UpdateMeInput {
	in := users.UpdateMeInput{
		Firstname:                userOptional(req.Firstname),
		Surname:                  userOptional(req.Surname),
		Nickname:                 userOptional(req.Nickname),
		Email:                    userOptional(req.Email),
		Phone:                    userOptional(req.Phone),
		LineID:                   userOptional(req.LineId),
		FoodAllergy:              userOptional(req.FoodAllergy),
		PersonalMedicalCondition: userOptional(req.PersonalMedicalCondition),
		Bio:                      userOptional(req.Bio),
		Title:                    userOptional(req.Title),
	}
	// The service validates the region value.
	switch {
	case !req.Region.IsSpecified():
	case req.Region.IsNull():
		in.Region = users.Null[domain.Region]()
	default:
		in.Region = users.Some(domain.Region(req.Region.MustGet()))
	}
	return in
}

func campOptional[T, U any](n nullable.Nullable[T], conv func(T) U) camps.Optional[U] {
	switch {
	case !n.IsSpecified():
		return camps.Unspecified[U]()
	case n.IsNull():
		return camps.Null[U]()
	default:
		return camps.Some(conv(n.MustGet()))
	}
}

func userOptional(n nullable.Nullable[string]) users.Optional[string] {
	switch {
	case !n.IsSpecified():
		return users.Unspecified[string]()
	case n.IsNull():
		return users.Null[string]()
	default:
		return users.Some(n.MustGet())
	}
}

func identity[T any](v T) T { return v }

func dateTime(d openapi_types.Date) time.Time { return d.Time }
