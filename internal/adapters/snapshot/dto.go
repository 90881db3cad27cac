package snapshot

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/campflow/camp-registration-api/internal/domain"
)

type campDTO struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	ImageURL    string             `json:"imageUrl"`
	Days        []campDayDTO       `json:"days"`
	OwnerID     string             `json:"ownerId,omitempty"`
}

type campDayDTO struct {
	ID         string             `json:"id"`
	DayNumber  int                `json:"dayNumber"`
	Date       openapi_types.Date `json:"date"`
	Activities []string           `json:"activities"`
}

type registrationDTO struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	CampID           string          `json:"campId"`
	DayAvailability  map[string]bool `json:"dayAvailability"`
	RegistrationDate time.Time       `json:"registrationDate"`
}

type userDTO struct {
	ID                       string    `json:"id"`
	Subject                  string    `json:"subject,omitempty"`
	Firstname                string    `json:"firstname"`
	Surname                  string    `json:"surname,omitempty"`
	Nickname                 string    `json:"nickname,omitempty"`
	Email                    string    `json:"email,omitempty"`
	Phone                    string    `json:"phone,omitempty"`
	Role                     string    `json:"role"`
	Region                   *string   `json:"region,omitempty"`
	LineID                   *string   `json:"lineId,omitempty"`
	FoodAllergy              *string   `json:"foodAllergy,omitempty"`
	PersonalMedicalCondition *string   `json:"personalMedicalCondition,omitempty"`
	Bio                      *string   `json:"bio,omitempty"`
	Title                    *string   `json:"title,omitempty"`
	JoinedAt                 time.Time `json:"joinedAt"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
}

func campToDTO(c domain.Camp) campDTO {
	days := make([]campDayDTO, 0, len(c.Days))
	for _, d := range c.Days {
		acts := append([]string{}, d.Activities...)
		days = append(days, campDayDTO{
			ID:         string(d.ID),
			DayNumber:  d.DayNumber,
			Date:       openapi_types.Date{Time: d.Date},
			Activities: acts,
		})
	}
	return campDTO{
		ID:          string(c.ID),
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
		StartDate:   openapi_types.Date{Time: c.StartDate},
		EndDate:     openapi_types.Date{Time: c.EndDate},
		ImageURL:    c.ImageURL,
		Days:        days,
		OwnerID:     string(c.OwnerID),
	}
}

func campFromDTO(d campDTO) domain.Camp {
	days := make([]domain.CampDay, 0, len(d.Days))
	for _, dd := range d.Days {
		days = append(days, domain.CampDay{
			ID:         domain.CampDayID(dd.ID),
			DayNumber:  dd.DayNumber,
			Date:       domain.DateOnly(dd.Date.Time),
			Activities: append([]string{}, dd.Activities...),
		})
	}
	c := domain.Camp{
		ID:          domain.CampID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Location:    d.Location,
		StartDate:   domain.DateOnly(d.StartDate.Time),
		EndDate:     domain.DateOnly(d.EndDate.Time),
		ImageURL:    d.ImageURL,
		Days:        days,
		OwnerID:     domain.UserID(d.OwnerID),
	}
	// Older snapshots may carry stale numbering.
	c.RenumberDays()
	return c
}

func registrationToDTO(r domain.Registration) registrationDTO {
	avail := make(map[string]bool, len(r.DayAvailability))
	for k, v := range r.DayAvailability {
		avail[string(k)] = v
	}
	return registrationDTO{
		ID:               string(r.ID),
		UserID:           string(r.UserID),
		CampID:           string(r.CampID),
		DayAvailability:  avail,
		RegistrationDate: r.RegistrationDate.UTC(),
	}
}

func registrationFromDTO(d registrationDTO) domain.Registration {
	avail := make(map[domain.CampDayID]bool, len(d.DayAvailability))
	for k, v := range d.DayAvailability {
		avail[domain.CampDayID(k)] = v
	}
	return domain.Registration{
		ID:               domain.RegistrationID(d.ID),
		UserID:           domain.UserID(d.UserID),
		CampID:           domain.CampID(d.CampID),
		DayAvailability:  avail,
		RegistrationDate: d.RegistrationDate,
	}
}

func userToDTO(u domain.User) userDTO {
	var region *string
	if u.Region != nil {
		r := string(*u.Region)
		region = &r
	}
	u = domain.CloneUser(u)
	return userDTO{
		ID:                       string(u.ID),
		Subject:                  string(u.Subject),
		Firstname:                u.Firstname,
		Surname:                  u.Surname,
		Nickname:                 u.Nickname,
		Email:                    u.Email,
		Phone:                    u.Phone,
		Role:                     string(u.Role),
		Region:                   region,
		LineID:                   u.LineID,
		FoodAllergy:              u.FoodAllergy,
		PersonalMedicalCondition: u.PersonalMedicalCondition,
		Bio:                      u.Bio,
		Title:                    u.Title,
		JoinedAt:                 u.JoinedAt.UTC(),
		CreatedAt:                u.CreatedAt.UTC(),
		UpdatedAt:                u.UpdatedAt.UTC(),
	}
}

func userFromDTO(d userDTO) domain.User {
	role, ok := domain.ParseRole(d.Role)
	if !ok {
		role = domain.RoleGuest
	}
	var region *domain.Region
	if d.Region != nil {
		if r, ok := domain.ParseRegion(*d.Region); ok {
			region = &r
		}
	}
	return domain.User{
		ID:                       domain.UserID(d.ID),
		Subject:                  domain.SubjectID(d.Subject),
		Firstname:                d.Firstname,
		Surname:                  d.Surname,
		Nickname:                 d.Nickname,
		Email:                    d.Email,
		Phone:                    d.Phone,
		Role:                     role,
		Region:                   region,
		LineID:                   d.LineID,
		FoodAllergy:              d.FoodAllergy,
		PersonalMedicalCondition: d.PersonalMedicalCondition,
		Bio:                      d.Bio,
		Title:                    d.Title,
		JoinedAt:                 d.JoinedAt,
		CreatedAt:                d.CreatedAt,
		UpdatedAt:                d.UpdatedAt,
	}
}
