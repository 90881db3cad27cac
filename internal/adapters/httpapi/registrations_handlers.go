package httpapi

import (
	"net/http"

	"github.com/campflow/camp-registration-api/internal/app/camps"
	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
)

func (s *Server) getMyRegistration(w http.ResponseWriter, r *http.Request) {
	caller, _ := UserFromContext(r.Context())
	var campID string
	if !pathParam(w, r, "campId", &campID) {
		return
	}
	c, found, err := s.Camps.GetCamp(r.Context(), domain.CampID(campID))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeCampNotFound(w, r)
		return
	}
	reg, found, err := s.Camps.GetRegistrationByCampAndUser(r.Context(), c.ID, caller.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeRegistrationNotFound(w, r)
		return
	}
	s.writeJSON(w, r, http.StatusOK, registrationResponse(c, reg))
}

func (s *Server) registerForCamp(w http.ResponseWriter, r *http.Request) {
	caller, _ := UserFromContext(r.Context())
	var campID string
	if !pathParam(w, r, "campId", &campID) {
		return
	}
	var req AvailabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	idem, ok := s.beginIdempotent(w, r, idempotency.RouteRegisterInCamp, caller.Subject, struct {
		CampID string `json:"campId"`
		AvailabilityRequest
	}{campID, req})
	if !ok {
		return
	}

	reg, err := s.Camps.RegisterForCamp(r.Context(), caller.ID, domain.CampID(campID), availabilityFromRequest(req.DayAvailability))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := RegistrationResponse{Registration: registrationFromDomain(reg)}
	if c, found, err := s.Camps.GetCamp(r.Context(), reg.CampID); err == nil && found {
		resp = registrationResponse(c, reg)
	}
	idem.respond(w, r, http.StatusCreated, resp)
}

func (s *Server) listRegistrations(w http.ResponseWriter, r *http.Request) {
	var campID *string
	if !queryParam(w, r, "campId", &campID) {
		return
	}
	var (
		regs []domain.Registration
		err  error
	)
	if campID != nil {
		regs, err = s.Camps.ListCampRegistrations(r.Context(), domain.CampID(*campID))
	} else {
		regs, err = s.Camps.ListRegistrations(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, RegistrationListResponse{Registrations: registrationsFromDomain(regs)})
}

func (s *Server) listMyRegistrations(w http.ResponseWriter, r *http.Request) {
	caller, _ := UserFromContext(r.Context())
	regs, err := s.Camps.ListUserRegistrations(r.Context(), caller.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, RegistrationListResponse{Registrations: registrationsFromDomain(regs)})
}

// updateRegistration replaces the availability map. Only the registrant or an admin may call it.
func (s *Server) updateRegistration(w http.ResponseWriter, r *http.Request) {
	caller, _ := UserFromContext(r.Context())
	var regID string
	if !pathParam(w, r, "registrationId", &regID) {
		return
	}
	var req AvailabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	existing, found, err := s.Camps.GetRegistration(r.Context(), domain.RegistrationID(regID))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeRegistrationNotFound(w, r)
		return
	}
	if existing.UserID != caller.ID && !caller.Role.Allows(domain.RoleAdmin) {
		writeForbidden(w, r, "cannot edit another user's registration")
		return
	}

	reg, found, err := s.Camps.UpdateRegistration(r.Context(), existing.ID, availabilityFromRequest(req.DayAvailability))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeRegistrationNotFound(w, r)
		return
	}
	resp := RegistrationResponse{Registration: registrationFromDomain(reg)}
	if c, found, err := s.Camps.GetCamp(r.Context(), reg.CampID); err == nil && found {
		resp = registrationResponse(c, reg)
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func registrationResponse(c domain.Camp, reg domain.Registration) RegistrationResponse {
	a := camps.ComputeAttendance(c, reg)
	return RegistrationResponse{
		Registration: registrationFromDomain(reg),
		Attendance: &Attendance{
			AvailableDays: a.AvailableDays,
			TotalDays:     a.TotalDays,
			Percentage:    a.Percentage,
		},
	}
}
