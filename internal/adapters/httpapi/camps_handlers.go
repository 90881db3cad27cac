package httpapi

import (
	"net/http"

	"github.com/campflow/camp-registration-api/internal/app/camps"
	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
)

// campEditor lets the request through only when the caller may edit {campId}.
func (s *Server) campEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var campID string
		if !pathParam(w, r, "campId", &campID) {
			return
		}
		caller, _ := UserFromContext(r.Context())
		c, found, err := s.Camps.GetCamp(r.Context(), domain.CampID(campID))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !found {
			writeCampNotFound(w, r)
			return
		}
		if !camps.CanEditCamp(caller, c) {
			writeForbidden(w, r, "only the owning admin can edit this camp")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listCamps(w http.ResponseWriter, r *http.Request) {
	var q *string
	if !queryParam(w, r, "q", &q) {
		return
	}
	var (
		cs  []domain.Camp
		err error
	)
	if q != nil {
		cs, err = s.Camps.SearchCamps(r.Context(), *q)
	} else {
		cs, err = s.Camps.ListCamps(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, CampListResponse{Camps: campsFromDomain(cs)})
}

func (s *Server) createCamp(w http.ResponseWriter, r *http.Request) {
	caller, _ := UserFromContext(r.Context())
	var req CreateCampRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	idem, ok := s.beginIdempotent(w, r, idempotency.RouteCreateCamp, caller.Subject, req)
	if !ok {
		return
	}
	c, err := s.Camps.CreateCamp(r.Context(), caller.ID, createCampInputFromRequest(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	idem.respond(w, r, http.StatusCreated, CampResponse{Camp: campFromDomain(c)})
}

func (s *Server) getCamp(w http.ResponseWriter, r *http.Request) {
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
	s.writeJSON(w, r, http.StatusOK, CampResponse{Camp: campFromDomain(c)})
}

func (s *Server) updateCamp(w http.ResponseWriter, r *http.Request) {
	var campID string
	if !pathParam(w, r, "campId", &campID) {
		return
	}
	var req UpdateCampRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, found, err := s.Camps.UpdateCamp(r.Context(), domain.CampID(campID), updateCampInputFromRequest(req))
	s.writeCampResult(w, r, http.StatusOK, c, found, err)
}

func (s *Server) deleteCamp(w http.ResponseWriter, r *http.Request) {
	var campID string
	if !pathParam(w, r, "campId", &campID) {
		return
	}
	found, err := s.Camps.DeleteCamp(r.Context(), domain.CampID(campID))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeCampNotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addDay(w http.ResponseWriter, r *http.Request) {
	var campID string
	if !pathParam(w, r, "campId", &campID) {
		return
	}
	var req DayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := camps.DayInput{ID: domain.CampDayID(req.Id), Date: req.Date.Time, Activities: req.Activities}
	c, found, err := s.Camps.AddDay(r.Context(), domain.CampID(campID), in)
	s.writeCampResult(w, r, http.StatusCreated, c, found, err)
}

func (s *Server) removeDay(w http.ResponseWriter, r *http.Request) {
	var campID, dayID string
	if !pathParam(w, r, "campId", &campID) || !pathParam(w, r, "dayId", &dayID) {
		return
	}
	c, found, err := s.Camps.RemoveDay(r.Context(), domain.CampID(campID), domain.CampDayID(dayID))
	s.writeCampResult(w, r, http.StatusOK, c, found, err)
}

func (s *Server) addActivity(w http.ResponseWriter, r *http.Request) {
	var campID, dayID string
	if !pathParam(w, r, "campId", &campID) || !pathParam(w, r, "dayId", &dayID) {
		return
	}
	var req AddActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, found, err := s.Camps.AddActivity(r.Context(), domain.CampID(campID), domain.CampDayID(dayID), req.Activity)
	s.writeCampResult(w, r, http.StatusCreated, c, found, err)
}

func (s *Server) removeActivity(w http.ResponseWriter, r *http.Request) {
	var (
		campID, dayID string
		index         int
	)
	if !pathParam(w, r, "campId", &campID) || !pathParam(w, r, "dayId", &dayID) || !pathParam(w, r, "index", &index) {
		return
	}
	c, found, err := s.Camps.RemoveActivity(r.Context(), domain.CampID(campID), domain.CampDayID(dayID), index)
	s.writeCampResult(w, r, http.StatusOK, c, found, err)
}

func (s *Server) campParticipants(w http.ResponseWriter, r *http.Request) {
	var campID string
	if !pathParam(w, r, "campId", &campID) {
		return
	}
	as, found, err := s.Camps.CampParticipants(r.Context(), domain.CampID(campID))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeCampNotFound(w, r)
		return
	}
	out := ParticipantListResponse{Participants: make([]Participant, 0, len(as))}
	for _, a := range as {
		out.Participants = append(out.Participants, participantFromDomain(a))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) writeCampResult(w http.ResponseWriter, r *http.Request, status int, c domain.Camp, found bool, err error) {
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeCampNotFound(w, r)
		return
	}
	s.writeJSON(w, r, status, CampResponse{Camp: campFromDomain(c)})
}
