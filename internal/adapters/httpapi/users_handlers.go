package httpapi

import (
	"net/http"

	"github.com/campflow/camp-registration-api/internal/domain"
)

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	sub, _ := SubjectFromContext(r.Context())
	u, err := s.Users.GetMe(r.Context(), domain.SubjectID(sub))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, UserResponse{User: userFromDomain(u)})
}

func (s *Server) provisionMe(w http.ResponseWriter, r *http.Request) {
	sub, _ := SubjectFromContext(r.Context())
	var req ProvisionMeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, ok := provisionMeInputFromRequest(req)
	if !ok {
		writeValidation(w, r, "region", "must be one of BKK, EAST, CEN, PARI")
		return
	}
	u, err := s.Users.ProvisionMe(r.Context(), domain.SubjectID(sub), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.log().Info(r.Context(), "user provisioned", "user_id", u.ID, "role", u.Role)
	s.writeJSON(w, r, http.StatusCreated, UserResponse{User: userFromDomain(u)})
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	sub, _ := SubjectFromContext(r.Context())
	var req UpdateMeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.Users.UpdateMe(r.Context(), domain.SubjectID(sub), updateMeInputFromRequest(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, UserResponse{User: userFromDomain(u)})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	var email *string
	if !queryParam(w, r, "email", &email) {
		return
	}
	var (
		us  []domain.User
		err error
	)
	if email != nil {
		var (
			u     domain.User
			found bool
		)
		u, found, err = s.Users.GetUserByEmail(r.Context(), *email)
		if found {
			us = []domain.User{u}
		}
	} else {
		us, err = s.Users.ListUsers(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := UserListResponse{Users: make([]User, 0, len(us))}
	for _, u := range us {
		out.Users = append(out.Users, userFromDomain(u))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	var userID string
	if !pathParam(w, r, "userId", &userID) {
		return
	}
	u, found, err := s.Users.GetUser(r.Context(), domain.UserID(userID))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeUserNotFound(w, r)
		return
	}
	s.writeJSON(w, r, http.StatusOK, UserResponse{User: userFromDomain(u)})
}

func (s *Server) changeRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := UserFromContext(r.Context())
	var userID string
	if !pathParam(w, r, "userId", &userID) {
		return
	}
	var req ChangeRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		writeValidation(w, r, "role", "must be one of GUEST, JOINER, ADMIN")
		return
	}
	u, found, err := s.Users.ChangeRole(r.Context(), caller, domain.UserID(userID), role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeUserNotFound(w, r)
		return
	}
	s.log().Info(r.Context(), "role changed", "user_id", u.ID, "role", u.Role, "by", caller.ID)
	s.writeJSON(w, r, http.StatusOK, UserResponse{User: userFromDomain(u)})
}
