package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/platform/idgen"
	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
	"github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

type Service struct {
	repo userrepo.Repository
	clk  clockport.Clock

	newUserID func() domain.UserID
}

func NewService(repo userrepo.Repository, clk clockport.Clock) *Service {
	return &Service{repo: repo, clk: clk, newUserID: idgen.UserID}
}

func (s *Service) GetMe(ctx context.Context, subject domain.SubjectID) (domain.User, error) {
	u, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, notProvisioned()
		}
		return domain.User{}, err
	}
	return u, nil
}

// ProvisionMe creates a GUEST profile bound to subject. When an unbound directory entry
// (for example a seeded user) already carries the same email, the subject is bound to it instead.
func (s *Service) ProvisionMe(ctx context.Context, subject domain.SubjectID, in ProvisionMeInput) (domain.User, error) {
	if subject == "" {
		return domain.User{}, validationError("subject", "must be non-empty")
	}
	if _, err := s.repo.GetBySubject(ctx, subject); err == nil {
		return domain.User{}, alreadyExists()
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return domain.User{}, err
	}

	firstname := domain.NormalizeHumanName(in.Firstname)
	if firstname == "" {
		return domain.User{}, validationError("firstname", "must be non-empty")
	}
	email := strings.TrimSpace(in.Email)
	if err := validateEmail(email); err != nil {
		return domain.User{}, validationError("email", err.Error())
	}

	now := s.clk.Now()
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.Subject == "":
		existing.Subject = subject
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			if errors.Is(err, userrepo.ErrSubjectAlreadyBound) {
				return domain.User{}, alreadyExists()
			}
			return domain.User{}, err
		}
		return existing, nil
	case err == nil:
		return domain.User{}, emailInUse()
	case !errors.Is(err, userrepo.ErrNotFound):
		return domain.User{}, err
	}

	u := domain.User{
		ID:                       s.newUserID(),
		Subject:                  subject,
		Firstname:                firstname,
		Surname:                  domain.NormalizeHumanName(in.Surname),
		Nickname:                 domain.NormalizeHumanName(in.Nickname),
		Email:                    email,
		Phone:                    strings.TrimSpace(in.Phone),
		Role:                     domain.RoleGuest,
		Region:                   in.Region,
		LineID:                   trimPtr(in.LineID),
		FoodAllergy:              trimPtr(in.FoodAllergy),
		PersonalMedicalCondition: trimPtr(in.PersonalMedicalCondition),
		Bio:                      trimPtr(in.Bio),
		Title:                    trimPtr(in.Title),
		JoinedAt:                 now,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrSubjectAlreadyBound) {
			return domain.User{}, alreadyExists()
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *Service) UpdateMe(ctx context.Context, subject domain.SubjectID, in UpdateMeInput) (domain.User, error) {
	u, err := s.GetMe(ctx, subject)
	if err != nil {
		return domain.User{}, err
	}

	if in.Firstname.IsSpecified() {
		if in.Firstname.IsNull() {
			return domain.User{}, validationError("firstname", "cannot be null")
		}
		name := domain.NormalizeHumanName(in.Firstname.Value())
		if name == "" {
			return domain.User{}, validationError("firstname", "must be non-empty")
		}
		u.Firstname = name
	}
	if in.Email.IsSpecified() {
		if in.Email.IsNull() {
			return domain.User{}, validationError("email", "cannot be null")
		}
		email := strings.TrimSpace(in.Email.Value())
		if err := validateEmail(email); err != nil {
			return domain.User{}, validationError("email", err.Error())
		}
		if other, err := s.repo.GetByEmail(ctx, email); err == nil && other.ID != u.ID {
			return domain.User{}, emailInUse()
		} else if err != nil && !errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, err
		}
		u.Email = email
	}

	applyName := func(dst *string, o Optional[string]) {
		if !o.IsSpecified() {
			return
		}
		if o.IsNull() {
			*dst = ""
			return
		}
		*dst = domain.NormalizeHumanName(o.Value())
	}
	applyName(&u.Surname, in.Surname)
	applyName(&u.Nickname, in.Nickname)
	if in.Phone.IsSpecified() {
		u.Phone = strings.TrimSpace(in.Phone.Value())
	}

	if in.Region.IsSpecified() {
		if in.Region.IsNull() {
			u.Region = nil
		} else {
			r, ok := domain.ParseRegion(string(in.Region.Value()))
			if !ok {
				return domain.User{}, validationError("region", "must be one of BKK, EAST, CEN, PARI")
			}
			u.Region = &r
		}
	}

	applyPtr := func(dst **string, o Optional[string]) {
		if !o.IsSpecified() {
			return
		}
		if o.IsNull() {
			*dst = nil
			return
		}
		v := strings.TrimSpace(o.Value())
		*dst = &v
	}
	applyPtr(&u.LineID, in.LineID)
	applyPtr(&u.FoodAllergy, in.FoodAllergy)
	applyPtr(&u.PersonalMedicalCondition, in.PersonalMedicalCondition)
	applyPtr(&u.Bio, in.Bio)
	applyPtr(&u.Title, in.Title)

	u.UpdatedAt = s.clk.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ListUsers returns every user ordered by display name.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id domain.UserID) (domain.User, bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return u, true, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return u, true, nil
}

// ChangeRole sets target's role. Only admins may call it, and never on themselves.
func (s *Service) ChangeRole(ctx context.Context, caller domain.User, target domain.UserID, role domain.Role) (domain.User, bool, error) {
	if !caller.Role.Allows(domain.RoleAdmin) {
		return domain.User{}, false, forbidden("only admins can change roles")
	}
	if caller.ID == target {
		return domain.User{}, false, forbidden("admins cannot change their own role")
	}
	if !role.Valid() {
		return domain.User{}, false, validationError("role", "must be one of GUEST, JOINER, ADMIN")
	}

	u, found, err := s.GetUser(ctx, target)
	if err != nil || !found {
		return domain.User{}, found, err
	}
	if u.Role == role {
		return u, true, nil
	}
	u.Role = role
	u.UpdatedAt = s.clk.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return u, true, nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("must be non-empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return err
	}
	// Ensure no "Name <email@x>" format sneaks in.
	if addr.Address != email {
		return errors.New("must be a bare email address")
	}
	return nil
}

func emailInUse() *Error {
	return &Error{Status: 409, Code: CodeEmailAlreadyInUse, Message: "email address is already in use"}
}

func forbidden(msg string) *Error {
	return &Error{Status: 403, Code: CodeForbidden, Message: msg}
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
