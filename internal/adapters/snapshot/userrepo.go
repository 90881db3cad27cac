package snapshot

import (
	"context"
	"slices"
	"strings"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

// UserRepo implements userrepo.Repository on top of a Store.
type UserRepo struct{ s *Store }

var _ userrepo.Repository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	if u.ID == "" {
		return userrepo.ErrAlreadyExists
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.ID == u.ID {
			return userrepo.ErrAlreadyExists
		}
		if u.Subject != "" && existing.Subject == u.Subject {
			return userrepo.ErrSubjectAlreadyBound
		}
	}
	next := append(slices.Clone(r.s.users), domain.CloneUser(u))
	return r.s.commitUsers(ctx, next)
}

func (r *UserRepo) Update(ctx context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := slices.IndexFunc(r.s.users, func(x domain.User) bool { return x.ID == u.ID })
	if i < 0 {
		return userrepo.ErrNotFound
	}
	existing := r.s.users[i]
	if existing.Subject != "" && existing.Subject != u.Subject {
		return userrepo.ErrSubjectAlreadyBound
	}
	if existing.Subject == "" && u.Subject != "" {
		for _, other := range r.s.users {
			if other.Subject == u.Subject {
				return userrepo.ErrSubjectAlreadyBound
			}
		}
	}
	next := slices.Clone(r.s.users)
	next[i] = domain.CloneUser(u)
	return r.s.commitUsers(ctx, next)
}

func (r *UserRepo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.first(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r *UserRepo) GetBySubject(ctx context.Context, subject domain.SubjectID) (domain.User, error) {
	if subject == "" {
		return domain.User{}, userrepo.ErrNotFound
	}
	return r.first(ctx, func(u domain.User) bool { return u.Subject == subject })
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, userrepo.ErrNotFound
	}
	return r.first(ctx, func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	_ = ctx
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, domain.CloneUser(u))
	}
	domain.SortUsersByDisplayName(out)
	return out, nil
}

func (r *UserRepo) first(ctx context.Context, match func(domain.User) bool) (domain.User, error) {
	_ = ctx
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return domain.CloneUser(u), nil
		}
	}
	return domain.User{}, userrepo.ErrNotFound
}
