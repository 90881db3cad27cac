package userrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID    map[domain.UserID]domain.User
	idBySub map[domain.SubjectID]domain.UserID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.UserID]domain.User),
		idBySub: make(map[domain.SubjectID]domain.UserID),
	}
}

func (r *Repo) Create(ctx context.Context, u domain.User) error {
	_ = ctx
	if u.ID == "" {
		return userrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[u.ID]; ok {
		return userrepo.ErrAlreadyExists
	}
	if u.Subject != "" {
		if _, ok := r.idBySub[u.Subject]; ok {
			return userrepo.ErrSubjectAlreadyBound
		}
		r.idBySub[u.Subject] = u.ID
	}
	r.byID[u.ID] = domain.CloneUser(u)
	return nil
}

func (r *Repo) Update(ctx context.Context, u domain.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[u.ID]
	if !ok {
		return userrepo.ErrNotFound
	}
	// Subject binding is immutable once set.
	if existing.Subject != "" && existing.Subject != u.Subject {
		return userrepo.ErrSubjectAlreadyBound
	}
	if existing.Subject == "" && u.Subject != "" {
		if _, taken := r.idBySub[u.Subject]; taken {
			return userrepo.ErrSubjectAlreadyBound
		}
		r.idBySub[u.Subject] = u.ID
	}
	r.byID[u.ID] = domain.CloneUser(u)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, userrepo.ErrNotFound
	}
	return domain.CloneUser(u), nil
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idBySub[subject]
	if !ok {
		return domain.User{}, userrepo.ErrNotFound
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, userrepo.ErrNotFound
	}
	return domain.CloneUser(u), nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	_ = ctx
	email = strings.TrimSpace(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			return domain.CloneUser(u), nil
		}
	}
	return domain.User{}, userrepo.ErrNotFound
}

func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, domain.CloneUser(u))
	}
	domain.SortUsersByDisplayName(out)
	return out, nil
}
