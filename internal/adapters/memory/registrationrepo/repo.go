package registrationrepo

import (
	"context"
	"sync"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
)

type pairKey struct {
	userID domain.UserID
	campID domain.CampID
}

// Repo is an in-memory implementation of registrationrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID   map[domain.RegistrationID]domain.Registration
	byPair map[pairKey]domain.RegistrationID
	order  []domain.RegistrationID
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[domain.RegistrationID]domain.Registration),
		byPair: make(map[pairKey]domain.RegistrationID),
	}
}

func (r *Repo) Create(ctx context.Context, reg domain.Registration) error {
	_ = ctx
	if reg.ID == "" {
		return registrationrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[reg.ID]; ok {
		return registrationrepo.ErrAlreadyExists
	}
	k := pairKey{userID: reg.UserID, campID: reg.CampID}
	if _, ok := r.byPair[k]; ok {
		return registrationrepo.ErrAlreadyRegistered
	}
	r.byID[reg.ID] = reg.Clone()
	r.byPair[k] = reg.ID
	r.order = append(r.order, reg.ID)
	return nil
}

func (r *Repo) Update(ctx context.Context, reg domain.Registration) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[reg.ID]
	if !ok {
		return registrationrepo.ErrNotFound
	}
	// The (user, camp) pair and registration date are fixed at creation.
	existing.DayAvailability = domain.CloneAvailability(reg.DayAvailability)
	r.byID[reg.ID] = existing
	return nil
}

func (r *Repo) DeleteByCamp(ctx context.Context, campID domain.CampID) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	removed := 0
	for _, id := range r.order {
		reg := r.byID[id]
		if reg.CampID != campID {
			kept = append(kept, id)
			continue
		}
		delete(r.byID, id)
		delete(r.byPair, pairKey{userID: reg.UserID, campID: reg.CampID})
		removed++
	}
	r.order = kept
	return removed, nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RegistrationID) (domain.Registration, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byID[id]
	if !ok {
		return domain.Registration{}, registrationrepo.ErrNotFound
	}
	return reg.Clone(), nil
}

func (r *Repo) GetByCampAndUser(ctx context.Context, campID domain.CampID, userID domain.UserID) (domain.Registration, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey{userID: userID, campID: campID}]
	if !ok {
		return domain.Registration{}, registrationrepo.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Registration, error) {
	return r.filter(ctx, func(domain.Registration) bool { return true })
}

func (r *Repo) ListByCamp(ctx context.Context, campID domain.CampID) ([]domain.Registration, error) {
	return r.filter(ctx, func(reg domain.Registration) bool { return reg.CampID == campID })
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Registration, error) {
	return r.filter(ctx, func(reg domain.Registration) bool { return reg.UserID == userID })
}

func (r *Repo) filter(ctx context.Context, keep func(domain.Registration) bool) ([]domain.Registration, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Registration, 0)
	for _, id := range r.order {
		if reg := r.byID[id]; keep(reg) {
			out = append(out, reg.Clone())
		}
	}
	return out, nil
}
