package snapshot

import (
	"context"
	"slices"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
)

// RegistrationRepo implements registrationrepo.Repository on top of a Store.
type RegistrationRepo struct{ s *Store }

var _ registrationrepo.Repository = (*RegistrationRepo)(nil)

func (r *RegistrationRepo) Create(ctx context.Context, reg domain.Registration) error {
	if reg.ID == "" {
		return registrationrepo.ErrAlreadyExists
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.regs {
		if existing.ID == reg.ID {
			return registrationrepo.ErrAlreadyExists
		}
		if existing.UserID == reg.UserID && existing.CampID == reg.CampID {
			return registrationrepo.ErrAlreadyRegistered
		}
	}
	next := append(slices.Clone(r.s.regs), reg.Clone())
	return r.s.commitRegistrations(ctx, next)
}

func (r *RegistrationRepo) Update(ctx context.Context, reg domain.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := slices.IndexFunc(r.s.regs, func(x domain.Registration) bool { return x.ID == reg.ID })
	if i < 0 {
		return registrationrepo.ErrNotFound
	}
	next := slices.Clone(r.s.regs)
	updated := next[i]
	updated.DayAvailability = domain.CloneAvailability(reg.DayAvailability)
	next[i] = updated
	return r.s.commitRegistrations(ctx, next)
}

func (r *RegistrationRepo) DeleteByCamp(ctx context.Context, campID domain.CampID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	next := make([]domain.Registration, 0, len(r.s.regs))
	for _, reg := range r.s.regs {
		if reg.CampID != campID {
			next = append(next, reg)
		}
	}
	removed := len(r.s.regs) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := r.s.commitRegistrations(ctx, next); err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *RegistrationRepo) GetByID(ctx context.Context, id domain.RegistrationID) (domain.Registration, error) {
	return r.first(ctx, func(reg domain.Registration) bool { return reg.ID == id })
}

func (r *RegistrationRepo) GetByCampAndUser(ctx context.Context, campID domain.CampID, userID domain.UserID) (domain.Registration, error) {
	return r.first(ctx, func(reg domain.Registration) bool { return reg.CampID == campID && reg.UserID == userID })
}

func (r *RegistrationRepo) List(ctx context.Context) ([]domain.Registration, error) {
	return r.filter(ctx, func(domain.Registration) bool { return true })
}

func (r *RegistrationRepo) ListByCamp(ctx context.Context, campID domain.CampID) ([]domain.Registration, error) {
	return r.filter(ctx, func(reg domain.Registration) bool { return reg.CampID == campID })
}

func (r *RegistrationRepo) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Registration, error) {
	return r.filter(ctx, func(reg domain.Registration) bool { return reg.UserID == userID })
}

func (r *RegistrationRepo) first(ctx context.Context, match func(domain.Registration) bool) (domain.Registration, error) {
	_ = ctx
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, reg := range r.s.regs {
		if match(reg) {
			return reg.Clone(), nil
		}
	}
	return domain.Registration{}, registrationrepo.ErrNotFound
}

func (r *RegistrationRepo) filter(ctx context.Context, keep func(domain.Registration) bool) ([]domain.Registration, error) {
	_ = ctx
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Registration, 0)
	for _, reg := range r.s.regs {
		if keep(reg) {
			out = append(out, reg.Clone())
		}
	}
	return out, nil
}
