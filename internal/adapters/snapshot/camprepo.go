package snapshot

import (
	"context"
	"slices"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
)

// CampRepo implements camprepo.Repository on top of a Store.
type CampRepo struct{ s *Store }

var _ camprepo.Repository = (*CampRepo)(nil)

func (r *CampRepo) Create(ctx context.Context, c domain.Camp) error {
	if c.ID == "" {
		return camprepo.ErrAlreadyExists
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.indexOf(c.ID) >= 0 {
		return camprepo.ErrAlreadyExists
	}
	next := append(slices.Clone(r.s.camps), c.Clone())
	return r.s.commitCamps(ctx, next)
}

func (r *CampRepo) Update(ctx context.Context, c domain.Camp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(c.ID)
	if i < 0 {
		return camprepo.ErrNotFound
	}
	next := slices.Clone(r.s.camps)
	next[i] = c.Clone()
	return r.s.commitCamps(ctx, next)
}

func (r *CampRepo) Delete(ctx context.Context, id domain.CampID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return camprepo.ErrNotFound
	}
	next := slices.Delete(slices.Clone(r.s.camps), i, i+1)
	return r.s.commitCamps(ctx, next)
}

func (r *CampRepo) GetByID(ctx context.Context, id domain.CampID) (domain.Camp, error) {
	_ = ctx
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Camp{}, camprepo.ErrNotFound
	}
	return r.s.camps[i].Clone(), nil
}

func (r *CampRepo) List(ctx context.Context) ([]domain.Camp, error) {
	_ = ctx
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Camp, 0, len(r.s.camps))
	for _, c := range r.s.camps {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (r *CampRepo) indexOf(id domain.CampID) int {
	return slices.IndexFunc(r.s.camps, func(c domain.Camp) bool { return c.ID == id })
}
