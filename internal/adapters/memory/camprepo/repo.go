package camprepo

import (
	"context"
	"sync"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
)

// Repo is an in-memory implementation of camprepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID  map[domain.CampID]domain.Camp
	order []domain.CampID
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.CampID]domain.Camp)}
}

func (r *Repo) Create(ctx context.Context, c domain.Camp) error {
	_ = ctx
	if c.ID == "" {
		return camprepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; ok {
		return camprepo.ErrAlreadyExists
	}
	r.byID[c.ID] = c.Clone()
	r.order = append(r.order, c.ID)
	return nil
}

func (r *Repo) Update(ctx context.Context, c domain.Camp) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; !ok {
		return camprepo.ErrNotFound
	}
	r.byID[c.ID] = c.Clone()
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.CampID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return camprepo.ErrNotFound
	}
	delete(r.byID, id)
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.CampID) (domain.Camp, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return domain.Camp{}, camprepo.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Camp, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Camp, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}
