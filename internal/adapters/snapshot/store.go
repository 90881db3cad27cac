// Package snapshot persists camps, registrations, and users as whole JSON documents in a
// key/value store, keeping the authoritative copy in memory.
//
// Every mutation writes the next document to the store first and only swaps the in-memory
// state once the write succeeded, so a failed write leaves both sides unchanged.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/platform/logging"
)

const (
	KeyCamps         = "camps"
	KeyRegistrations = "registrations"
	KeyUsers         = "users"
	KeySchemaVersion = "schema_version"

	SchemaVersion = "1"
)

// ErrSchemaVersion is returned by Open when the stored schema version is not SchemaVersion.
var ErrSchemaVersion = errors.New("unsupported snapshot schema version")

// KV is the key/value contract the snapshot needs. kvstore.Store implements it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Store struct {
	kv  KV
	log logging.Logger

	mu    sync.RWMutex
	camps []domain.Camp
	regs  []domain.Registration
	users []domain.User
}

// Open loads the current snapshot from kv. An empty store is initialized with the schema version.
func Open(ctx context.Context, kv KV, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Nop()
	}
	s := &Store{kv: kv, log: log.With("component", "snapshot")}

	v, ok, err := kv.Get(ctx, KeySchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeySchemaVersion, err)
	}
	if ok && string(v) != SchemaVersion {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrSchemaVersion, v, SchemaVersion)
	}

	camps, err := load[campDTO](ctx, kv, KeyCamps)
	if err != nil {
		return nil, err
	}
	regs, err := load[registrationDTO](ctx, kv, KeyRegistrations)
	if err != nil {
		return nil, err
	}
	users, err := load[userDTO](ctx, kv, KeyUsers)
	if err != nil {
		return nil, err
	}

	for _, d := range camps {
		s.camps = append(s.camps, campFromDTO(d))
	}
	pairs := make(map[[2]string]struct{}, len(regs))
	for _, d := range regs {
		k := [2]string{d.UserID, d.CampID}
		if _, dup := pairs[k]; dup {
			return nil, fmt.Errorf("decode %s: duplicate registration for user %s in camp %s", KeyRegistrations, d.UserID, d.CampID)
		}
		pairs[k] = struct{}{}
		s.regs = append(s.regs, registrationFromDTO(d))
	}
	for _, d := range users {
		s.users = append(s.users, userFromDTO(d))
	}

	if !ok {
		if err := kv.Set(ctx, KeySchemaVersion, []byte(SchemaVersion)); err != nil {
			return nil, fmt.Errorf("init %s: %w", KeySchemaVersion, err)
		}
	}

	s.log.Info(ctx, "snapshot loaded", "camps", len(s.camps), "registrations", len(s.regs), "users", len(s.users))
	return s, nil
}

func load[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func (s *Store) Camps() *CampRepo                 { return &CampRepo{s: s} }
func (s *Store) Registrations() *RegistrationRepo { return &RegistrationRepo{s: s} }
func (s *Store) Users() *UserRepo                 { return &UserRepo{s: s} }

// write persists one document. Callers hold s.mu for writing.
func (s *Store) write(ctx context.Context, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.log.Error(ctx, "snapshot write failed", "key", key, "err", err)
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) commitCamps(ctx context.Context, next []domain.Camp) error {
	docs := make([]campDTO, 0, len(next))
	for _, c := range next {
		docs = append(docs, campToDTO(c))
	}
	if err := s.write(ctx, KeyCamps, docs); err != nil {
		return err
	}
	s.camps = next
	return nil
}

func (s *Store) commitRegistrations(ctx context.Context, next []domain.Registration) error {
	docs := make([]registrationDTO, 0, len(next))
	for _, r := range next {
		docs = append(docs, registrationToDTO(r))
	}
	if err := s.write(ctx, KeyRegistrations, docs); err != nil {
		return err
	}
	s.regs = next
	return nil
}

func (s *Store) commitUsers(ctx context.Context, next []domain.User) error {
	docs := make([]userDTO, 0, len(next))
	for _, u := range next {
		docs = append(docs, userToDTO(u))
	}
	if err := s.write(ctx, KeyUsers, docs); err != nil {
		return err
	}
	s.users = next
	return nil
}
