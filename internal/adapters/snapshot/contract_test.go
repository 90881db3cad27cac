package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campflow/camp-registration-api/internal/adapters/contracttest"
	"github.com/campflow/camp-registration-api/internal/adapters/snapshot"
	"github.com/campflow/camp-registration-api/internal/adapters/sqlite/kvstore"
	camprepoport "github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
	registrationrepoport "github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
	userrepoport "github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

func openSnapshot(t *testing.T) (*snapshot.Store, *kvstore.Store) {
	t.Helper()
	ctx := context.Background()
	kv, err := kvstore.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	s, err := snapshot.Open(ctx, kv, nil)
	require.NoError(t, err)
	return s, kv
}

func TestContract_CampRepo(t *testing.T) {
	contracttest.RunCampRepo(t, func(t *testing.T) (camprepoport.Repository, func()) {
		s, _ := openSnapshot(t)
		return s.Camps(), nil
	})
}

func TestContract_RegistrationRepo(t *testing.T) {
	contracttest.RunRegistrationRepo(t, func(t *testing.T) (camprepoport.Repository, registrationrepoport.Repository, func()) {
		s, _ := openSnapshot(t)
		return s.Camps(), s.Registrations(), nil
	})
}

func TestContract_UserRepo(t *testing.T) {
	contracttest.RunUserRepo(t, func(t *testing.T) (userrepoport.Repository, func()) {
		s, _ := openSnapshot(t)
		return s.Users(), nil
	})
}
