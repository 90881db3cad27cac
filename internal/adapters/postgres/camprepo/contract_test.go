package camprepo

import (
	"testing"

	"github.com/campflow/camp-registration-api/internal/adapters/contracttest"
	"github.com/campflow/camp-registration-api/internal/adapters/postgres/testutil"
	camprepoport "github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
)

func TestContract_PostgresCampRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunCampRepo(t, func(t *testing.T) (camprepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
