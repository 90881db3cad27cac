package registrationrepo

import (
	"testing"

	"github.com/campflow/camp-registration-api/internal/adapters/contracttest"
	memcamprepo "github.com/campflow/camp-registration-api/internal/adapters/memory/camprepo"
	camprepoport "github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
	registrationrepoport "github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
)

func TestContract_RegistrationRepo(t *testing.T) {
	contracttest.RunRegistrationRepo(t, func(t *testing.T) (camprepoport.Repository, registrationrepoport.Repository, func()) {
		t.Helper()
		return memcamprepo.NewRepo(), NewRepo(), nil
	})
}
