package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	memclock "github.com/campflow/camp-registration-api/internal/adapters/memory/clock"
	"github.com/campflow/camp-registration-api/internal/domain"
	camprepoport "github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
	idempotencyport "github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
	registrationrepoport "github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
	userrepoport "github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

type CleanupFunc = func()

type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)
type CampRepoFactory func(t *testing.T) (camprepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

// IdemRetentionFactory builds a store that reads time from clk and forgets records older than
// retention.
type IdemRetentionFactory func(t *testing.T, clk clockport.Clock, retention time.Duration) (idempotencyport.Store, CleanupFunc)

// CampAndRegistrationFactory returns repositories that share one backing store, so registrations
// can reference camps created through the camp repository.
type CampAndRegistrationFactory func(t *testing.T) (camprepoport.Repository, registrationrepoport.Repository, CleanupFunc)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newCamp(name string) domain.Camp {
	suffix := uuid.NewString()
	return domain.Camp{
		ID:          domain.CampID("camp-" + suffix),
		Name:        name,
		Description: "A camp for testing",
		Location:    "Pine Forest Retreat",
		StartDate:   date(2024, 1, 1),
		EndDate:     date(2024, 1, 2),
		ImageURL:    "/img/camp.jpg",
		Days: []domain.CampDay{
			{ID: domain.CampDayID("d1-" + suffix), DayNumber: 1, Date: date(2024, 1, 1), Activities: []string{"Welcome", "Hike"}},
			{ID: domain.CampDayID("d2-" + suffix), DayNumber: 2, Date: date(2024, 1, 2), Activities: []string{"Farewell"}},
		},
	}
}

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Subject:  domain.SubjectID("sub-1"),
		Method:   "POST",
		Route:    "/camps",
		BodyHash: "",
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Different body hash is a different fingerprint.
	other := fp
	other.BodyHash = "zzz"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("expected miss for different fingerprint, ok=%v err=%v", ok, err)
	}
}

// RunIdempotencyRetention checks that the request-hash record and the stored response of a
// registration replay both expire together, and that the key can be reused afterwards.
func RunIdempotencyRetention(t *testing.T, newStore IdemRetentionFactory) {
	t.Helper()
	ctx := context.Background()

	// Start from the wall clock: shared databases purge rows relative to real time.
	clk := memclock.NewManualClock(time.Now().UTC().Truncate(time.Second))
	store, cleanup := newStore(t, clk, time.Hour)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	meta := idempotencyport.Fingerprint{
		Key:     idempotencyport.Key("reg-" + uuid.NewString()),
		Subject: domain.SubjectID("sub-" + uuid.NewString()),
		Method:  "POST",
		Route:   idempotencyport.RouteRegisterInCamp,
	}
	resp := meta
	resp.BodyHash = "body-1"

	if err := store.Put(ctx, meta, idempotencyport.Record{ContentType: "text/plain", Body: []byte("body-1")}); err != nil {
		t.Fatalf("Put meta: %v", err)
	}
	if err := store.Put(ctx, resp, idempotencyport.Record{StatusCode: 201, ContentType: "application/json", Body: []byte(`{"registration":{}}`)}); err != nil {
		t.Fatalf("Put response: %v", err)
	}

	stranger := resp
	stranger.Subject = domain.SubjectID("sub-" + uuid.NewString())
	if _, ok, err := store.Get(ctx, stranger); err != nil || ok {
		t.Fatalf("expected miss for another subject, ok=%v err=%v", ok, err)
	}

	clk.Advance(59 * time.Minute)
	for _, fp := range []idempotencyport.Fingerprint{meta, resp} {
		if _, ok, err := store.Get(ctx, fp); err != nil || !ok {
			t.Fatalf("expected %q within retention, ok=%v err=%v", fp.BodyHash, ok, err)
		}
	}

	clk.Advance(2 * time.Minute)
	for _, fp := range []idempotencyport.Fingerprint{meta, resp} {
		if _, ok, err := store.Get(ctx, fp); err != nil || ok {
			t.Fatalf("expected %q expired, ok=%v err=%v", fp.BodyHash, ok, err)
		}
	}

	// An expired key accepts a new body.
	if err := store.Put(ctx, meta, idempotencyport.Record{ContentType: "text/plain", Body: []byte("body-2")}); err != nil {
		t.Fatalf("Put after expiry: %v", err)
	}
	got, ok, err := store.Get(ctx, meta)
	if err != nil || !ok || string(got.Body) != "body-2" {
		t.Fatalf("expected fresh meta record, ok=%v err=%v body=%q", ok, err, string(got.Body))
	}
	if !got.CreatedAt.Equal(clk.Now()) {
		t.Fatalf("createdAt=%s want=%s", got.CreatedAt, clk.Now())
	}
}

func RunUserRepo(t *testing.T, newRepo UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	tag := uuid.NewString()
	aID := domain.UserID("user-" + uuid.NewString())
	sub := domain.SubjectID("sub-a-" + tag)
	region := domain.RegionBangkok
	if err := repo.Create(ctx, domain.User{
		ID:        aID,
		Subject:   sub,
		Firstname: "Alice",
		Surname:   "Johnson",
		Email:     "alice-" + tag + "@example.com",
		Role:      domain.RoleGuest,
		Region:    &region,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	got, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Region == nil || *got.Region != domain.RegionBangkok || got.Role != domain.RoleGuest {
		t.Fatalf("unexpected user: %+v", got)
	}
	if _, err := repo.GetBySubject(ctx, sub); err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if byEmail, err := repo.GetByEmail(ctx, "ALICE-"+tag+"@EXAMPLE.COM"); err != nil || byEmail.ID != aID {
		t.Fatalf("GetByEmail: id=%q err=%v", byEmail.ID, err)
	}
	if _, err := repo.GetByID(ctx, domain.UserID("user-missing-"+tag)); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("GetByID(missing) err=%v, want ErrNotFound", err)
	}

	// Subject uniqueness.
	if err := repo.Create(ctx, domain.User{
		ID:        domain.UserID("user-" + uuid.NewString()),
		Subject:   sub,
		Firstname: "Alice 2",
		Role:      domain.RoleGuest,
		CreatedAt: now,
		UpdatedAt: now,
	}); !errors.Is(err, userrepoport.ErrSubjectAlreadyBound) {
		t.Fatalf("expected ErrSubjectAlreadyBound, got %v", err)
	}

	// Unbound users (no subject) may coexist.
	for i := 0; i < 2; i++ {
		if err := repo.Create(ctx, domain.User{
			ID:        domain.UserID("user-" + uuid.NewString()),
			Firstname: "Unbound",
			Role:      domain.RoleJoiner,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			t.Fatalf("Create unbound %d: %v", i, err)
		}
	}

	// Update round-trips role and optional fields.
	got.Role = domain.RoleAdmin
	bio := "Loves camping"
	got.Bio = &bio
	got.Region = nil
	got.UpdatedAt = now.Add(time.Minute)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Role != domain.RoleAdmin || got.Bio == nil || *got.Bio != bio || got.Region != nil {
		t.Fatalf("unexpected updated user: %+v", got)
	}
	if err := repo.Update(ctx, domain.User{ID: domain.UserID("user-missing-" + tag)}); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("Update(missing) err=%v, want ErrNotFound", err)
	}

	us, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(us) < 3 {
		t.Fatalf("List len=%d, want >= 3", len(us))
	}
}

func RunCampRepo(t *testing.T, newRepo CampRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	a := newCamp("Camp A")
	b := newCamp("Camp B")
	b.OwnerID = domain.UserID("user-owner")
	for _, c := range []domain.Camp{a, b} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create %s: %v", c.Name, err)
		}
	}
	if err := repo.Create(ctx, a); !errors.Is(err, camprepoport.ErrAlreadyExists) {
		t.Fatalf("Create duplicate err=%v, want ErrAlreadyExists", err)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != a.Name || len(got.Days) != 2 || got.Days[0].ID != a.Days[0].ID || got.Days[1].DayNumber != 2 {
		t.Fatalf("unexpected camp: %+v", got)
	}
	if len(got.Days[0].Activities) != 2 || got.Days[0].Activities[1] != "Hike" {
		t.Fatalf("unexpected activities: %+v", got.Days[0].Activities)
	}
	if !got.StartDate.Equal(a.StartDate) || !got.Days[1].Date.Equal(a.Days[1].Date) {
		t.Fatalf("dates did not round-trip: %+v", got)
	}

	// Whole-array day replacement.
	got.Days = []domain.CampDay{{ID: domain.CampDayID("dx-" + uuid.NewString()), DayNumber: 1, Date: date(2024, 1, 1), Activities: []string{"Only day"}}}
	got.Name = "Camp A (edited)"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if again.Name != "Camp A (edited)" || len(again.Days) != 1 || again.Days[0].Activities[0] != "Only day" {
		t.Fatalf("unexpected updated camp: %+v", again)
	}

	// Insertion order is preserved.
	cs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	ia, ib := -1, -1
	for i, c := range cs {
		switch c.ID {
		case a.ID:
			ia = i
		case b.ID:
			ib = i
			if c.OwnerID != b.OwnerID {
				t.Fatalf("ownerId did not round-trip: %+v", c)
			}
		}
	}
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("unexpected list ordering: a=%d b=%d", ia, ib)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, a.ID); !errors.Is(err, camprepoport.ErrNotFound) {
		t.Fatalf("GetByID after delete err=%v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, camprepoport.ErrNotFound) {
		t.Fatalf("Delete twice err=%v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, a); !errors.Is(err, camprepoport.ErrNotFound) {
		t.Fatalf("Update deleted err=%v, want ErrNotFound", err)
	}
}

// RunRegistrationRepo exercises registration behaviors that require seeded camps.
func RunRegistrationRepo(t *testing.T, newRepos CampAndRegistrationFactory) {
	t.Helper()
	ctx := context.Background()

	camps, regs, cleanup := newRepos(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	c1 := newCamp("Camp One")
	c2 := newCamp("Camp Two")
	for _, c := range []domain.Camp{c1, c2} {
		if err := camps.Create(ctx, c); err != nil {
			t.Fatalf("seed camp: %v", err)
		}
	}

	now := time.Unix(2000, 0).UTC()
	alice := domain.UserID("user-alice-" + uuid.NewString())
	bob := domain.UserID("user-bob-" + uuid.NewString())

	r1 := domain.Registration{
		ID:               domain.RegistrationID("reg-" + uuid.NewString()),
		UserID:           alice,
		CampID:           c1.ID,
		DayAvailability:  map[domain.CampDayID]bool{c1.Days[0].ID: true, c1.Days[1].ID: false},
		RegistrationDate: now,
	}
	if err := regs.Create(ctx, r1); err != nil {
		t.Fatalf("Create r1: %v", err)
	}

	// At most one registration per (user, camp).
	dup := r1
	dup.ID = domain.RegistrationID("reg-" + uuid.NewString())
	if err := regs.Create(ctx, dup); !errors.Is(err, registrationrepoport.ErrAlreadyRegistered) {
		t.Fatalf("Create duplicate pair err=%v, want ErrAlreadyRegistered", err)
	}

	for _, r := range []domain.Registration{
		{ID: domain.RegistrationID("reg-" + uuid.NewString()), UserID: alice, CampID: c2.ID, DayAvailability: map[domain.CampDayID]bool{}, RegistrationDate: now},
		{ID: domain.RegistrationID("reg-" + uuid.NewString()), UserID: bob, CampID: c1.ID, DayAvailability: map[domain.CampDayID]bool{c1.Days[1].ID: true}, RegistrationDate: now.Add(time.Second)},
	} {
		if err := regs.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.ID, err)
		}
	}

	got, err := regs.GetByCampAndUser(ctx, c1.ID, alice)
	if err != nil {
		t.Fatalf("GetByCampAndUser: %v", err)
	}
	if got.ID != r1.ID || !got.DayAvailability[c1.Days[0].ID] || got.DayAvailability[c1.Days[1].ID] {
		t.Fatalf("unexpected registration: %+v", got)
	}
	if !got.RegistrationDate.Equal(now) {
		t.Fatalf("registrationDate=%v, want %v", got.RegistrationDate, now)
	}
	if _, err := regs.GetByCampAndUser(ctx, c2.ID, bob); !errors.Is(err, registrationrepoport.ErrNotFound) {
		t.Fatalf("GetByCampAndUser(missing) err=%v, want ErrNotFound", err)
	}

	// Update replaces availability wholesale.
	got.DayAvailability = map[domain.CampDayID]bool{c1.Days[1].ID: true}
	if err := regs.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	byID, err := regs.GetByID(ctx, r1.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(byID.DayAvailability) != 1 || !byID.DayAvailability[c1.Days[1].ID] {
		t.Fatalf("availability not replaced: %+v", byID.DayAvailability)
	}
	if err := regs.Update(ctx, domain.Registration{ID: "reg-missing"}); !errors.Is(err, registrationrepoport.ErrNotFound) {
		t.Fatalf("Update(missing) err=%v, want ErrNotFound", err)
	}

	byCamp, err := regs.ListByCamp(ctx, c1.ID)
	if err != nil {
		t.Fatalf("ListByCamp: %v", err)
	}
	if len(byCamp) != 2 || byCamp[0].UserID != alice || byCamp[1].UserID != bob {
		t.Fatalf("unexpected ListByCamp: %+v", byCamp)
	}
	byUser, err := regs.ListByUser(ctx, alice)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("ListByUser len=%d, want 2", len(byUser))
	}

	// Cascade by camp.
	n, err := regs.DeleteByCamp(ctx, c1.ID)
	if err != nil {
		t.Fatalf("DeleteByCamp: %v", err)
	}
	if n != 2 {
		t.Fatalf("DeleteByCamp removed %d, want 2", n)
	}
	if rest, _ := regs.ListByCamp(ctx, c1.ID); len(rest) != 0 {
		t.Fatalf("expected no registrations for deleted camp, got %d", len(rest))
	}
	if rest, _ := regs.ListByUser(ctx, alice); len(rest) != 1 || rest[0].CampID != c2.ID {
		t.Fatalf("unrelated registration affected: %+v", rest)
	}

	// The pair becomes free again once its registration is gone.
	again := r1
	again.ID = domain.RegistrationID("reg-" + uuid.NewString())
	if err := regs.Create(ctx, again); err != nil {
		t.Fatalf("re-register after cascade: %v", err)
	}
}
