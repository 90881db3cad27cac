package httpapi

import (
	"net/http"
	"testing"
)

func TestCamps_ListAndSearch(t *testing.T) {
	t.Parallel()

	h := newTestAPI(t)

	rec := do(t, h, http.MethodGet, "/camps", subjectJoiner, nil)
	requireStatus(t, rec, http.StatusOK)
	if got := decode[CampListResponse](t, rec); len(got.Camps) != 2 {
		t.Fatalf("camps=%d want=2", len(got.Camps))
	}

	rec = do(t, h, http.MethodGet, "/camps?q=SUMMER", subjectJoiner, nil)
	requireStatus(t, rec, http.StatusOK)
	got := decode[CampListResponse](t, rec)
	if len(got.Camps) != 1 || got.Camps[0].Id != "2" {
		t.Fatalf("search result=%+v", got.Camps)
	}
	if got.Camps[0].StartDate.Format("2006-01-02") != "2024-06-15" {
		t.Fatalf("startDate=%s", got.Camps[0].StartDate)
	}

	rec = do(t, h, http.MethodGet, "/camps?q=", subjectJoiner, nil)
	requireStatus(t, rec, http.StatusOK)
	if got := decode[CampListResponse](t, rec); len(got.Camps) != 2 {
		t.Fatalf("empty term camps=%d want=2", len(got.Camps))
	}
}

func TestCamps_GetUnknown_404(t *testing.T) {
	t.Parallel()

	h := newTestAPI(t)
	rec := do(t, h, http.MethodGet, "/camps/nope", subjectJoiner, nil)
	requireErrorCode(t, rec, http.StatusNotFound, "CAMP_NOT_FOUND")
}

func TestCamps_CreateRequiresAdmin(t *testing.T) {
	t.Parallel()

	h := newTestAPI(t)
	body := map[string]any{"name": "Winter Camp", "startDate": "2024-12-01", "endDate": "2024-12-02"}

	rec := do(t, h, http.MethodPost, "/camps", subjectJoiner, body)
	requireErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = do(t, h, http.MethodPost, "/camps", subjectAdmin, body)
	requireStatus(t, rec, http.StatusCreated)
	created := decode[CampResponse](t, rec).Camp
	if created.Id == "" || created.Name != "Winter Camp" {
		t.Fatalf("created=%+v", created)
	}
	if created.OwnerId == nil || *created.OwnerId != "1" {
		t.Fatalf("ownerId=%v want caller", created.OwnerId)
	}
}

func TestCamps_CreateValidation_422(t *testing.T) {
	t.Parallel()

	h := newTestAPI(t)
	rec := do(t, h, http.MethodPost, "/camps", subjectAdmin, map[string]any{
		"name": "Backwards", "startDate": "2024-12-05", "endDate": "2024-12-01",
	})
	er := requireErrorCode(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	if !er.Error.Details.IsSpecified() {
		t.Fatalf("expected details")
	}
}

func TestCamps_Create_IdempotentReplayAndConflictOnReuse(t *testing.T) {
	t.Parallel()

	h := newTestAPI(t)
	body := map[string]any{
		"name":      "Autumn Camp",
		"startDate": "2024-10-01",
		"endDate":   "2024-10-02",
		"days":      []map[string]any{{"date": "2024-10-01"}, {"date": "2024-10-02"}},
	}

	rec1 := do(t, h, http.MethodPost, "/camps", subjectAdmin, body, "Idempotency-Key", "idem-camp-1")
	requireStatus(t, rec1, http.StatusCreated)
	first := decode[CampResponse](t, rec1).Camp

	rec2 := do(t, h, http.MethodPost, "/camps", subjectAdmin, body, "Idempotency-Key", "idem-camp-1")
	requireStatus(t, rec2, http.StatusCreated)
	if rec2.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay header")
	}
	if second := decode[CampResponse](t, rec2).Camp; second.Id != first.Id {
		t.Fatalf("replay id=%s want=%s", second.Id, first.Id)
	}

	body["name"] = "Different"
	rec3 := do(t, h, http.MethodPost, "/camps", subjectAdmin, body, "Idempotency-Key", "idem-camp-1")
	requireErrorCode(t, rec3, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE")

	rec := do(t, h, http.MethodGet, "/camps", subjectAdmin, nil)
	if got := decode[CampListResponse](t, rec); len(got.Camps) != 3 {
		t.Fatalf("camps=%d want=3 (one created)", len(got.Camps))
	}
}

func TestCamps_PatchNullableFields(t *testing.T) {
	t.Parallel()

	h := newTestAPI(t)

	rec := do(t, h, http.MethodPatch, "/camps/1", subjectAdmin, `{"description":null,"location":"Lakeside"}`)
	requireStatus(t, rec, http.StatusOK)
	c := decode[CampResponse](t, rec).Camp
	if c.Description != "" || c.Location != "Lakeside" || c.Name != "Camp Happy New Year 2024" {
		t.Fatalf("patched camp=%+v", c)
	}
	if len(c.Days) != 3 {
		t.Fatalf("days=%d want=3 (untouched)", len(c.Days))
	}

	rec = do(t, h, http.MethodPatch, "/camps/1", subjectAdmin, `{"name":null}`)
	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")

	rec = do(t, h, http.MethodPatch, "/camps/1", subjectJoiner, `{"location":"Elsewhere"}`)
	requireErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = do(t, h, http.MethodPatch, "/camps/missing", subjectAdmin, `{"location":"Elsewhere"}`)
	requireErrorCode(t, rec, http.StatusNotFound, "CAMP_NOT_FOUND")
}

func TestCamps_OwnedCampIsEditableOnlyByOwner(t *testing.T) {
	t.Parallel()

	h := newTestAPI(t)

	// Promote Emily so there are two admins.
	rec := do(t, h, http.MethodPut, "/users/3/role", subjectAdmin, map[string]any{"role": "ADMIN"})
	requireStatus(t, rec, http.StatusOK)

	rec = do(t, h, http.MethodPost, "/camps", subjectAdmin, map[string]any{
		"name": "Jane's Camp", "startDate": "2024-03-01", "endDate": "2024-03-01",
	})
	requireStatus(t, rec, http.StatusCreated)
	id := decode[CampResponse](t, rec).Camp.Id

	rec = do(t, h, http.MethodDelete, "/camps/"+id, subjectEmily, nil)
	requireErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = do(t, h, http.MethodDelete, "/camps/"+id, subjectAdmin, nil)
	requireStatus(t, rec, http.StatusNoContent)
}

func TestCamps_DaysAndActivities(t *testing.T) {
	t.Parallel()

	h := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/camps/1/days", subjectAdmin, map[string]any{"id": "d7", "date": "2024-01-04"})
	requireStatus(t, rec, http.StatusCreated)
	c := decode[CampResponse](t, rec).Camp
	if len(c.Days) != 4 || c.Days[3].Id != "d7" || c.Days[3].DayNumber != 4 {
		t.Fatalf("days after add=%+v", c.Days)
	}

	rec = do(t, h, http.MethodDelete, "/camps/1/days/d1", subjectAdmin, nil)
	requireStatus(t, rec, http.StatusOK)
	c = decode[CampResponse](t, rec).Camp
	for i, d := range c.Days {
		if d.DayNumber != i+1 {
			t.Fatalf("day %s numbered %d at position %d", d.Id, d.DayNumber, i)
		}
	}
	if c.Days[0].Id != "d2" {
		t.Fatalf("first day=%s want=d2", c.Days[0].Id)
	}

	rec = do(t, h, http.MethodDelete, "/camps/1/days/d1", subjectAdmin, nil)
	requireErrorCode(t, rec, http.StatusNotFound, "DAY_NOT_FOUND")

	rec = do(t, h, http.MethodPost, "/camps/1/days/d2/activities", subjectAdmin, map[string]any{"activity": "  Kayaking "})
	requireStatus(t, rec, http.StatusCreated)
	c = decode[CampResponse](t, rec).Camp
	acts := c.Days[0].Activities
	if acts[len(acts)-1] != "Kayaking" {
		t.Fatalf("activities=%v", acts)
	}

	rec = do(t, h, http.MethodDelete, "/camps/1/days/d2/activities/0", subjectAdmin, nil)
	requireStatus(t, rec, http.StatusOK)
	c = decode[CampResponse](t, rec).Camp
	if len(c.Days[0].Activities) != len(acts)-1 {
		t.Fatalf("activities after remove=%v", c.Days[0].Activities)
	}

	rec = do(t, h, http.MethodDelete, "/camps/1/days/d2/activities/abc", subjectAdmin, nil)
	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")

	rec = do(t, h, http.MethodDelete, "/camps/1/days/d2/activities/99", subjectAdmin, nil)
	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}
