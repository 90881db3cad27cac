package itest

import (
	"net/http"
	"testing"
)

type campBody struct {
	Camp struct {
		Id   string `json:"id"`
		Days []struct {
			Id        string `json:"id"`
			DayNumber int    `json:"dayNumber"`
		} `json:"days"`
	} `json:"camp"`
}

type registrationBody struct {
	Registration struct {
		Id              string          `json:"id"`
		DayAvailability map[string]bool `json:"dayAvailability"`
	} `json:"registration"`
	Attendance struct {
		AvailableDays int `json:"availableDays"`
		TotalDays     int `json:"totalDays"`
		Percentage    int `json:"percentage"`
	} `json:"attendance"`
}

func TestCampRegistration_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)
			admin := srv.adminSubject
			joiner := "itest|joiner-" + srv.tag

			// Missing auth header => 401
			{
				status, body, hdr := srv.doJSON(t, http.MethodGet, "/camps", "", nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "UNAUTHORIZED")
				requireHeaderPresent(t, hdr, "Content-Type")
			}

			// Unprovisioned subjects cannot use the camp endpoints.
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/camps", joiner, nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "USER_NOT_PROVISIONED")
			}

			// Provision, then promote to JOINER.
			var joinerID string
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/users/me", joiner, map[string]any{
					"firstname": "Jo",
					"email":     "joiner-" + srv.tag + "@example.com",
				})
				requireStatus(t, status, body, http.StatusCreated)
				joinerID = mustUnmarshal[struct {
					User struct {
						Id string `json:"id"`
					} `json:"user"`
				}](t, body).User.Id

				status, body, _ = srv.doJSON(t, http.MethodPut, "/users/"+joinerID+"/role", admin, map[string]any{"role": "JOINER"})
				requireStatus(t, status, body, http.StatusOK)
			}

			// Admin creates a three-day camp.
			var camp campBody
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/camps", admin, map[string]any{
					"name":      "ITest Camp " + srv.tag,
					"location":  "Bangkok",
					"startDate": "2024-01-01",
					"endDate":   "2024-01-03",
					"days": []map[string]any{
						{"date": "2024-01-01", "activities": []string{"Welcome"}},
						{"date": "2024-01-02"},
						{"date": "2024-01-03"},
					},
				})
				requireStatus(t, status, body, http.StatusCreated)
				camp = mustUnmarshal[campBody](t, body)
				if len(camp.Camp.Days) != 3 {
					t.Fatalf("days=%d want=3", len(camp.Camp.Days))
				}
			}
			d1, d2, d3 := camp.Camp.Days[0].Id, camp.Camp.Days[1].Id, camp.Camp.Days[2].Id
			campPath := "/camps/" + camp.Camp.Id

			// Register with partial availability: 1 of 3 days => 33%.
			var reg registrationBody
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, campPath+"/registration", joiner, map[string]any{
					"dayAvailability": map[string]bool{d1: true, d2: false},
				})
				requireStatus(t, status, body, http.StatusCreated)
				reg = mustUnmarshal[registrationBody](t, body)
				if reg.Attendance.Percentage != 33 {
					t.Fatalf("percentage=%d want=33", reg.Attendance.Percentage)
				}
			}

			// Duplicate registration => 409.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, campPath+"/registration", joiner, map[string]any{
					"dayAvailability": map[string]bool{d3: true},
				})
				requireErrorCode(t, status, body, http.StatusConflict, "ALREADY_REGISTERED")
			}

			// Update to all days => 100%.
			{
				status, body, _ := srv.doJSON(t, http.MethodPut, "/registrations/"+reg.Registration.Id, joiner, map[string]any{
					"dayAvailability": map[string]bool{d1: true, d2: true, d3: true},
				})
				requireStatus(t, status, body, http.StatusOK)
				if got := mustUnmarshal[registrationBody](t, body); got.Attendance.Percentage != 100 {
					t.Fatalf("percentage=%d want=100", got.Attendance.Percentage)
				}
			}

			// Removing a day renumbers the rest and prunes the availability entry.
			{
				status, body, _ := srv.doJSON(t, http.MethodDelete, campPath+"/days/"+d1, admin, nil)
				requireStatus(t, status, body, http.StatusOK)
				got := mustUnmarshal[campBody](t, body)
				if len(got.Camp.Days) != 2 || got.Camp.Days[0].Id != d2 || got.Camp.Days[0].DayNumber != 1 {
					t.Fatalf("days after removal=%+v", got.Camp.Days)
				}

				status, body, _ = srv.doJSON(t, http.MethodGet, campPath+"/registration", joiner, nil)
				requireStatus(t, status, body, http.StatusOK)
				r := mustUnmarshal[registrationBody](t, body)
				if _, ok := r.Registration.DayAvailability[d1]; ok {
					t.Fatalf("expected %s pruned, got %v", d1, r.Registration.DayAvailability)
				}
				if r.Attendance.TotalDays != 2 || r.Attendance.Percentage != 100 {
					t.Fatalf("attendance=%+v", r.Attendance)
				}
			}

			// Search is case-insensitive.
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/camps?q=ITEST%20CAMP%20"+srv.tag, joiner, nil)
				requireStatus(t, status, body, http.StatusOK)
				got := mustUnmarshal[struct {
					Camps []struct {
						Id string `json:"id"`
					} `json:"camps"`
				}](t, body)
				if len(got.Camps) != 1 || got.Camps[0].Id != camp.Camp.Id {
					t.Fatalf("search=%+v", got.Camps)
				}
			}

			// Cascade delete.
			{
				status, body, _ := srv.doJSON(t, http.MethodDelete, campPath, admin, nil)
				requireStatus(t, status, body, http.StatusNoContent)

				status, body, _ = srv.doJSON(t, http.MethodGet, "/me/registrations", joiner, nil)
				requireStatus(t, status, body, http.StatusOK)
				got := mustUnmarshal[struct {
					Registrations []struct {
						Id string `json:"id"`
					} `json:"registrations"`
				}](t, body)
				if len(got.Registrations) != 0 {
					t.Fatalf("registrations after cascade=%+v", got.Registrations)
				}

				status, body, _ = srv.doJSON(t, http.MethodGet, campPath, joiner, nil)
				requireErrorCode(t, status, body, http.StatusNotFound, "CAMP_NOT_FOUND")
			}
		})
	}
}
