package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gllabs/portal/core/unit"
	"github.com/gllabs/portal/core/user"
	testutil "github.com/gllabs/portal/tests"
)

func Test_unitApi_unitCreate(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@gll.edu", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Mei Lin", "meilin", "mei@gll.edu", "", user.TeacherRoles, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "unit created", token: getToken(t, admin), wantCode: http.StatusCreated,
			body: marchallObj(t, unit.NewUnit{Name: "Cultural Exchange", Description: "Connecting classrooms across continents"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/units"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var u unit.Unit
				if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if u.Name != "Cultural Exchange" {
					t.Errorf("Name = %q; want %q", u.Name, "Cultural Exchange")
				}
				if u.Description.String != "Connecting classrooms across continents" {
					t.Errorf("Description = %q", u.Description.String)
				}
				// a new unit starts with 6 blank weeks
				if len(u.Weeks) != 6 {
					t.Fatalf("len(Weeks) = %d; want 6", len(u.Weeks))
				}
				for i, w := range u.Weeks {
					if w.WeekNumber != i+1 {
						t.Errorf("Weeks[%d].WeekNumber = %d; want %d", i, w.WeekNumber, i+1)
					}
					if len(w.Content) != 0 {
						t.Errorf("Weeks[%d] has %d content items; want 0", i, len(w.Content))
					}
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_unitApi_unitQueryRetrieve(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@gll.edu", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	u1 := createTemplateUnit(t, "Cultural Exchange")
	u2 := testutil.CreateUnit(t, unitRepo, "Water Around the World", nil)

	// the list endpoint returns units without their weeks
	u1Flat, u2Flat := u1, u2
	u1Flat.Weeks, u2Flat.Weeks = nil, nil

	fullU1, err := unitRepo.GetUnit(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("GetUnit(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/units", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/units", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, u1Flat, u2Flat)},
		{name: "Retrieve", path: "/v1/units/" + u1.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, fullU1)},
		{
			name: "Retrieve unknown", path: "/v1/units/lol", token: adminToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "unit not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_unitApi_unitUpdateDestroy(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@gll.edu", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	u := testutil.CreateUnit(t, unitRepo, "Water Around the World", nil)

	t.Run("update unknown", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "unit not found"}),
		}
		req, rec := newAuthRequest(http.MethodPatch, "/v1/units/lol", adminToken, marchallObj(t, unit.UpdateUnit{Name: "nope"}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/v1/units/"+u.ID, adminToken, marchallObj(t, unit.UpdateUnit{Name: "Water & Climate"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var updated unit.Unit
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if updated.Name != "Water & Climate" {
			t.Errorf("Name = %q; want %q", updated.Name, "Water & Climate")
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/units/"+u.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
		if _, err := unitRepo.GetUnit(context.Background(), u.ID); err == nil {
			t.Error("unit still exists after delete")
		}
	})
}

func Test_unitApi_weekAndContent(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@gll.edu", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	u := createTemplateUnit(t, "Cultural Exchange")
	week1 := u.Weeks[0]

	weekNum := func(n int) *int { return &n }

	var newWeek unit.Week
	t.Run("add week", func(t *testing.T) {
		body := marchallObj(t, unit.NewWeek{WeekNumber: weekNum(3), Title: "Deliver", Subtitle: "Final showcase"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/units/"+u.ID+"/weeks", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &newWeek); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if newWeek.WeekNumber != 3 || newWeek.Title != "Deliver" {
			t.Errorf("week = %+v", newWeek)
		}
	})

	t.Run("add week: number taken", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "a week with this number already exists in this unit"}),
		}
		body := marchallObj(t, unit.NewWeek{WeekNumber: weekNum(1), Title: "Clone"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/units/"+u.ID+"/weeks", adminToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("add week: unknown unit", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "unit not found"})}
		body := marchallObj(t, unit.NewWeek{WeekNumber: weekNum(1), Title: "Ghost"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/units/lol/weeks", adminToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update week", func(t *testing.T) {
		body := marchallObj(t, unit.UpdateWeek{Title: "Discover & Connect"})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/units/"+u.ID+"/weeks/"+week1.ID, adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var w unit.Week
		if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if w.Title != "Discover & Connect" {
			t.Errorf("Title = %q", w.Title)
		}
	})

	t.Run("add content: invalid type", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"type": "unknown content type"}),
		}
		body := marchallObj(t, unit.NewContentItem{Type: "PODCAST", Title: "Nope"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/units/"+u.ID+"/weeks/"+week1.ID+"/content", adminToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	var item unit.ContentItem
	t.Run("add content", func(t *testing.T) {
		body := marchallObj(t, unit.NewContentItem{
			Type: unit.ContentVideo, Title: "Intro Video", URL: "https://videos.gll.edu/intro", Order: 1,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/units/"+u.ID+"/weeks/"+week1.ID+"/content", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if item.Type != unit.ContentVideo || item.URL.String != "https://videos.gll.edu/intro" {
			t.Errorf("item = %+v", item)
		}
	})

	t.Run("add content: order taken", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "a content item with this order already exists in this week"}),
		}
		body := marchallObj(t, unit.NewContentItem{Type: unit.ContentTask, Title: "Clash", Order: 1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/units/"+u.ID+"/weeks/"+week1.ID+"/content", adminToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("destroy content", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/units/"+u.ID+"/weeks/"+week1.ID+"/content/"+item.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
	})

	t.Run("destroy week", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/units/"+u.ID+"/weeks/"+newWeek.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
		refreshed, err := unitRepo.GetUnit(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("GetUnit(): %v", err)
		}
		if len(refreshed.Weeks) != 2 {
			t.Errorf("len(Weeks) = %d; want 2", len(refreshed.Weeks))
		}
	})
}
