package unit_test

import (
	"context"
	"testing"

	"github.com/gllabs/portal/core/unit"
	inmemdb "github.com/gllabs/portal/storage/database/inmem"
	testutil "github.com/gllabs/portal/tests"
)

func setup(t *testing.T) unit.Service {
	db := testutil.PrepareDB(t)
	return unit.NewService(inmemdb.NewUnitRepository(db))
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, unit.NewUnit{Name: "Cultural Exchange", Description: "A four-week unit."})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if u.ID == "" {
		t.Error("expected an ID")
	}
	if u.Description.String != "A four-week unit." {
		t.Errorf("Description = %+v", u.Description)
	}

	// every new unit starts with six blank weeks, numbered 1..6
	if want := 6; len(u.Weeks) != want {
		t.Fatalf("len(Weeks) = %d, want %d", len(u.Weeks), want)
	}
	for i, w := range u.Weeks {
		if w.WeekNumber != i+1 {
			t.Errorf("Weeks[%d].WeekNumber = %d, want %d", i, w.WeekNumber, i+1)
		}
		if w.Title != "" || len(w.Content) != 0 {
			t.Errorf("Weeks[%d] not blank: %+v", i, w)
		}
	}
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, unit.NewUnit{Name: "Original", Description: "desc"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	empty := ""
	updated, err := svc.Update(ctx, u.ID, unit.UpdateUnit{Name: "Renamed", Description: &empty})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("Name = %q", updated.Name)
	}
	if updated.Description.Valid {
		t.Errorf("Description = %+v, want cleared", updated.Description)
	}

	if _, err = svc.Update(ctx, "nope", unit.UpdateUnit{Name: "x"}); err != unit.ErrNotFound {
		t.Errorf("Update() error = %v, want %v", err, unit.ErrNotFound)
	}
}

func TestService_AddWeek(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, unit.NewUnit{Name: "Template"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	n := 7
	w, err := svc.AddWeek(ctx, u.ID, unit.NewWeek{WeekNumber: &n, Title: "Week Seven", Subtitle: "extras"})
	if err != nil {
		t.Fatalf("AddWeek() failed: %v", err)
	}
	if w.WeekNumber != 7 || w.Subtitle.String != "extras" {
		t.Errorf("AddWeek() = %+v", w)
	}

	// week numbers are unique within a unit
	if _, err = svc.AddWeek(ctx, u.ID, unit.NewWeek{WeekNumber: &n, Title: "Dup"}); err != unit.ErrWeekNumberTaken {
		t.Errorf("AddWeek() error = %v, want %v", err, unit.ErrWeekNumberTaken)
	}
	if _, err = svc.AddWeek(ctx, "nope", unit.NewWeek{WeekNumber: &n, Title: "Orphan"}); err != unit.ErrNotFound {
		t.Errorf("AddWeek() error = %v, want %v", err, unit.ErrNotFound)
	}
}

func TestService_AddContent(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, unit.NewUnit{Name: "Template"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	w := u.Weeks[0]

	item, err := svc.AddContent(ctx, w.ID, unit.NewContentItem{
		Type:  unit.ContentVideo,
		Title: "A Day in My City",
		URL:   "https://example.com/videos/day-in-my-city",
		Order: 0,
	})
	if err != nil {
		t.Fatalf("AddContent() failed: %v", err)
	}
	if item.WeekID != w.ID || item.Type != unit.ContentVideo {
		t.Errorf("AddContent() = %+v", item)
	}

	// display order is unique within a week
	if _, err = svc.AddContent(ctx, w.ID, unit.NewContentItem{Type: unit.ContentTask, Title: "Clash", Order: 0}); err != unit.ErrOrderTaken {
		t.Errorf("AddContent() error = %v, want %v", err, unit.ErrOrderTaken)
	}
	if _, err = svc.AddContent(ctx, "nope", unit.NewContentItem{Type: unit.ContentTask, Title: "Orphan", Order: 1}); err != unit.ErrWeekNotFound {
		t.Errorf("AddContent() error = %v, want %v", err, unit.ErrWeekNotFound)
	}
}

func TestService_Delete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, unit.NewUnit{Name: "Disposable"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err = svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.Get(ctx, u.ID); err != unit.ErrNotFound {
		t.Errorf("Get() error = %v, want %v", err, unit.ErrNotFound)
	}
	// weeks die with the unit
	if _, err = svc.UpdateWeek(ctx, u.Weeks[0].ID, unit.UpdateWeek{Title: "zombie"}); err != unit.ErrWeekNotFound {
		t.Errorf("UpdateWeek() error = %v, want %v", err, unit.ErrWeekNotFound)
	}
}

func TestNewContentItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      unit.NewContentItem
		wantErr bool
	}{
		{name: "valid", in: unit.NewContentItem{Type: unit.ContentLesson, Title: "Intro"}},
		{name: "valid with url", in: unit.NewContentItem{Type: unit.ContentVideo, Title: "Clip", URL: "https://example.com/v"}},
		{name: "missing title", in: unit.NewContentItem{Type: unit.ContentLesson}, wantErr: true},
		{name: "unknown type", in: unit.NewContentItem{Type: "PODCAST", Title: "Nope"}, wantErr: true},
		{name: "bad url", in: unit.NewContentItem{Type: unit.ContentVideo, Title: "Clip", URL: "not a url"}, wantErr: true},
		{name: "negative order", in: unit.NewContentItem{Type: unit.ContentLesson, Title: "Intro", Order: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.in.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
