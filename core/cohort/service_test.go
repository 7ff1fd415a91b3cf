package cohort_test

import (
	"context"
	"errors"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core"
	"github.com/gllabs/portal/core/cohort"
	"github.com/gllabs/portal/core/unit"
	"github.com/gllabs/portal/core/user"
	emailsvc "github.com/gllabs/portal/services/email"
	inmemdb "github.com/gllabs/portal/storage/database/inmem"
	testutil "github.com/gllabs/portal/tests"
)

type testEnv struct {
	svc        cohort.Service
	cohortRepo cohort.Repository
	unitRepo   unit.Repository
	usrRepo    user.Repository
}

func setup(t *testing.T) testEnv {
	db := testutil.PrepareDB(t)
	usrRepo := inmemdb.NewUserRepository(db)
	unitRepo := inmemdb.NewUnitRepository(db)
	cohortRepo := inmemdb.NewCohortRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock()
	svc := cohort.NewService(
		cohortRepo,
		unitRepo,
		user.NewService(usrRepo, mailSvc),
		mailSvc,
	)
	return testEnv{svc: svc, cohortRepo: cohortRepo, unitRepo: unitRepo, usrRepo: usrRepo}
}

func templateWeeks() []unit.Week {
	return []unit.Week{
		{WeekNumber: 1, Title: "Discover", Subtitle: null.StringFrom("Explore"),
			Content: []unit.ContentItem{
				{Type: unit.ContentLesson, Title: "Mapping Our World", Order: 0},
				{Type: unit.ContentVideo, Title: "A Day in My City", URL: null.StringFrom("https://example.com/v"), Order: 1},
			}},
		{WeekNumber: 2, Title: "Design",
			Content: []unit.ContentItem{
				{Type: unit.ContentTask, Title: "Project Proposal", Order: 0},
			}},
		{WeekNumber: 3, Title: "Refine & Respond"},
		{WeekNumber: 4, Title: "Celebrate & Connect"},
	}
}

func TestService_Instantiate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	u := testutil.CreateUnit(t, env.unitRepo, "Cultural Exchange", templateWeeks())
	tcher := testutil.CreateUser(t, env.usrRepo, "Mei Lin", "meilin", "mei@test.cd", "pwd", user.TeacherRoles, true)

	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{
		Name:   "Spring 2026 Cohort A",
		UnitID: u.ID,
		PartnerSchools: []cohort.PartnerSchoolInput{
			{Name: "Taipei American School", Location: "Taipei, Taiwan", TeacherID: tcher.ID},
		},
	})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	if c.Slug != "spring-2026-cohort-a" {
		t.Errorf("Slug = %q, want %q", c.Slug, "spring-2026-cohort-a")
	}
	if c.UnitID.String != u.ID {
		t.Errorf("UnitID = %q, want %q", c.UnitID.String, u.ID)
	}
	if want := len(u.Weeks) + 2; len(c.Weeks) != want {
		t.Fatalf("len(Weeks) = %d, want %d", len(c.Weeks), want)
	}

	// bookends bracket the template copy
	first, last := c.Weeks[0], c.Weeks[len(c.Weeks)-1]
	if first.WeekNumber != 0 || first.Title != "Before We Begin" || !first.Unlocked {
		t.Errorf("week 0 = %+v", first)
	}
	if len(first.Content) != 5 {
		t.Errorf("len(week 0 content) = %d, want 5", len(first.Content))
	}
	if last.WeekNumber != 5 || last.Title != "After the Unit" || last.Unlocked {
		t.Errorf("final week = %+v", last)
	}
	if len(last.Content) != 5 {
		t.Errorf("len(final week content) = %d, want 5", len(last.Content))
	}

	// template weeks copied in order; only week 1 starts unlocked
	for i, uw := range u.Weeks {
		w := c.Weeks[i+1]
		if w.WeekNumber != uw.WeekNumber || w.Title != uw.Title {
			t.Errorf("week %d = %q (#%d), want %q (#%d)", i+1, w.Title, w.WeekNumber, uw.Title, uw.WeekNumber)
		}
		if want := uw.WeekNumber == 1; w.Unlocked != want {
			t.Errorf("week %d: Unlocked = %v, want %v", w.WeekNumber, w.Unlocked, want)
		}
		if len(w.Content) != len(uw.Content) {
			t.Errorf("week %d: len(Content) = %d, want %d", w.WeekNumber, len(w.Content), len(uw.Content))
			continue
		}
		for j, uci := range uw.Content {
			ci := w.Content[j]
			if ci.Type != uci.Type || ci.Title != uci.Title || ci.Body != uci.Body ||
				ci.URL != uci.URL || ci.Order != uci.Order {
				t.Errorf("week %d content %d = %+v, want copy of %+v", w.WeekNumber, j, ci, uci)
			}
		}
	}

	if len(c.PartnerSchools) != 1 || c.PartnerSchools[0].Name != "Taipei American School" {
		t.Errorf("PartnerSchools = %+v", c.PartnerSchools)
	}

	// the fetched aggregate matches what was returned
	got, err := env.svc.GetBySlug(ctx, c.Slug)
	if err != nil {
		t.Fatalf("GetBySlug() failed: %v", err)
	}
	if got.ID != c.ID || len(got.Weeks) != len(c.Weeks) {
		t.Errorf("GetBySlug() = %+v", got)
	}
}

func TestService_Instantiate_emptyTemplate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	u := testutil.CreateUnit(t, env.unitRepo, "Blank Canvas", nil)

	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Empty Run", UnitID: u.ID})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}
	// no template weeks: just the two bookends at 0 and 1
	if len(c.Weeks) != 2 {
		t.Fatalf("len(Weeks) = %d, want 2", len(c.Weeks))
	}
	if c.Weeks[0].WeekNumber != 0 || !c.Weeks[0].Unlocked {
		t.Errorf("week 0 = %+v", c.Weeks[0])
	}
	if c.Weeks[1].WeekNumber != 1 || c.Weeks[1].Title != "After the Unit" || c.Weeks[1].Unlocked {
		t.Errorf("week 1 = %+v", c.Weeks[1])
	}
}

func TestService_Instantiate_noUnit(t *testing.T) {
	env := setup(t)

	c, err := env.svc.Instantiate(context.Background(), cohort.NewCohort{Name: "Bare Shell"})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}
	if len(c.Weeks) != 0 {
		t.Errorf("len(Weeks) = %d, want 0", len(c.Weeks))
	}
	if c.UnitID.Valid {
		t.Errorf("UnitID = %+v, want null", c.UnitID)
	}
}

func TestService_Instantiate_unknownUnit(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Doomed", UnitID: "nope"})
	if err != cohort.ErrUnitNotFound {
		t.Fatalf("Instantiate() error = %v, want %v", err, cohort.ErrUnitNotFound)
	}

	// nothing persisted
	cohorts, err := env.svc.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(cohorts) != 0 {
		t.Errorf("len(cohorts) = %d, want 0", len(cohorts))
	}
}

func TestService_Instantiate_slugCollision(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	want := []string{"spring-2026", "spring-2026-2", "spring-2026-3"}
	for _, slug := range want {
		c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Spring 2026"})
		if err != nil {
			t.Fatalf("Instantiate() failed: %v", err)
		}
		if c.Slug != slug {
			t.Errorf("Slug = %q, want %q", c.Slug, slug)
		}
	}
}

func TestService_Instantiate_copyIndependence(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	u := testutil.CreateUnit(t, env.unitRepo, "Shared Template", templateWeeks())

	a, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Run A", UnitID: u.ID})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}
	b, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Run B", UnitID: u.ID})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	// removing content from one cohort leaves the template and the sibling intact
	if err := env.svc.DeleteContent(ctx, a.Weeks[1].Content[0].ID); err != nil {
		t.Fatalf("DeleteContent() failed: %v", err)
	}

	refreshedU, err := env.unitRepo.GetUnit(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUnit() failed: %v", err)
	}
	if len(refreshedU.Weeks[0].Content) != 2 {
		t.Errorf("template week 1 content = %d, want 2", len(refreshedU.Weeks[0].Content))
	}
	refreshedB, err := env.svc.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if len(refreshedB.Weeks[1].Content) != 2 {
		t.Errorf("sibling cohort week 1 content = %d, want 2", len(refreshedB.Weeks[1].Content))
	}
}

func TestService_SetWeekUnlocked(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	u := testutil.CreateUnit(t, env.unitRepo, "Template", templateWeeks())
	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Run", UnitID: u.ID})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}
	week0, week2 := c.Weeks[0], c.Weeks[2]

	// regular weeks toggle freely
	w, err := env.svc.SetWeekUnlocked(ctx, week2.ID, true)
	if err != nil {
		t.Fatalf("SetWeekUnlocked() failed: %v", err)
	}
	if !w.Unlocked {
		t.Error("expected week 2 unlocked")
	}
	if w, err = env.svc.SetWeekUnlocked(ctx, week2.ID, false); err != nil {
		t.Fatalf("SetWeekUnlocked() failed: %v", err)
	}
	if w.Unlocked {
		t.Error("expected week 2 re-locked")
	}

	// week 0 may never be locked
	if _, err = env.svc.SetWeekUnlocked(ctx, week0.ID, false); err == nil {
		t.Fatal("expected error locking week 0")
	} else if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("SetWeekUnlocked() error = %T(%v), want *core.ValidationError", err, err)
	}

	// unlocking week 0 is a no-op
	if w, err = env.svc.SetWeekUnlocked(ctx, week0.ID, true); err != nil {
		t.Fatalf("SetWeekUnlocked() failed: %v", err)
	}
	if !w.Unlocked {
		t.Error("expected week 0 to stay unlocked")
	}

	if _, err = env.svc.SetWeekUnlocked(ctx, "nope", true); err != cohort.ErrWeekNotFound {
		t.Errorf("SetWeekUnlocked() error = %v, want %v", err, cohort.ErrWeekNotFound)
	}
}

func TestService_UnlockNext(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	u := testutil.CreateUnit(t, env.unitRepo, "Template", templateWeeks())
	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Run", UnitID: u.ID})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	// weeks 0 and 1 start unlocked; successive calls walk 2, 3, 4, 5
	for _, wantNumber := range []int{2, 3, 4, 5} {
		w, unlocked, err := env.svc.UnlockNext(ctx, c.ID)
		if err != nil {
			t.Fatalf("UnlockNext() failed: %v", err)
		}
		if !unlocked {
			t.Fatalf("UnlockNext() unlocked = false, want week %d", wantNumber)
		}
		if w.WeekNumber != wantNumber {
			t.Errorf("UnlockNext() week = %d, want %d", w.WeekNumber, wantNumber)
		}
		if !w.Unlocked {
			t.Errorf("week %d not marked unlocked", w.WeekNumber)
		}
	}

	// everything unlocked: no-op, not an error
	if _, unlocked, err := env.svc.UnlockNext(ctx, c.ID); err != nil {
		t.Fatalf("UnlockNext() failed: %v", err)
	} else if unlocked {
		t.Error("UnlockNext() unlocked = true, want no-op")
	}

	if _, _, err := env.svc.UnlockNext(ctx, "nope"); err != cohort.ErrNotFound {
		t.Errorf("UnlockNext() error = %v, want %v", err, cohort.ErrNotFound)
	}
}

func TestService_UnlockNext_skipsRelockedGaps(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	u := testutil.CreateUnit(t, env.unitRepo, "Template", templateWeeks())
	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Run", UnitID: u.ID})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	// re-lock week 1: it becomes the lowest locked week again
	if _, err := env.svc.SetWeekUnlocked(ctx, c.Weeks[1].ID, false); err != nil {
		t.Fatalf("SetWeekUnlocked() failed: %v", err)
	}
	w, unlocked, err := env.svc.UnlockNext(ctx, c.ID)
	if err != nil {
		t.Fatalf("UnlockNext() failed: %v", err)
	}
	if !unlocked || w.WeekNumber != 1 {
		t.Errorf("UnlockNext() = week %d (unlocked %v), want week 1", w.WeekNumber, unlocked)
	}
}

func TestService_AddWeekAndContent(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Manual Run"})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	n := 1
	w, err := env.svc.AddWeek(ctx, c.ID, cohort.NewWeek{WeekNumber: &n, Title: "Week One"})
	if err != nil {
		t.Fatalf("AddWeek() failed: %v", err)
	}
	if _, err = env.svc.AddWeek(ctx, c.ID, cohort.NewWeek{WeekNumber: &n, Title: "Dup"}); err != cohort.ErrWeekNumberTaken {
		t.Errorf("AddWeek() error = %v, want %v", err, cohort.ErrWeekNumberTaken)
	}
	if _, err = env.svc.AddWeek(ctx, "nope", cohort.NewWeek{WeekNumber: &n, Title: "Orphan"}); err != cohort.ErrNotFound {
		t.Errorf("AddWeek() error = %v, want %v", err, cohort.ErrNotFound)
	}

	item, err := env.svc.AddContent(ctx, w.ID, unit.NewContentItem{Type: unit.ContentLesson, Title: "Intro", Order: 0})
	if err != nil {
		t.Fatalf("AddContent() failed: %v", err)
	}
	if _, err = env.svc.AddContent(ctx, w.ID, unit.NewContentItem{Type: unit.ContentTask, Title: "Clash", Order: 0}); err != cohort.ErrOrderTaken {
		t.Errorf("AddContent() error = %v, want %v", err, cohort.ErrOrderTaken)
	}
	if err = env.svc.DeleteContent(ctx, item.ID); err != nil {
		t.Fatalf("DeleteContent() failed: %v", err)
	}
	if err = env.svc.DeleteContent(ctx, item.ID); err != cohort.ErrContentNotFound {
		t.Errorf("DeleteContent() error = %v, want %v", err, cohort.ErrContentNotFound)
	}
}

// failingUpdateRepo refuses metadata writes while delegating everything else.
type failingUpdateRepo struct {
	cohort.Repository
	err error
}

func (r failingUpdateRepo) UpdateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	return cohort.Cohort{}, r.err
}

func TestService_Update_keepsAssignmentsOnFailedWrite(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	tcher := testutil.CreateUser(t, env.usrRepo, "Sarah Chen", "sarahchen", "sarah@test.cd", "pwd", user.TeacherRoles, true)
	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Run"})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}
	if _, err = env.svc.AssignTeacher(ctx, cohort.NewTeacherAssignment{CohortID: c.ID, TeacherID: tcher.ID}); err != nil {
		t.Fatalf("AssignTeacher() failed: %v", err)
	}

	mailSvc := emailsvc.NewConsoleServiceMock()
	broken := cohort.NewService(
		failingUpdateRepo{Repository: env.cohortRepo, err: errors.New("write refused")},
		env.unitRepo,
		user.NewService(env.usrRepo, mailSvc),
		mailSvc,
	)
	none := []string{}
	if _, err = broken.Update(ctx, c.ID, cohort.UpdateCohort{Name: "Renamed", TeacherIDs: &none}); err == nil {
		t.Fatal("expected Update() to fail")
	}

	got, err := env.svc.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Name != "Run" {
		t.Errorf("Name = %q, want %q", got.Name, "Run")
	}
	if len(got.Teachers) != 1 {
		t.Errorf("Teachers = %+v, want the original assignment kept", got.Teachers)
	}
}

func TestService_AddWeek_weekZeroStartsUnlocked(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Bare Shell"})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	n := 0
	w, err := env.svc.AddWeek(ctx, c.ID, cohort.NewWeek{WeekNumber: &n, Title: "Before We Begin"})
	if err != nil {
		t.Fatalf("AddWeek() failed: %v", err)
	}
	if !w.Unlocked {
		t.Error("expected manually added week 0 unlocked")
	}
	got, err := env.svc.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if len(got.Weeks) != 1 || !got.Weeks[0].Unlocked {
		t.Errorf("Weeks = %+v, want a single unlocked week 0", got.Weeks)
	}
}

func TestService_SetWeekUnlocked_repairsLockedWeekZero(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Bare Shell"})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	// a week 0 persisted locked must still be unlockable
	stale, err := env.cohortRepo.CreateWeek(ctx, cohort.Week{CohortID: c.ID, WeekNumber: 0, Title: "Before We Begin"})
	if err != nil {
		t.Fatalf("CreateWeek() failed: %v", err)
	}
	w, err := env.svc.SetWeekUnlocked(ctx, stale.ID, true)
	if err != nil {
		t.Fatalf("SetWeekUnlocked() failed: %v", err)
	}
	if !w.Unlocked {
		t.Error("expected week 0 unlocked")
	}
	got, err := env.svc.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if len(got.Weeks) != 1 || !got.Weeks[0].Unlocked {
		t.Errorf("Weeks = %+v, want a single unlocked week 0", got.Weeks)
	}
}

func TestService_AssignTeacher(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	tcher := testutil.CreateUser(t, env.usrRepo, "Sarah Chen", "sarahchen", "sarah@test.cd", "pwd", user.TeacherRoles, true)
	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Run"})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	emailsvc.SentMessages = nil // reset
	ta, err := env.svc.AssignTeacher(ctx, cohort.NewTeacherAssignment{CohortID: c.ID, TeacherID: tcher.ID})
	if err != nil {
		t.Fatalf("AssignTeacher() failed: %v", err)
	}
	if ta.CohortID != c.ID || ta.TeacherID != tcher.ID {
		t.Errorf("AssignTeacher() = %+v", ta)
	}

	// notification goes out before the call returns
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d, want 1", len(emailsvc.SentMessages))
	}
	if msg := emailsvc.SentMessages[0]; msg.TemplateName != "cohort-assigned" ||
		len(msg.To) != 1 || msg.To[0].Address != tcher.Email {
		t.Errorf("assignment mail = %+v", msg)
	}

	// double assignment is a field error, not a crash
	if _, err = env.svc.AssignTeacher(ctx, cohort.NewTeacherAssignment{CohortID: c.ID, TeacherID: tcher.ID}); err == nil {
		t.Fatal("expected error on duplicate assignment")
	} else if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("AssignTeacher() error = %T(%v), want *core.ValidationError", err, err)
	}

	// assignment grants visibility
	refreshed, err := env.svc.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if !refreshed.CanBeViewedBy(tcher.ID, false) {
		t.Error("expected assigned teacher to view the cohort")
	}
	if refreshed.CanBeViewedBy("someone-else", false) {
		t.Error("expected unassigned user to be denied")
	}

	if err = env.svc.UnassignTeacher(ctx, ta.ID); err != nil {
		t.Fatalf("UnassignTeacher() failed: %v", err)
	}
	refreshed, _ = env.svc.GetByID(ctx, c.ID)
	if refreshed.CanBeViewedBy(tcher.ID, false) {
		t.Error("expected unassigned teacher to lose visibility")
	}
}

func TestService_PostMessage(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, env.usrRepo, "Ana", "ana", "ana@test.cd", "pwd", user.TeacherRoles, true)
	c, err := env.svc.Instantiate(ctx, cohort.NewCohort{Name: "Run"})
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	if _, err = env.svc.PostMessage(ctx, usr.ID, cohort.NewMessage{CohortID: "nope", Message: "hi"}); err != cohort.ErrNotFound {
		t.Errorf("PostMessage() error = %v, want %v", err, cohort.ErrNotFound)
	}

	m, err := env.svc.PostMessage(ctx, usr.ID, cohort.NewMessage{CohortID: c.ID, Message: "hello partners"})
	if err != nil {
		t.Fatalf("PostMessage() failed: %v", err)
	}
	if m.UserName != usr.Name {
		t.Errorf("UserName = %q, want %q", m.UserName, usr.Name)
	}

	msgs, err := env.svc.Messages(ctx, c.ID)
	if err != nil {
		t.Fatalf("Messages() failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Message != "hello partners" {
		t.Errorf("Messages() = %+v", msgs)
	}
}
