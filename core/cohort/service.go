package cohort

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core"
	"github.com/gllabs/portal/core/unit"
	"github.com/gllabs/portal/core/user"
)

// maxSlugAttempts bounds the allocation loop; the probe below makes reaching
// it require that many concurrent creations with the same name.
const maxSlugAttempts = 100

var (
	// errors
	ErrNotFound        = errors.New("cohort not found")
	ErrWeekNotFound    = errors.New("cohort week not found")
	ErrContentNotFound = errors.New("cohort content not found")
	ErrSchoolNotFound  = errors.New("partner school not found")
	ErrUnitNotFound    = errors.New("unit not found")
	ErrSlugExists      = errors.New("a cohort with this slug already exists")
	ErrWeekNumberTaken = errors.New("a week with this number already exists in this cohort")
	ErrOrderTaken      = errors.New("a content item with this order already exists in this week")
	ErrTeacherAssigned = errors.New("teacher already assigned to this cohort")

	errWeekZeroLocked = errors.New("the pre-unit week cannot be locked")
)

type (
	// UnitStore is the read-only view of the unit-template store consumed at
	// instantiation time.
	UnitStore interface {
		GetUnit(ctx context.Context, id string) (unit.Unit, error)
	}

	Repository interface {
		CohortSlugExists(ctx context.Context, slug string) (bool, error)
		// CreateCohort persists the whole aggregate (cohort, partner schools,
		// weeks, content) as one atomic unit of work; readers never observe a
		// partial cohort. Returns ErrSlugExists when the slug loses a race.
		CreateCohort(ctx context.Context, c Cohort) (Cohort, error)
		QueryCohorts(ctx context.Context, filter *QueryFilter) ([]Cohort, error)
		// GetCohort returns the full aggregate: weeks ordered by number,
		// content ordered by display order.
		GetCohort(ctx context.Context, filter GetFilter) (Cohort, error)
		UpdateCohort(ctx context.Context, c Cohort) (Cohort, error)
		DeleteCohortsByID(ctx context.Context, ids ...string) error

		CreateWeek(ctx context.Context, w Week) (Week, error)
		GetWeek(ctx context.Context, id string) (Week, error)
		SetWeekUnlocked(ctx context.Context, id string, unlocked bool) (Week, error)
		// UnlockNextWeek unlocks the lowest-numbered locked week (never week 0)
		// and reports whether any week was still locked. The read-modify-write
		// is serialized per cohort.
		UnlockNextWeek(ctx context.Context, cohortID string) (Week, bool, error)

		CreateContent(ctx context.Context, c ContentItem) (ContentItem, error)
		DeleteContent(ctx context.Context, id string) error
		DeletePartnerSchool(ctx context.Context, id string) error

		CreateTeacherAssignment(ctx context.Context, ta TeacherAssignment) (TeacherAssignment, error)
		DeleteTeacherAssignment(ctx context.Context, id string) error
		ReplaceTeacherAssignments(ctx context.Context, cohortID string, teacherIDs []string) error
		UpdateAssignmentSession(ctx context.Context, id string, day, sessionTime null.String) error

		CreateMessage(ctx context.Context, m Message) (Message, error)
		QueryMessages(ctx context.Context, cohortID string) ([]Message, error)
	}

	Service interface {
		Instantiate(ctx context.Context, nc NewCohort) (Cohort, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Cohort, error)
		GetByID(ctx context.Context, id string) (Cohort, error)
		GetBySlug(ctx context.Context, slug string) (Cohort, error)
		Update(ctx context.Context, id string, uc UpdateCohort) (Cohort, error)
		Delete(ctx context.Context, ids ...string) error

		AddWeek(ctx context.Context, cohortID string, nw NewWeek) (Week, error)
		SetWeekUnlocked(ctx context.Context, weekID string, unlocked bool) (Week, error)
		UnlockNext(ctx context.Context, cohortID string) (Week, bool, error)

		AddContent(ctx context.Context, weekID string, nc unit.NewContentItem) (ContentItem, error)
		DeleteContent(ctx context.Context, contentID string) error
		DeletePartnerSchool(ctx context.Context, id string) error

		AssignTeacher(ctx context.Context, na NewTeacherAssignment) (TeacherAssignment, error)
		UnassignTeacher(ctx context.Context, assignmentID string) error
		UpdateSessionTimes(ctx context.Context, updates []SessionTimeUpdate) error

		PostMessage(ctx context.Context, userID string, nm NewMessage) (Message, error)
		Messages(ctx context.Context, cohortID string) ([]Message, error)
	}

	service struct {
		repo    Repository
		units   UnitStore
		userSvc user.Service
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, units UnitStore, userSvc user.Service, mailSvc core.EmailService) *service {
	return &service{repo: repo, units: units, userSvc: userSvc, mailSvc: mailSvc}
}

// Instantiate builds and persists a full cohort aggregate from the input:
// partner schools, the pre-unit bookend week, a copy of every template week
// (only week 1 starting unlocked) and the post-unit bookend. Without a unit
// the cohort is a bare shell with zero weeks, for later manual content entry.
func (svc *service) Instantiate(ctx context.Context, nc NewCohort) (Cohort, error) {
	now := time.Now().UTC()
	c := Cohort{
		Name:                   nc.Name,
		Facilitator:            null.NewString(nc.Facilitator, nc.Facilitator != ""),
		FacilitatorEmail:       null.NewString(nc.FacilitatorEmail, nc.FacilitatorEmail != ""),
		StartDate:              parseDate(nc.StartDate),
		EndDate:                parseDate(nc.EndDate),
		SessionDay:             null.NewString(nc.SessionDay, nc.SessionDay != ""),
		SessionTime:            null.NewString(nc.SessionTime, nc.SessionTime != ""),
		VideoCallLink:          null.NewString(nc.VideoCallLink, nc.VideoCallLink != ""),
		CollaborationBoardLink: null.NewString(nc.CollaborationBoardLink, nc.CollaborationBoardLink != ""),
		MediaFolderLink:        null.NewString(nc.MediaFolderLink, nc.MediaFolderLink != ""),
		CreatedAt:              now,
		UpdatedAt:              now,
		Weeks:                  []Week{},
	}

	for _, ps := range nc.PartnerSchools {
		c.PartnerSchools = append(c.PartnerSchools, PartnerSchool{
			Name:      ps.Name,
			Location:  null.NewString(ps.Location, ps.Location != ""),
			TeacherID: ps.TeacherID,
			CreatedAt: now,
		})
	}

	if nc.UnitID != "" {
		// the template lookup must precede any write: an unknown unit
		// persists nothing.
		u, err := svc.units.GetUnit(ctx, nc.UnitID)
		if err != nil {
			if errors.Cause(err) == unit.ErrNotFound {
				return Cohort{}, ErrUnitNotFound
			}
			return Cohort{}, errors.Wrap(err, "fetching unit")
		}
		c.UnitID = null.StringFrom(u.ID)
		c.Weeks = buildWeeks(u)
	}

	return svc.createWithUniqueSlug(ctx, c)
}

// buildWeeks assembles the cohort's week list from a unit template:
// week 0 bookend, the template weeks in ascending order (only the week
// numbered 1 starting unlocked), and the post-unit bookend one past the
// highest template week number (1 when the template is empty).
func buildWeeks(u unit.Unit) []Week {
	weeks := make([]Week, 0, len(u.Weeks)+2)
	weeks = append(weeks, preUnitWeek())

	maxWeekNumber := 0
	for _, uw := range u.Weeks {
		w := Week{
			WeekNumber: uw.WeekNumber,
			Title:      uw.Title,
			Subtitle:   uw.Subtitle,
			Unlocked:   uw.WeekNumber == 1,
		}
		for _, uc := range uw.Content {
			w.Content = append(w.Content, ContentItem{
				Type:  uc.Type,
				Title: uc.Title,
				Body:  uc.Body,
				URL:   uc.URL,
				Order: uc.Order,
			})
		}
		weeks = append(weeks, w)
		if uw.WeekNumber > maxWeekNumber {
			maxWeekNumber = uw.WeekNumber
		}
	}

	weeks = append(weeks, postUnitWeek(maxWeekNumber+1))
	return weeks
}

// createWithUniqueSlug probes slug candidates (base, base-2, base-3, ...)
// against the store and inserts under the slug unique constraint; losing the
// race between probe and insert re-enters the loop at the next counter.
func (svc *service) createWithUniqueSlug(ctx context.Context, c Cohort) (Cohort, error) {
	base := slugBase(c.Name)

	counter := 1
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := slugCandidate(base, counter)

		exists, err := svc.repo.CohortSlugExists(ctx, slug)
		if err != nil {
			return Cohort{}, errors.Wrap(err, "probing slug")
		}
		if exists {
			counter++
			continue
		}

		c.Slug = slug
		created, err := svc.repo.CreateCohort(ctx, c)
		if err != nil {
			if errors.Cause(err) == ErrSlugExists {
				counter++
				continue
			}
			return Cohort{}, errors.Wrap(err, "creating cohort")
		}
		return created, nil
	}
	return Cohort{}, errors.Wrap(ErrSlugExists, "slug allocation attempts exhausted")
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Cohort, error) {
	return svc.repo.QueryCohorts(ctx, filter)
}

func (svc *service) GetByID(ctx context.Context, id string) (Cohort, error) {
	return svc.repo.GetCohort(ctx, GetFilter{ID: id})
}

func (svc *service) GetBySlug(ctx context.Context, slug string) (Cohort, error) {
	return svc.repo.GetCohort(ctx, GetFilter{Slug: slug})
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCohort) (Cohort, error) {
	c, err := svc.repo.GetCohort(ctx, GetFilter{ID: id})
	if err != nil {
		return Cohort{}, err
	}

	if uc.Name != "" {
		c.Name = uc.Name
	}
	setNullString(&c.Facilitator, uc.Facilitator)
	setNullString(&c.FacilitatorEmail, uc.FacilitatorEmail)
	setNullString(&c.SessionDay, uc.SessionDay)
	setNullString(&c.SessionTime, uc.SessionTime)
	setNullString(&c.VideoCallLink, uc.VideoCallLink)
	setNullString(&c.CollaborationBoardLink, uc.CollaborationBoardLink)
	setNullString(&c.MediaFolderLink, uc.MediaFolderLink)
	if uc.StartDate != nil {
		c.StartDate = parseDate(*uc.StartDate)
	}
	if uc.EndDate != nil {
		c.EndDate = parseDate(*uc.EndDate)
	}
	c.UpdatedAt = time.Now().UTC()

	updated, err := svc.repo.UpdateCohort(ctx, c)
	if err != nil {
		return Cohort{}, err
	}
	if uc.TeacherIDs != nil {
		if err := svc.repo.ReplaceTeacherAssignments(ctx, c.ID, *uc.TeacherIDs); err != nil {
			return Cohort{}, errors.Wrap(err, "replacing teacher assignments")
		}
	}
	return updated, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCohortsByID(ctx, ids...)
}

func (svc *service) AddWeek(ctx context.Context, cohortID string, nw NewWeek) (Week, error) {
	if _, err := svc.repo.GetCohort(ctx, GetFilter{ID: cohortID}); err != nil {
		return Week{}, err
	}
	w := Week{
		CohortID:   cohortID,
		WeekNumber: *nw.WeekNumber,
		Title:      nw.Title,
		Subtitle:   null.NewString(nw.Subtitle, nw.Subtitle != ""),
		Unlocked:   *nw.WeekNumber == 0, // week 0 is always unlocked
		Content:    []ContentItem{},
	}
	return svc.repo.CreateWeek(ctx, w)
}

// SetWeekUnlocked flips a single week's gate. Week 0 is always unlocked and
// may not be re-locked, no matter what the caller sends.
func (svc *service) SetWeekUnlocked(ctx context.Context, weekID string, unlocked bool) (Week, error) {
	w, err := svc.repo.GetWeek(ctx, weekID)
	if err != nil {
		return Week{}, err
	}
	if w.WeekNumber == 0 {
		if !unlocked {
			return Week{}, core.NewValidationError(errWeekZeroLocked,
				core.FieldError{Field: "unlocked", Error: errWeekZeroLocked.Error()})
		}
		if w.Unlocked {
			return w, nil // nothing to do
		}
	}
	return svc.repo.SetWeekUnlocked(ctx, weekID, unlocked)
}

func (svc *service) UnlockNext(ctx context.Context, cohortID string) (Week, bool, error) {
	if _, err := svc.repo.GetCohort(ctx, GetFilter{ID: cohortID}); err != nil {
		return Week{}, false, err
	}
	return svc.repo.UnlockNextWeek(ctx, cohortID)
}

func (svc *service) AddContent(ctx context.Context, weekID string, nc unit.NewContentItem) (ContentItem, error) {
	if _, err := svc.repo.GetWeek(ctx, weekID); err != nil {
		return ContentItem{}, err
	}
	c := ContentItem{
		WeekID: weekID,
		Type:   nc.Type,
		Title:  nc.Title,
		Body:   null.NewString(nc.Body, nc.Body != ""),
		URL:    null.NewString(nc.URL, nc.URL != ""),
		Order:  nc.Order,
	}
	return svc.repo.CreateContent(ctx, c)
}

func (svc *service) DeleteContent(ctx context.Context, contentID string) error {
	return svc.repo.DeleteContent(ctx, contentID)
}

func (svc *service) DeletePartnerSchool(ctx context.Context, id string) error {
	return svc.repo.DeletePartnerSchool(ctx, id)
}

func (svc *service) AssignTeacher(ctx context.Context, na NewTeacherAssignment) (TeacherAssignment, error) {
	c, err := svc.repo.GetCohort(ctx, GetFilter{ID: na.CohortID})
	if err != nil {
		return TeacherAssignment{}, err
	}
	tcher, err := svc.userSvc.GetByID(ctx, na.TeacherID)
	if err != nil {
		return TeacherAssignment{}, err
	}

	ta, err := svc.repo.CreateTeacherAssignment(ctx, TeacherAssignment{
		CohortID:  na.CohortID,
		TeacherID: na.TeacherID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrTeacherAssigned {
			return TeacherAssignment{}, core.NewValidationError(err,
				core.FieldError{Field: "teacher_id", Error: err.Error()})
		}
		return TeacherAssignment{}, err
	}

	svc.sendAssignmentMail(tcher, c)
	return ta, nil
}

func (svc *service) sendAssignmentMail(tcher user.User, c Cohort) {
	if tcher.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: tcher.Name, Address: tcher.Email}},
		Subject:      "New cohort assignment",
		TemplateName: "cohort-assigned",
		TemplateData: struct {
			TeacherName string
			CohortName  string
		}{tcher.Name, c.Name},
	})
}

func (svc *service) UnassignTeacher(ctx context.Context, assignmentID string) error {
	return svc.repo.DeleteTeacherAssignment(ctx, assignmentID)
}

func (svc *service) UpdateSessionTimes(ctx context.Context, updates []SessionTimeUpdate) error {
	for _, upd := range updates {
		day := null.StringFromPtr(upd.SessionDay)
		sessionTime := null.StringFromPtr(upd.SessionTime)
		if err := svc.repo.UpdateAssignmentSession(ctx, upd.AssignmentID, day, sessionTime); err != nil {
			return errors.Wrapf(err, "updating session times for assignment %s", upd.AssignmentID)
		}
	}
	return nil
}

func (svc *service) PostMessage(ctx context.Context, userID string, nm NewMessage) (Message, error) {
	if _, err := svc.repo.GetCohort(ctx, GetFilter{ID: nm.CohortID}); err != nil {
		return Message{}, err
	}
	return svc.repo.CreateMessage(ctx, Message{
		CohortID:  nm.CohortID,
		UserID:    userID,
		Message:   nm.Message,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) Messages(ctx context.Context, cohortID string) ([]Message, error) {
	return svc.repo.QueryMessages(ctx, cohortID)
}

func parseDate(s string) null.Time {
	if s == "" {
		return null.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return null.Time{}
	}
	return null.TimeFrom(t)
}

func setNullString(dst *null.String, src *string) {
	if src != nil {
		*dst = null.NewString(*src, *src != "")
	}
}
