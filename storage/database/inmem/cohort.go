package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core/cohort"
)

type cohortRepository struct {
	db *DB
}

var _ cohort.Repository = (*cohortRepository)(nil) // interface compliance check

func NewCohortRepository(db *DB) *cohortRepository {
	return &cohortRepository{db: db}
}

func (repo *cohortRepository) CohortSlugExists(ctx context.Context, slug string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.cohorts {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (repo *cohortRepository) CreateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.cohorts {
		if existing.Slug == c.Slug {
			return cohort.Cohort{}, cohort.ErrSlugExists
		}
	}
	seen := make(map[int]struct{}, len(c.Weeks))
	for i := range c.Weeks {
		if _, dup := seen[c.Weeks[i].WeekNumber]; dup {
			return cohort.Cohort{}, cohort.ErrWeekNumberTaken
		}
		seen[c.Weeks[i].WeekNumber] = struct{}{}
	}

	c.ID = uuid.New().String()
	stored := c
	stored.PartnerSchools = nil
	stored.Teachers = nil
	stored.Weeks = nil
	repo.db.cohorts[c.ID] = &stored

	for i := range c.PartnerSchools {
		ps := c.PartnerSchools[i]
		ps.ID = uuid.New().String()
		ps.CohortID = c.ID
		repo.db.partnerSchools[ps.ID] = &ps
		c.PartnerSchools[i] = ps
	}

	for i := range c.Weeks {
		w := c.Weeks[i]
		w.ID = uuid.New().String()
		w.CohortID = c.ID
		for j := range w.Content {
			item := w.Content[j]
			item.ID = uuid.New().String()
			item.WeekID = w.ID
			repo.db.weekContent[item.ID] = &item
			w.Content[j] = item
		}
		stored := w
		stored.Content = nil
		repo.db.weeks[w.ID] = &stored
		c.Weeks[i] = w
	}
	return c, nil
}

func (repo *cohortRepository) QueryCohorts(ctx context.Context, filter *cohort.QueryFilter) ([]cohort.Cohort, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cohorts := make([]cohort.Cohort, 0, len(repo.db.cohorts))
	for _, c := range repo.db.cohorts {
		if filter != nil && filter.TeacherID != "" && !repo.teacherInCohort(c.ID, filter.TeacherID) {
			continue
		}
		cohorts = append(cohorts, *c)
	}
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i].CreatedAt.After(cohorts[j].CreatedAt) })
	return cohorts, nil
}

func (repo *cohortRepository) teacherInCohort(cohortID, teacherID string) bool {
	for _, ta := range repo.db.assignments {
		if ta.CohortID == cohortID && ta.TeacherID == teacherID {
			return true
		}
	}
	for _, ps := range repo.db.partnerSchools {
		if ps.CohortID == cohortID && ps.TeacherID == teacherID {
			return true
		}
	}
	return false
}

func (repo *cohortRepository) GetCohort(ctx context.Context, filter cohort.GetFilter) (cohort.Cohort, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, stored := range repo.db.cohorts {
		if (filter.ID != "" && stored.ID == filter.ID) || (filter.ID == "" && filter.Slug != "" && stored.Slug == filter.Slug) {
			return repo.getCohort(stored.ID)
		}
	}
	return cohort.Cohort{}, cohort.ErrNotFound
}

func (repo *cohortRepository) getCohort(id string) (cohort.Cohort, error) {
	stored, ok := repo.db.cohorts[id]
	if !ok {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	c := *stored
	c.Weeks = make([]cohort.Week, 0)
	for _, w := range repo.db.weeks {
		if w.CohortID == id {
			week, _ := repo.getWeek(w.ID)
			c.Weeks = append(c.Weeks, week)
		}
	}
	sort.Slice(c.Weeks, func(i, j int) bool { return c.Weeks[i].WeekNumber < c.Weeks[j].WeekNumber })

	for _, ps := range repo.db.partnerSchools {
		if ps.CohortID == id {
			school := *ps
			if usr, ok := repo.db.users[school.TeacherID]; ok {
				school.TeacherName = usr.Name
			}
			c.PartnerSchools = append(c.PartnerSchools, school)
		}
	}
	sort.Slice(c.PartnerSchools, func(i, j int) bool { return c.PartnerSchools[i].Name < c.PartnerSchools[j].Name })

	for _, ta := range repo.db.assignments {
		if ta.CohortID == id {
			assignment := *ta
			if usr, ok := repo.db.users[assignment.TeacherID]; ok {
				assignment.TeacherName = usr.Name
				assignment.TeacherEmail = usr.Email
			}
			c.Teachers = append(c.Teachers, assignment)
		}
	}
	sort.Slice(c.Teachers, func(i, j int) bool { return c.Teachers[i].CreatedAt.Before(c.Teachers[j].CreatedAt) })
	return c, nil
}

func (repo *cohortRepository) UpdateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.cohorts[c.ID]; !ok {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	stored := c
	stored.PartnerSchools = nil
	stored.Teachers = nil
	stored.Weeks = nil
	repo.db.cohorts[c.ID] = &stored
	return repo.getCohort(c.ID)
}

func (repo *cohortRepository) DeleteCohortsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.cohorts, id)
		for wid, w := range repo.db.weeks {
			if w.CohortID != id {
				continue
			}
			for cid, item := range repo.db.weekContent {
				if item.WeekID == wid {
					delete(repo.db.weekContent, cid)
				}
			}
			delete(repo.db.weeks, wid)
		}
		for pid, ps := range repo.db.partnerSchools {
			if ps.CohortID == id {
				delete(repo.db.partnerSchools, pid)
			}
		}
		for aid, ta := range repo.db.assignments {
			if ta.CohortID == id {
				delete(repo.db.assignments, aid)
			}
		}
		for mid, m := range repo.db.messages {
			if m.CohortID == id {
				delete(repo.db.messages, mid)
			}
		}
	}
	return nil
}

func (repo *cohortRepository) CreateWeek(ctx context.Context, w cohort.Week) (cohort.Week, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.weeks {
		if existing.CohortID == w.CohortID && existing.WeekNumber == w.WeekNumber {
			return cohort.Week{}, cohort.ErrWeekNumberTaken
		}
	}
	w.ID = uuid.New().String()
	stored := w
	stored.Content = nil
	repo.db.weeks[w.ID] = &stored
	return w, nil
}

func (repo *cohortRepository) GetWeek(ctx context.Context, id string) (cohort.Week, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.getWeek(id)
}

func (repo *cohortRepository) getWeek(id string) (cohort.Week, error) {
	stored, ok := repo.db.weeks[id]
	if !ok {
		return cohort.Week{}, cohort.ErrWeekNotFound
	}
	w := *stored
	w.Content = make([]cohort.ContentItem, 0)
	for _, item := range repo.db.weekContent {
		if item.WeekID == id {
			w.Content = append(w.Content, *item)
		}
	}
	sort.Slice(w.Content, func(i, j int) bool { return w.Content[i].Order < w.Content[j].Order })
	return w, nil
}

func (repo *cohortRepository) SetWeekUnlocked(ctx context.Context, id string, unlocked bool) (cohort.Week, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored, ok := repo.db.weeks[id]
	if !ok {
		return cohort.Week{}, cohort.ErrWeekNotFound
	}
	stored.Unlocked = unlocked
	return repo.getWeek(id)
}

func (repo *cohortRepository) UnlockNextWeek(ctx context.Context, cohortID string) (cohort.Week, bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var next *cohort.Week
	for _, w := range repo.db.weeks {
		if w.CohortID != cohortID || w.Unlocked || w.WeekNumber == 0 {
			continue
		}
		if next == nil || w.WeekNumber < next.WeekNumber {
			next = w
		}
	}
	if next == nil {
		return cohort.Week{}, false, nil // all weeks already unlocked
	}
	next.Unlocked = true
	w, err := repo.getWeek(next.ID)
	return w, true, err
}

func (repo *cohortRepository) CreateContent(ctx context.Context, c cohort.ContentItem) (cohort.ContentItem, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.weekContent {
		if existing.WeekID == c.WeekID && existing.Order == c.Order {
			return cohort.ContentItem{}, cohort.ErrOrderTaken
		}
	}
	c.ID = uuid.New().String()
	repo.db.weekContent[c.ID] = &c
	return c, nil
}

func (repo *cohortRepository) DeleteContent(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.weekContent[id]; !ok {
		return cohort.ErrContentNotFound
	}
	delete(repo.db.weekContent, id)
	return nil
}

func (repo *cohortRepository) DeletePartnerSchool(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.partnerSchools[id]; !ok {
		return cohort.ErrSchoolNotFound
	}
	delete(repo.db.partnerSchools, id)
	return nil
}

func (repo *cohortRepository) CreateTeacherAssignment(ctx context.Context, ta cohort.TeacherAssignment) (cohort.TeacherAssignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.assignments {
		if existing.CohortID == ta.CohortID && existing.TeacherID == ta.TeacherID {
			return cohort.TeacherAssignment{}, cohort.ErrTeacherAssigned
		}
	}
	ta.ID = uuid.New().String()
	repo.db.assignments[ta.ID] = &ta
	return ta, nil
}

func (repo *cohortRepository) DeleteTeacherAssignment(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.assignments, id)
	return nil
}

func (repo *cohortRepository) ReplaceTeacherAssignments(ctx context.Context, cohortID string, teacherIDs []string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for aid, ta := range repo.db.assignments {
		if ta.CohortID == cohortID {
			delete(repo.db.assignments, aid)
		}
	}
	now := time.Now().UTC()
	for _, teacherID := range teacherIDs {
		ta := cohort.TeacherAssignment{
			ID:        uuid.New().String(),
			CohortID:  cohortID,
			TeacherID: teacherID,
			CreatedAt: now,
		}
		repo.db.assignments[ta.ID] = &ta
	}
	return nil
}

func (repo *cohortRepository) UpdateAssignmentSession(ctx context.Context, id string, day, sessionTime null.String) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ta, ok := repo.db.assignments[id]
	if !ok {
		return cohort.ErrNotFound
	}
	ta.SessionDay = day
	ta.SessionTime = sessionTime
	return nil
}

func (repo *cohortRepository) CreateMessage(ctx context.Context, m cohort.Message) (cohort.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m.ID = uuid.New().String()
	if usr, ok := repo.db.users[m.UserID]; ok {
		m.UserName = usr.Name
	}
	stored := m
	repo.db.messages[m.ID] = &stored
	return m, nil
}

func (repo *cohortRepository) QueryMessages(ctx context.Context, cohortID string) ([]cohort.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	msgs := make([]cohort.Message, 0)
	for _, m := range repo.db.messages {
		if m.CohortID == cohortID {
			msg := *m
			if usr, ok := repo.db.users[msg.UserID]; ok {
				msg.UserName = usr.Name
			}
			msgs = append(msgs, msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}
