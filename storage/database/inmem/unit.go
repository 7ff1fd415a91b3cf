package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gllabs/portal/core/unit"
)

type unitRepository struct {
	db *DB
}

var _ unit.Repository = (*unitRepository)(nil) // interface compliance check

func NewUnitRepository(db *DB) *unitRepository {
	return &unitRepository{db: db}
}

func (repo *unitRepository) CreateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	u.ID = uuid.New().String()
	seen := make(map[int]struct{}, len(u.Weeks))
	for i := range u.Weeks {
		if _, dup := seen[u.Weeks[i].WeekNumber]; dup {
			return unit.Unit{}, unit.ErrWeekNumberTaken
		}
		seen[u.Weeks[i].WeekNumber] = struct{}{}
		u.Weeks[i].ID = uuid.New().String()
		u.Weeks[i].UnitID = u.ID
	}

	stored := u
	stored.Weeks = nil
	repo.db.units[u.ID] = &stored
	for i := range u.Weeks {
		for j := range u.Weeks[i].Content {
			item := u.Weeks[i].Content[j]
			item.ID = uuid.New().String()
			item.WeekID = u.Weeks[i].ID
			repo.db.unitContent[item.ID] = &item
			u.Weeks[i].Content[j] = item
		}
		w := u.Weeks[i]
		w.Content = nil
		repo.db.unitWeeks[w.ID] = &w
	}
	return u, nil
}

func (repo *unitRepository) QueryUnits(ctx context.Context) ([]unit.Unit, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	units := make([]unit.Unit, 0, len(repo.db.units))
	for _, u := range repo.db.units {
		units = append(units, *u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].CreatedAt.After(units[j].CreatedAt) })
	return units, nil
}

func (repo *unitRepository) GetUnit(ctx context.Context, id string) (unit.Unit, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.getUnit(id)
}

func (repo *unitRepository) getUnit(id string) (unit.Unit, error) {
	stored, ok := repo.db.units[id]
	if !ok {
		return unit.Unit{}, unit.ErrNotFound
	}
	u := *stored
	u.Weeks = make([]unit.Week, 0)
	for _, w := range repo.db.unitWeeks {
		if w.UnitID == id {
			week, _ := repo.getWeek(w.ID)
			u.Weeks = append(u.Weeks, week)
		}
	}
	sort.Slice(u.Weeks, func(i, j int) bool { return u.Weeks[i].WeekNumber < u.Weeks[j].WeekNumber })
	return u, nil
}

func (repo *unitRepository) UpdateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.units[u.ID]; !ok {
		return unit.Unit{}, unit.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	stored := u
	stored.Weeks = nil
	repo.db.units[u.ID] = &stored
	return u, nil
}

func (repo *unitRepository) DeleteUnit(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.units, id)
	for wid, w := range repo.db.unitWeeks {
		if w.UnitID != id {
			continue
		}
		for cid, c := range repo.db.unitContent {
			if c.WeekID == wid {
				delete(repo.db.unitContent, cid)
			}
		}
		delete(repo.db.unitWeeks, wid)
	}
	return nil
}

func (repo *unitRepository) CreateWeek(ctx context.Context, w unit.Week) (unit.Week, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.unitWeeks {
		if existing.UnitID == w.UnitID && existing.WeekNumber == w.WeekNumber {
			return unit.Week{}, unit.ErrWeekNumberTaken
		}
	}
	w.ID = uuid.New().String()
	stored := w
	stored.Content = nil
	repo.db.unitWeeks[w.ID] = &stored
	return w, nil
}

func (repo *unitRepository) UpdateWeek(ctx context.Context, w unit.Week) (unit.Week, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.unitWeeks[w.ID]; !ok {
		return unit.Week{}, unit.ErrWeekNotFound
	}
	stored := w
	stored.Content = nil
	repo.db.unitWeeks[w.ID] = &stored
	return w, nil
}

func (repo *unitRepository) DeleteWeek(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.unitWeeks, id)
	for cid, c := range repo.db.unitContent {
		if c.WeekID == id {
			delete(repo.db.unitContent, cid)
		}
	}
	return nil
}

func (repo *unitRepository) GetWeek(ctx context.Context, id string) (unit.Week, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.getWeek(id)
}

func (repo *unitRepository) getWeek(id string) (unit.Week, error) {
	stored, ok := repo.db.unitWeeks[id]
	if !ok {
		return unit.Week{}, unit.ErrWeekNotFound
	}
	w := *stored
	w.Content = make([]unit.ContentItem, 0)
	for _, c := range repo.db.unitContent {
		if c.WeekID == id {
			w.Content = append(w.Content, *c)
		}
	}
	sort.Slice(w.Content, func(i, j int) bool { return w.Content[i].Order < w.Content[j].Order })
	return w, nil
}

func (repo *unitRepository) CreateContent(ctx context.Context, c unit.ContentItem) (unit.ContentItem, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.unitContent {
		if existing.WeekID == c.WeekID && existing.Order == c.Order {
			return unit.ContentItem{}, unit.ErrOrderTaken
		}
	}
	c.ID = uuid.New().String()
	repo.db.unitContent[c.ID] = &c
	return c, nil
}

func (repo *unitRepository) DeleteContent(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.unitContent, id)
	return nil
}
