package unit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// initialWeekCount is the number of blank weeks created with every new unit,
// ready for the admin to fill in.
const initialWeekCount = 6

var (
	// errors
	ErrNotFound        = errors.New("unit not found")
	ErrWeekNotFound    = errors.New("unit week not found")
	ErrContentNotFound = errors.New("unit content not found")
	ErrWeekNumberTaken = errors.New("a week with this number already exists in this unit")
	ErrOrderTaken      = errors.New("a content item with this order already exists in this week")
)

type (
	Repository interface {
		// CreateUnit persists the unit and any attached weeks as one unit of work.
		CreateUnit(ctx context.Context, u Unit) (Unit, error)
		QueryUnits(ctx context.Context) ([]Unit, error)
		// GetUnit returns the full aggregate: weeks ordered by number,
		// content ordered by display order.
		GetUnit(ctx context.Context, id string) (Unit, error)
		UpdateUnit(ctx context.Context, u Unit) (Unit, error)
		DeleteUnit(ctx context.Context, id string) error
		CreateWeek(ctx context.Context, w Week) (Week, error)
		UpdateWeek(ctx context.Context, w Week) (Week, error)
		DeleteWeek(ctx context.Context, id string) error
		GetWeek(ctx context.Context, id string) (Week, error)
		CreateContent(ctx context.Context, c ContentItem) (ContentItem, error)
		DeleteContent(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nu NewUnit) (Unit, error)
		Query(ctx context.Context) ([]Unit, error)
		Get(ctx context.Context, id string) (Unit, error)
		Update(ctx context.Context, id string, uu UpdateUnit) (Unit, error)
		Delete(ctx context.Context, id string) error
		AddWeek(ctx context.Context, unitID string, nw NewWeek) (Week, error)
		UpdateWeek(ctx context.Context, weekID string, uw UpdateWeek) (Week, error)
		DeleteWeek(ctx context.Context, weekID string) error
		AddContent(ctx context.Context, weekID string, nc NewContentItem) (ContentItem, error)
		DeleteContent(ctx context.Context, contentID string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nu NewUnit) (Unit, error) {
	now := time.Now().UTC()
	u := Unit{
		Name:        nu.Name,
		Description: null.NewString(nu.Description, nu.Description != ""),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// blank weeks for the admin to fill in
	u.Weeks = make([]Week, 0, initialWeekCount)
	for n := 1; n <= initialWeekCount; n++ {
		u.Weeks = append(u.Weeks, Week{WeekNumber: n, Title: "", Content: []ContentItem{}})
	}
	return svc.repo.CreateUnit(ctx, u)
}

func (svc *service) Query(ctx context.Context) ([]Unit, error) {
	return svc.repo.QueryUnits(ctx)
}

func (svc *service) Get(ctx context.Context, id string) (Unit, error) {
	return svc.repo.GetUnit(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUnit) (Unit, error) {
	u, err := svc.repo.GetUnit(ctx, id)
	if err != nil {
		return Unit{}, err
	}
	if uu.Name != "" {
		u.Name = uu.Name
	}
	if uu.Description != nil {
		u.Description = null.NewString(*uu.Description, *uu.Description != "")
	}
	u.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUnit(ctx, u)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteUnit(ctx, id)
}

func (svc *service) AddWeek(ctx context.Context, unitID string, nw NewWeek) (Week, error) {
	if _, err := svc.repo.GetUnit(ctx, unitID); err != nil {
		return Week{}, err
	}
	w := Week{
		UnitID:     unitID,
		WeekNumber: *nw.WeekNumber,
		Title:      nw.Title,
		Subtitle:   null.NewString(nw.Subtitle, nw.Subtitle != ""),
		Content:    []ContentItem{},
	}
	return svc.repo.CreateWeek(ctx, w)
}

func (svc *service) UpdateWeek(ctx context.Context, weekID string, uw UpdateWeek) (Week, error) {
	w, err := svc.repo.GetWeek(ctx, weekID)
	if err != nil {
		return Week{}, err
	}
	if uw.Title != "" {
		w.Title = uw.Title
	}
	if uw.Subtitle != nil {
		w.Subtitle = null.NewString(*uw.Subtitle, *uw.Subtitle != "")
	}
	return svc.repo.UpdateWeek(ctx, w)
}

func (svc *service) DeleteWeek(ctx context.Context, weekID string) error {
	return svc.repo.DeleteWeek(ctx, weekID)
}

func (svc *service) AddContent(ctx context.Context, weekID string, nc NewContentItem) (ContentItem, error) {
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
