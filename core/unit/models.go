package unit

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core"
)

// ContentType tags a single piece of week material. The set is closed;
// anything else is rejected at the boundary.
type ContentType string

const (
	ContentLesson         ContentType = "LESSON"
	ContentResource       ContentType = "RESOURCE"
	ContentAssignment     ContentType = "ASSIGNMENT"
	ContentVideo          ContentType = "VIDEO"
	ContentTask           ContentType = "TASK"
	ContentDeliverable    ContentType = "DELIVERABLE"
	ContentLink           ContentType = "LINK"
	ContentCrossClassroom ContentType = "CROSS_CLASSROOM"
	ContentSurvey         ContentType = "SURVEY"
	ContentGallery        ContentType = "GALLERY"
)

var ContentTypes = []ContentType{
	ContentLesson,
	ContentResource,
	ContentAssignment,
	ContentVideo,
	ContentTask,
	ContentDeliverable,
	ContentLink,
	ContentCrossClassroom,
	ContentSurvey,
	ContentGallery,
}

func (ct ContentType) Valid() bool {
	for _, known := range ContentTypes {
		if ct == known {
			return true
		}
	}
	return false
}

type (
	// Unit is a reusable, admin-authored blueprint of weeks and content,
	// not tied to any specific cohort.
	Unit struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Description null.String `json:"description"`
		CreatedAt   time.Time   `json:"created_at"` // UTC
		UpdatedAt   time.Time   `json:"updated_at"` // UTC
		Weeks       []Week      `json:"weeks,omitempty"`
	}

	Week struct {
		ID         string        `json:"id"`
		UnitID     string        `json:"unit_id"`
		WeekNumber int           `json:"week_number"`
		Title      string        `json:"title"`
		Subtitle   null.String   `json:"subtitle"`
		Content    []ContentItem `json:"content"`
	}

	ContentItem struct {
		ID     string      `json:"id"`
		WeekID string      `json:"week_id"`
		Type   ContentType `json:"type"`
		Title  string      `json:"title"`
		Body   null.String `json:"body"`
		URL    null.String `json:"url"`
		Order  int         `json:"order"`
	}
)

// NewUnit contains information needed to create a new Unit.
type NewUnit struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nu *NewUnit) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Description = core.CleanString(nu.Description)
	return core.Validate.Struct(nu)
}

// UpdateUnit defines what information may be provided to modify an existing Unit.
type UpdateUnit struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (uu *UpdateUnit) Validate() error {
	uu.Name = core.CleanString(uu.Name)
	return core.Validate.Struct(uu)
}

type NewWeek struct {
	WeekNumber *int   `json:"week_number" validate:"required,min=1"`
	Title      string `json:"title" validate:"required"`
	Subtitle   string `json:"subtitle"`
}

func (nw *NewWeek) Validate() error {
	nw.Title = core.CleanString(nw.Title)
	nw.Subtitle = core.CleanString(nw.Subtitle)
	return core.Validate.Struct(nw)
}

type UpdateWeek struct {
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle"`
}

func (uw *UpdateWeek) Validate() error {
	uw.Title = core.CleanString(uw.Title)
	return core.Validate.Struct(uw)
}

type NewContentItem struct {
	Type  ContentType `json:"type" validate:"required,contenttype"`
	Title string      `json:"title" validate:"required"`
	Body  string      `json:"body"`
	URL   string      `json:"url" validate:"omitempty,url"`
	Order int         `json:"order" validate:"min=0"`
}

func (nc *NewContentItem) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Body = core.CleanString(nc.Body)
	nc.URL = core.CleanString(nc.URL)
	return core.Validate.Struct(nc)
}
