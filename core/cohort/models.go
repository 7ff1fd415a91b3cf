package cohort

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core"
	"github.com/gllabs/portal/core/unit"
)

type (
	// Cohort is one instantiated, time-bound run of the program for a specific
	// group of partner schools, optionally derived from a Unit template.
	Cohort struct {
		ID                     string      `json:"id"`
		Slug                   string      `json:"slug"`
		Name                   string      `json:"name"`
		UnitID                 null.String `json:"unit_id"`
		Facilitator            null.String `json:"facilitator"`
		FacilitatorEmail       null.String `json:"facilitator_email"`
		StartDate              null.Time   `json:"start_date"`
		EndDate                null.Time   `json:"end_date"`
		SessionDay             null.String `json:"session_day"`
		SessionTime            null.String `json:"session_time"`
		VideoCallLink          null.String `json:"video_call_link"`
		CollaborationBoardLink null.String `json:"collaboration_board_link"`
		MediaFolderLink        null.String `json:"media_folder_link"`
		CreatedAt              time.Time   `json:"created_at"` // UTC
		UpdatedAt              time.Time   `json:"updated_at"` // UTC

		PartnerSchools []PartnerSchool     `json:"partner_schools,omitempty"`
		Teachers       []TeacherAssignment `json:"teachers,omitempty"`
		Weeks          []Week              `json:"weeks"`
	}

	// Week is a numbered content bucket within a cohort. Week 0 and the final
	// week are synthetic bookends injected at instantiation.
	Week struct {
		ID         string        `json:"id"`
		CohortID   string        `json:"cohort_id"`
		WeekNumber int           `json:"week_number"`
		Title      string        `json:"title"`
		Subtitle   null.String   `json:"subtitle"`
		Unlocked   bool          `json:"unlocked"`
		Content    []ContentItem `json:"content"`
	}

	// ContentItem is independently owned by its cohort week; mutating it never
	// affects the template content it may have been copied from.
	ContentItem struct {
		ID     string           `json:"id"`
		WeekID string           `json:"week_id"`
		Type   unit.ContentType `json:"type"`
		Title  string           `json:"title"`
		Body   null.String      `json:"body"`
		URL    null.String      `json:"url"`
		Order  int              `json:"order"`
	}

	PartnerSchool struct {
		ID          string      `json:"id"`
		CohortID    string      `json:"cohort_id"`
		Name        string      `json:"name"`
		Location    null.String `json:"location"`
		TeacherID   string      `json:"teacher_id"`
		TeacherName string      `json:"teacher_name,omitempty"`
		CreatedAt   time.Time   `json:"created_at"`
	}

	TeacherAssignment struct {
		ID           string      `json:"id"`
		CohortID     string      `json:"cohort_id"`
		TeacherID    string      `json:"teacher_id"`
		TeacherName  string      `json:"teacher_name,omitempty"`
		TeacherEmail string      `json:"teacher_email,omitempty"`
		SessionDay   null.String `json:"session_day"`
		SessionTime  null.String `json:"session_time"`
		CreatedAt    time.Time   `json:"created_at"`
	}

	Message struct {
		ID        string    `json:"id"`
		CohortID  string    `json:"cohort_id"`
		UserID    string    `json:"user_id"`
		UserName  string    `json:"user_name,omitempty"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"`
	}
)

// CanBeViewedBy reports whether the given user may read this cohort:
// admins always, teachers only when assigned directly or through a partner school.
func (c Cohort) CanBeViewedBy(userID string, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	for _, ta := range c.Teachers {
		if ta.TeacherID == userID {
			return true
		}
	}
	for _, ps := range c.PartnerSchools {
		if ps.TeacherID == userID {
			return true
		}
	}
	return false
}

type PartnerSchoolInput struct {
	Name      string `json:"name" validate:"required"`
	Location  string `json:"location"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

// NewCohort contains information needed to instantiate a new Cohort.
type NewCohort struct {
	Name                   string               `json:"name" validate:"required"`
	UnitID                 string               `json:"unit_id"`
	Facilitator            string               `json:"facilitator"`
	FacilitatorEmail       string               `json:"facilitator_email" validate:"omitempty,email"`
	StartDate              string               `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate                string               `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	SessionDay             string               `json:"session_day"`
	SessionTime            string               `json:"session_time"`
	VideoCallLink          string               `json:"video_call_link" validate:"omitempty,url"`
	CollaborationBoardLink string               `json:"collaboration_board_link" validate:"omitempty,url"`
	MediaFolderLink        string               `json:"media_folder_link" validate:"omitempty,url"`
	PartnerSchools         []PartnerSchoolInput `json:"partner_schools" validate:"omitempty,dive"`
}

func (nc *NewCohort) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Facilitator = core.CleanString(nc.Facilitator)
	nc.FacilitatorEmail = core.CleanString(nc.FacilitatorEmail, true /* lower */)
	for i := range nc.PartnerSchools {
		nc.PartnerSchools[i].Name = core.CleanString(nc.PartnerSchools[i].Name)
		nc.PartnerSchools[i].Location = core.CleanString(nc.PartnerSchools[i].Location)
	}
	return core.Validate.Struct(nc)
}

// UpdateCohort defines what information may be provided to modify an existing
// Cohort's metadata. TeacherIDs, when set, replaces the teacher assignments.
type UpdateCohort struct {
	Name                   string    `json:"name"`
	Facilitator            *string   `json:"facilitator"`
	FacilitatorEmail       *string   `json:"facilitator_email" validate:"omitempty,email"`
	StartDate              *string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate                *string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	SessionDay             *string   `json:"session_day"`
	SessionTime            *string   `json:"session_time"`
	VideoCallLink          *string   `json:"video_call_link" validate:"omitempty,url"`
	CollaborationBoardLink *string   `json:"collaboration_board_link" validate:"omitempty,url"`
	MediaFolderLink        *string   `json:"media_folder_link" validate:"omitempty,url"`
	TeacherIDs             *[]string `json:"teacher_ids"`
}

func (uc *UpdateCohort) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

type NewWeek struct {
	WeekNumber *int   `json:"week_number" validate:"required,min=0"`
	Title      string `json:"title" validate:"required"`
	Subtitle   string `json:"subtitle"`
}

func (nw *NewWeek) Validate() error {
	nw.Title = core.CleanString(nw.Title)
	nw.Subtitle = core.CleanString(nw.Subtitle)
	return core.Validate.Struct(nw)
}

type NewMessage struct {
	CohortID string `json:"cohort_id" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

func (nm *NewMessage) Validate() error {
	nm.Message = core.CleanString(nm.Message)
	return core.Validate.Struct(nm)
}

type NewTeacherAssignment struct {
	CohortID  string `json:"cohort_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

func (na NewTeacherAssignment) Validate() error { return core.Validate.Struct(na) }

type SessionTimeUpdate struct {
	AssignmentID string  `json:"assignment_id" validate:"required"`
	SessionDay   *string `json:"session_day"`
	SessionTime  *string `json:"session_time"`
}

// QueryFilter narrows cohort listings. TeacherID matches cohorts the teacher
// is assigned to, directly or through a partner school.
type QueryFilter struct {
	TeacherID string
}

// GetFilter selects a single Cohort; the first non-empty field wins.
type GetFilter struct {
	ID   string
	Slug string
}
