package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core/cohort"
	"github.com/gllabs/portal/core/unit"
)

type cohortRepository struct {
	db *sqlx.DB
}

var _ cohort.Repository = (*cohortRepository)(nil) // interface compliance check

func NewCohortRepository(db *sqlx.DB) *cohortRepository {
	return &cohortRepository{db: db}
}

type dbCohort struct {
	ID                     string      `db:"id"`
	Slug                   string      `db:"slug"`
	Name                   string      `db:"name"`
	UnitID                 null.String `db:"unit_id"`
	Facilitator            null.String `db:"facilitator"`
	FacilitatorEmail       null.String `db:"facilitator_email"`
	StartDate              null.Time   `db:"start_date"`
	EndDate                null.Time   `db:"end_date"`
	SessionDay             null.String `db:"session_day"`
	SessionTime            null.String `db:"session_time"`
	VideoCallLink          null.String `db:"video_call_link"`
	CollaborationBoardLink null.String `db:"collaboration_board_link"`
	MediaFolderLink        null.String `db:"media_folder_link"`
	CreatedAt              null.Time   `db:"created_at"`
	UpdatedAt              null.Time   `db:"updated_at"`
}

type dbWeek struct {
	ID         string      `db:"id"`
	CohortID   string      `db:"cohort_id"`
	WeekNumber int         `db:"week_number"`
	Title      string      `db:"title"`
	Subtitle   null.String `db:"subtitle"`
	Unlocked   bool        `db:"unlocked"`
}

type dbWeekContent struct {
	ID     string      `db:"id"`
	WeekID string      `db:"week_id"`
	Type   string      `db:"type"`
	Title  string      `db:"title"`
	Body   null.String `db:"body"`
	URL    null.String `db:"url"`
	Order  int         `db:"order"`
}

type dbPartnerSchool struct {
	ID          string      `db:"id"`
	CohortID    string      `db:"cohort_id"`
	Name        string      `db:"name"`
	Location    null.String `db:"location"`
	TeacherID   string      `db:"teacher_id"`
	CreatedAt   null.Time   `db:"created_at"`
	TeacherName null.String `db:"teacher_name"`
}

type dbTeacherAssignment struct {
	ID           string      `db:"id"`
	CohortID     string      `db:"cohort_id"`
	TeacherID    string      `db:"teacher_id"`
	SessionDay   null.String `db:"session_day"`
	SessionTime  null.String `db:"session_time"`
	CreatedAt    null.Time   `db:"created_at"`
	TeacherName  null.String `db:"teacher_name"`
	TeacherEmail null.String `db:"teacher_email"`
}

type dbMessage struct {
	ID        string      `db:"id"`
	CohortID  string      `db:"cohort_id"`
	UserID    string      `db:"user_id"`
	Message   string      `db:"message"`
	CreatedAt null.Time   `db:"created_at"`
	UserName  null.String `db:"user_name"`
}

func (repo cohortRepository) row(c cohort.Cohort) dbCohort {
	return dbCohort{
		ID:                     c.ID,
		Slug:                   c.Slug,
		Name:                   c.Name,
		UnitID:                 c.UnitID,
		Facilitator:            c.Facilitator,
		FacilitatorEmail:       c.FacilitatorEmail,
		StartDate:              c.StartDate,
		EndDate:                c.EndDate,
		SessionDay:             c.SessionDay,
		SessionTime:            c.SessionTime,
		VideoCallLink:          c.VideoCallLink,
		CollaborationBoardLink: c.CollaborationBoardLink,
		MediaFolderLink:        c.MediaFolderLink,
		CreatedAt:              null.NewTime(c.CreatedAt.UTC(), !c.CreatedAt.IsZero()),
		UpdatedAt:              null.NewTime(c.UpdatedAt.UTC(), !c.UpdatedAt.IsZero()),
	}
}

func (repo cohortRepository) unrow(row dbCohort) cohort.Cohort {
	return cohort.Cohort{
		ID:                     row.ID,
		Slug:                   row.Slug,
		Name:                   row.Name,
		UnitID:                 row.UnitID,
		Facilitator:            row.Facilitator,
		FacilitatorEmail:       row.FacilitatorEmail,
		StartDate:              row.StartDate,
		EndDate:                row.EndDate,
		SessionDay:             row.SessionDay,
		SessionTime:            row.SessionTime,
		VideoCallLink:          row.VideoCallLink,
		CollaborationBoardLink: row.CollaborationBoardLink,
		MediaFolderLink:        row.MediaFolderLink,
		CreatedAt:              row.CreatedAt.Time,
		UpdatedAt:              row.UpdatedAt.Time,
		Weeks:                  []cohort.Week{},
	}
}

func (repo cohortRepository) unrowWeek(row dbWeek) cohort.Week {
	return cohort.Week{
		ID:         row.ID,
		CohortID:   row.CohortID,
		WeekNumber: row.WeekNumber,
		Title:      row.Title,
		Subtitle:   row.Subtitle,
		Unlocked:   row.Unlocked,
		Content:    []cohort.ContentItem{},
	}
}

func (repo cohortRepository) unrowContent(row dbWeekContent) cohort.ContentItem {
	return cohort.ContentItem{
		ID:     row.ID,
		WeekID: row.WeekID,
		Type:   unit.ContentType(row.Type),
		Title:  row.Title,
		Body:   row.Body,
		URL:    row.URL,
		Order:  row.Order,
	}
}

func (repo cohortRepository) CohortSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM cohort WHERE slug = $1)`
	if err := repo.db.GetContext(ctx, &exists, q, slug); err != nil {
		return false, errors.Wrap(err, "checking slug")
	}
	return exists, nil
}

func (repo cohortRepository) CreateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	c.ID = uuid.New().String()
	row := repo.row(c)
	q := `
INSERT INTO cohort (id, slug, name, unit_id, facilitator, facilitator_email, start_date, end_date,
                    session_day, session_time, video_call_link, collaboration_board_link, media_folder_link,
                    created_at, updated_at)
VALUES (:id, :slug, :name, :unit_id, :facilitator, :facilitator_email, :start_date, :end_date,
        :session_day, :session_time, :video_call_link, :collaboration_board_link, :media_folder_link,
        :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err, "cohort_slug_key") {
			return cohort.Cohort{}, cohort.ErrSlugExists
		}
		return cohort.Cohort{}, errors.Wrap(err, "inserting cohort")
	}

	for i := range c.PartnerSchools {
		ps := c.PartnerSchools[i]
		ps.ID = uuid.New().String()
		ps.CohortID = c.ID
		q := `
INSERT INTO partner_school (id, cohort_id, name, location, teacher_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err = tx.ExecContext(ctx, q, ps.ID, ps.CohortID, ps.Name, ps.Location, ps.TeacherID, ps.CreatedAt); err != nil {
			return cohort.Cohort{}, errors.Wrap(err, "inserting partner school")
		}
		c.PartnerSchools[i] = ps
	}

	for i := range c.Weeks {
		c.Weeks[i].CohortID = c.ID
		if c.Weeks[i], err = createCohortWeek(ctx, tx, c.Weeks[i]); err != nil {
			return cohort.Cohort{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "committing tx")
	}
	return c, nil
}

func createCohortWeek(ctx context.Context, tx *sqlx.Tx, w cohort.Week) (cohort.Week, error) {
	w.ID = uuid.New().String()
	q := `
INSERT INTO week (id, cohort_id, week_number, title, subtitle, unlocked)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, q, w.ID, w.CohortID, w.WeekNumber, w.Title, w.Subtitle, w.Unlocked); err != nil {
		if isUniqueViolation(err, "week_cohort_id_week_number_key") {
			return cohort.Week{}, cohort.ErrWeekNumberTaken
		}
		return cohort.Week{}, errors.Wrap(err, "inserting week")
	}

	for i := range w.Content {
		c := w.Content[i]
		c.ID = uuid.New().String()
		c.WeekID = w.ID
		q := `
INSERT INTO week_content (id, week_id, type, title, body, url, "order")
VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, q, c.ID, c.WeekID, string(c.Type), c.Title, c.Body, c.URL, c.Order); err != nil {
			if isUniqueViolation(err, "week_content_week_id_order_key") {
				return cohort.Week{}, cohort.ErrOrderTaken
			}
			return cohort.Week{}, errors.Wrap(err, "inserting week content")
		}
		w.Content[i] = c
	}
	return w, nil
}

func (repo cohortRepository) QueryCohorts(ctx context.Context, filter *cohort.QueryFilter) ([]cohort.Cohort, error) {
	q := `SELECT * FROM cohort`
	var args []interface{}
	if filter != nil && filter.TeacherID != "" {
		q = `
SELECT DISTINCT c.* FROM cohort c
LEFT JOIN cohort_teacher ct ON ct.cohort_id = c.id
LEFT JOIN partner_school ps ON ps.cohort_id = c.id
WHERE ct.teacher_id = $1 OR ps.teacher_id = $1`
		args = append(args, filter.TeacherID)
	}
	q += ` ORDER BY created_at DESC`

	var rows []dbCohort
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying cohorts")
	}
	cohorts := make([]cohort.Cohort, 0, len(rows))
	for _, row := range rows {
		cohorts = append(cohorts, repo.unrow(row))
	}
	return cohorts, nil
}

func (repo cohortRepository) GetCohort(ctx context.Context, filter cohort.GetFilter) (cohort.Cohort, error) {
	var clause string
	var arg interface{}
	switch {
	case filter.ID != "":
		clause, arg = "id = $1", filter.ID
	case filter.Slug != "":
		clause, arg = "slug = $1", filter.Slug
	default:
		return cohort.Cohort{}, cohort.ErrNotFound
	}

	var row dbCohort
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM cohort WHERE `+clause, arg); err != nil {
		if err == sql.ErrNoRows {
			return cohort.Cohort{}, cohort.ErrNotFound
		}
		return cohort.Cohort{}, errors.Wrap(err, "getting cohort")
	}
	c := repo.unrow(row)

	if err := repo.loadWeeks(ctx, &c); err != nil {
		return cohort.Cohort{}, err
	}
	if err := repo.loadPartnerSchools(ctx, &c); err != nil {
		return cohort.Cohort{}, err
	}
	if err := repo.loadTeachers(ctx, &c); err != nil {
		return cohort.Cohort{}, err
	}
	return c, nil
}

func (repo cohortRepository) loadWeeks(ctx context.Context, c *cohort.Cohort) error {
	var weekRows []dbWeek
	q := `SELECT * FROM week WHERE cohort_id = $1 ORDER BY week_number`
	if err := repo.db.SelectContext(ctx, &weekRows, q, c.ID); err != nil {
		return errors.Wrap(err, "getting weeks")
	}
	weekIdx := make(map[string]int, len(weekRows))
	for i, wr := range weekRows {
		c.Weeks = append(c.Weeks, repo.unrowWeek(wr))
		weekIdx[wr.ID] = i
	}

	if len(weekRows) == 0 {
		return nil
	}
	var contentRows []dbWeekContent
	q = `
SELECT wc.* FROM week_content wc
JOIN week w ON w.id = wc.week_id
WHERE w.cohort_id = $1
ORDER BY wc."order"`
	if err := repo.db.SelectContext(ctx, &contentRows, q, c.ID); err != nil {
		return errors.Wrap(err, "getting week content")
	}
	for _, cr := range contentRows {
		i := weekIdx[cr.WeekID]
		c.Weeks[i].Content = append(c.Weeks[i].Content, repo.unrowContent(cr))
	}
	return nil
}

func (repo cohortRepository) loadPartnerSchools(ctx context.Context, c *cohort.Cohort) error {
	var rows []dbPartnerSchool
	q := `
SELECT ps.*, u.name AS teacher_name FROM partner_school ps
LEFT JOIN "user" u ON u.id = ps.teacher_id
WHERE ps.cohort_id = $1
ORDER BY ps.name`
	if err := repo.db.SelectContext(ctx, &rows, q, c.ID); err != nil {
		return errors.Wrap(err, "getting partner schools")
	}
	for _, row := range rows {
		c.PartnerSchools = append(c.PartnerSchools, cohort.PartnerSchool{
			ID:          row.ID,
			CohortID:    row.CohortID,
			Name:        row.Name,
			Location:    row.Location,
			TeacherID:   row.TeacherID,
			TeacherName: row.TeacherName.String,
			CreatedAt:   row.CreatedAt.Time,
		})
	}
	return nil
}

func (repo cohortRepository) loadTeachers(ctx context.Context, c *cohort.Cohort) error {
	var rows []dbTeacherAssignment
	q := `
SELECT ct.*, u.name AS teacher_name, u.email AS teacher_email FROM cohort_teacher ct
LEFT JOIN "user" u ON u.id = ct.teacher_id
WHERE ct.cohort_id = $1
ORDER BY ct.created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, c.ID); err != nil {
		return errors.Wrap(err, "getting teacher assignments")
	}
	for _, row := range rows {
		c.Teachers = append(c.Teachers, cohort.TeacherAssignment{
			ID:           row.ID,
			CohortID:     row.CohortID,
			TeacherID:    row.TeacherID,
			SessionDay:   row.SessionDay,
			SessionTime:  row.SessionTime,
			TeacherName:  row.TeacherName.String,
			TeacherEmail: row.TeacherEmail.String,
			CreatedAt:    row.CreatedAt.Time,
		})
	}
	return nil
}

func (repo cohortRepository) UpdateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	row := repo.row(c)
	q := `
UPDATE cohort
SET name                     = :name,
    facilitator              = :facilitator,
    facilitator_email        = :facilitator_email,
    start_date               = :start_date,
    end_date                 = :end_date,
    session_day              = :session_day,
    session_time             = :session_time,
    video_call_link          = :video_call_link,
    collaboration_board_link = :collaboration_board_link,
    media_folder_link        = :media_folder_link,
    updated_at               = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "updating cohort")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	return repo.GetCohort(ctx, cohort.GetFilter{ID: c.ID})
}

func (repo cohortRepository) DeleteCohortsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM cohort WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting cohorts")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting cohorts")
	}
	return nil
}

func (repo cohortRepository) CreateWeek(ctx context.Context, w cohort.Week) (cohort.Week, error) {
	w.ID = uuid.New().String()
	q := `
INSERT INTO week (id, cohort_id, week_number, title, subtitle, unlocked)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, q, w.ID, w.CohortID, w.WeekNumber, w.Title, w.Subtitle, w.Unlocked); err != nil {
		if isUniqueViolation(err, "week_cohort_id_week_number_key") {
			return cohort.Week{}, cohort.ErrWeekNumberTaken
		}
		return cohort.Week{}, errors.Wrap(err, "inserting week")
	}
	return w, nil
}

func (repo cohortRepository) GetWeek(ctx context.Context, id string) (cohort.Week, error) {
	var row dbWeek
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM week WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return cohort.Week{}, cohort.ErrWeekNotFound
		}
		return cohort.Week{}, errors.Wrap(err, "getting week")
	}
	w := repo.unrowWeek(row)

	var contentRows []dbWeekContent
	q := `SELECT * FROM week_content WHERE week_id = $1 ORDER BY "order"`
	if err := repo.db.SelectContext(ctx, &contentRows, q, id); err != nil {
		return cohort.Week{}, errors.Wrap(err, "getting week content")
	}
	for _, cr := range contentRows {
		w.Content = append(w.Content, repo.unrowContent(cr))
	}
	return w, nil
}

func (repo cohortRepository) SetWeekUnlocked(ctx context.Context, id string, unlocked bool) (cohort.Week, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE week SET unlocked = $2 WHERE id = $1`, id, unlocked)
	if err != nil {
		return cohort.Week{}, errors.Wrap(err, "updating week")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cohort.Week{}, cohort.ErrWeekNotFound
	}
	return repo.GetWeek(ctx, id)
}

func (repo cohortRepository) UnlockNextWeek(ctx context.Context, cohortID string) (cohort.Week, bool, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return cohort.Week{}, false, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	// row lock serializes concurrent unlocks on the same cohort
	var row dbWeek
	q := `
SELECT * FROM week
WHERE cohort_id = $1 AND NOT unlocked AND week_number > 0
ORDER BY week_number
LIMIT 1
FOR UPDATE`
	if err = tx.GetContext(ctx, &row, q, cohortID); err != nil {
		if err == sql.ErrNoRows {
			return cohort.Week{}, false, nil // all weeks already unlocked
		}
		return cohort.Week{}, false, errors.Wrap(err, "finding locked week")
	}

	if _, err = tx.ExecContext(ctx, `UPDATE week SET unlocked = TRUE WHERE id = $1`, row.ID); err != nil {
		return cohort.Week{}, false, errors.Wrap(err, "unlocking week")
	}
	if err = tx.Commit(); err != nil {
		return cohort.Week{}, false, errors.Wrap(err, "committing tx")
	}

	row.Unlocked = true
	return repo.unrowWeek(row), true, nil
}

func (repo cohortRepository) CreateContent(ctx context.Context, c cohort.ContentItem) (cohort.ContentItem, error) {
	c.ID = uuid.New().String()
	q := `
INSERT INTO week_content (id, week_id, type, title, body, url, "order")
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := repo.db.ExecContext(ctx, q, c.ID, c.WeekID, string(c.Type), c.Title, c.Body, c.URL, c.Order); err != nil {
		if isUniqueViolation(err, "week_content_week_id_order_key") {
			return cohort.ContentItem{}, cohort.ErrOrderTaken
		}
		return cohort.ContentItem{}, errors.Wrap(err, "inserting week content")
	}
	return c, nil
}

func (repo cohortRepository) DeleteContent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM week_content WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting week content")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cohort.ErrContentNotFound
	}
	return nil
}

func (repo cohortRepository) DeletePartnerSchool(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM partner_school WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting partner school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cohort.ErrSchoolNotFound
	}
	return nil
}

func (repo cohortRepository) CreateTeacherAssignment(ctx context.Context, ta cohort.TeacherAssignment) (cohort.TeacherAssignment, error) {
	ta.ID = uuid.New().String()
	q := `
INSERT INTO cohort_teacher (id, cohort_id, teacher_id, session_day, session_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, q, ta.ID, ta.CohortID, ta.TeacherID, ta.SessionDay, ta.SessionTime, ta.CreatedAt); err != nil {
		if isUniqueViolation(err, "cohort_teacher_cohort_id_teacher_id_key") {
			return cohort.TeacherAssignment{}, cohort.ErrTeacherAssigned
		}
		return cohort.TeacherAssignment{}, errors.Wrap(err, "inserting teacher assignment")
	}
	return ta, nil
}

func (repo cohortRepository) DeleteTeacherAssignment(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM cohort_teacher WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting teacher assignment")
	}
	return nil
}

func (repo cohortRepository) ReplaceTeacherAssignments(ctx context.Context, cohortID string, teacherIDs []string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM cohort_teacher WHERE cohort_id = $1`, cohortID); err != nil {
		return errors.Wrap(err, "clearing teacher assignments")
	}

	now := time.Now().UTC()
	for _, teacherID := range teacherIDs {
		q := `
INSERT INTO cohort_teacher (id, cohort_id, teacher_id, created_at)
VALUES ($1, $2, $3, $4)`
		if _, err = tx.ExecContext(ctx, q, uuid.New().String(), cohortID, teacherID, now); err != nil {
			return errors.Wrap(err, "inserting teacher assignment")
		}
	}
	return errors.Wrap(tx.Commit(), "committing tx")
}

func (repo cohortRepository) UpdateAssignmentSession(ctx context.Context, id string, day, sessionTime null.String) error {
	q := `UPDATE cohort_teacher SET session_day = $2, session_time = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id, day, sessionTime)
	if err != nil {
		return errors.Wrap(err, "updating assignment session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cohort.ErrNotFound
	}
	return nil
}

func (repo cohortRepository) CreateMessage(ctx context.Context, m cohort.Message) (cohort.Message, error) {
	m.ID = uuid.New().String()
	q := `
INSERT INTO cohort_message (id, cohort_id, user_id, message, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, q, m.ID, m.CohortID, m.UserID, m.Message, m.CreatedAt); err != nil {
		return cohort.Message{}, errors.Wrap(err, "inserting message")
	}
	return m, nil
}

func (repo cohortRepository) QueryMessages(ctx context.Context, cohortID string) ([]cohort.Message, error) {
	var rows []dbMessage
	q := `
SELECT m.*, u.name AS user_name FROM cohort_message m
LEFT JOIN "user" u ON u.id = m.user_id
WHERE m.cohort_id = $1
ORDER BY m.created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, cohortID); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	msgs := make([]cohort.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, cohort.Message{
			ID:        row.ID,
			CohortID:  row.CohortID,
			UserID:    row.UserID,
			Message:   row.Message,
			UserName:  row.UserName.String,
			CreatedAt: row.CreatedAt.Time,
		})
	}
	return msgs, nil
}
