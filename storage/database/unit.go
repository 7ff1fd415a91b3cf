package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core/unit"
)

type unitRepository struct {
	db *sqlx.DB
}

var _ unit.Repository = (*unitRepository)(nil) // interface compliance check

func NewUnitRepository(db *sqlx.DB) *unitRepository {
	return &unitRepository{db: db}
}

type dbUnit struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

type dbUnitWeek struct {
	ID         string      `db:"id"`
	UnitID     string      `db:"unit_id"`
	WeekNumber int         `db:"week_number"`
	Title      string      `db:"title"`
	Subtitle   null.String `db:"subtitle"`
}

type dbUnitContent struct {
	ID         string      `db:"id"`
	UnitWeekID string      `db:"unit_week_id"`
	Type       string      `db:"type"`
	Title      string      `db:"title"`
	Body       null.String `db:"body"`
	URL        null.String `db:"url"`
	Order      int         `db:"order"`
}

func (repo unitRepository) unrow(row dbUnit) unit.Unit {
	return unit.Unit{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func (repo unitRepository) unrowWeek(row dbUnitWeek) unit.Week {
	return unit.Week{
		ID:         row.ID,
		UnitID:     row.UnitID,
		WeekNumber: row.WeekNumber,
		Title:      row.Title,
		Subtitle:   row.Subtitle,
		Content:    []unit.ContentItem{},
	}
}

func (repo unitRepository) unrowContent(row dbUnitContent) unit.ContentItem {
	return unit.ContentItem{
		ID:     row.ID,
		WeekID: row.UnitWeekID,
		Type:   unit.ContentType(row.Type),
		Title:  row.Title,
		Body:   row.Body,
		URL:    row.URL,
		Order:  row.Order,
	}
}

func (repo unitRepository) CreateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return unit.Unit{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	u.ID = uuid.New().String()
	q := `
INSERT INTO unit (id, name, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, q, u.ID, u.Name, u.Description, u.CreatedAt, u.UpdatedAt); err != nil {
		return unit.Unit{}, errors.Wrap(err, "inserting unit")
	}

	for i := range u.Weeks {
		u.Weeks[i].UnitID = u.ID
		if u.Weeks[i], err = createUnitWeek(ctx, tx, u.Weeks[i]); err != nil {
			return unit.Unit{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return unit.Unit{}, errors.Wrap(err, "committing tx")
	}
	return u, nil
}

func createUnitWeek(ctx context.Context, tx *sqlx.Tx, w unit.Week) (unit.Week, error) {
	w.ID = uuid.New().String()
	q := `
INSERT INTO unit_week (id, unit_id, week_number, title, subtitle)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, q, w.ID, w.UnitID, w.WeekNumber, w.Title, w.Subtitle); err != nil {
		if isUniqueViolation(err, "unit_week_unit_id_week_number_key") {
			return unit.Week{}, unit.ErrWeekNumberTaken
		}
		return unit.Week{}, errors.Wrap(err, "inserting unit week")
	}

	for i := range w.Content {
		c := w.Content[i]
		c.ID = uuid.New().String()
		c.WeekID = w.ID
		q := `
INSERT INTO unit_week_content (id, unit_week_id, type, title, body, url, "order")
VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, q, c.ID, c.WeekID, string(c.Type), c.Title, c.Body, c.URL, c.Order); err != nil {
			if isUniqueViolation(err, "unit_week_content_unit_week_id_order_key") {
				return unit.Week{}, unit.ErrOrderTaken
			}
			return unit.Week{}, errors.Wrap(err, "inserting unit content")
		}
		w.Content[i] = c
	}
	return w, nil
}

func (repo unitRepository) QueryUnits(ctx context.Context) ([]unit.Unit, error) {
	var rows []dbUnit
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM unit ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying units")
	}
	units := make([]unit.Unit, 0, len(rows))
	for _, row := range rows {
		units = append(units, repo.unrow(row))
	}
	return units, nil
}

func (repo unitRepository) GetUnit(ctx context.Context, id string) (unit.Unit, error) {
	var row dbUnit
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM unit WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return unit.Unit{}, unit.ErrNotFound
		}
		return unit.Unit{}, errors.Wrap(err, "getting unit")
	}
	u := repo.unrow(row)

	var weekRows []dbUnitWeek
	q := `SELECT * FROM unit_week WHERE unit_id = $1 ORDER BY week_number`
	if err := repo.db.SelectContext(ctx, &weekRows, q, id); err != nil {
		return unit.Unit{}, errors.Wrap(err, "getting unit weeks")
	}
	u.Weeks = make([]unit.Week, 0, len(weekRows))

	weekIdx := make(map[string]int, len(weekRows))
	for i, wr := range weekRows {
		u.Weeks = append(u.Weeks, repo.unrowWeek(wr))
		weekIdx[wr.ID] = i
	}

	if len(weekRows) > 0 {
		var contentRows []dbUnitContent
		q = `
SELECT c.* FROM unit_week_content c
JOIN unit_week w ON w.id = c.unit_week_id
WHERE w.unit_id = $1
ORDER BY c."order"`
		if err := repo.db.SelectContext(ctx, &contentRows, q, id); err != nil {
			return unit.Unit{}, errors.Wrap(err, "getting unit content")
		}
		for _, cr := range contentRows {
			i := weekIdx[cr.UnitWeekID]
			u.Weeks[i].Content = append(u.Weeks[i].Content, repo.unrowContent(cr))
		}
	}
	return u, nil
}

func (repo unitRepository) UpdateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	u.UpdatedAt = time.Now().UTC()
	q := `UPDATE unit SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, u.ID, u.Name, u.Description, u.UpdatedAt)
	if err != nil {
		return unit.Unit{}, errors.Wrap(err, "updating unit")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return unit.Unit{}, unit.ErrNotFound
	}
	return u, nil
}

func (repo unitRepository) DeleteUnit(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM unit WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting unit")
	}
	return nil
}

func (repo unitRepository) CreateWeek(ctx context.Context, w unit.Week) (unit.Week, error) {
	w.ID = uuid.New().String()
	q := `
INSERT INTO unit_week (id, unit_id, week_number, title, subtitle)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, q, w.ID, w.UnitID, w.WeekNumber, w.Title, w.Subtitle); err != nil {
		if isUniqueViolation(err, "unit_week_unit_id_week_number_key") {
			return unit.Week{}, unit.ErrWeekNumberTaken
		}
		return unit.Week{}, errors.Wrap(err, "inserting unit week")
	}
	return w, nil
}

func (repo unitRepository) UpdateWeek(ctx context.Context, w unit.Week) (unit.Week, error) {
	q := `UPDATE unit_week SET title = $2, subtitle = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, w.ID, w.Title, w.Subtitle)
	if err != nil {
		return unit.Week{}, errors.Wrap(err, "updating unit week")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return unit.Week{}, unit.ErrWeekNotFound
	}
	return w, nil
}

func (repo unitRepository) DeleteWeek(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM unit_week WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting unit week")
	}
	return nil
}

func (repo unitRepository) GetWeek(ctx context.Context, id string) (unit.Week, error) {
	var row dbUnitWeek
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM unit_week WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return unit.Week{}, unit.ErrWeekNotFound
		}
		return unit.Week{}, errors.Wrap(err, "getting unit week")
	}
	w := repo.unrowWeek(row)

	var contentRows []dbUnitContent
	q := `SELECT * FROM unit_week_content WHERE unit_week_id = $1 ORDER BY "order"`
	if err := repo.db.SelectContext(ctx, &contentRows, q, id); err != nil {
		return unit.Week{}, errors.Wrap(err, "getting unit content")
	}
	for _, cr := range contentRows {
		w.Content = append(w.Content, repo.unrowContent(cr))
	}
	return w, nil
}

func (repo unitRepository) CreateContent(ctx context.Context, c unit.ContentItem) (unit.ContentItem, error) {
	c.ID = uuid.New().String()
	q := `
INSERT INTO unit_week_content (id, unit_week_id, type, title, body, url, "order")
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := repo.db.ExecContext(ctx, q, c.ID, c.WeekID, string(c.Type), c.Title, c.Body, c.URL, c.Order); err != nil {
		if isUniqueViolation(err, "unit_week_content_unit_week_id_order_key") {
			return unit.ContentItem{}, unit.ErrOrderTaken
		}
		return unit.ContentItem{}, errors.Wrap(err, "inserting unit content")
	}
	return c, nil
}

func (repo unitRepository) DeleteContent(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM unit_week_content WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting unit content")
	}
	return nil
}
