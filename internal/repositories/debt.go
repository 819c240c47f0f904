package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const selectLegacy = `id, person, amount, direction, COALESCE(note, '') AS note, NULL AS created_at, NULL AS updated_at`

const selectTimestamped = `id, person, amount, direction, COALESCE(note, '') AS note,
	CAST(created_at AS TEXT) AS created_at, CAST(updated_at AS TEXT) AS updated_at`

// Timestamps are cast so the driver hands them back as text instead of parsing them into time.Time.
func selectColumns(v models.SchemaVersion) string {
	if v.Timestamped() {
		return selectTimestamped
	}
	return selectLegacy
}

// DebtRepository reads and writes debt records. Every method runs on the executor it is given,
// so callers decide the unit of work.
type DebtRepository struct{}

func NewDebtRepository() *DebtRepository {
	return &DebtRepository{}
}

// Insert stores a new record and returns its id. Constraint failures map to models.ErrConstraintViolation.
func (r *DebtRepository) Insert(ctx context.Context, q sqlx.ExecerContext, v models.SchemaVersion, in models.DebtInput, now string) (int64, error) {
	query := `INSERT INTO debt (person, amount, direction, note) VALUES (?, ?, ?, ?)`
	args := []any{in.Person, in.Amount, string(in.Direction), in.Note}
	if v.Timestamped() {
		query = `INSERT INTO debt (person, amount, direction, note, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
		args = append(args, now, now)
	}

	res, err := q.ExecContext(ctx, query, args...)
	logQuery(query, args, err)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

// Update overwrites the mutable fields of record id. It reports false when no such record exists.
func (r *DebtRepository) Update(ctx context.Context, q sqlx.ExecerContext, v models.SchemaVersion, id int64, in models.DebtInput, now string) (bool, error) {
	query := `UPDATE debt SET person = ?, amount = ?, direction = ?, note = ? WHERE id = ?`
	args := []any{in.Person, in.Amount, string(in.Direction), in.Note, id}
	if v.Timestamped() {
		query = `UPDATE debt SET person = ?, amount = ?, direction = ?, note = ?, updated_at = ? WHERE id = ?`
		args = []any{in.Person, in.Amount, string(in.Direction), in.Note, now, id}
	}

	res, err := q.ExecContext(ctx, query, args...)
	logQuery(query, args, err)
	if err != nil {
		return false, mapConstraint(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes record id. It reports false when no such record exists.
func (r *DebtRepository) Delete(ctx context.Context, q sqlx.ExecerContext, id int64) (bool, error) {
	const query = `DELETE FROM debt WHERE id = ?`

	res, err := q.ExecContext(ctx, query, id)
	logQuery(query, []any{id}, err)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Get returns record id, or nil when it does not exist.
func (r *DebtRepository) Get(ctx context.Context, q sqlx.QueryerContext, v models.SchemaVersion, id int64) (*models.DebtRecord, error) {
	if v == models.SchemaAbsent {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM debt WHERE id = ?`, selectColumns(v))

	var rec models.DebtRecord
	err := sqlx.GetContext(ctx, q, &rec, query, id)
	logQuery(query, []any{id}, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the records matching filter in the requested order.
// Ties are broken by id ascending so the order is total.
func (r *DebtRepository) List(ctx context.Context, q sqlx.QueryerContext, v models.SchemaVersion, filter models.DebtFilter, sort models.DebtSort) ([]models.DebtRecord, error) {
	records := []models.DebtRecord{}
	if v == models.SchemaAbsent {
		return records, nil
	}

	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "(instr(lower(person), lower(?)) > 0 OR instr(lower(COALESCE(note, '')), lower(?)) > 0)")
		args = append(args, s, s)
	}
	if filter.Person != "" {
		where = append(where, "person = ?")
		args = append(args, filter.Person)
	}
	if filter.Direction != "" {
		where = append(where, "direction = ?")
		args = append(args, string(filter.Direction))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM debt", selectColumns(v))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, id ASC", sortColumn(v, sort.Key), strings.ToUpper(sort.Order()))
	query := b.String()

	err := sqlx.SelectContext(ctx, q, &records, query, args...)
	logQuery(query, args, err)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func sortColumn(v models.SchemaVersion, key models.SortKey) string {
	switch key {
	case models.SortAmount:
		return models.ColumnAmount
	case models.SortPerson:
		return models.ColumnPerson
	case models.SortDirection:
		return models.ColumnDirection
	}
	if v.Timestamped() {
		return models.ColumnCreatedAt
	}
	return models.ColumnID
}

// People returns the distinct counterparties ordered by name.
func (r *DebtRepository) People(ctx context.Context, q sqlx.QueryerContext, v models.SchemaVersion) ([]string, error) {
	people := []string{}
	if v == models.SchemaAbsent {
		return people, nil
	}
	const query = `SELECT DISTINCT person FROM debt ORDER BY person`

	err := sqlx.SelectContext(ctx, q, &people, query)
	logQuery(query, nil, err)
	if err != nil {
		return nil, err
	}
	return people, nil
}

// Count returns the number of records.
func (r *DebtRepository) Count(ctx context.Context, q sqlx.QueryerContext, v models.SchemaVersion) (int, error) {
	if v == models.SchemaAbsent {
		return 0, nil
	}
	const query = `SELECT COUNT(*) FROM debt`

	var n int
	err := sqlx.GetContext(ctx, q, &n, query)
	logQuery(query, nil, err)
	return n, err
}

func mapConstraint(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %w", models.ErrConstraintViolation, err)
	}
	return err
}
