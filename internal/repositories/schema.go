package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
)

// ShadowTable is the scratch table a migration copies rows into before swapping it in.
const ShadowTable = "debt_new"

const (
	indexPerson    = "idx_debt_person"
	indexDirection = "idx_debt_direction"
)

func createTableSQL(name string) string {
	return fmt.Sprintf(`
		CREATE TABLE %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			person TEXT NOT NULL,
			amount REAL NOT NULL,
			direction TEXT NOT NULL %s,
			note TEXT DEFAULT '',
			created_at TEXT,
			updated_at TEXT
		)
	`, name, models.DirectionConstraint)
}

// SchemaRepository inspects and shapes the debt table.
type SchemaRepository struct{}

func NewSchemaRepository() *SchemaRepository {
	return &SchemaRepository{}
}

// Columns returns the column names of the debt table. An empty set means the table does not exist.
func (r *SchemaRepository) Columns(ctx context.Context, q sqlx.QueryerContext) (models.ColumnSet, error) {
	const query = `SELECT name FROM pragma_table_info(?)`

	var names []string
	err := sqlx.SelectContext(ctx, q, &names, query, models.DebtTable)
	logQuery(query, []any{models.DebtTable}, err)
	if err != nil {
		return nil, err
	}
	return models.NewColumnSet(names...), nil
}

// Inspect gathers everything the migration checks need in one pass.
func (r *SchemaRepository) Inspect(ctx context.Context, q sqlx.QueryerContext) (models.SchemaInfo, error) {
	var info models.SchemaInfo

	cols, err := r.Columns(ctx, q)
	if err != nil {
		return info, err
	}
	info.Columns = cols
	info.IndexedColumns = models.NewColumnSet()
	if !info.TableExists() {
		return info, nil
	}

	const tableQuery = `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`
	var tableSQL sql.NullString
	err = sqlx.GetContext(ctx, q, &tableSQL, tableQuery, models.DebtTable)
	logQuery(tableQuery, []any{models.DebtTable}, err)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return info, err
	}
	info.TableSQL = tableSQL.String

	// Leading column of every index on the table.
	const indexQuery = `
		SELECT ii.name
		FROM pragma_index_list(?) AS il
		JOIN pragma_index_info(il.name) AS ii
		WHERE ii.seqno = 0
	`
	var leading []string
	err = sqlx.SelectContext(ctx, q, &leading, indexQuery, models.DebtTable)
	logQuery(indexQuery, []any{models.DebtTable}, err)
	if err != nil {
		return info, err
	}
	info.IndexedColumns = models.NewColumnSet(leading...)

	return info, nil
}

// Columns EnsureSchema adds to an existing table, with their definitions.
var additiveColumns = []struct{ name, def string }{
	{models.ColumnNote, "TEXT DEFAULT ''"},
	{models.ColumnCreatedAt, "TEXT"},
	{models.ColumnUpdatedAt, "TEXT"},
}

// EnsureSchema creates the canonical table when it is missing and otherwise adds the note and
// timestamp columns an older table lacks. It never drops or renames anything.
func (r *SchemaRepository) EnsureSchema(ctx context.Context, q sqlx.ExtContext) error {
	cols, err := r.Columns(ctx, q)
	if err != nil {
		return err
	}

	if len(cols) == 0 {
		return r.CreateTable(ctx, q)
	}

	for _, c := range additiveColumns {
		col := c.name
		if cols.Has(col) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", models.DebtTable, col, c.def)
		if err := exec(ctx, q, stmt); err != nil {
			return err
		}
		logger.Log.Infow("added missing column", "table", models.DebtTable, "column", col)
	}
	return nil
}

// BackfillTimestamps sets every null created_at / updated_at to now and returns how many fields changed.
func (r *SchemaRepository) BackfillTimestamps(ctx context.Context, q sqlx.ExtContext, now string) (int64, error) {
	cols, err := r.Columns(ctx, q)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, col := range []string{models.ColumnCreatedAt, models.ColumnUpdatedAt} {
		if !cols.Has(col) {
			continue
		}
		query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s IS NULL", models.DebtTable, col, col)
		res, err := q.ExecContext(ctx, query, now)
		logQuery(query, []any{now}, err)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// CreateShadow drops any leftover shadow table and creates a fresh canonical one.
func (r *SchemaRepository) CreateShadow(ctx context.Context, q sqlx.ExtContext) error {
	if err := exec(ctx, q, "DROP TABLE IF EXISTS "+ShadowTable); err != nil {
		return err
	}
	return exec(ctx, q, createTableSQL(ShadowTable))
}

// CopyRows copies every row of the debt table into the shadow table.
// Columns the source lacks are filled in: note with '', timestamps with stamp, anything else with NULL.
func (r *SchemaRepository) CopyRows(ctx context.Context, q sqlx.ExtContext, src models.ColumnSet, stamp string) (int64, error) {
	selects := make([]string, 0, len(models.CanonicalColumns))
	var args []any
	for _, col := range models.CanonicalColumns {
		switch {
		case src.Has(col):
			selects = append(selects, col)
		case col == models.ColumnNote:
			selects = append(selects, "''")
		case col == models.ColumnCreatedAt || col == models.ColumnUpdatedAt:
			selects = append(selects, "?")
			args = append(args, stamp)
		default:
			selects = append(selects, "NULL")
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		ShadowTable,
		strings.Join(models.CanonicalColumns, ", "),
		strings.Join(selects, ", "),
		models.DebtTable,
	)
	res, err := q.ExecContext(ctx, query, args...)
	logQuery(query, args, err)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CarrySequence keeps the AUTOINCREMENT high-water mark of the debt table on the shadow table,
// so ids of deleted records are never handed out again.
func (r *SchemaRepository) CarrySequence(ctx context.Context, q sqlx.ExtContext) error {
	// sqlite_sequence exists here: the shadow table was created with AUTOINCREMENT.
	const seqQuery = `SELECT COALESCE(MAX(seq), 0) FROM sqlite_sequence WHERE name = ?`
	var seq int64
	err := sqlx.GetContext(ctx, q, &seq, seqQuery, models.DebtTable)
	logQuery(seqQuery, []any{models.DebtTable}, err)
	if err != nil {
		return err
	}
	if seq == 0 {
		return nil
	}

	const updateQuery = `UPDATE sqlite_sequence SET seq = MAX(seq, ?) WHERE name = ?`
	res, err := q.ExecContext(ctx, updateQuery, seq, ShadowTable)
	logQuery(updateQuery, []any{seq, ShadowTable}, err)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}

	const insertQuery = `INSERT INTO sqlite_sequence (name, seq) VALUES (?, ?)`
	_, err = q.ExecContext(ctx, insertQuery, ShadowTable, seq)
	logQuery(insertQuery, []any{ShadowTable, seq}, err)
	return err
}

// Swap replaces the debt table with the shadow table.
func (r *SchemaRepository) Swap(ctx context.Context, q sqlx.ExtContext) error {
	if err := exec(ctx, q, "DROP TABLE "+models.DebtTable); err != nil {
		return err
	}
	return exec(ctx, q, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", ShadowTable, models.DebtTable))
}

// CreateIndexes adds the person and direction indexes when they are missing.
func (r *SchemaRepository) CreateIndexes(ctx context.Context, q sqlx.ExtContext) error {
	stmts := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexPerson, models.DebtTable, models.ColumnPerson),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexDirection, models.DebtTable, models.ColumnDirection),
	}
	for _, stmt := range stmts {
		if err := exec(ctx, q, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable creates the canonical debt table and its indexes. Used by migration on a fresh file.
func (r *SchemaRepository) CreateTable(ctx context.Context, q sqlx.ExtContext) error {
	if err := exec(ctx, q, createTableSQL(models.DebtTable)); err != nil {
		return err
	}
	return r.CreateIndexes(ctx, q)
}

// SQLiteVersion reports the engine version, shown on the settings page.
func (r *SchemaRepository) SQLiteVersion(ctx context.Context, q sqlx.QueryerContext) (string, error) {
	const query = `SELECT sqlite_version()`
	var v string
	err := sqlx.GetContext(ctx, q, &v, query)
	logQuery(query, nil, err)
	return v, err
}

func exec(ctx context.Context, q sqlx.ExecerContext, stmt string, args ...any) error {
	_, err := q.ExecContext(ctx, stmt, args...)
	logQuery(stmt, args, err)
	return err
}

func logQuery(query string, args []any, err error) {
	logger.Log.Debugw("sql",
		"sql", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)
}
