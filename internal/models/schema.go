package models

import "strings"

// DebtTable is the single ledger table.
const DebtTable = "debt"

// DirectionConstraint is the exact CHECK clause the canonical schema carries.
const DirectionConstraint = "CHECK(direction IN ('you_owe','they_owe'))"

// Column names of the canonical schema, in table order.
const (
	ColumnID        = "id"
	ColumnPerson    = "person"
	ColumnAmount    = "amount"
	ColumnDirection = "direction"
	ColumnNote      = "note"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// CanonicalColumns lists the columns every healthy debt table has.
var CanonicalColumns = []string{
	ColumnID, ColumnPerson, ColumnAmount, ColumnDirection, ColumnNote, ColumnCreatedAt, ColumnUpdatedAt,
}

// ColumnSet is the set of column names present on a table.
type ColumnSet map[string]struct{}

// NewColumnSet builds a set from names.
func NewColumnSet(names ...string) ColumnSet {
	set := make(ColumnSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Has reports whether name is present.
func (s ColumnSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// HasAll reports whether every name is present.
func (s ColumnSet) HasAll(names ...string) bool {
	for _, n := range names {
		if !s.Has(n) {
			return false
		}
	}
	return true
}

// SchemaVersion classifies the live debt table. It is computed from a single inspection and
// cached on the store handle; record operations branch on it instead of re-querying columns.
type SchemaVersion int

const (
	// SchemaAbsent: the table does not exist.
	SchemaAbsent SchemaVersion = iota
	// SchemaLegacy: created_at or updated_at is missing.
	SchemaLegacy
	// SchemaDrifted: timestamps exist but some other check fails.
	SchemaDrifted
	// SchemaCanonical: every check passes.
	SchemaCanonical
)

// Timestamped reports whether both timestamp columns exist.
func (v SchemaVersion) Timestamped() bool {
	return v >= SchemaDrifted
}

func (v SchemaVersion) String() string {
	switch v {
	case SchemaAbsent:
		return "absent"
	case SchemaLegacy:
		return "legacy"
	case SchemaDrifted:
		return "drifted"
	case SchemaCanonical:
		return "canonical"
	default:
		return "unknown"
	}
}

// MarshalText lets the version render as its name in JSON payloads.
func (v SchemaVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// SchemaInfo is the raw result of inspecting the debt table.
type SchemaInfo struct {
	Columns ColumnSet
	// TableSQL is the CREATE statement stored in sqlite_master.
	TableSQL string
	// IndexedColumns holds the leading column of every index on the table.
	IndexedColumns ColumnSet
}

// TableExists reports whether the table was found.
func (i SchemaInfo) TableExists() bool {
	return len(i.Columns) > 0
}

// HasDirectionConstraint reports whether the exact direction CHECK clause is present.
func (i SchemaInfo) HasDirectionConstraint() bool {
	return strings.Contains(i.TableSQL, DirectionConstraint)
}

// HasPersonIndex reports whether some index leads with person.
func (i SchemaInfo) HasPersonIndex() bool {
	return i.IndexedColumns.Has(ColumnPerson)
}

// Check names, in evaluation order.
const (
	CheckTableExists         = "Table exists"
	CheckRequiredColumns     = "Required columns"
	CheckDirectionConstraint = "Direction constraint"
	CheckPersonIndex         = "Person index"
)

// Checks evaluates the four migration checks.
func (i SchemaInfo) Checks() []MigrationCheck {
	return []MigrationCheck{
		{Name: CheckTableExists, Passed: i.TableExists()},
		{Name: CheckRequiredColumns, Passed: i.Columns.HasAll(CanonicalColumns...)},
		{Name: CheckDirectionConstraint, Passed: i.HasDirectionConstraint()},
		{Name: CheckPersonIndex, Passed: i.HasPersonIndex()},
	}
}

// Version classifies the inspected table.
func (i SchemaInfo) Version() SchemaVersion {
	switch {
	case !i.TableExists():
		return SchemaAbsent
	case !i.Columns.HasAll(ColumnCreatedAt, ColumnUpdatedAt):
		return SchemaLegacy
	}
	for _, c := range i.Checks() {
		if !c.Passed {
			return SchemaDrifted
		}
	}
	return SchemaCanonical
}

// MigrationCheck is one named pass/fail check.
// swagger:model MigrationCheck
type MigrationCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"status"`
}

// MigrationStatus is the outcome of checkStatus.
// swagger:model MigrationStatus
type MigrationStatus struct {
	Checks         []MigrationCheck `json:"checks"`
	Version        SchemaVersion    `json:"version"`
	NeedsMigration bool             `json:"needs_migration"`
}

// MigrationResult describes a finished migration attempt.
// swagger:model MigrationResult
type MigrationResult struct {
	Message    string `json:"message"`
	BackupPath string `json:"backup_path,omitempty"`
	// BackupFailed is set when a backup was requested but could not be taken.
	BackupFailed bool  `json:"backup_failed,omitempty"`
	RowsCopied   int64 `json:"rows_copied"`
}
