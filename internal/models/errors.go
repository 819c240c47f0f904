package models

import "errors"

var (
	// ErrConstraintViolation is returned when the schema rejects data (direction outside the enum, required field null).
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrNotFound is returned when operating on a missing record id.
	ErrNotFound = errors.New("debt record not found")
	// ErrMigrationFailure is returned when any migration step fails; the migration has been rolled back.
	ErrMigrationFailure = errors.New("migration failed")
	// ErrRestore is returned when the chosen backup file does not exist.
	ErrRestore = errors.New("backup file not found")
	// ErrIO covers filesystem problems around backups, restores and settings.
	ErrIO = errors.New("i/o failure")
)
