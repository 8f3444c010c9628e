package core

import "errors"

// Common errors.
var (
	// ErrAlreadyExists is returned when a create target is already present.
	// Folder and file creation report it through CreateResult instead.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when a path does not exist in storage.
	ErrNotFound = errors.New("not found")

	// ErrNotAFile is returned when a path resolves to something other than a regular file.
	ErrNotAFile = errors.New("not a file")

	// ErrMalformedRow marks a table data row without a completion cell.
	ErrMalformedRow = errors.New("malformed table row")

	// ErrInvalidDate is returned when an anchor date fails strict parsing.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidSettings is returned when persisted settings cannot be used.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrRolloverInProgress is returned when another rollover holds the vault.
	ErrRolloverInProgress = errors.New("rollover already in progress")

	// ErrArchiveExhausted is returned when no free archive slot was found within MaxArchiveProbes.
	ErrArchiveExhausted = errors.New("no free archive slot")

	// ErrReadOnly is returned by storages that refuse mutations.
	ErrReadOnly = errors.New("storage is in read-only mode")
)
