package core

import "errors"

var (
	// ErrFileUnreadable means ingestion could not produce a matrix.
	ErrFileUnreadable = errors.New("file unreadable")

	// ErrEmptyOrTooShort means fewer than two usable rows remain after header detection.
	ErrEmptyOrTooShort = errors.New("empty file or too few rows")

	// ErrMappingIncomplete means the mapping lacks a date column or an amount source.
	// It is a precondition for transformation, not a runtime failure.
	ErrMappingIncomplete = errors.New("mapping incomplete")

	// ErrMappingOutOfRange means a mapped index points past the header row.
	ErrMappingOutOfRange = errors.New("mapping column out of range")

	// ErrNoMapping means the session has no mapping yet.
	ErrNoMapping = errors.New("no mapping for this layout")

	// ErrNotTransformed means commit was requested before transformation.
	ErrNotTransformed = errors.New("rows not transformed")

	// ErrSessionNotFound means the import session expired or never existed.
	ErrSessionNotFound = errors.New("import session not found")

	// ErrCandidateIndex means a candidate index is outside the candidate list.
	ErrCandidateIndex = errors.New("candidate index out of range")
)
