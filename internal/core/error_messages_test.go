package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "wrapped unreadable file",
			err:      fmt.Errorf("ingest statement.csv: %w", ErrFileUnreadable),
			wantCode: "FILE002",
		},
		{
			name:     "too short",
			err:      fmt.Errorf("locate header: %w", ErrEmptyOrTooShort),
			wantCode: "FILE003",
		},
		{
			name:     "mapping incomplete",
			err:      fmt.Errorf("apply mapping: %w", ErrMappingIncomplete),
			wantCode: "MAP001",
		},
		{
			name:     "session not found",
			err:      ErrSessionNotFound,
			wantCode: "IMP001",
		},
		{
			name:     "deadline wins over generic timeout",
			err:      errors.New("context deadline exceeded (timeout)"),
			wantCode: "IMP006",
		},
		{
			name:     "missing configuration",
			err:      errors.New("delete configuration: configuration not found"),
			wantCode: "MAP004",
		},
		{
			name:     "malformed request",
			err:      errors.New("invalid request: candidate index \"x\""),
			wantCode: "IMP007",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp: connection refused"),
			wantCode: "DB001",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("RATE LIMIT exceeded"),
			wantCode: "RATE001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrMappingIncomplete)

	expected := "Choose a date column and an amount column (Code: MAP001). Assign the date column and either an amount column or outflow/inflow columns"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: ErrEmptyOrTooShort, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
