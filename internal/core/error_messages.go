package core

// error_messages.go maps technical errors to user-facing messages with codes
// that support staff can look up.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - File unreadable (bad encoding, corrupt spreadsheet, binary data)
//	FILE003 - Empty file or no data rows after the header
//	FILE004 - No file provided
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Mapping incomplete: date column or amount source missing
//	MAP002 - Mapped column does not exist in the file
//	MAP003 - No saved mapping for this layout yet
//	MAP004 - Saved configuration not found
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Session expired or unknown
//	IMP002 - Commit before preview
//	IMP003 - Candidate index out of range
//	IMP004 - Too many concurrent imports
//	IMP005 - Request cancelled
//	IMP006 - Request timed out
//	IMP007 - Invalid request body or parameter
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused
//	DB002 - Connection reset
//	DB003 - Timeout
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export a shorter period or split the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: ErrFileUnreadable.Error(),
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Upload a CSV or XLSX export from your bank",
			Code:    "FILE002",
		},
	},
	{
		pattern: ErrEmptyOrTooShort.Error(),
		msg: UserMessage{
			Message: "The file has no transaction rows",
			Action:  "Check that the export contains at least one movement",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to import",
			Code:    "FILE004",
		},
	},

	// Mapping errors
	{
		pattern: ErrMappingIncomplete.Error(),
		msg: UserMessage{
			Message: "Choose a date column and an amount column",
			Action:  "Assign the date column and either an amount column or outflow/inflow columns",
			Code:    "MAP001",
		},
	},
	{
		pattern: ErrMappingOutOfRange.Error(),
		msg: UserMessage{
			Message: "A selected column does not exist in this file",
			Action:  "Review the column assignment",
			Code:    "MAP002",
		},
	},
	{
		pattern: ErrNoMapping.Error(),
		msg: UserMessage{
			Message: "This file layout has not been mapped yet",
			Action:  "Assign the columns once; the mapping will be remembered",
			Code:    "MAP003",
		},
	},
	{
		pattern: "configuration not found",
		msg: UserMessage{
			Message: "Saved configuration not found",
			Action:  "Refresh the list of configurations",
			Code:    "MAP004",
		},
	},

	// Import errors
	{
		pattern: ErrSessionNotFound.Error(),
		msg: UserMessage{
			Message: "Import session not found",
			Action:  "The import may have expired. Please upload the file again",
			Code:    "IMP001",
		},
	},
	{
		pattern: ErrNotTransformed.Error(),
		msg: UserMessage{
			Message: "Preview the transactions before importing",
			Action:  "Run the preview step first",
			Code:    "IMP002",
		},
	},
	{
		pattern: ErrCandidateIndex.Error(),
		msg: UserMessage{
			Message: "Transaction not found in this import",
			Action:  "Refresh the preview and try again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "System busy",
			Action:  "Please wait a moment and try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP005",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "IMP006",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be processed",
			Action:  "Check the submitted values and try again",
			Code:    "IMP007",
		},
	},

	// Database errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first pattern match, or the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
