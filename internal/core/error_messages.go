// Package core provides the business logic for order file imports.
//
// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the configured size limit
//	          Patterns: "file too large"
//
//	FILE002 - Line too long: A line is longer than the reader accepts
//	          Patterns: "line too long"
//
//	FILE003 - Unsupported type: Only plain text files are accepted
//	          Patterns: "unsupported content type"
//
//	FILE004 - No file: No file was sent
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Patterns: "empty file"
//
//	FILE006 - Unreadable file: Reading the upload failed part way
//	          Patterns: "unreadable file"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Patterns: "too many concurrent uploads"
//
//	UPL004 - Request cancelled
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Query Errors (QRY001-QRY099)
//
//	QRY001 - Invalid date range: end date precedes start date
//	         Patterns: "invalid date range"
//
//	QRY002 - Invalid parameter: a query parameter could not be parsed
//	         Patterns: "invalid query parameter"
//
//	QRY003 - User not found
//	         Patterns: "user not found"
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Unable to reach the history database
//	        Patterns: "connection refused"
//
//	DB006 - Timeout: Database operation timed out
//	        Patterns: "timeout"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the original error.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.
package core

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
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "line too long",
		msg: UserMessage{
			Message: "File contains a line that is far longer than a record",
			Action:  "Check that the file uses one record per line",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported content type",
		msg: UserMessage{
			Message: "Only plain text files are accepted",
			Action:  "Upload the order file as text/plain",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Send the order file in the \"file\" form field",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with at least one order line",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unreadable file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file is plain text and upload it again",
			Code:    "FILE006",
		},
	},

	// Upload errors
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Query errors
	{
		pattern: "invalid date range",
		msg: UserMessage{
			Message: "End date is before start date",
			Action:  "Swap the dates or widen the range",
			Code:    "QRY001",
		},
	},
	{
		pattern: "invalid query parameter",
		msg: UserMessage{
			Message: "A query parameter could not be understood",
			Action:  "Use numeric IDs and dates in YYYY-MM-DD format",
			Code:    "QRY002",
		},
	},
	{
		pattern: "user not found",
		msg: UserMessage{
			Message: "User not found",
			Action:  "Check the user ID or upload a file that contains it",
			Code:    "QRY003",
		},
	},

	// Database errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. The first
// matching pattern wins; ERR000 is returned when nothing matches.
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

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
