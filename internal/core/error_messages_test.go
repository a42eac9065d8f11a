package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name: "nil error returns empty",
			err:  nil,
		},
		{
			name:        "file too large",
			err:         fmt.Errorf("%w: 40000000 bytes exceeds 33554432", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "line too long through wrapping",
			err:         fmt.Errorf("process orders.txt: read input: %w", ErrLineTooLong),
			wantCode:    "FILE002",
			wantMessage: "File contains a line that is far longer than a record",
		},
		{
			name:        "unsupported content type",
			err:         fmt.Errorf("%w: %q", ErrUnsupportedContentType, "image/png"),
			wantCode:    "FILE003",
			wantMessage: "Only plain text files are accepted",
		},
		{
			name:        "empty file",
			err:         ErrEmptyFile,
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "unreadable file",
			err:         fmt.Errorf("%w: a.txt: read input: unexpected EOF", ErrUnreadableFile),
			wantCode:    "FILE006",
			wantMessage: "The file could not be read",
		},
		{
			name:        "limiter busy",
			err:         ErrTooManyUploads,
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other uploads",
		},
		{
			name:        "canceled",
			err:         context.Canceled,
			wantCode:    "UPL004",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline wins over generic timeout",
			err:         fmt.Errorf("timeout: %w", context.DeadlineExceeded),
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "reversed date range",
			err:         ErrInvalidDateRange,
			wantCode:    "QRY001",
			wantMessage: "End date is before start date",
		},
		{
			name:        "user not found",
			err:         fmt.Errorf("%w: 42", ErrUserNotFound),
			wantCode:    "QRY003",
			wantMessage: "User not found",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "case insensitive",
			err:         errors.New("RATE LIMIT exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error falls back",
			err:         errors.New("something odd"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrEmptyFile)
	want := "The uploaded file is empty (Code: FILE005). Upload a file with at least one order line"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrTooManyUploads, true},
		{ErrInvalidDateRange, true},
		{errors.New("nil pointer dereference"), false},
	}

	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
