package core

import (
	"math"
	"testing"
	"time"
)

func TestToPgUUID(t *testing.T) {
	const id = "8f0c1a4e-3b2d-4c5e-9f6a-7b8c9d0e1f2a"

	got := ToPgUUID(id)
	if !got.Valid {
		t.Fatalf("ToPgUUID(%q) invalid", id)
	}
	if s := PgUUIDToString(got); s != id {
		t.Errorf("round trip = %q, want %q", s, id)
	}

	for _, bad := range []string{"", "not-a-uuid", "8f0c1a4e"} {
		if ToPgUUID(bad).Valid {
			t.Errorf("ToPgUUID(%q) should be invalid", bad)
		}
	}
}

func TestPgUUIDToString_Invalid(t *testing.T) {
	if s := PgUUIDToString(ToPgUUID("")); s != "" {
		t.Errorf("PgUUIDToString(invalid) = %q, want empty", s)
	}
}

func TestToPgTimestamptz(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	got := ToPgTimestamptz(now)
	if !got.Valid || !got.Time.Equal(now) {
		t.Errorf("ToPgTimestamptz(%v) = %+v", now, got)
	}

	if ToPgTimestamptz(time.Time{}).Valid {
		t.Error("zero time should be invalid")
	}
}

func TestClampInt32(t *testing.T) {
	tests := []struct {
		input int
		want  int32
	}{
		{0, 0},
		{42, 42},
		{-7, -7},
		{math.MaxInt32, math.MaxInt32},
		{math.MaxInt32 + 1, math.MaxInt32},
		{math.MinInt32 - 1, math.MinInt32},
	}

	for _, tt := range tests {
		if got := clampInt32(tt.input); got != tt.want {
			t.Errorf("clampInt32(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
