package aggregate

import (
	"errors"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestCollect(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got := Collect(items,
		func(n int) bool { return n%2 == 0 },
		func(n int) string { return string(rune('a' + n)) })

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != "c" || got[1] != "e" {
		t.Errorf("got %v, want [c e] (input order preserved)", got)
	}
}

func TestCollect_EmptyInput(t *testing.T) {
	got := Collect(nil,
		func(n int) bool { return true },
		func(n int) int { return n })

	if got == nil {
		t.Fatal("Collect(nil) = nil, want empty non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestCollect_NoneMatch(t *testing.T) {
	got := Collect([]int{1, 2, 3},
		func(n int) bool { return false },
		func(n int) int { return n })

	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name  string
		items []*int
		want  int
	}{
		{"all present", []*int{intPtr(1), intPtr(2), intPtr(3)}, 6},
		{"nil counts as zero", []*int{intPtr(5), nil, intPtr(3)}, 8},
		{"all nil", []*int{nil, nil}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum(tt.items, func(p *int) *int { return p })
			if got != tt.want {
				t.Errorf("Sum() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("updated_at", "2024-03-15T10:30:00Z")
	if err != nil {
		t.Fatalf("ParseTimestamp() error = %v", err)
	}

	want := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp() = %v, want %v", got, want)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a date", "yesterday"},
		{"empty", ""},
		{"date only", "2024-03-15"},
		{"wrong separator", "2024/03/15T10:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimestamp("created_at", tt.value)
			if err == nil {
				t.Fatal("ParseTimestamp() error = nil, want DateParseError")
			}

			var parseErr *DateParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error type = %T, want *DateParseError", err)
			}
			if parseErr.Field != "created_at" {
				t.Errorf("Field = %q, want created_at", parseErr.Field)
			}
			if parseErr.Value != tt.value {
				t.Errorf("Value = %q, want %q", parseErr.Value, tt.value)
			}
		})
	}
}

func TestOlderThan(t *testing.T) {
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"before cutoff", cutoff.Add(-time.Second), true},
		{"exactly at cutoff", cutoff, false},
		{"after cutoff", cutoff.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OlderThan(tt.t, cutoff); got != tt.want {
				t.Errorf("OlderThan(%v, %v) = %v, want %v", tt.t, cutoff, got, tt.want)
			}
		})
	}
}
