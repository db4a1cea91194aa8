package cache

import (
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name     string
		expires  time.Time
		expected bool
	}{
		{
			name:     "not expired",
			expires:  time.Now().Add(5 * time.Minute),
			expected: false,
		},
		{
			name:     "expired",
			expires:  time.Now().Add(-5 * time.Minute),
			expected: true,
		},
		{
			name:     "expired just now",
			expires:  time.Now().Add(-time.Millisecond),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	t.Run("positive TTL", func(t *testing.T) {
		entry := &Entry{Expires: time.Now().Add(10 * time.Minute)}
		ttl := entry.TTL()
		if ttl <= 9*time.Minute || ttl > 10*time.Minute {
			t.Errorf("TTL() = %v, want ~10m", ttl)
		}
	})

	t.Run("expired entry returns zero", func(t *testing.T) {
		entry := &Entry{Expires: time.Now().Add(-time.Minute)}
		if ttl := entry.TTL(); ttl != 0 {
			t.Errorf("TTL() = %v, want 0", ttl)
		}
	})
}
