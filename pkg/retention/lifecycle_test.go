package retention

import (
	"testing"
	"time"
)

// TestResolveState tests state derivation from the tombstone and window.
func TestResolveState(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	window := 7 * 24 * time.Hour

	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name      string
		deletedAt *time.Time
		expected  State
	}{
		{
			name:      "no tombstone",
			deletedAt: nil,
			expected:  StateActive,
		},
		{
			name:      "deleted just now",
			deletedAt: ptr(now),
			expected:  StateRecoverable,
		},
		{
			name:      "mid-window",
			deletedAt: ptr(now.Add(-3 * 24 * time.Hour)),
			expected:  StateRecoverable,
		},
		{
			name:      "exactly at the deadline",
			deletedAt: ptr(now.Add(-window)),
			expected:  StateRecoverable,
		},
		{
			name:      "one nanosecond past the deadline",
			deletedAt: ptr(now.Add(-window - time.Nanosecond)),
			expected:  StateExpired,
		},
		{
			name:      "long expired",
			deletedAt: ptr(now.Add(-30 * 24 * time.Hour)),
			expected:  StateExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := ResolveState(tt.deletedAt, now, window)
			if state != tt.expected {
				t.Errorf("ResolveState() = %v, want %v", state, tt.expected)
			}
		})
	}
}

// TestResolveState_WindowChange tests that shrinking or growing the window
// reclassifies existing tombstones without any rewrite.
func TestResolveState_WindowChange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	deletedAt := now.Add(-2 * 24 * time.Hour) // 2 days ago

	if state := ResolveState(&deletedAt, now, 7*24*time.Hour); state != StateRecoverable {
		t.Errorf("Expected recoverable under a 7-day window, got %v", state)
	}
	if state := ResolveState(&deletedAt, now, 24*time.Hour); state != StateExpired {
		t.Errorf("Expected expired under a 1-day window, got %v", state)
	}
	if state := ResolveState(&deletedAt, now, 30*24*time.Hour); state != StateRecoverable {
		t.Errorf("Expected recoverable under a 30-day window, got %v", state)
	}
}

// TestRecoveryDeadline tests deadline arithmetic.
func TestRecoveryDeadline(t *testing.T) {
	deletedAt := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	deadline := RecoveryDeadline(deletedAt, 7*24*time.Hour)

	expected := time.Date(2025, 6, 8, 10, 30, 0, 0, time.UTC)
	if !deadline.Equal(expected) {
		t.Errorf("RecoveryDeadline() = %v, want %v", deadline, expected)
	}
}

// TestVisibility_Includes tests the tombstone filter.
func TestVisibility_Includes(t *testing.T) {
	stamp := time.Now().UTC()

	tests := []struct {
		name      string
		vis       Visibility
		deletedAt *time.Time
		expected  bool
	}{
		{name: "live filter, live row", vis: VisibilityLive, deletedAt: nil, expected: true},
		{name: "live filter, tombstoned row", vis: VisibilityLive, deletedAt: &stamp, expected: false},
		{name: "deleted filter, live row", vis: VisibilityDeleted, deletedAt: nil, expected: false},
		{name: "deleted filter, tombstoned row", vis: VisibilityDeleted, deletedAt: &stamp, expected: true},
		{name: "all filter, live row", vis: VisibilityAll, deletedAt: nil, expected: true},
		{name: "all filter, tombstoned row", vis: VisibilityAll, deletedAt: &stamp, expected: true},
		{name: "unknown filter behaves like live", vis: Visibility("bogus"), deletedAt: &stamp, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vis.Includes(tt.deletedAt); got != tt.expected {
				t.Errorf("Includes() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestFormatWindow tests the human-readable window rendering.
func TestFormatWindow(t *testing.T) {
	tests := []struct {
		window   time.Duration
		expected string
	}{
		{7 * 24 * time.Hour, "7 days"},
		{24 * time.Hour, "1 day"},
		{30 * 24 * time.Hour, "30 days"},
		{36 * time.Hour, "36h0m0s"},
		{time.Hour, "1h0m0s"},
	}

	for _, tt := range tests {
		if got := formatWindow(tt.window); got != tt.expected {
			t.Errorf("formatWindow(%v) = %q, want %q", tt.window, got, tt.expected)
		}
	}
}
