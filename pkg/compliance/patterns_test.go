package compliance

import "testing"

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		category string
		value    string
		want     bool
	}{
		{"email", "alice@example.com", true},
		{"email", "not-an-email", false},
		{"email", " alice@example.com", false}, // no trimming before matching
		{"ipv4", "192.168.1.5", true},
		{"ipv4", "999.1.1.1", false},
		{"ipv4", "10.0.0", false},
		{"phone_cn", "13800138000", true},
		{"phone_cn", "+8613800138000", true},
		{"phone_cn", "12345678901", false},
		{"phone_us", "(555) 123-4567", true},
		{"phone_us", "555-123-4567", true},
		{"credit_card", "4111111111111111", true},
		{"credit_card", "1234567890123456", false},
		{"ssn", "123-45-6789", true},
		{"ssn", "123456789", false},
		{"uuid", "123e4567-e89b-12d3-a456-426614174000", true},
		{"uuid", "123E4567-E89B-12D3-A456-426614174000", false}, // upper-case hex rejected
		{"date_iso", "2024-01-15T10:30:00Z", true},
		{"date_iso", "2024-01-15T10:30:00.123+08:00", true},
		{"date_iso", "2024-01-15", false},
	}

	for _, tc := range cases {
		if got := MatchPattern(tc.category, tc.value); got != tc.want {
			t.Errorf("MatchPattern(%q, %q) = %v, want %v", tc.category, tc.value, got, tc.want)
		}
	}
}

func TestMatchPatternUnknownCategory(t *testing.T) {
	if MatchPattern("passport", "E12345678") {
		t.Error("unknown category must never match")
	}
	if MatchPattern("phone_.*", "13800138000") {
		t.Error("wildcard shape keys are not pattern library entries")
	}
}
