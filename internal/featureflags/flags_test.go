package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"banana", false},
	}
	for _, tt := range tests {
		t.Setenv("FLAG_AUTO_APPROVE", tt.value)
		if got := Enabled(AutoApprove); got != tt.want {
			t.Errorf("Enabled(%q)=%v with value %q, want %v", AutoApprove, got, tt.value, tt.want)
		}
	}
}

func TestEnabledUnsetFlag(t *testing.T) {
	if Enabled("definitely_not_set") {
		t.Fatalf("expected unset flag to be disabled")
	}
}
