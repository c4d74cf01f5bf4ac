package domains

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsInternal(t *testing.T) {
	checker := NewChecker([]string{" Enterprise.Starfleet ", "@fleet.org", ""}, zap.NewNop())

	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"bare address", "kirk@enterprise.starfleet", true},
		{"display name", "Commander Spock <Spock@Enterprise.Starfleet>", true},
		{"at-prefixed config", "uhura@fleet.org", true},
		{"external", "harry@mudd.example", false},
		{"subdomain is not a match", "scotty@eng.enterprise.starfleet", false},
		{"no domain", "spock", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsInternal(tt.address); got != tt.want {
				t.Errorf("IsInternal(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestIsInternal_NoDomains(t *testing.T) {
	checker := NewChecker(nil, nil)
	if checker.IsInternal("kirk@enterprise.starfleet") {
		t.Error("expected false with no configured domains")
	}
	if len(checker.Domains()) != 0 {
		t.Errorf("Domains() = %v, want empty", checker.Domains())
	}
}
