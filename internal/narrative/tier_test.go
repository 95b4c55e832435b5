package narrative

import (
	"testing"

	"github.com/ridgeline/caseflow/internal/config"
)

func TestModelTableResolve(t *testing.T) {
	tests := []struct {
		name         string
		standard     string
		premium      string
		wantStandard string
		wantPremium  string
	}{
		{"defaults", "", "", config.DefaultStandardModel, config.DefaultStandardModel},
		{"standard only", "gpt-4o-mini", "", "gpt-4o-mini", "gpt-4o-mini"},
		{"both configured", "gpt-4o-mini", "gpt-4o", "gpt-4o-mini", "gpt-4o"},
		{"premium only", "", "gpt-4o", config.DefaultStandardModel, "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewModelTable(tt.standard, tt.premium)
			if got := table.Resolve(TierStandard); got != tt.wantStandard {
				t.Errorf("standard = %q, want %q", got, tt.wantStandard)
			}
			if got := table.Resolve(TierPremium); got != tt.wantPremium {
				t.Errorf("premium = %q, want %q", got, tt.wantPremium)
			}
			if got := table.Resolve(Tier("bogus")); got != tt.wantStandard {
				t.Errorf("unknown tier = %q, want standard %q", got, tt.wantStandard)
			}
		})
	}
}

func TestModelTableModels(t *testing.T) {
	models := NewModelTable("a", "b").Models()
	if models["standard"] != "a" || models["premium"] != "b" {
		t.Errorf("models = %+v", models)
	}
}
