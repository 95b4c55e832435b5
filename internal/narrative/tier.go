// Package narrative implements the AI-assisted narrative gateway: usage
// governance, response caching, upstream invocation and deterministic
// local fallback around an abstract generate-text capability.
package narrative

import "github.com/ridgeline/caseflow/internal/config"

// Tier is a logical quality/cost level for a generation request.
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ModelTable maps tiers to concrete upstream model identifiers.
// Pure lookup, fixed after construction.
type ModelTable struct {
	standard string
	premium  string
}

// NewModelTable builds the tier mapping from configured overrides.
// An unconfigured standard tier uses the hard-coded default; an
// unconfigured premium tier falls back to the resolved standard model.
func NewModelTable(standardOverride, premiumOverride string) ModelTable {
	standard := standardOverride
	if standard == "" {
		standard = config.DefaultStandardModel
	}
	premium := premiumOverride
	if premium == "" {
		premium = standard
	}
	return ModelTable{standard: standard, premium: premium}
}

// Resolve maps a tier to its model identifier. Unknown tiers resolve to
// the standard model.
func (t ModelTable) Resolve(tier Tier) string {
	if tier == TierPremium {
		return t.premium
	}
	return t.standard
}

// Models returns the full mapping for the status endpoint.
func (t ModelTable) Models() map[string]string {
	return map[string]string{
		string(TierStandard): t.standard,
		string(TierPremium):  t.premium,
	}
}
