package fallback

import (
	"strings"
	"testing"

	"github.com/ridgeline/caseflow/internal/records"
)

func testBundle(notes ...string) records.CaseBundle {
	caseNotes := make([]records.CaseNote, 0, len(notes))
	for _, n := range notes {
		caseNotes = append(caseNotes, records.CaseNote{Note: n})
	}
	return records.CaseBundle{
		Youth:  records.Youth{FirstName: "Jamal", LastName: "Washington"},
		Period: records.Period{Start: "2026-03-01", End: "2026-03-07"},
		Notes:  caseNotes,
	}
}

func TestGenerateEmptyBundleStillCompletes(t *testing.T) {
	out := Generate(KindSummarizeReport, records.CaseBundle{})
	if strings.TrimSpace(out) == "" {
		t.Fatal("empty bundle produced empty report")
	}
	if !strings.Contains(out, "the resident") {
		t.Error("empty bundle missing neutral name placeholder")
	}
	if !strings.Contains(out, "Documentation for this period is ongoing") {
		t.Error("zero-notes report missing ongoing-documentation line")
	}
}

func TestGenerateContainsNameAndSections(t *testing.T) {
	out := Generate(KindSummarizeReport, testBundle("Jamal was respectful and helpful today."))

	if !strings.Contains(out, "Jamal Washington") {
		t.Error("report missing youth name")
	}
	for _, label := range []string{labelSummary, labelPeer, labelAdult, labelInvestment, labelAuthority, labelStrengths, labelGrowth} {
		if !strings.Contains(out, label) {
			t.Errorf("report missing section %q", label)
		}
	}
	if !strings.Contains(out, "2026-03-01 through 2026-03-07") {
		t.Error("report missing period label")
	}
}

func TestGenerateKeywordSelection(t *testing.T) {
	concern := Generate(KindSummarizeReport, testBundle("Got into an altercation with a peer, staff intervened."))
	if !strings.Contains(concern, "challenging period") {
		t.Error("concern notes did not select concern template")
	}

	progress := Generate(KindSummarizeReport, testBundle("Very cooperative, engaged well in group."))
	if !strings.Contains(progress, "measurable progress") {
		t.Error("progress notes did not select progress template")
	}

	neutral := Generate(KindSummarizeReport, testBundle("Went to school. Returned at four."))
	if !strings.Contains(neutral, "continues to develop") {
		t.Error("neutral notes did not select neutral template")
	}
}

func TestGenerateDeterministicForSameInput(t *testing.T) {
	bundle := testBundle("Calm and cooperative shift.")
	if Generate(KindSummarizeReport, bundle) != Generate(KindSummarizeReport, bundle) {
		t.Error("same bundle produced different reports")
	}
}

func TestGenerateInsightsHasRecommendations(t *testing.T) {
	out := Generate(KindBehavioralInsights, testBundle("Refused to follow directions, argument with staff."))
	if !strings.Contains(out, "Behavioral Insights for Jamal Washington") {
		t.Error("insights missing title")
	}
	if !strings.Contains(out, "Recommendations") {
		t.Error("insights missing recommendations section")
	}
	if !strings.Contains(out, "de-escalation") {
		t.Error("concern notes did not select concern recommendations")
	}
}

func TestGenerateOutputIsPlainProse(t *testing.T) {
	out := Generate(KindSummarizeReport, testBundle("**Bold** note with `markup` and # headings."))
	for _, marker := range []string{"**", "##", "`"} {
		if strings.Contains(out, marker) {
			t.Errorf("output contains markup %q", marker)
		}
	}
}

func TestGenerateIncludesRatingAverages(t *testing.T) {
	bundle := testBundle("Cooperative day.")
	bundle.Ratings = []records.BehaviorRating{
		{PeerInteraction: 4, AdultInteraction: 3, Investment: 5, AuthorityResponse: 2},
		{PeerInteraction: 2, AdultInteraction: 5, Investment: 3, AuthorityResponse: 4},
	}

	out := Generate(KindSummarizeReport, bundle)
	if !strings.Contains(out, "averaged 3.0") {
		t.Errorf("report missing peer average, got:\n%s", out)
	}
}

func TestGenerateExcerptsTruncated(t *testing.T) {
	long := strings.Repeat("Quiet evening with no incidents to report today. ", 10)
	out := Generate(KindSummarizeReport, testBundle(long, "Second note.", "Third note.", "Fourth note."))

	if !strings.Contains(out, "Recent documentation excerpts") {
		t.Fatal("report missing excerpts")
	}
	if strings.Contains(out, "Fourth note.") {
		t.Error("more than three excerpts included")
	}
	if !strings.Contains(out, "...") {
		t.Error("long excerpt not truncated")
	}
}
