// Package fallback synthesizes clinically formatted narrative text
// directly from a case bundle, with no network dependency. It is the
// deterministic stand-in used whenever the upstream model service is
// absent, over quota or failing.
package fallback

import (
	"fmt"
	"strings"
	"time"

	"github.com/ridgeline/caseflow/internal/records"
)

// Kind names the narrative endpoint a fallback is generated for.
type Kind string

const (
	KindSummarizeReport    Kind = "summarize-report"
	KindBehavioralInsights Kind = "behavioral-insights"
	KindEnhanceReport      Kind = "enhance-report"
)

const (
	maxExcerpts    = 3
	excerptMaxRune = 160
)

// Generate produces a complete plain-prose report for the given endpoint
// kind from the case bundle alone. Same input yields the same output,
// apart from the embedded generation date. A bundle with zero notes
// still yields a complete, grammatically valid report.
func Generate(kind Kind, bundle records.CaseBundle) string {
	ctx := buildContext(bundle)

	var b strings.Builder
	switch kind {
	case KindBehavioralInsights:
		writeInsights(&b, ctx)
	default:
		writeReport(&b, ctx)
	}
	return StripMarkdown(b.String())
}

func buildContext(bundle records.CaseBundle) sectionContext {
	notes := records.DecodeNotes(bundle.Notes)

	var all strings.Builder
	for _, n := range notes {
		all.WriteString(n.Text)
		all.WriteByte(' ')
	}

	excerpts := make([]string, 0, maxExcerpts)
	// Most recent notes first; the record layer sends them newest-first.
	for _, n := range notes {
		if len(excerpts) == maxExcerpts {
			break
		}
		excerpts = append(excerpts, truncate(n.Text, excerptMaxRune))
	}

	ctx := sectionContext{
		name:         bundle.Youth.FullName(),
		diagnosis:    strings.TrimSpace(bundle.Youth.Diagnosis),
		strengths:    strings.TrimSpace(bundle.Youth.Strengths),
		deficiencies: strings.TrimSpace(bundle.Youth.Deficiencies),
		period:       bundle.Period.Label(),
		noteText:     all.String(),
		excerpts:     excerpts,
	}

	if avg, ok := averageRatings(bundle.Ratings); ok {
		ctx.peerAvg = avg.peer
		ctx.adultAvg = avg.adult
		ctx.investAvg = avg.invest
		ctx.authorityAvg = avg.authority
	}
	return ctx
}

type ratingAverages struct {
	peer, adult, invest, authority string
}

func averageRatings(ratings []records.BehaviorRating) (ratingAverages, bool) {
	if len(ratings) == 0 {
		return ratingAverages{}, false
	}
	var peer, adult, invest, authority float64
	var peerN, adultN, investN, authorityN int
	for _, r := range ratings {
		if r.PeerInteraction > 0 {
			peer += r.PeerInteraction
			peerN++
		}
		if r.AdultInteraction > 0 {
			adult += r.AdultInteraction
			adultN++
		}
		if r.Investment > 0 {
			invest += r.Investment
			investN++
		}
		if r.AuthorityResponse > 0 {
			authority += r.AuthorityResponse
			authorityN++
		}
	}
	avg := ratingAverages{
		peer:      formatAvg(peer, peerN),
		adult:     formatAvg(adult, adultN),
		invest:    formatAvg(invest, investN),
		authority: formatAvg(authority, authorityN),
	}
	ok := avg.peer != "" || avg.adult != "" || avg.invest != "" || avg.authority != ""
	return avg, ok
}

func formatAvg(sum float64, n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", sum/float64(n))
}

func truncate(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}

func writeReport(b *strings.Builder, ctx sectionContext) {
	writeHeader(b, "Progress Report for "+ctx.name, ctx.period)

	writeSection(b, labelSummary, renderFirst(summaryStrategies, ctx))
	if ctx.diagnosis != "" {
		b.WriteString("Current diagnosis on record: " + ctx.diagnosis + ".\n\n")
	}

	writeSection(b, labelPeer, renderFirst(peerStrategies, ctx))
	writeSection(b, labelAdult, renderFirst(adultStrategies, ctx))
	writeSection(b, labelInvestment, renderFirst(investmentStrategies, ctx))
	writeSection(b, labelAuthority, renderFirst(authorityStrategies, ctx))

	writeSection(b, labelStrengths, strengthsText(ctx))
	writeSection(b, labelGrowth, growthText(ctx))

	writeExcerpts(b, ctx)
	writeFooter(b)
}

func writeInsights(b *strings.Builder, ctx sectionContext) {
	writeHeader(b, "Behavioral Insights for "+ctx.name, ctx.period)

	writeSection(b, labelSummary, renderFirst(summaryStrategies, ctx))
	writeSection(b, labelPeer, renderFirst(peerStrategies, ctx))
	writeSection(b, labelAdult, renderFirst(adultStrategies, ctx))
	writeSection(b, labelInvestment, renderFirst(investmentStrategies, ctx))
	writeSection(b, labelAuthority, renderFirst(authorityStrategies, ctx))

	writeSection(b, "Recommendations", recommendationsText(ctx))
	writeFooter(b)
}

func writeHeader(b *strings.Builder, title, period string) {
	b.WriteString(title + "\n")
	b.WriteString("Reporting period: " + period + "\n\n")
}

func writeSection(b *strings.Builder, label, body string) {
	if body == "" {
		return
	}
	b.WriteString(label + ": " + body + "\n\n")
}

func strengthsText(ctx sectionContext) string {
	if ctx.strengths != "" {
		return ctx.name + "'s identified strengths include " + lowerFirst(ctx.strengths) + ". Staff incorporate these strengths into daily programming."
	}
	return "Staff continue to identify and build on " + ctx.name + "'s individual strengths as part of ongoing treatment planning."
}

func growthText(ctx sectionContext) string {
	if ctx.deficiencies != "" {
		return "Identified areas for growth include " + lowerFirst(ctx.deficiencies) + ". These remain active targets in the treatment plan."
	}
	return "The treatment team continues to assess areas for growth as documentation accumulates."
}

func recommendationsText(ctx sectionContext) string {
	switch {
	case containsAny(ctx.noteText, concernPhrases):
		return "Maintain consistent behavioral expectations, continue de-escalation coaching, and review incident patterns with " + ctx.name + " during individual sessions."
	case containsAny(ctx.noteText, progressPhrases):
		return "Continue current supports, recognize progress explicitly, and consider expanded privileges consistent with " + ctx.name + "'s level."
	default:
		return "Continue daily documentation and scheduled treatment reviews to establish a fuller behavioral baseline for " + ctx.name + "."
	}
}

func writeExcerpts(b *strings.Builder, ctx sectionContext) {
	if len(ctx.excerpts) == 0 {
		b.WriteString("Documentation for this period is ongoing; this report will be supplemented as additional case notes are recorded.\n\n")
		return
	}
	b.WriteString("Recent documentation excerpts: ")
	for i, e := range ctx.excerpts {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(e)
	}
	b.WriteString("\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Report generated " + time.Now().Format("January 2, 2006") + ".")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	first := strings.ToLower(string(runes[0]))
	return first + string(runes[1:])
}
