package narrative

import (
	"fmt"
	"strings"

	"github.com/ridgeline/caseflow/internal/json"
)

const summarizeSystemPrompt = "You are a clinical documentation assistant for a youth residential " +
	"treatment program. Write in professional, objective clinical language. " +
	"Refer to the youth by name, avoid speculation beyond the provided data, " +
	"and never invent incidents that are not documented. Respond with plain " +
	"prose only, no markdown formatting."

const insightsSystemPrompt = "You are a behavioral analyst for a youth residential treatment " +
	"program. Analyze the provided point-sheet data for patterns across peer " +
	"interactions, adult interactions, program investment and response to " +
	"authority. Respond with a JSON object whose keys are: summary, " +
	"patterns, concerns, recommendations. Each value is a short plain-text " +
	"paragraph. Do not use markdown."

const enhanceSystemPrompt = "You are a clinical editor for a youth residential treatment program. " +
	"Rewrite the provided draft into polished, professional clinical prose. " +
	"Preserve every documented fact, keep the same overall structure, and do " +
	"not add new claims. Respond with plain prose only, no markdown."

func summarizeUserPrompt(req SummarizeRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following %s data for %s covering %s.\n\n",
		orDefault(req.ReportType, "progress report"), req.Youth.FullName(), req.Period.Label())
	b.WriteString("Youth profile:\n")
	b.WriteString(promptJSON(req.Youth))
	b.WriteString("\n\nReport data:\n")
	b.WriteString(promptJSON(req.Data))
	return b.String()
}

func insightsUserPrompt(req InsightsRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze behavioral data for %s covering %s.\n\n",
		req.Youth.FullName(), req.Period.Label())
	b.WriteString("Youth profile:\n")
	b.WriteString(promptJSON(req.Youth))
	b.WriteString("\n\nBehavior data:\n")
	b.WriteString(promptJSON(req.BehaviorData))
	return b.String()
}

func enhanceUserPrompt(req EnhanceRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enhance the following %s draft for %s.\n\n",
		orDefault(req.ReportType, "report"), req.Youth.FullName())
	b.WriteString("Draft content:\n")
	b.WriteString(req.ReportContent)
	return b.String()
}

// promptJSON renders a value as indented JSON for prompt embedding. A
// marshal failure degrades to an empty object rather than aborting the
// request.
func promptJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
