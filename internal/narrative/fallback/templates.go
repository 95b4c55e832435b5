package fallback

import "strings"

// Section labels shared by every generated report so reviewers always see
// the same structure whichever path produced the text.
const (
	labelSummary    = "Narrative Summary"
	labelPeer       = "Peer Interactions"
	labelAdult      = "Adult Interactions"
	labelInvestment = "Program Investment"
	labelAuthority  = "Response to Authority"
	labelStrengths  = "Strengths"
	labelGrowth     = "Areas for Growth"
)

// concernPhrases indicate conflict or regression in documentation.
var concernPhrases = []string{
	"fight", "altercation", "aggress", "argument", "defian", "refus",
	"conflict", "disrespect", "escalat", "outburst", "threat",
	"property destruction", "elope", "restraint", "unsafe",
}

// progressPhrases indicate cooperation or improvement in documentation.
var progressPhrases = []string{
	"cooperat", "helpful", "respectful", "positive", "participat",
	"engag", "improv", "progress", "calm", "supportive", "responsib",
	"encourag", "appropriate", "leadership",
}

func containsAny(text string, phrases []string) bool {
	lowered := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// sectionContext carries the interpolation values for one report.
type sectionContext struct {
	name         string
	diagnosis    string
	strengths    string
	deficiencies string
	period       string
	noteText     string
	excerpts     []string
	peerAvg      string
	adultAvg     string
	investAvg    string
	authorityAvg string
}

// strategy pairs a predicate with a template. Tables are evaluated in
// order and the first match wins, so new triggers and templates can be
// added without touching orchestration.
type strategy struct {
	match  func(ctx sectionContext) bool
	render func(ctx sectionContext) string
}

func concernMatch(ctx sectionContext) bool {
	return containsAny(ctx.noteText, concernPhrases)
}

func progressMatch(ctx sectionContext) bool {
	return containsAny(ctx.noteText, progressPhrases)
}

func anyMatch(sectionContext) bool { return true }

var summaryStrategies = []strategy{
	{concernMatch, func(ctx sectionContext) string {
		return ctx.name + " has experienced a challenging period during " + ctx.period +
			". Documentation reflects episodes of conflict that staff continue to address through the program's behavioral supports. " +
			"Consistent structure and follow-through remain the priority of the treatment team."
	}},
	{progressMatch, func(ctx sectionContext) string {
		return ctx.name + " is making measurable progress during " + ctx.period +
			". Documentation reflects growing cooperation with daily expectations, and staff continue to reinforce the skills " +
			ctx.name + " is practicing."
	}},
	{anyMatch, func(ctx sectionContext) string {
		return ctx.name + " continues to develop within the program structure during " + ctx.period +
			". Staff are documenting daily observations, and treatment goals remain in place while further progress is assessed."
	}},
}

var peerStrategies = []strategy{
	{concernMatch, func(ctx sectionContext) string {
		s := ctx.name + " has had difficulty maintaining appropriate peer relationships, with documented conflicts requiring staff intervention. Skill-building around conflict resolution remains a treatment focus."
		if ctx.peerAvg != "" {
			s += " Peer interaction ratings averaged " + ctx.peerAvg + " for the period."
		}
		return s
	}},
	{progressMatch, func(ctx sectionContext) string {
		s := ctx.name + " is demonstrating increasingly positive peer relationships, engaging appropriately in group settings and responding well to peer feedback."
		if ctx.peerAvg != "" {
			s += " Peer interaction ratings averaged " + ctx.peerAvg + " for the period."
		}
		return s
	}},
	{anyMatch, func(ctx sectionContext) string {
		s := ctx.name + " is developing peer relationship skills with staff support. Interactions are generally manageable and remain an area of ongoing observation."
		if ctx.peerAvg != "" {
			s += " Peer interaction ratings averaged " + ctx.peerAvg + " for the period."
		}
		return s
	}},
}

var adultStrategies = []strategy{
	{concernMatch, func(ctx sectionContext) string {
		s := ctx.name + " has been inconsistent in interactions with adults and staff, at times responding to direction with resistance. Staff continue to model and reinforce respectful communication."
		if ctx.adultAvg != "" {
			s += " Adult interaction ratings averaged " + ctx.adultAvg + "."
		}
		return s
	}},
	{progressMatch, func(ctx sectionContext) string {
		s := ctx.name + " engages respectfully with adults and staff, accepts guidance, and is increasingly able to ask for help appropriately."
		if ctx.adultAvg != "" {
			s += " Adult interaction ratings averaged " + ctx.adultAvg + "."
		}
		return s
	}},
	{anyMatch, func(ctx sectionContext) string {
		s := ctx.name + " maintains workable relationships with adults and staff. Communication skills continue to develop with coaching."
		if ctx.adultAvg != "" {
			s += " Adult interaction ratings averaged " + ctx.adultAvg + "."
		}
		return s
	}},
}

var investmentStrategies = []strategy{
	{concernMatch, func(ctx sectionContext) string {
		s := ctx.name + "'s investment in programming has been variable, with documented periods of disengagement. The treatment team is working to identify motivators that support fuller participation."
		if ctx.investAvg != "" {
			s += " Investment ratings averaged " + ctx.investAvg + "."
		}
		return s
	}},
	{progressMatch, func(ctx sectionContext) string {
		s := ctx.name + " shows genuine investment in the program, participating in groups and working toward level advancement."
		if ctx.investAvg != "" {
			s += " Investment ratings averaged " + ctx.investAvg + "."
		}
		return s
	}},
	{anyMatch, func(ctx sectionContext) string {
		s := ctx.name + " participates in daily programming at a developing level of investment, and staff continue to encourage deeper engagement with treatment goals."
		if ctx.investAvg != "" {
			s += " Investment ratings averaged " + ctx.investAvg + "."
		}
		return s
	}},
}

var authorityStrategies = []strategy{
	{concernMatch, func(ctx sectionContext) string {
		s := ctx.name + " has struggled at times to accept limits from authority figures, and redirection has occasionally escalated before resolving. Consistent, predictable responses from staff remain the primary support."
		if ctx.authorityAvg != "" {
			s += " Ratings for response to authority averaged " + ctx.authorityAvg + "."
		}
		return s
	}},
	{progressMatch, func(ctx sectionContext) string {
		s := ctx.name + " generally accepts direction from authority figures and recovers quickly when limits are set."
		if ctx.authorityAvg != "" {
			s += " Ratings for response to authority averaged " + ctx.authorityAvg + "."
		}
		return s
	}},
	{anyMatch, func(ctx sectionContext) string {
		s := ctx.name + " is learning to accept redirection from authority figures with staff support, an expected area of growth at this stage of treatment."
		if ctx.authorityAvg != "" {
			s += " Ratings for response to authority averaged " + ctx.authorityAvg + "."
		}
		return s
	}},
}

func renderFirst(strategies []strategy, ctx sectionContext) string {
	for _, s := range strategies {
		if s.match(ctx) {
			return s.render(ctx)
		}
	}
	return ""
}
