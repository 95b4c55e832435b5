package records

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Note is the canonical decoded form of a case note. Exactly one of the
// two historical JSON encodings, or raw prose, produced it; downstream
// consumers never re-parse.
type Note struct {
	Date   string
	Author string

	// Sections is non-nil when the note carried structured content.
	Sections *NoteSections

	// Text is the best free-text rendering of the note and is always set
	// for non-empty notes, whichever encoding was used.
	Text string
}

// NoteSections mirrors the structured shift-note form fields.
type NoteSections struct {
	Summary           string
	PeerInteractions  string
	AdultInteractions string
	Investment        string
	AuthorityResponse string
}

// joined concatenates all populated sections into one prose block.
func (s *NoteSections) joined() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, 5)
	for _, p := range []string{s.Summary, s.PeerInteractions, s.AdultInteractions, s.Investment, s.AuthorityResponse} {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Historical encodings of the note field:
//
//	current: {"summary":"...","peerInteractions":"...","adultInteractions":"...",
//	          "investment":"...","authorityResponse":"..."}
//	legacy:  {"sections":[{"title":"Peer Interactions","content":"..."},...]}
//
// Anything else is treated as raw prose.

// DecodeNote normalizes one stored case note.
func DecodeNote(n CaseNote) Note {
	out := Note{Date: n.Date, Author: n.Author}
	raw := strings.TrimSpace(n.Note)
	if raw == "" {
		return out
	}

	if parsed := gjson.Parse(raw); parsed.IsObject() {
		if sections := decodeStructured(parsed); sections != nil {
			out.Sections = sections
			out.Text = sections.joined()
			return out
		}
		if sections := decodeLegacySections(parsed); sections != nil {
			out.Sections = sections
			out.Text = sections.joined()
			return out
		}
	}

	out.Text = raw
	return out
}

// DecodeNotes normalizes a slice of stored notes, dropping empty ones.
func DecodeNotes(notes []CaseNote) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		decoded := DecodeNote(n)
		if decoded.Text == "" {
			continue
		}
		out = append(out, decoded)
	}
	return out
}

func decodeStructured(parsed gjson.Result) *NoteSections {
	sections := &NoteSections{
		Summary:           parsed.Get("summary").String(),
		PeerInteractions:  parsed.Get("peerInteractions").String(),
		AdultInteractions: parsed.Get("adultInteractions").String(),
		Investment:        parsed.Get("investment").String(),
		AuthorityResponse: parsed.Get("authorityResponse").String(),
	}
	if sections.joined() == "" {
		return nil
	}
	return sections
}

func decodeLegacySections(parsed gjson.Result) *NoteSections {
	arr := parsed.Get("sections")
	if !arr.IsArray() {
		return nil
	}
	sections := &NoteSections{}
	arr.ForEach(func(_, item gjson.Result) bool {
		title := strings.ToLower(item.Get("title").String())
		content := item.Get("content").String()
		if content == "" {
			content = item.Get("body").String()
		}
		switch {
		case strings.Contains(title, "peer"):
			sections.PeerInteractions = content
		case strings.Contains(title, "adult") || strings.Contains(title, "staff"):
			sections.AdultInteractions = content
		case strings.Contains(title, "invest"):
			sections.Investment = content
		case strings.Contains(title, "authority"):
			sections.AuthorityResponse = content
		default:
			if sections.Summary == "" {
				sections.Summary = content
			} else if content != "" {
				sections.Summary += " " + content
			}
		}
		return true
	})
	if sections.joined() == "" {
		return nil
	}
	return sections
}
