package records

import "testing"

func TestDecodeNoteCurrentShape(t *testing.T) {
	n := CaseNote{
		Date:   "2026-03-05",
		Author: "jdoe",
		Note:   `{"summary":"Calm shift.","peerInteractions":"Played cards with peers.","adultInteractions":"Respectful to staff.","investment":"Completed chores.","authorityResponse":"Accepted redirection."}`,
	}

	decoded := DecodeNote(n)
	if decoded.Sections == nil {
		t.Fatal("sections not decoded from current shape")
	}
	if decoded.Sections.PeerInteractions != "Played cards with peers." {
		t.Errorf("peer = %q", decoded.Sections.PeerInteractions)
	}
	if decoded.Text == "" {
		t.Error("text empty for structured note")
	}
	if decoded.Date != "2026-03-05" || decoded.Author != "jdoe" {
		t.Errorf("metadata lost: %+v", decoded)
	}
}

func TestDecodeNoteLegacySections(t *testing.T) {
	n := CaseNote{Note: `{"sections":[
		{"title":"Shift Summary","content":"Good day overall."},
		{"title":"Peer Interactions","content":"Helped a younger peer."},
		{"title":"Staff Interactions","body":"Argued briefly with staff."},
		{"title":"Program Investment","content":"On task."},
		{"title":"Response to Authority","content":"Needed one prompt."}
	]}`}

	decoded := DecodeNote(n)
	if decoded.Sections == nil {
		t.Fatal("sections not decoded from legacy shape")
	}
	s := decoded.Sections
	if s.Summary != "Good day overall." {
		t.Errorf("summary = %q", s.Summary)
	}
	if s.PeerInteractions != "Helped a younger peer." {
		t.Errorf("peer = %q", s.PeerInteractions)
	}
	if s.AdultInteractions != "Argued briefly with staff." {
		t.Errorf("adult (body key) = %q", s.AdultInteractions)
	}
	if s.Investment != "On task." {
		t.Errorf("investment = %q", s.Investment)
	}
	if s.AuthorityResponse != "Needed one prompt." {
		t.Errorf("authority = %q", s.AuthorityResponse)
	}
}

func TestDecodeNoteRawText(t *testing.T) {
	decoded := DecodeNote(CaseNote{Note: "Resident had a quiet evening."})
	if decoded.Sections != nil {
		t.Error("raw prose produced sections")
	}
	if decoded.Text != "Resident had a quiet evening." {
		t.Errorf("text = %q", decoded.Text)
	}
}

func TestDecodeNoteUnrecognizedObjectFallsBackToRaw(t *testing.T) {
	raw := `{"mood":"good"}`
	decoded := DecodeNote(CaseNote{Note: raw})
	if decoded.Sections != nil {
		t.Error("unrecognized object produced sections")
	}
	if decoded.Text != raw {
		t.Errorf("text = %q, want raw JSON preserved", decoded.Text)
	}
}

func TestDecodeNotesDropsEmpty(t *testing.T) {
	notes := DecodeNotes([]CaseNote{
		{Note: "First note."},
		{Note: "   "},
		{Note: ""},
		{Note: "Second note."},
	})
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2", len(notes))
	}
	if notes[0].Text != "First note." || notes[1].Text != "Second note." {
		t.Errorf("unexpected order or content: %+v", notes)
	}
}

func TestYouthFullName(t *testing.T) {
	if got := (Youth{FirstName: "Jamal", LastName: "Washington"}).FullName(); got != "Jamal Washington" {
		t.Errorf("full name = %q", got)
	}
	if got := (Youth{FirstName: "Jamal"}).FullName(); got != "Jamal" {
		t.Errorf("first-only name = %q", got)
	}
	if got := (Youth{}).FullName(); got != "the resident" {
		t.Errorf("empty name = %q, want neutral placeholder", got)
	}
}
