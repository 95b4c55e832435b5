package fallback

import "testing"

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"bold", "**important** point", "important point"},
		{"underscore bold", "__strong__ words", "strong words"},
		{"emphasis", "a *quiet* day", "a quiet day"},
		{"inline code", "ran `the drill`", "ran the drill"},
		{"heading", "## Summary\nAll good.", "Summary\nAll good."},
		{"list markers", "- first\n- second", "first\nsecond"},
		{"fenced block", "```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"plain text untouched", "No markup here.", "No markup here."},
		{"multiplication preserved", "3 * 4 = 12", "3 * 4 = 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdown(tt.in); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
