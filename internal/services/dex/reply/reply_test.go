package reply

import "testing"

func TestText(t *testing.T) {
	r := Reply{
		Content: "Level-Up moves",
		Embeds: []Embed{{
			Title:  "#257: Blaziken",
			URL:    "https://example.test/blaziken",
			Fields: []Field{{Name: "Stats", Value: "```c\nHP: \t80```"}},
		}},
		Controls: []Control{{ID: "levelup_btn__7", Label: "Level-Up"}},
	}
	want := "Level-Up moves\n#257: Blaziken\nhttps://example.test/blaziken\n[Stats]\nc\nHP: \t80\n(Level-Up) levelup_btn__7\n"
	if got := r.Text(); got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestTextEmpty(t *testing.T) {
	if got := (Reply{}).Text(); got != "" {
		t.Fatalf("Text() = %q, want empty", got)
	}
}
