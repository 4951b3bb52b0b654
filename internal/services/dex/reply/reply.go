// Package reply models the transport-neutral response the dex sends back.
package reply

import (
	"fmt"
	"strings"
)

// Field is one labeled block of text.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich card. Zero values mean "absent".
type Embed struct {
	Title     string
	URL       string
	Colour    int
	Thumbnail string
	Fields    []Field
}

// Control is one clickable element carrying an encoded control id.
type Control struct {
	ID    string
	Label string
}

// Reply is a complete response to one event.
type Reply struct {
	Content   string
	Embeds    []Embed
	Controls  []Control
	Ephemeral bool
}

// Text returns a plain-text rendering for terminals and logs.
func (r Reply) Text() string {
	var b strings.Builder
	if r.Content != "" {
		b.WriteString(r.Content)
		if !strings.HasSuffix(r.Content, "\n") {
			b.WriteByte('\n')
		}
	}
	for _, e := range r.Embeds {
		if e.Title != "" {
			b.WriteString(e.Title)
			b.WriteByte('\n')
		}
		if e.URL != "" {
			b.WriteString(e.URL)
			b.WriteByte('\n')
		}
		for _, f := range e.Fields {
			fmt.Fprintf(&b, "[%s]\n%s\n", f.Name, strings.Trim(f.Value, "`\n"))
		}
	}
	for _, c := range r.Controls {
		fmt.Fprintf(&b, "(%s) %s\n", c.Label, c.ID)
	}
	return b.String()
}
