// Package domain defines the creature records resolved and rendered by the dex.
package domain

import "strings"

// SentinelID is the id carried by every "not found" entity.
const SentinelID int64 = 0

// MaxCandidates caps the suggestions returned for one partial query.
const MaxCandidates = 25

// Label is one named value from a lookup table (type, egg group, item).
type Label struct {
	ID   int64
	Name string
}

// Pair holds zero to two labels of the same kind.
type Pair struct {
	Primary   *Label
	Secondary *Label
}

// PairOf builds a pair from optional labels.
func PairOf(primary, secondary *Label) Pair {
	return Pair{Primary: primary, Secondary: secondary}
}

// Labels returns the distinct labels in slot order. A secondary equal to the
// primary collapses to one entry, and a lone secondary is promoted.
func (p Pair) Labels() []Label {
	labels := make([]Label, 0, 2)
	if p.Primary != nil {
		labels = append(labels, *p.Primary)
	}
	if p.Secondary != nil && (p.Primary == nil || p.Secondary.ID != p.Primary.ID) {
		labels = append(labels, *p.Secondary)
	}
	return labels
}

// First returns the first effective label.
func (p Pair) First() (Label, bool) {
	labels := p.Labels()
	if len(labels) == 0 {
		return Label{}, false
	}
	return labels[0], true
}

// String joins the effective label names, or returns "None".
func (p Pair) String() string {
	labels := p.Labels()
	if len(labels) == 0 {
		return "None"
	}
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}

// Stats are the six base attributes in display order.
type Stats struct {
	HP        int
	Attack    int
	Defense   int
	SpAttack  int
	SpDefense int
	Speed     int
}

// Total is the sum of the six attributes.
func (s Stats) Total() int {
	return s.HP + s.Attack + s.Defense + s.SpAttack + s.SpDefense + s.Speed
}

// Entity is a resolved creature record.
type Entity struct {
	ID           int64
	DexNumber    int64
	Name         string
	InternalName string
	Types        Pair
	EggGroups    Pair
	Items        Pair
	Stats        Stats
	Sprite       string
}

// IsSentinel reports whether e stands in for a missing record.
func (e Entity) IsSentinel() bool {
	return e.ID == SentinelID
}

// Sentinel returns the placeholder for an id that matched no record.
func Sentinel() Entity {
	return Entity{ID: SentinelID, Name: "None"}
}

// NotFound returns the placeholder for a name query that matched no record.
func NotFound(query string) Entity {
	e := Sentinel()
	e.Name = `Could not find "` + query + `"`
	return e
}

// Candidate is the suggestion projection of an entity.
type Candidate struct {
	ID   int64
	Name string
}

// Ability is one ability an entity can have.
type Ability struct {
	Name        string
	Description string
}
