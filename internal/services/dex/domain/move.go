package domain

// MoveKind selects one related move listing.
type MoveKind string

const (
	MoveKindLevelUp MoveKind = "levelup"
	MoveKindMachine MoveKind = "machine"
	MoveKindTutor   MoveKind = "tutor"
	MoveKindEgg     MoveKind = "egg"
)

// MoveKinds lists every listing kind.
func MoveKinds() []MoveKind {
	return []MoveKind{MoveKindLevelUp, MoveKindMachine, MoveKindTutor, MoveKindEgg}
}

// Move is one row of a move listing. Level is set only for level-up moves.
type Move struct {
	Name     string
	Level    int
	HasLevel bool
}

// TypeMatchup is the multiplier pair for one attacking type.
type TypeMatchup struct {
	Type      string
	Defensive float64
	Offensive float64
}
