// Package controlid encodes drill-down routing context into opaque control ids.
//
// A control id is "<view token>__<entity id>". The view tokens are the ones the
// bot has always posted, so buttons on older replies keep routing. Decoding is
// pure: it never consults the store, and an id that names a missing entity is
// left for the view handler to answer.
package controlid

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/rowedex/internal/platform/errors"
)

// Separator joins the view token and the entity id.
const Separator = "__"

// MaxLength is the longest custom id the transport accepts.
const MaxLength = 100

// View names one drill-down panel.
type View string

const (
	ViewTypeMatchup View = "typeeffectiveness_btn"
	ViewLevelUp     View = "levelup_btn"
	ViewMachine     View = "hmtm_btn"
	ViewTutor       View = "tutor_btn"
	ViewEgg         View = "eggmoves_btn"
)

var registry = []View{ViewTypeMatchup, ViewLevelUp, ViewMachine, ViewTutor, ViewEgg}

var labels = map[View]string{
	ViewTypeMatchup: "Type Effectiveness",
	ViewLevelUp:     "Level-Up",
	ViewMachine:     "HM/TM",
	ViewTutor:       "Tutor",
	ViewEgg:         "Egg Moves",
}

func init() {
	if err := validateRegistry(registry); err != nil {
		panic(err)
	}
}

// Registry returns every view in display order.
func Registry() []View {
	out := make([]View, len(registry))
	copy(out, registry)
	return out
}

// Known reports whether v is registered.
func (v View) Known() bool {
	_, ok := labels[v]
	return ok
}

// Label returns the button label for v, or the raw token when unregistered.
func (v View) Label() string {
	if label, ok := labels[v]; ok {
		return label
	}
	return string(v)
}

// Control is the decoded routing context of one control id.
type Control struct {
	View     View
	EntityID int64
}

// String encodes c, or returns "" when c cannot be encoded.
func (c Control) String() string {
	id, err := Encode(c.View, c.EntityID)
	if err != nil {
		return ""
	}
	return id
}

// Encode builds the control id for view and entityID.
func Encode(view View, entityID int64) (string, error) {
	if !view.Known() {
		return "", apperrors.WithMetadata(apperrors.CodeConfigInvalid,
			fmt.Sprintf("encode control id: unknown view %q", view),
			map[string]string{"View": string(view)})
	}
	if entityID < 0 {
		return "", apperrors.New(apperrors.CodeConfigInvalid,
			fmt.Sprintf("encode control id: negative entity id %d", entityID))
	}
	id := string(view) + Separator + strconv.FormatInt(entityID, 10)
	if len(id) > MaxLength {
		return "", apperrors.New(apperrors.CodeConfigInvalid,
			fmt.Sprintf("encode control id: %d bytes exceeds %d", len(id), MaxLength))
	}
	return id, nil
}

// Decode splits raw on the first separator. Failures carry
// CONTROL_MALFORMED, CONTROL_UNKNOWN_VIEW or CONTROL_INVALID_ID.
func Decode(raw string) (Control, error) {
	token, idText, ok := strings.Cut(raw, Separator)
	if !ok {
		return Control{}, apperrors.New(apperrors.CodeControlMalformed,
			fmt.Sprintf("decode control id %q: missing separator", raw))
	}
	view := View(token)
	if !view.Known() {
		return Control{}, apperrors.WithMetadata(apperrors.CodeControlUnknownView,
			fmt.Sprintf("decode control id %q: unknown view", raw),
			map[string]string{"View": token})
	}
	if idText == "" || strings.TrimLeft(idText, "0123456789") != "" {
		return Control{}, apperrors.New(apperrors.CodeControlInvalidID,
			fmt.Sprintf("decode control id %q: entity id is not a non-negative integer", raw))
	}
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return Control{}, apperrors.Wrap(apperrors.CodeControlInvalidID,
			fmt.Sprintf("decode control id %q", raw), err)
	}
	return Control{View: view, EntityID: id}, nil
}

// validateRegistry rejects tokens that could make a split ambiguous.
func validateRegistry(views []View) error {
	seen := make(map[View]struct{}, len(views))
	for _, v := range views {
		token := string(v)
		switch {
		case token == "":
			return fmt.Errorf("control registry: empty view token")
		case strings.Contains(token, Separator):
			return fmt.Errorf("control registry: view %q contains separator %q", token, Separator)
		case strings.HasSuffix(token, Separator[:1]):
			return fmt.Errorf("control registry: view %q ends with %q", token, Separator[:1])
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("control registry: duplicate view %q", token)
		}
		if _, ok := labels[v]; !ok {
			return fmt.Errorf("control registry: view %q has no label", token)
		}
		seen[v] = struct{}{}
	}
	return nil
}
