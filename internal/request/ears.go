package request

import (
	"fmt"
	"strings"
)

// EarMode is the ear style read from a skin's ears data.
type EarMode uint8

const (
	EarsNone EarMode = iota
	EarsAbove
	EarsSides
	EarsBehind
	EarsAround
	EarsFloppy
	EarsCross
	EarsOut
	EarsTall
	EarsTallCross
)

var earModeNames = [...]string{
	EarsNone:      "none",
	EarsAbove:     "above",
	EarsSides:     "sides",
	EarsBehind:    "behind",
	EarsAround:    "around",
	EarsFloppy:    "floppy",
	EarsCross:     "cross",
	EarsOut:       "out",
	EarsTall:      "tall",
	EarsTallCross: "tallcross",
}

func (m EarMode) String() string {
	if int(m) < len(earModeNames) {
		return earModeNames[m]
	}
	return fmt.Sprintf("EarMode(%d)", uint8(m))
}

func (m *EarMode) UnmarshalText(b []byte) error {
	s := strings.ToLower(string(b))
	for i, name := range earModeNames {
		if name == s {
			*m = EarMode(i)
			return nil
		}
	}
	return fmt.Errorf("%w: ear mode %q", ErrInvalid, b)
}

// EarAnchor places the ears along the head.
type EarAnchor uint8

const (
	AnchorCenter EarAnchor = iota
	AnchorFront
	AnchorBack
)

var anchorNames = [...]string{
	AnchorCenter: "center",
	AnchorFront:  "front",
	AnchorBack:   "back",
}

func (a EarAnchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return fmt.Sprintf("EarAnchor(%d)", uint8(a))
}

func (a *EarAnchor) UnmarshalText(b []byte) error {
	s := strings.ToLower(string(b))
	for i, name := range anchorNames {
		if name == s {
			*a = EarAnchor(i)
			return nil
		}
	}
	return fmt.Errorf("%w: ear anchor %q", ErrInvalid, b)
}

// EarsConfig describes the extra geometry of an ears-enabled skin.
type EarsConfig struct {
	Mode   EarMode   `json:"mode" yaml:"mode"`
	Anchor EarAnchor `json:"anchor" yaml:"anchor"`
	Horn   bool      `json:"horn" yaml:"horn"`
	Claws  bool      `json:"claws" yaml:"claws"`
}

// EarKey names the ears part drawn for a mode and anchor.
func EarKey(mode EarMode, anchor EarAnchor) string {
	// behind is stored as out-back
	if mode == EarsBehind {
		mode, anchor = EarsOut, AnchorBack
	}
	if mode == EarsFloppy {
		return mode.String()
	}
	return mode.String() + "-" + anchor.String()
}

// PartNames lists the ears parts to draw, in no particular order.
func (e EarsConfig) PartNames() []string {
	var names []string
	if e.Mode != EarsNone {
		names = append(names, EarKey(e.Mode, e.Anchor))
		// around needs the above part too
		if e.Mode == EarsAround {
			names = append(names, EarKey(EarsAbove, e.Anchor))
		}
	}
	if e.Horn {
		names = append(names, "Horn")
	}
	if e.Claws {
		names = append(names, "Left Leg Claw", "Right Leg Claw", "Left Arm Claw", "Right Arm Claw")
	}
	return names
}
