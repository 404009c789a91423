// Package request turns a render request into the list of parts that make up
// the picture. Selection is plain gating on the mode, the model and the
// feature set; nothing here touches pixels.
package request

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("request: invalid value")

// Mode is the framing of the render.
type Mode uint8

const (
	FullBody Mode = iota
	FrontFull
	BodyBust
	FrontBust
	Head
	Face
	FullBodyIso
	HeadIso
)

var modeNames = [...]string{
	FullBody:    "fullbody",
	FrontFull:   "frontfull",
	BodyBust:    "bodybust",
	FrontBust:   "frontbust",
	Head:        "head",
	Face:        "face",
	FullBodyIso: "fullbodyiso",
	HeadIso:     "headiso",
}

var modeAliases = map[string]Mode{
	"fullbody":      FullBody,
	"full":          FullBody,
	"full_body":     FullBody,
	"frontfull":     FrontFull,
	"front_full":    FrontFull,
	"bodybust":      BodyBust,
	"bust":          BodyBust,
	"body_bust":     BodyBust,
	"frontbust":     FrontBust,
	"front":         FrontBust,
	"front_bust":    FrontBust,
	"head":          Head,
	"face":          Face,
	"fullbodyiso":   FullBodyIso,
	"full_body_iso": FullBodyIso,
	"headiso":       HeadIso,
	"head_iso":      HeadIso,
}

// ParseMode accepts the canonical names and their aliases, case-insensitive.
func ParseMode(s string) (Mode, error) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: mode %q", ErrInvalid, s)
	}
	return m, nil
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func (m Mode) Valid() bool { return int(m) < len(modeNames) }

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// IsHead reports whether only the head is drawn.
func (m Mode) IsHead() bool {
	return m == Head || m == Face || m == HeadIso
}

// IsBust reports whether the legs are cut off.
func (m Mode) IsBust() bool {
	return m == BodyBust || m == FrontBust
}

func (m Mode) IsIsometric() bool {
	return m == FullBodyIso || m == HeadIso
}

// Model selects the arm geometry.
type Model uint8

const (
	Steve Model = iota // classic 4px arms
	Alex               // slim 3px arms
)

// ParseModel accepts steve/classic/wide and alex/slim.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "steve", "classic", "wide", "default":
		return Steve, nil
	case "alex", "slim":
		return Alex, nil
	}
	return 0, fmt.Errorf("%w: model %q", ErrInvalid, s)
}

// Dir is the folder holding the model's variant parts.
func (m Model) Dir() string {
	if m == Alex {
		return "alex"
	}
	return "steve"
}

func (m Model) String() string { return m.Dir() }

func (m Model) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Model) UnmarshalText(b []byte) error {
	v, err := ParseModel(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
