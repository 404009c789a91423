package request

import (
	"fmt"
	"strings"

	"mc-skin-renderer/internal/layer"
	"mc-skin-renderer/internal/shading"
)

// TextureSlot names the texture a part samples from.
type TextureSlot uint8

const (
	SkinSlot TextureSlot = iota
	CapeSlot
	Armor1Slot // helmet, chestplate, boots
	Armor2Slot // leggings
)

func (s TextureSlot) String() string {
	switch s {
	case SkinSlot:
		return "skin"
	case CapeSlot:
		return "cape"
	case Armor1Slot:
		return "armor1"
	case Armor2Slot:
		return "armor2"
	}
	return fmt.Sprintf("TextureSlot(%d)", uint8(s))
}

// ArmorSlots selects the armor pieces worn.
type ArmorSlots struct {
	Helmet     bool `json:"helmet" yaml:"helmet"`
	Chestplate bool `json:"chestplate" yaml:"chestplate"`
	Leggings   bool `json:"leggings" yaml:"leggings"`
	Boots      bool `json:"boots" yaml:"boots"`
}

func (a ArmorSlots) Any() bool {
	return a.Helmet || a.Chestplate || a.Leggings || a.Boots
}

// ParseArmor reads a comma separated list of pieces; "all" selects every
// piece.
func ParseArmor(s string) (ArmorSlots, error) {
	var a ArmorSlots
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "helmet":
			a.Helmet = true
		case "chestplate":
			a.Chestplate = true
		case "leggings":
			a.Leggings = true
		case "boots":
			a.Boots = true
		case "all":
			a = ArmorSlots{Helmet: true, Chestplate: true, Leggings: true, Boots: true}
		default:
			return ArmorSlots{}, fmt.Errorf("%w: armor piece %q", ErrInvalid, part)
		}
	}
	return a, nil
}

// Request is the full, immutable description of one render.
type Request struct {
	Mode     Mode
	Model    Model
	Features Features
	Armor    ArmorSlots
	Ears     *EarsConfig // nil when the skin carries no ears data
	Back     bool        // render the back view
}

// New returns a request with every default feature except the excluded ones.
func New(mode Mode, model Model, excluded ...Features) Request {
	return Request{Mode: mode, Model: model, Features: DefaultFeatures.Without(excluded...)}
}

// PartSpec is one part of the picture and how to composite it.
type PartSpec struct {
	Name    string
	Ears    bool // resolved from the ears catalog
	Slot    TextureSlot
	Blend   layer.BlendMode
	Shading bool
	// Optional parts are skipped when their map is missing.
	Optional bool
}

var (
	headParts = []string{"Head"}
	bustParts = []string{"Head", "Body", "Left Arm", "Right Arm"}
	fullParts = []string{"Head", "Body", "Left Arm", "Right Arm", "Left Leg", "Right Leg"}
)

func (r Request) Validate() error {
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: mode %d", ErrInvalid, r.Mode)
	}
	if r.Model != Steve && r.Model != Alex {
		return fmt.Errorf("%w: model %d", ErrInvalid, r.Model)
	}
	return nil
}

// View is the parts folder for the camera side.
func (r Request) View() string {
	if r.Back {
		return "back"
	}
	return "front"
}

// Sun is the light the parts were baked with: the body sun for the
// full-body modes and flat light otherwise or when shading is off.
func (r Request) Sun() shading.Sun {
	if !r.Features.Has(Shading) {
		return shading.Flat()
	}
	if r.Mode == FullBody || r.Mode == FullBodyIso {
		return shading.FullBody()
	}
	return shading.Flat()
}

func (r Request) bodyParts() []string {
	switch {
	case r.Mode.IsHead():
		return headParts
	case r.Mode.IsBust():
		return bustParts
	default:
		return fullParts
	}
}

// Parts lists what to composite. The order carries no meaning.
func (r Request) Parts() []PartSpec {
	shade := r.Features.Has(Shading)
	var specs []PartSpec

	body := r.bodyParts()
	for _, name := range body {
		specs = append(specs, PartSpec{Name: name, Slot: SkinSlot, Blend: layer.OpaqueMode(), Shading: shade})
	}
	for _, name := range body {
		want := BodyLayers
		if name == "Head" {
			want = HatLayer
		}
		if !r.Features.Has(want) {
			continue
		}
		specs = append(specs, PartSpec{Name: name + " Layer", Slot: SkinSlot, Blend: layer.TranslucentMode(), Shading: shade})
	}

	if r.Features.Has(Cape) && !r.Mode.IsHead() {
		specs = append(specs, PartSpec{Name: "Cape", Slot: CapeSlot, Blend: layer.OpaqueMode(), Shading: shade, Optional: true})
	}

	armor := func(name string, slot TextureSlot) {
		specs = append(specs, PartSpec{Name: name, Slot: slot, Blend: layer.CutoutMode(0), Shading: shade})
	}
	if r.Armor.Helmet {
		armor("Helmet", Armor1Slot)
	}
	if !r.Mode.IsHead() {
		if r.Armor.Chestplate {
			armor("Chestplate", Armor1Slot)
		}
		if !r.Mode.IsBust() {
			if r.Armor.Leggings {
				armor("Leggings", Armor2Slot)
			}
			if r.Armor.Boots {
				armor("Boots", Armor1Slot)
			}
		}
	}

	if r.Features.Has(Ears) && r.Ears != nil {
		for _, name := range r.Ears.PartNames() {
			specs = append(specs, PartSpec{Name: name, Ears: true, Slot: SkinSlot, Blend: layer.CutoutMode(0), Shading: shade, Optional: true})
		}
	}
	return specs
}
