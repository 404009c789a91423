package request

import (
	"fmt"
	"strings"
)

// Features is a set of optional render features.
type Features uint16

const (
	BodyLayers Features = 1 << iota
	HatLayer
	Shading
	Cape
	Ears
	UnprocessedSkin
)

// DefaultFeatures is what a request gets when nothing is excluded.
const DefaultFeatures = BodyLayers | HatLayer | Shading | Cape

var featureNames = []struct {
	f    Features
	name string
}{
	{BodyLayers, "body_layers"},
	{HatLayer, "hat_layer"},
	{Shading, "shading"},
	{Cape, "cape"},
	{Ears, "ears"},
	{UnprocessedSkin, "unprocessed_skin"},
}

var featureAliases = map[string]Features{
	"overlay":           BodyLayers,
	"overlays":          BodyLayers,
	"body_layers":       BodyLayers,
	"layers":            BodyLayers,
	"helmet":            HatLayer,
	"hat":               HatLayer,
	"hat_layer":         HatLayer,
	"shading":           Shading,
	"cape":              Cape,
	"ears":              Ears,
	"unprocessed_skin":  UnprocessedSkin,
	"un_processed_skin": UnprocessedSkin,
	"raw":               UnprocessedSkin,
}

// ParseFeatures reads a comma separated list. Empty input is the empty set.
func ParseFeatures(s string) (Features, error) {
	var fs Features
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		f, ok := featureAliases[part]
		if !ok {
			return 0, fmt.Errorf("%w: feature %q", ErrInvalid, part)
		}
		fs |= f
	}
	return fs, nil
}

func (fs Features) Has(f Features) bool { return fs&f == f }

func (fs Features) With(f Features) Features { return fs | f }

// Without removes every feature in excluded.
func (fs Features) Without(excluded ...Features) Features {
	for _, f := range excluded {
		fs &^= f
	}
	return fs
}

func (fs Features) String() string {
	var names []string
	for _, fn := range featureNames {
		if fs.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}
