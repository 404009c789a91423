// Package parts locates and loads the pre-baked codeword maps, one per body
// part and camera view.
//
// Layout on disk:
//
//	<root>/<view>/<name>.cwb            shared by both models
//	<root>/<view>/<steve|alex>/<name>   model variants (arms)
//	<root>/<view>/ears/[model/]<name>   ears geometry
//
// Map files are .cwb buffers or PNG-transported frames.
package parts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Key identifies one part map.
type Key struct {
	View  string // front, back
	Model string // steve, alex; tried before the shared folder
	Ears  bool
	Name  string
}

func (k Key) String() string {
	s := k.View + "/"
	if k.Ears {
		s += "ears/"
	}
	if k.Model != "" {
		s += k.Model + "/"
	}
	return s + k.Name
}

// Path is the root-relative file path, without extension and with forward
// slashes, that k resolves to first.
func (k Key) Path() string {
	return candidates(k)[0]
}

// Index maps normalized part keys to filesystem paths.
// .cwb files take priority over .png for the same stem.
type Index struct {
	root    string
	entries map[string]string // "front/steve/left_arm" → full path
}

// normalize case-folds a part name and turns spaces into underscores so that
// "Left Arm Layer" and left_arm_layer.png refer to the same part. Names are
// composed to NFC first; some filesystems hand back decomposed names.
func normalize(name string) string {
	folded := cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
	return strings.ReplaceAll(folded, " ", "_")
}

func isMapExt(ext string) bool {
	return ext == ".cwb" || ext == ".png"
}

// BuildIndex scans root and its subdirectories for map files. A missing root
// yields an empty index.
func BuildIndex(root string) *Index {
	idx := &Index{root: root, entries: make(map[string]string)}

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !isMapExt(ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		dir, stem := "", rel
		if i := strings.LastIndex(rel, "/"); i >= 0 {
			dir, stem = strings.ToLower(rel[:i+1]), rel[i+1:]
		}
		key := dir + normalize(stem)

		existing, exists := idx.entries[key]
		if !exists {
			idx.entries[key] = path
		} else if ext == ".cwb" && strings.ToLower(filepath.Ext(existing)) == ".png" {
			// native buffers win over image transport
			idx.entries[key] = path
		}
		return nil
	})

	return idx
}

// candidates lists lookup keys from most to least specific.
func candidates(k Key) []string {
	base := strings.ToLower(k.View) + "/"
	if k.Ears {
		base += "ears/"
	}
	name := normalize(k.Name)
	var out []string
	if k.Model != "" {
		out = append(out, base+strings.ToLower(k.Model)+"/"+name)
	}
	return append(out, base+name)
}

// ResolvePath returns the map file for k, or ("", false).
func (idx *Index) ResolvePath(k Key) (string, bool) {
	for _, c := range candidates(k) {
		if path, ok := idx.entries[c]; ok {
			return path, true
		}
	}
	return "", false
}

// Len returns the number of indexed maps.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Keys returns the indexed keys in sorted order.
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.entries))
	for k := range idx.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Root is the directory the index was built from.
func (idx *Index) Root() string {
	return idx.root
}
