package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/wowobj/pkg/encoding"
)

// MTLEntry binds a normalized material name to its diffuse texture.
type MTLEntry struct {
	Name    string
	Texture string // Joined onto the library's base directory
}

// MTL is a parsed material library. Entries keep their first-declaration
// order.
type MTL struct {
	Entries []MTLEntry
	index   map[string]int
}

// Lookup returns the texture path bound to a material name.
func (m *MTL) Lookup(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[name]
	if !ok {
		return "", false
	}
	return m.Entries[i].Texture, true
}

// Len returns the number of materials in the library.
func (m *MTL) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// ReadMTL parses the material library at path. Textures are resolved
// relative to the library's directory.
func ReadMTL(path string) (*MTL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening material library %s: %w", path, err)
	}
	defer f.Close()
	return ParseMTL(f, filepath.ToSlash(filepath.Dir(path)))
}

// ParseMTL parses a material library.
// Only newmtl/map_Kd pairs are kept; a material without a map_Kd record is
// dropped and a repeated map_Kd replaces the earlier texture.
func ParseMTL(r io.Reader, baseDir string) (*MTL, error) {
	mtl := &MTL{index: make(map[string]int)}

	var name string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := bytes.Fields(scanner.Bytes())
		if len(fields) < 2 {
			continue
		}

		switch string(fields[0]) {
		case "newmtl":
			name = NormalizeName(encoding.DecodeToken(fields[1]))
		case "map_Kd":
			texture := encoding.JoinPath(baseDir, encoding.DecodeToken(fields[1]))
			if i, ok := mtl.index[name]; ok {
				mtl.Entries[i].Texture = texture
				continue
			}
			mtl.index[name] = len(mtl.Entries)
			mtl.Entries = append(mtl.Entries, MTLEntry{Name: name, Texture: texture})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading material library: %w", err)
	}

	return mtl, nil
}
