package formats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseMTL(t *testing.T) {
	data := `# wow.export
newmtl bark
map_Kd tex\bark.png
newmtl no_texture
newmtl leaf
map_Kd leaf.png
newmtl bark
map_Kd bark_v2.png
`
	mtl, err := ParseMTL(strings.NewReader(data), "world/doodads")
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}

	if mtl.Len() != 2 {
		t.Fatalf("expected 2 materials, got %d", mtl.Len())
	}
	if mtl.Entries[0].Name != "bark" || mtl.Entries[1].Name != "leaf" {
		t.Errorf("unexpected order %q, %q", mtl.Entries[0].Name, mtl.Entries[1].Name)
	}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"bark", "world/doodads/bark_v2.png", true},
		{"leaf", "world/doodads/leaf.png", true},
		{"no_texture", "", false},
	}
	for _, tt := range tests {
		got, ok := mtl.Lookup(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseMTL_NormalizesNames(t *testing.T) {
	long := strings.Repeat("x", 70)
	mtl, err := ParseMTL(strings.NewReader("newmtl "+long+"\nmap_Kd a.png\n"), ".")
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if _, ok := mtl.Lookup(NormalizeName(long)); !ok {
		t.Error("expected lookup by normalized name")
	}
	if tex, _ := mtl.Lookup(NormalizeName(long)); tex != "a.png" {
		t.Errorf("expected texture 'a.png' in current directory, got %q", tex)
	}
}

func TestNilMTL(t *testing.T) {
	var mtl *MTL
	if mtl.Len() != 0 {
		t.Error("expected empty nil library")
	}
	if _, ok := mtl.Lookup("x"); ok {
		t.Error("expected lookup miss on nil library")
	}
}

func TestReadMTL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.mtl")
	if err := os.WriteFile(path, []byte("newmtl bark\nmap_Kd bark.png\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	mtl, err := ReadMTL(path)
	if err != nil {
		t.Fatalf("ReadMTL failed: %v", err)
	}
	tex, ok := mtl.Lookup("bark")
	if !ok || tex != filepath.ToSlash(filepath.Join(dir, "bark.png")) {
		t.Errorf("unexpected texture %q", tex)
	}
}
