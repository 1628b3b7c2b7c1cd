package importer

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/Faultbox/wowobj/internal/config"
)

const (
	tileHeader      = "ModelFile;PositionX;PositionY;PositionZ;RotationX;RotationY;RotationZ;RotationW;ScaleFactor;ModelId;Type;DoodadSetNames"
	compositeHeader = "ModelFile;PositionX;PositionY;PositionZ;RotationW;RotationX;RotationY;RotationZ;ScaleFactor;DoodadSet"
)

// triangle is a single-face geometry file.
const triangle = `v 0 0 0
v 1 0 0
v 0 1 0
g mesh
f 1 2 3
`

func csvTable(header string, rows ...string) string {
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

func newTestSession(t *testing.T, files map[string]string, tweak func(*config.ImportConfig)) *Session {
	t.Helper()

	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}

	cfg := config.DefaultImport()
	if tweak != nil {
		tweak(&cfg)
	}
	return NewSession(fsys, cfg)
}
