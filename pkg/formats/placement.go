package formats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/wowobj/pkg/math"
)

// Placement table errors.
var (
	ErrUnknownPlacementType = errors.New("unknown placement type")
	ErrMalformedPlacement   = errors.New("malformed placement row")
)

// PlacementSuffix replaces the ".obj" extension of a geometry file to name
// its placement table.
const PlacementSuffix = "_ModelPlacementInformation.csv"

// PlacementPath returns the placement table path for a geometry file.
func PlacementPath(objPath string) string {
	return strings.TrimSuffix(objPath, ".obj") + PlacementSuffix
}

// TableFlavor is the schema of a placement table.
type TableFlavor int

const (
	// FlavorComposite tables list the doodads of one composite object.
	FlavorComposite TableFlavor = iota
	// FlavorTile tables mix composite objects, doodads and game objects
	// placed on a terrain tile. They carry a Type column.
	FlavorTile
)

// String returns the flavor name.
func (f TableFlavor) String() string {
	if f == FlavorTile {
		return "tile"
	}
	return "composite"
}

// Placement table columns.
const (
	ColType           = "Type"
	ColModelID        = "ModelId"
	ColModelFile      = "ModelFile"
	ColPositionX      = "PositionX"
	ColPositionY      = "PositionY"
	ColPositionZ      = "PositionZ"
	ColRotationX      = "RotationX"
	ColRotationY      = "RotationY"
	ColRotationZ      = "RotationZ"
	ColRotationW      = "RotationW"
	ColScaleFactor    = "ScaleFactor"
	ColDoodadSet      = "DoodadSet"
	ColDoodadSetNames = "DoodadSetNames"
)

// Tile row type tags.
const (
	TypeWMO        = "wmo"
	TypeM2         = "m2"
	TypeGameObject = "gobj"
)

// PlacementTable is a parsed placement table. Rows are raw field maps keyed
// by header name; coercion is done per flavor by ParseTileRow and
// ParseDoodadRow.
type PlacementTable struct {
	Header  []string
	Rows    []map[string]string
	Flavor  TableFlavor
	Skipped int // Records that failed to parse
}

// ReadPlacementTable parses the placement table at path.
func ReadPlacementTable(path string) (*PlacementTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening placement table %s: %w", path, err)
	}
	defer f.Close()
	return ParsePlacementTable(f)
}

// ParsePlacementTable parses a semicolon delimited placement table.
func ParsePlacementTable(r io.Reader) (*PlacementTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	table := &PlacementTable{Flavor: FlavorComposite}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading placement header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	table.Header = header

	for _, col := range header {
		if col == ColType {
			table.Flavor = FlavorTile
			break
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			table.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading placement table: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// PlacementRow is one typed placement row.
type PlacementRow interface {
	// File returns the referenced geometry file, relative to the table.
	File() string
	// Kind returns the row's type tag.
	Kind() string
}

// WMOPlacement places a composite object on a tile. The composite object
// carries its own doodads.
type WMOPlacement struct {
	ModelID    string
	ModelFile  string
	Position   math.Vec3
	Rotation   math.Vec3 // Degrees
	Scale      float64
	DoodadSets []string // Doodad sets to honor; empty means all
}

// M2Placement places a doodad on a tile.
type M2Placement struct {
	ModelID   string
	ModelFile string
	Position  math.Vec3
	Rotation  math.Vec3 // Degrees
	Scale     float64
}

// GameObjectPlacement places a game object on a tile.
type GameObjectPlacement struct {
	ModelID   string
	ModelFile string
	Position  math.Vec3
	Rotation  math.Quat
	Scale     float64
}

// DoodadPlacement places a doodad inside a composite object.
type DoodadPlacement struct {
	ModelFile string
	Position  math.Vec3
	Rotation  math.Quat
	Scale     float64
	DoodadSet string
}

func (p *WMOPlacement) File() string        { return p.ModelFile }
func (p *M2Placement) File() string         { return p.ModelFile }
func (p *GameObjectPlacement) File() string { return p.ModelFile }
func (p *DoodadPlacement) File() string     { return p.ModelFile }

func (p *WMOPlacement) Kind() string        { return TypeWMO }
func (p *M2Placement) Kind() string         { return TypeM2 }
func (p *GameObjectPlacement) Kind() string { return TypeGameObject }
func (p *DoodadPlacement) Kind() string     { return "doodad" }

// ParseTileRow coerces a tile table row into its typed form.
func ParseTileRow(raw map[string]string) (PlacementRow, error) {
	kind := raw[ColType]
	switch kind {
	case TypeWMO, TypeM2, TypeGameObject:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlacementType, kind)
	}

	f := fieldParser{raw: raw}
	file := raw[ColModelFile]
	pos := f.vec3(ColPositionX, ColPositionY, ColPositionZ)
	scale := f.scale()

	var row PlacementRow
	switch kind {
	case TypeWMO:
		row = &WMOPlacement{
			ModelID:    raw[ColModelID],
			ModelFile:  file,
			Position:   pos,
			Rotation:   f.vec3(ColRotationX, ColRotationY, ColRotationZ),
			Scale:      scale,
			DoodadSets: splitList(raw[ColDoodadSetNames]),
		}
	case TypeM2:
		row = &M2Placement{
			ModelID:   raw[ColModelID],
			ModelFile: file,
			Position:  pos,
			Rotation:  f.vec3(ColRotationX, ColRotationY, ColRotationZ),
			Scale:     scale,
		}
	case TypeGameObject:
		row = &GameObjectPlacement{
			ModelID:   raw[ColModelID],
			ModelFile: file,
			Position:  pos,
			// Entity space has the opposite handedness on Z.
			Rotation: math.Quat{
				X: f.float(ColRotationX),
				Y: f.float(ColRotationY),
				Z: -f.float(ColRotationZ),
				W: f.float(ColRotationW),
			},
			Scale: scale,
		}
	}

	if f.err != nil {
		return nil, f.err
	}
	if file == "" {
		return nil, fmt.Errorf("%w: empty %s", ErrMalformedPlacement, ColModelFile)
	}
	return row, nil
}

// ParseDoodadRow coerces a composite table row into its typed form.
func ParseDoodadRow(raw map[string]string) (*DoodadPlacement, error) {
	f := fieldParser{raw: raw}
	row := &DoodadPlacement{
		ModelFile: raw[ColModelFile],
		Position:  f.vec3(ColPositionX, ColPositionY, ColPositionZ),
		Rotation: math.Quat{
			W: f.float(ColRotationW),
			X: f.float(ColRotationX),
			Y: f.float(ColRotationY),
			Z: f.float(ColRotationZ),
		},
		Scale:     f.scale(),
		DoodadSet: raw[ColDoodadSet],
	}

	if f.err != nil {
		return nil, f.err
	}
	if row.ModelFile == "" {
		return nil, fmt.Errorf("%w: empty %s", ErrMalformedPlacement, ColModelFile)
	}
	return row, nil
}

// fieldParser keeps the first coercion error of a row.
type fieldParser struct {
	raw map[string]string
	err error
}

func (p *fieldParser) float(col string) float64 {
	s := strings.TrimSpace(p.raw[col])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q", ErrMalformedPlacement, col, s)
	}
	return v
}

func (p *fieldParser) vec3(x, y, z string) math.Vec3 {
	return math.Vec3{X: p.float(x), Y: p.float(y), Z: p.float(z)}
}

// scale returns the uniform scale, 1 when the column is empty or absent.
func (p *fieldParser) scale() float64 {
	if strings.TrimSpace(p.raw[ColScaleFactor]) == "" {
		return 1
	}
	return p.float(ColScaleFactor)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
