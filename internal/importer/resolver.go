package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/wowobj/pkg/encoding"
	"github.com/Faultbox/wowobj/pkg/formats"
	"github.com/Faultbox/wowobj/pkg/math"
	"github.com/Faultbox/wowobj/pkg/scene"
)

// MaxSize is the edge length of the world map in world units. Tile
// coordinates are measured from the map's far corner.
const MaxSize = 51200.0 / 3.0

// Group node names.
const (
	GroupWMOs        = "WMOs"
	GroupDoodads     = "Doodads"
	GroupGameObjects = "GameObjects"
)

// groupRotation turns placement space back to the root's Y-up space.
var groupRotation = math.EulerDegrees(-90, 0, 0)

// resolvePlacement reads the placement table next to file, if any, and
// materializes its rows below root.
func (s *Session) resolvePlacement(root *scene.Node, file string, parent *scene.Node, doodadSets []string, log *zap.Logger) {
	csvPath := formats.PlacementPath(file)
	data, err := s.assets.Load(csvPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("reading placement table", zap.String("path", csvPath), zap.Error(err))
		}
		return
	}

	table, err := formats.ParsePlacementTable(bytes.NewReader(data))
	if err != nil {
		log.Warn("parsing placement table", zap.String("path", csvPath), zap.Error(err))
		return
	}
	s.stats.RecordsSkipped += table.Skipped

	log.Debug("resolving placement",
		zap.Stringer("flavor", table.Flavor),
		zap.Int("rows", len(table.Rows)))

	dir := path.Dir(file)
	if table.Flavor == formats.FlavorTile {
		s.resolveTile(root, dir, table, log)
		return
	}
	s.resolveComposite(root, dir, table, parent, doodadSets, log)
}

// resolveTile places the composite objects, doodads and game objects of a
// terrain tile. Each kind hangs below its own group node.
func (s *Session) resolveTile(root *scene.Node, dir string, table *formats.PlacementTable, log *zap.Logger) {
	var wmos, doodads, gameObjects *scene.Node
	if s.cfg.ImportWMO {
		wmos = newGroupNode(GroupWMOs, root)
	}
	if s.cfg.ImportM2 {
		doodads = newGroupNode(GroupDoodads, root)
	}
	if s.cfg.ImportGOBJ {
		gameObjects = newGroupNode(GroupGameObjects, root)
	}

	for i, raw := range table.Rows {
		kind := raw[formats.ColType]
		switch kind {
		case formats.TypeWMO, formats.TypeM2, formats.TypeGameObject:
		default:
			log.Debug("skipping row of unknown type", zap.Int("row", i), zap.String("type", kind))
			s.stats.RowsSkipped++
			continue
		}

		id := raw[formats.ColModelID]
		if _, ok := s.placed[id]; ok {
			if !s.cfg.AllowDuplicates {
				log.Debug("skipping already placed model", zap.String("model_id", id))
				s.stats.RowsSkipped++
				continue
			}
		} else {
			s.placed[id] = struct{}{}
		}

		var group *scene.Node
		switch kind {
		case formats.TypeWMO:
			group = wmos
		case formats.TypeM2:
			group = doodads
		case formats.TypeGameObject:
			group = gameObjects
		}
		if group == nil {
			continue
		}

		row, err := formats.ParseTileRow(raw)
		if err != nil {
			s.rowFailed(log, i, raw[formats.ColModelFile], err)
			continue
		}

		switch r := row.(type) {
		case *formats.WMOPlacement:
			err = s.placeWMO(group, dir, r)
		case *formats.M2Placement:
			err = s.placeM2(group, dir, r)
		case *formats.GameObjectPlacement:
			err = s.placeGameObject(group, dir, r)
		}
		if err != nil {
			s.rowFailed(log, i, row.File(), err)
			continue
		}
		s.stats.RowsPlaced++
	}
}

// placeWMO creates the composite object's parent node, which also receives
// the object's own doodads.
func (s *Session) placeWMO(group *scene.Node, dir string, r *formats.WMOPlacement) error {
	parent := scene.NewEmpty(encoding.Basename(r.ModelFile) + " parent")
	parent.Transform = scene.Transform{
		Location: tileLocation(r.Position),
		Rotation: math.EulerDegrees(r.Rotation.Z, r.Rotation.X, 90+r.Rotation.Y),
		Scale:    math.Uniform(r.Scale),
	}
	parent.SetParent(group)

	node, err := s.materialize(encoding.JoinPath(dir, r.ModelFile), parent, r.DoodadSets, true)
	if err != nil {
		parent.Detach()
		return err
	}
	node.SetParent(parent)
	return nil
}

func (s *Session) placeM2(group *scene.Node, dir string, r *formats.M2Placement) error {
	node, err := s.materialize(encoding.JoinPath(dir, r.ModelFile), nil, nil, true)
	if err != nil {
		return err
	}
	node.SetParent(group)
	node.Transform = scene.Transform{
		Location: tileLocation(r.Position),
		Rotation: math.EulerDegrees(90+r.Rotation.Z, r.Rotation.X, 90+r.Rotation.Y),
		Scale:    math.Uniform(r.Scale),
	}
	return nil
}

func (s *Session) placeGameObject(group *scene.Node, dir string, r *formats.GameObjectPlacement) error {
	node, err := s.materialize(encoding.JoinPath(dir, r.ModelFile), nil, nil, false)
	if err != nil {
		return err
	}
	node.SetParent(group)
	node.Transform = scene.Transform{
		Location: math.Vec3{X: r.Position.Y, Y: -r.Position.X, Z: r.Position.Z},
		Rotation: r.Rotation.ToEuler(),
		Scale:    math.Uniform(r.Scale),
	}
	return nil
}

// resolveComposite places the doodads of a composite object below parent,
// or below a new Doodads group under root when no parent is given.
func (s *Session) resolveComposite(root *scene.Node, dir string, table *formats.PlacementTable, parent *scene.Node, doodadSets []string, log *zap.Logger) {
	if !s.cfg.ImportWMOSets {
		return
	}
	if parent == nil {
		parent = newGroupNode(GroupDoodads, root)
	}

	for i, raw := range table.Rows {
		if len(doodadSets) > 0 && !slices.Contains(doodadSets, raw[formats.ColDoodadSet]) {
			continue
		}

		row, err := formats.ParseDoodadRow(raw)
		if err != nil {
			s.rowFailed(log, i, raw[formats.ColModelFile], err)
			continue
		}

		node, err := s.materialize(encoding.JoinPath(dir, row.ModelFile), nil, nil, false)
		if err != nil {
			s.rowFailed(log, i, row.ModelFile, err)
			continue
		}

		rot := row.Rotation.ToEuler()
		rot.X += math.Radians(90)
		node.Transform = scene.Transform{
			Location: row.Position,
			Rotation: rot,
			Scale:    math.Uniform(row.Scale),
		}
		node.SetParent(parent)

		if s.cfg.CreateDoodadSetCollections && row.DoodadSet != "" {
			node.Collection = row.DoodadSet
			s.Collections[row.DoodadSet] = append(s.Collections[row.DoodadSet], node)
		}
		s.stats.RowsPlaced++
	}
}

// materialize returns a node for file: a clone of an earlier import, or a
// fresh import when the file is new or carries its own placement table.
func (s *Session) materialize(file string, parent *scene.Node, doodadSets []string, deep bool) (*scene.Node, error) {
	factory := func() (*scene.Node, error) {
		node, err := s.importFile(file, parent, doodadSets)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingReference, file)
		}
		return node, err
	}

	if s.assets.Exists(formats.PlacementPath(file)) {
		return factory()
	}

	node, cloned, err := s.registry.Materialize(RegistryKey(file), deep, factory)
	if err != nil {
		return nil, err
	}
	if cloned {
		s.stats.Clones++
	}
	return node, nil
}

func (s *Session) rowFailed(log *zap.Logger, row int, file string, err error) {
	s.stats.RowsFailed++
	log.Warn("skipping placement row",
		zap.Int("row", row),
		zap.String("model_file", file),
		zap.Error(err))
}

func newGroupNode(name string, root *scene.Node) *scene.Node {
	n := scene.NewEmpty(name)
	n.Transform.Rotation = groupRotation
	n.SetParent(root)
	return n
}

// tileLocation converts a tile placement position to root space.
func tileLocation(p math.Vec3) math.Vec3 {
	return math.Vec3{
		X: MaxSize - p.X,
		Y: -(MaxSize - p.Z),
		Z: p.Y,
	}
}
