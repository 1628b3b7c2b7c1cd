package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"go.uber.org/zap"

	"github.com/Faultbox/wowobj/pkg/encoding"
	"github.com/Faultbox/wowobj/pkg/formats"
	"github.com/Faultbox/wowobj/pkg/math"
	"github.com/Faultbox/wowobj/pkg/scene"
)

// rootRotation turns the exporter's Y-up meshes Z-up.
var rootRotation = math.EulerDegrees(90, 0, 0)

// Import reads a geometry file and everything its placement tables
// reference. Only a missing or unreadable top-level file is an error.
func (s *Session) Import(file string) (*scene.Node, error) {
	root, err := s.importFile(file, nil, nil)
	if err != nil {
		return nil, err
	}
	s.roots = append(s.roots, root)
	return root, nil
}

// importFile builds one geometry file and resolves its placement table.
// parent receives composite doodads; doodadSets restricts them.
func (s *Session) importFile(file string, parent *scene.Node, doodadSets []string) (*scene.Node, error) {
	file = encoding.NormalizePath(file)
	if s.active[file] {
		return nil, fmt.Errorf("%w: %s", ErrImportCycle, file)
	}
	s.active[file] = true
	defer delete(s.active, file)

	dir, base := path.Dir(file), path.Base(file)
	log := s.log.With(zap.String("file", file))
	log.Debug("parsing geometry")

	data, err := s.assets.Load(file)
	if err != nil {
		return nil, fmt.Errorf("reading geometry: %w", err)
	}

	meta := s.loadMeta(dir, base, log)

	obj, err := formats.ParseOBJ(bytes.NewReader(data), formats.OBJOptions{Meta: meta, UseAlpha: s.cfg.UseAlpha})
	if err != nil {
		return nil, fmt.Errorf("parsing geometry %s: %w", file, err)
	}
	s.stats.RecordsSkipped += obj.Skipped

	mtl := s.loadMTL(dir, obj.MaterialLib, log)

	var materials []*scene.Material
	if s.cfg.ImportTextures {
		materials = s.buildMaterials(base, dir, obj, mtl, meta)
	}

	mesh := s.buildMesh(base, obj, materials)
	s.stats.FacesSkipped += mesh.Stats.Skipped()

	root := scene.NewMeshNode(s.registry.UniqueName(base), mesh)
	root.Source = file
	root.Transform.Rotation = rootRotation

	s.registry.Register(RegistryKey(file), root)
	s.stats.FilesParsed++

	log.Debug("built mesh",
		zap.Int("vertices", len(mesh.Positions)),
		zap.Int("faces", len(mesh.Faces)),
		zap.Int("materials", len(mesh.Materials)),
		zap.Int("skipped_faces", mesh.Stats.Skipped()))

	if s.cfg.UsesPlacement() {
		s.resolvePlacement(root, file, parent, doodadSets, log)
	}

	return root, nil
}

// loadMeta reads the model sidecar. Missing or malformed sidecars yield nil.
func (s *Session) loadMeta(dir, base string, log *zap.Logger) *formats.ModelMeta {
	metaPath := path.Join(dir, encoding.TrimExt(base)+".json")
	data, err := s.assets.Load(metaPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debug("reading metadata", zap.Error(err))
		}
		return nil
	}

	meta, err := formats.ParseModelMeta(data)
	if err != nil {
		log.Debug("ignoring metadata", zap.String("path", metaPath), zap.Error(err))
		return nil
	}
	return meta
}

// loadMTL reads the material library. A missing library yields nil.
func (s *Session) loadMTL(dir, lib string, log *zap.Logger) *formats.MTL {
	if lib == "" {
		return nil
	}

	mtlPath := encoding.JoinPath(dir, lib)
	data, err := s.assets.Load(mtlPath)
	if err != nil {
		log.Debug("material library unavailable", zap.String("path", mtlPath), zap.Error(err))
		return nil
	}

	mtl, err := formats.ParseMTL(bytes.NewReader(data), dir)
	if err != nil {
		log.Debug("ignoring material library", zap.String("path", mtlPath), zap.Error(err))
		return nil
	}
	return mtl
}
