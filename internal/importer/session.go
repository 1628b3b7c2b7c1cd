// Package importer resolves wow.export OBJ files and their placement tables
// into a scene tree.
package importer

import (
	"errors"
	"io/fs"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/wowobj/internal/assets"
	"github.com/Faultbox/wowobj/internal/config"
	"github.com/Faultbox/wowobj/internal/logger"
	"github.com/Faultbox/wowobj/pkg/scene"
)

// Import errors.
var (
	ErrImportCycle      = errors.New("import cycle")
	ErrMissingReference = errors.New("referenced file not found")
)

// Stats counts what a session did.
type Stats struct {
	FilesParsed    int // Geometry files read and built
	Clones         int // References served from the registry
	RowsPlaced     int // Placement rows that produced a node
	RowsSkipped    int // Rows dropped by dedup or unknown type
	RowsFailed     int // Rows whose reference could not be resolved
	RecordsSkipped int // Malformed records dropped by the parsers
	FacesSkipped   int // Degenerate or duplicate faces
}

// Session holds the state shared by one top-level import and every nested
// import it triggers. A Session is not safe for concurrent use.
type Session struct {
	ID string

	cfg      config.ImportConfig
	assets   *assets.Manager
	registry *Registry
	placed   map[string]struct{} // Consumed placement IDs
	active   map[string]bool     // Files on the import stack

	materials   map[string]*scene.Material
	Collections map[string][]*scene.Node // Doodad set -> tagged nodes

	roots []*scene.Node
	stats Stats
	log   *zap.Logger
}

// NewSession creates a session reading files from fsys. Every path the
// session reads, including placement references, resolves inside fsys.
func NewSession(fsys fs.FS, cfg config.ImportConfig) *Session {
	id := uuid.NewString()
	return &Session{
		ID:          id,
		cfg:         cfg,
		assets:      assets.NewManager(fsys),
		registry:    NewRegistry(),
		placed:      make(map[string]struct{}),
		active:      make(map[string]bool),
		materials:   make(map[string]*scene.Material),
		Collections: make(map[string][]*scene.Node),
		log:         logger.With(zap.String("session", id)),
	}
}

// Roots returns the nodes returned by Import, in call order.
func (s *Session) Roots() []*scene.Node {
	return s.roots
}

// Stats returns the session counters.
func (s *Session) Stats() Stats {
	return s.stats
}

// Registry returns the session's object registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Material returns a material built by the session.
func (s *Session) Material(name string) (*scene.Material, bool) {
	m, ok := s.materials[name]
	return m, ok
}

// Placed reports whether a placement ID has been consumed.
func (s *Session) Placed(id string) bool {
	_, ok := s.placed[id]
	return ok
}

// FilesRead returns the paths of every file the session has read, sorted.
func (s *Session) FilesRead() []string {
	return s.assets.Cache().Keys()
}

// CacheStats returns the hits and misses of the session's file cache.
func (s *Session) CacheStats() (hits, misses int) {
	return s.assets.Cache().Stats()
}
