// wowobj imports wow.export OBJ files with their placement tables and
// writes the resolved scene as glTF.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/wowobj/internal/config"
	"github.com/Faultbox/wowobj/internal/export"
	"github.com/Faultbox/wowobj/internal/importer"
	"github.com/Faultbox/wowobj/internal/logger"
	"github.com/Faultbox/wowobj/pkg/scene"
)

func main() {
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	command := args[0]
	args = args[1:]

	switch command {
	case "import", "tree":
		cmdImport(cfg, args)
	case "info":
		cmdInfo(cfg, args)
	case "export", "x":
		cmdExport(cfg, args)
	case "watch":
		cmdWatch(cfg, args)
	case "config":
		cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wowobj - wow.export OBJ scene importer

Usage:
  wowobj [flags] <command> [arguments]

Commands:
  import <file.obj>                Print the resolved scene tree
  info <file.obj>                  Show import statistics
  export <file.obj> <out.gltf>     Write the scene as glTF (.glb for binary)
  watch <file.obj> [out.gltf]      Re-import (and export) when files change
  config <out.yaml|out.toml>       Write the effective configuration

Flags:
  -config <path>                   Config file (.yaml or .toml)
  -root <dir>                      Export root referenced paths resolve against
                                   (default: the file's volume root)
  -debug                           Enable debug logging
  -log-file <path>                 Also log to a rotating file
  -log-format <console|json>       Log encoding
  -allow-duplicates                Keep placements with a repeated ModelId
  -vertex-groups                   Create one vertex group per mesh group
  -doodad-set-collections          Tag doodads with their doodad set
  -no-wmo, -no-m2, -no-gobj        Skip a placement kind on tiles
  -no-textures                     Do not build materials
  -no-alpha                        Do not split materials per blend mode
  -glb                             Export binary glTF
  -z-up                            Keep the Z-up frame in exported glTF

Examples:
  wowobj import adt_32_48.obj
  wowobj -root ~/wow.export info maps/azeroth/adt_32_48.obj
  wowobj -no-gobj export adt_32_48.obj tile.glb
  wowobj -debug watch world/wmo/stormwind.obj out.gltf`)
}

var errOutsideRoot = errors.New("file is outside the export root")

// imported is the result of one command line import.
type imported struct {
	session *importer.Session
	node    *scene.Node
	root    string // Export root the session read from
}

// exportRoot returns the absolute export root for file and file's slash
// separated path inside it.
func exportRoot(cfg config.ImportConfig, file string) (root, rel string, err error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", "", err
	}

	root = cfg.Root
	if root == "" {
		root = filepath.VolumeName(abs) + string(filepath.Separator)
	}
	if root, err = filepath.Abs(root); err != nil {
		return "", "", err
	}

	rel, err = filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s (root %s)", errOutsideRoot, file, root)
	}
	return root, filepath.ToSlash(rel), nil
}

// runImport imports file with a fresh session rooted at the export root.
func runImport(cfg *config.Config, file string) (*imported, error) {
	root, rel, err := exportRoot(cfg.Import, file)
	if err != nil {
		return nil, err
	}

	s := importer.NewSession(os.DirFS(root), cfg.Import)
	node, err := s.Import(rel)
	if err != nil {
		return nil, err
	}

	st := s.Stats()
	logger.Info("import finished",
		zap.String("file", file),
		zap.String("root", root),
		zap.String("session", s.ID),
		zap.Int("files", st.FilesParsed),
		zap.Int("clones", st.Clones),
		zap.Int("rows_placed", st.RowsPlaced),
		zap.Int("rows_failed", st.RowsFailed))

	return &imported{session: s, node: node, root: root}, nil
}

// save exports an import next to out, with texture paths made relative to
// the written file.
func save(cfg *config.Config, res *imported, out string) error {
	return export.Save(out, []*scene.Node{res.node}, export.OptionsFromConfig(cfg.Export, res.root))
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintln(os.Stderr, "Usage: wowobj "+usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdImport(cfg *config.Config, args []string) {
	requireArgs(args, 1, "import <file.obj>")

	res, err := runImport(cfg, args[0])
	if err != nil {
		fail(err)
	}

	res.node.Walk(func(n *scene.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		loc := n.Transform.Location
		rot := n.Transform.Rotation.Degrees()

		line := fmt.Sprintf("%s%s [%s]", indent, n.Name, n.Kind)
		if n.Instance {
			line += " (instance)"
		}
		if n.Collection != "" {
			line += " {" + n.Collection + "}"
		}
		fmt.Printf("%-60s loc=(%.2f, %.2f, %.2f) rot=(%.1f, %.1f, %.1f)\n",
			line, loc.X, loc.Y, loc.Z, rot.X, rot.Y, rot.Z)
		return true
	})
}

func cmdInfo(cfg *config.Config, args []string) {
	requireArgs(args, 1, "info <file.obj>")

	res, err := runImport(cfg, args[0])
	if err != nil {
		fail(err)
	}

	s := res.session
	st := s.Stats()
	tree := res.node.Stats()
	hits, _ := s.CacheStats()

	fmt.Printf("File:     %s\n", args[0])
	fmt.Printf("Root:     %s\n", res.root)
	fmt.Printf("Session:  %s\n", s.ID)
	fmt.Println()
	fmt.Printf("Files parsed:    %d\n", st.FilesParsed)
	fmt.Printf("Clones:          %d\n", st.Clones)
	fmt.Printf("Rows placed:     %d\n", st.RowsPlaced)
	fmt.Printf("Rows skipped:    %d\n", st.RowsSkipped)
	fmt.Printf("Rows failed:     %d\n", st.RowsFailed)
	fmt.Printf("Records skipped: %d\n", st.RecordsSkipped)
	fmt.Printf("Faces skipped:   %d\n", st.FacesSkipped)
	fmt.Printf("Files read:      %d (%d cache hits)\n", len(s.FilesRead()), hits)
	fmt.Println()
	fmt.Printf("Nodes:     %d\n", tree.Nodes)
	fmt.Printf("Meshes:    %d\n", tree.Meshes)
	fmt.Printf("Instances: %d\n", tree.Instances)
	fmt.Printf("Faces:     %d\n", tree.Faces)
	fmt.Printf("Depth:     %d\n", tree.MaxDepth)

	if len(s.Collections) > 0 {
		fmt.Println()
		fmt.Println("Doodad sets:")
		names := make([]string, 0, len(s.Collections))
		for name := range s.Collections {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-30s %d\n", name, len(s.Collections[name]))
		}
	}
}

func cmdExport(cfg *config.Config, args []string) {
	requireArgs(args, 2, "export <file.obj> <out.gltf>")

	res, err := runImport(cfg, args[0])
	if err != nil {
		fail(err)
	}

	if err := save(cfg, res, args[1]); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", args[1])
}

func cmdConfig(cfg *config.Config, args []string) {
	requireArgs(args, 1, "config <out.yaml|out.toml>")

	if err := cfg.SaveTo(args[0]); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", args[0])
}
