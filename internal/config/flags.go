package config

import "flag"

var (
	flagConfig          = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug           = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile         = flag.String("log-file", "", "Write logs to this file as well")
	flagLogFormat       = flag.String("log-format", "", "Log encoding: console or json")
	flagRoot            = flag.String("root", "", "Export root that referenced paths resolve against")
	flagAllowDuplicates = flag.Bool("allow-duplicates", false, "Import placements with an already seen ModelId")
	flagVertexGroups    = flag.Bool("vertex-groups", false, "Create one vertex group per mesh group")
	flagDoodadSets      = flag.Bool("doodad-set-collections", false, "Tag composite object doodads with their doodad set")
	flagNoWMO           = flag.Bool("no-wmo", false, "Skip composite objects placed on tiles")
	flagNoM2            = flag.Bool("no-m2", false, "Skip doodads placed on tiles")
	flagNoGOBJ          = flag.Bool("no-gobj", false, "Skip game objects placed on tiles")
	flagNoTextures      = flag.Bool("no-textures", false, "Do not build materials")
	flagNoAlpha         = flag.Bool("no-alpha", false, "Do not split materials per blend mode")
	flagBinary          = flag.Bool("glb", false, "Export binary glTF")
	flagZUp             = flag.Bool("z-up", false, "Keep the Z-up frame in exported glTF")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagLogFormat != "" {
		cfg.Logging.Format = *flagLogFormat
	}
	if *flagRoot != "" {
		cfg.Import.Root = *flagRoot
	}
	if *flagAllowDuplicates {
		cfg.Import.AllowDuplicates = true
	}
	if *flagVertexGroups {
		cfg.Import.CreateVertexGroups = true
	}
	if *flagDoodadSets {
		cfg.Import.CreateDoodadSetCollections = true
	}
	if *flagNoWMO {
		cfg.Import.ImportWMO = false
	}
	if *flagNoM2 {
		cfg.Import.ImportM2 = false
	}
	if *flagNoGOBJ {
		cfg.Import.ImportGOBJ = false
	}
	if *flagNoTextures {
		cfg.Import.ImportTextures = false
	}
	if *flagNoAlpha {
		cfg.Import.UseAlpha = false
	}
	if *flagBinary {
		cfg.Export.Binary = true
	}
	if *flagZUp {
		cfg.Export.YUp = false
	}
}
