// Package config handles importer configuration loading and management.
package config

// Config holds all importer settings.
type Config struct {
	Import  ImportConfig  `yaml:"import" toml:"import"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ImportConfig selects what an import materializes.
type ImportConfig struct {
	// Root is the export directory every referenced path resolves against.
	// Placement tables name shared models relative to the table, often with
	// ".." segments, so the session reads from here rather than from the
	// imported file's directory. Empty means the file's volume root.
	Root string `yaml:"root" toml:"root"`

	ImportWMO                  bool `yaml:"import_wmo" toml:"import_wmo"`                                       // Composite objects on tiles
	ImportWMOSets              bool `yaml:"import_wmo_sets" toml:"import_wmo_sets"`                             // Doodads inside composite objects
	ImportM2                   bool `yaml:"import_m2" toml:"import_m2"`                                         // Doodads on tiles
	ImportGOBJ                 bool `yaml:"import_gobj" toml:"import_gobj"`                                     // Game objects on tiles
	ImportTextures             bool `yaml:"import_textures" toml:"import_textures"`                             // Build materials
	UseAlpha                   bool `yaml:"use_alpha" toml:"use_alpha"`                                         // Split materials per blend mode
	UseTerrainBlending         bool `yaml:"use_terrain_blending" toml:"use_terrain_blending"`                   // Read terrain layer sidecars
	CreateEmissiveMaterials    bool `yaml:"create_emissive_materials" toml:"create_emissive_materials"`         // Additive materials glow
	CreateVertexGroups         bool `yaml:"create_vertex_groups" toml:"create_vertex_groups"`                   // One vertex group per mesh group
	VertexGroupBlendNames      bool `yaml:"vertex_group_blend_names" toml:"vertex_group_blend_names"`           // Suffix vertex groups with their blend mode
	AllowDuplicates            bool `yaml:"allow_duplicates" toml:"allow_duplicates"`                           // Ignore placement ID dedup
	CreateDoodadSetCollections bool `yaml:"create_doodad_set_collections" toml:"create_doodad_set_collections"` // Tag doodads with their set
}

// ExportConfig holds glTF output settings.
type ExportConfig struct {
	Binary      bool `yaml:"binary" toml:"binary"`             // Write .glb instead of .gltf
	DoubleSided bool `yaml:"double_sided" toml:"double_sided"` // Mark materials double sided
	YUp         bool `yaml:"y_up" toml:"y_up"`                 // Rotate Z-up roots into glTF's Y-up frame
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`             // debug, info, warn or error
	Format     string `yaml:"format" toml:"format"`           // console or json
	LogFile    string `yaml:"log_file" toml:"log_file"`       // Rotating log file, empty for none
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"` // Rotate after this many megabytes
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"` // Rotated files to keep
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: DefaultImport(),
		Export: ExportConfig{
			Binary:      false,
			DoubleSided: true,
			YUp:         true,
		},
		Watch: WatchConfig{
			DebounceMS: 250,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// DefaultImport returns the default import settings.
func DefaultImport() ImportConfig {
	return ImportConfig{
		ImportWMO:                  true,
		ImportWMOSets:              true,
		ImportM2:                   true,
		ImportGOBJ:                 true,
		ImportTextures:             true,
		UseAlpha:                   true,
		UseTerrainBlending:         true,
		CreateEmissiveMaterials:    true,
		CreateVertexGroups:         false,
		VertexGroupBlendNames:      false,
		AllowDuplicates:            false,
		CreateDoodadSetCollections: false,
	}
}

// UsesPlacement reports whether any placement kind is enabled.
func (c ImportConfig) UsesPlacement() bool {
	return c.ImportWMO || c.ImportM2 || c.ImportWMOSets || c.ImportGOBJ
}
