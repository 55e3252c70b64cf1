package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "git.home.luguber.info/inful/docpipe/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Pipelines []Pipeline  `yaml:"pipelines"`
	Tools     ToolsConfig `yaml:"tools"`
	Watch     WatchConfig `yaml:"watch,omitempty"`
}

// Pipeline declares one documentation pipeline: where program sources live,
// which file extensions trigger re-extraction, and where the intermediate
// representation and final site are written.
type Pipeline struct {
	Name           string           `yaml:"name"`
	Source         string           `yaml:"source"`                    // extraction source directory
	Extensions     []string         `yaml:"extensions,omitempty"`      // tracked suffixes, defaults to [".h"]
	Docs           string           `yaml:"docs,omitempty"`            // rendered-document sources
	IRDir          string           `yaml:"ir_dir,omitempty"`          // extraction output directory
	SiteDir        string           `yaml:"site_dir,omitempty"`        // rendering output directory
	ConfigTemplate string           `yaml:"config_template,omitempty"` // @VAR@ template for the extractor config
	Properties     []PropertySource `yaml:"properties,omitempty"`
}

// PropertySource contributes directories to a named search-path property.
// Directories listed later take precedence (last contribution wins first
// position in the joined value).
type PropertySource struct {
	Name string   `yaml:"name"`
	Dirs []string `yaml:"dirs"`
}

// ToolsConfig holds the external tool command lines. Arguments may contain
// @VAR@ placeholders resolved at assembly time (SOURCE_DIR, IR_DIR,
// DOCS_DIR, SITE_DIR, CONFIG_FILE, TARGET).
type ToolsConfig struct {
	Extractor []string `yaml:"extractor,omitempty"`
	Renderer  []string `yaml:"renderer,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"` // quiet period after a change before rebuilding
	Resync   time.Duration `yaml:"resync,omitempty"`   // periodic full rebuild interval, 0 disables
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.CategoryConfig, apperrors.SeverityFatal,
			fmt.Sprintf("configuration file not found: %s", configPath))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
			"failed to read config file")
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
			"failed to unmarshal config")
	}

	applyDefaults(&config)
	return &config, nil
}

// applyDefaults fills in per-pipeline and tool defaults after unmarshal.
func applyDefaults(config *Config) {
	if len(config.Tools.Extractor) == 0 {
		config.Tools.Extractor = []string{"doxygen", "@CONFIG_FILE@"}
	}
	if len(config.Tools.Renderer) == 0 {
		config.Tools.Renderer = []string{"sphinx-build", "@DOCS_DIR@", "@SITE_DIR@"}
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 500 * time.Millisecond
	}

	for i := range config.Pipelines {
		p := &config.Pipelines[i]
		if len(p.Extensions) == 0 {
			p.Extensions = []string{".h"}
		}
		if p.Docs == "" {
			p.Docs = "docs"
		}
		if p.IRDir == "" {
			p.IRDir = filepath.Join("build", p.Name, "ir")
		}
		if p.SiteDir == "" {
			p.SiteDir = filepath.Join("build", p.Name, "site")
		}
	}
}

// Validate checks structural requirements that cannot wait until assembly.
func (c *Config) Validate() error {
	if len(c.Pipelines) == 0 {
		return apperrors.New(apperrors.CategoryValidation, apperrors.SeverityFatal,
			"no pipelines configured")
	}
	seen := map[string]struct{}{}
	for _, p := range c.Pipelines {
		if p.Name == "" {
			return apperrors.New(apperrors.CategoryValidation, apperrors.SeverityFatal,
				"pipeline name must not be empty")
		}
		if _, dup := seen[p.Name]; dup {
			return apperrors.New(apperrors.CategoryValidation, apperrors.SeverityFatal,
				fmt.Sprintf("duplicate pipeline name: %s", p.Name))
		}
		seen[p.Name] = struct{}{}
		if p.Source == "" {
			return apperrors.New(apperrors.CategoryValidation, apperrors.SeverityFatal,
				fmt.Sprintf("pipeline %s: source directory must not be empty", p.Name))
		}
	}
	return nil
}

// Pipeline returns the named pipeline definition, if present.
func (c *Config) Pipeline(name string) (*Pipeline, bool) {
	for i := range c.Pipelines {
		if c.Pipelines[i].Name == name {
			return &c.Pipelines[i], true
		}
	}
	return nil, false
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Pipelines: []Pipeline{
			{
				Name:       "docs",
				Source:     "./src",
				Extensions: []string{".h", ".hpp"},
				Docs:       "./doc",
				Properties: []PropertySource{
					{Name: "PYTHONPATH", Dirs: []string{"./py"}},
				},
			},
		},
		Tools: ToolsConfig{
			Extractor: []string{"doxygen", "@CONFIG_FILE@"},
			Renderer:  []string{"sphinx-build", "@DOCS_DIR@", "@SITE_DIR@"},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
