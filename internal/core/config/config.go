package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const DefaultStepTemplate = `On {{datetime}}, I made {{#first}}my first commit, and it was glorious{{/first}}{{^first}}another glorious commit{{/first}}{{#url}} <{{{url}}}>{{/url}}. I edited {{total_lines}} lines across {{files_touched}} files. Then I looked over all I had made, and I saw that it was very good.`

const (
	DefaultDataPath = "loc.csv"
	DefaultLimit    = 20
)

// Environment overrides
const (
	EnvDataPath  = "LOCSCOPE_DATA"
	EnvCommitURL = "LOCSCOPE_COMMIT_URL"
)

type Config struct {
	DataPath          string // loc.csv used when nothing has been imported
	CommitURLTemplate string // mustache, e.g. https://github.com/me/site/commit/{{id}}
	StepTemplate      string
	DefaultLimit      int
}

type tomlConfig struct {
	DataPath          string `toml:"data_path"`
	CommitURLTemplate string `toml:"commit_url_template"`
	DefaultLimit      int    `toml:"default_limit"`
}

// Dir is the configuration directory, ~/.config/locscope
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "locscope")
}

// Load reads config from ~/.config/locscope/
func Load() (*Config, error) {
	return LoadFrom(Dir())
}

// Default is the configuration used when nothing is configured
func Default() *Config {
	return &Config{
		DataPath:     DefaultDataPath,
		StepTemplate: DefaultStepTemplate,
		DefaultLimit: DefaultLimit,
	}
}

// LoadFrom reads config.toml, step_template.txt and .env from dir. Missing
// files leave the defaults in place.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()

	loadEnvFiles(dir)

	if dir != "" {
		tomlPath := filepath.Join(dir, "config.toml")
		templatePath := filepath.Join(dir, "step_template.txt")

		// Load TOML config if it exists
		if _, err := os.Stat(tomlPath); err == nil {
			var tc tomlConfig
			if _, err := toml.DecodeFile(tomlPath, &tc); err != nil {
				return cfg, err
			}
			if tc.DataPath != "" {
				cfg.DataPath = tc.DataPath
			}
			if tc.DefaultLimit > 0 {
				cfg.DefaultLimit = tc.DefaultLimit
			}
			cfg.CommitURLTemplate = tc.CommitURLTemplate
		}

		if data, err := os.ReadFile(templatePath); err == nil {
			if tmpl := strings.TrimSpace(string(data)); tmpl != "" {
				cfg.StepTemplate = tmpl
			}
		}
	}

	if v := os.Getenv(EnvDataPath); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv(EnvCommitURL); v != "" {
		cfg.CommitURLTemplate = v
	}

	return cfg, nil
}

// loadEnvFiles loads .env from the working directory, then from dir.
// Variables already set in the environment win.
func loadEnvFiles(dir string) {
	files := []string{".env"}
	if dir != "" {
		files = append(files, filepath.Join(dir, ".env"))
	}

	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}
