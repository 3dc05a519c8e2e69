package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Form holds the raw values of the run form.
type Form struct {
	TemplatePath string
	Side1Path    string
	Side2Path    string
	OutputPath   string
	Sheet1Name   string
	Sheet2Name   string
	ColumnLetter string
	StartRow     string
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Form) Trimmed() Form {
	return Form{
		TemplatePath: strings.TrimSpace(f.TemplatePath),
		Side1Path:    strings.TrimSpace(f.Side1Path),
		Side2Path:    strings.TrimSpace(f.Side2Path),
		OutputPath:   strings.TrimSpace(f.OutputPath),
		Sheet1Name:   strings.TrimSpace(f.Sheet1Name),
		Sheet2Name:   strings.TrimSpace(f.Sheet2Name),
		ColumnLetter: strings.TrimSpace(f.ColumnLetter),
		StartRow:     strings.TrimSpace(f.StartRow),
	}
}

// HasPaths reports whether all four required paths are set.
func (f Form) HasPaths() bool {
	t := f.Trimmed()
	return t.TemplatePath != "" && t.Side1Path != "" && t.Side2Path != "" && t.OutputPath != ""
}

type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Log      LogConfig      `toml:"log"`
}

// DefaultsConfig seeds the form. Relative paths are resolved against the
// application directory.
type DefaultsConfig struct {
	TemplateFile string `toml:"template_file"`
	Side1File    string `toml:"side1_file"`
	Side2File    string `toml:"side2_file"`
	OutputFile   string `toml:"output_file"`
	Sheet1       string `toml:"sheet1"`
	Sheet2       string `toml:"sheet2"`
	Column       string `toml:"column"`
	StartRow     int    `toml:"start_row"`
}

type LogConfig struct {
	Directory string `toml:"directory"`
	Level     string `toml:"level"`
}

const (
	DefaultFileName = "ttvfill.toml"
	DefaultSheet1   = "Side 1"
	DefaultSheet2   = "Side 2"
	DefaultColumn   = "D"
	DefaultStartRow = 3
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			TemplateFile: "TTV_template.xlsx",
			Side1File:    "TTV_side1.txt",
			Side2File:    "TTV_side2.txt",
			OutputFile:   "TTV_output.xlsx",
			Sheet1:       DefaultSheet1,
			Sheet2:       DefaultSheet2,
			Column:       DefaultColumn,
			StartRow:     DefaultStartRow,
		},
		Log: LogConfig{
			Directory: "logs",
			Level:     "info",
		},
	}
}

// Load reads configPath. A missing file is not an error: the built-in
// defaults are returned and nothing is written.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Fields present but empty fall back to the defaults.
	def := Default()
	if cfg.Defaults.TemplateFile == "" {
		cfg.Defaults.TemplateFile = def.Defaults.TemplateFile
	}
	if cfg.Defaults.Side1File == "" {
		cfg.Defaults.Side1File = def.Defaults.Side1File
	}
	if cfg.Defaults.Side2File == "" {
		cfg.Defaults.Side2File = def.Defaults.Side2File
	}
	if cfg.Defaults.OutputFile == "" {
		cfg.Defaults.OutputFile = def.Defaults.OutputFile
	}
	if cfg.Defaults.Sheet1 == "" {
		cfg.Defaults.Sheet1 = def.Defaults.Sheet1
	}
	if cfg.Defaults.Sheet2 == "" {
		cfg.Defaults.Sheet2 = def.Defaults.Sheet2
	}
	if cfg.Defaults.Column == "" {
		cfg.Defaults.Column = def.Defaults.Column
	}
	if cfg.Defaults.StartRow == 0 {
		cfg.Defaults.StartRow = def.Defaults.StartRow
	}
	if cfg.Log.Directory == "" {
		cfg.Log.Directory = def.Log.Directory
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}

	return cfg, nil
}

// Save writes cfg to configPath, creating its directory if needed.
func Save(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Form builds the initial form values, resolving relative paths against baseDir.
func (c *Config) Form(baseDir string) Form {
	d := c.Defaults
	return Form{
		TemplatePath: resolve(baseDir, d.TemplateFile),
		Side1Path:    resolve(baseDir, d.Side1File),
		Side2Path:    resolve(baseDir, d.Side2File),
		OutputPath:   resolve(baseDir, d.OutputFile),
		Sheet1Name:   d.Sheet1,
		Sheet2Name:   d.Sheet2,
		ColumnLetter: d.Column,
		StartRow:     strconv.Itoa(d.StartRow),
	}
}

// ScriptForm is the fixed configuration of the non-interactive run.
func ScriptForm(dir string) Form {
	return Form{
		TemplatePath: filepath.Join(dir, "TTV_template.xlsx"),
		Side1Path:    filepath.Join(dir, "side1.txt"),
		Side2Path:    filepath.Join(dir, "side2.txt"),
		OutputPath:   filepath.Join(dir, "TTV_populated.xlsx"),
		Sheet1Name:   DefaultSheet1,
		Sheet2Name:   DefaultSheet2,
		ColumnLetter: DefaultColumn,
		StartRow:     strconv.Itoa(DefaultStartRow),
	}
}

// AppDir returns the directory containing the running executable, or the
// working directory if that cannot be determined.
func AppDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, _ := os.Getwd()
	return wd
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
