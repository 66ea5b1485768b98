package scan

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// ConfigFile is the optional per-module configuration file name.
const ConfigFile = "autosvc.yml"

// Config controls which packages the scanner loads.
type Config struct {
	Module string `yaml:"-"` // module path from go.mod
	Root   string `yaml:"-"` // module root directory

	// Scan lists package patterns relative to the module root.
	Scan []string `yaml:"scan"`

	// Exclude lists glob patterns matched against module-relative package
	// paths, e.g. "internal/testutil/**".
	Exclude []string `yaml:"exclude"`
}

// BuildConfig assembles a Config from go.mod plus the optional
// autosvc.yml at the module root. configFile overrides the default
// location when non-empty.
func BuildConfig(moduleRoot, configFile string) (*Config, error) {
	module, err := parseModulePath(moduleRoot)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Module: module,
		Root:   moduleRoot,
		Scan:   []string{"./..."},
	}

	path := configFile
	if path == "" {
		path = filepath.Join(moduleRoot, ConfigFile)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && configFile == "" {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Scan) == 0 {
		cfg.Scan = []string{"./..."}
	}
	return cfg, nil
}

// FindModuleRoot walks up from dir to find the directory containing go.mod.
func FindModuleRoot(dir string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("go.mod not found in any parent directory")
}

func parseModulePath(root string) (string, error) {
	f, err := os.Open(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("open go.mod: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module ")), nil
		}
	}
	return "", fmt.Errorf("module directive not found in go.mod")
}
