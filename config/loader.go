package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "cipctl.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/cipctl"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	dir    string
}

// NewLoader creates a new configuration loader that searches from dir
// (the current directory when empty)
func NewLoader(logger *slog.Logger, dir string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		if cwd, err := os.Getwd(); err == nil {
			dir = cwd
		}
	}
	return &Loader{logger: logger, dir: dir}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/cipctl/config.yaml)
// 3. Project config (cipctl.yaml in the search directory or its parents)
//
// When explicit is set only that file is layered over the defaults, and a
// missing file is an error.
func (l *Loader) Load(explicit string) (*Config, error) {
	config := DefaultConfig()

	if explicit != "" {
		overlay, err := readFile(explicit)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", explicit))
		config.Merge(overlay)
	} else {
		l.loadLayers(config)
	}

	// Auto-detect collection root if not set
	if config.Collection.Root == "" {
		if gitRoot := l.detectGitRoot(); gitRoot != "" {
			config.Collection.Root = gitRoot
			l.logger.Debug("Auto-detected git root", slog.String("path", gitRoot))
		} else {
			config.Collection.Root = l.dir
			l.logger.Debug("Using search directory as collection root", slog.String("path", l.dir))
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) loadLayers(config *Config) {
	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := readFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath == "" {
		l.logger.Debug("No project config found")
		return
	}
	projectConfig, err := readFile(projectConfigPath)
	if err != nil {
		l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		return
	}
	l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
	// The project file marks the repository root unless it names one
	if projectConfig.Collection.Root == "" {
		projectConfig.Collection.Root = filepath.Dir(projectConfigPath)
	}
	config.Merge(projectConfig)
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for cipctl.yaml in the search directory and its parents
func (l *Loader) findProjectConfig() string {
	if l.dir == "" {
		return ""
	}

	dir := l.dir
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// detectGitRoot finds the git repository root from the search directory
func (l *Loader) detectGitRoot() string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = l.dir
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
