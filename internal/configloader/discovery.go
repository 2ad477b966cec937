package configloader

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// appName names the system and user configuration directories.
const appName = "textanalyzer"

// Source names the origin of a configuration layer.
type Source string

// Configuration file sources, lowest precedence first.
const (
	SourceSystem   Source = "system"
	SourceUser     Source = "user"
	SourceProject  Source = "project"
	SourceExplicit Source = "explicit"
)

// Layer is a configuration file and the source it was found for.
type Layer struct {
	Source Source
	Path   string
}

//nolint:gochecknoglobals // read-only lookup tables
var (
	// projectConfigFiles are searched for in each directory, in order.
	projectConfigFiles = []string{
		".textanalyzer.yml",
		".textanalyzer.yaml",
		"textanalyzer.yml",
		"textanalyzer.yaml",
	}

	// dirConfigFiles are looked up in the system and user config directories.
	dirConfigFiles = []string{"config.yaml", "config.yml"}

	vcsRootMarkers = []string{".git", ".hg", ".svn"}
)

// ProjectConfigName is the file name `init` writes.
func ProjectConfigName() string {
	return projectConfigFiles[0]
}

// discoverLayers returns the configuration files to load, lowest precedence
// first. Sources without a file are left out.
func discoverLayers(ctx context.Context, workDir string, opts LoadOptions) ([]Layer, error) {
	var layers []Layer
	add := func(source Source, path string) {
		if path != "" {
			layers = append(layers, Layer{Source: source, Path: path})
		}
	}

	if !opts.IgnoreSystemConfig {
		add(SourceSystem, firstFile(systemConfigDir(), dirConfigFiles))
	}

	if !opts.IgnoreUserConfig {
		if dir, err := UserConfigDir(); err == nil {
			add(SourceUser, firstFile(dir, dirConfigFiles))
		}
	}

	if !opts.IgnoreProjectConfig {
		path, err := FindProjectConfig(ctx, workDir)
		if err != nil {
			return nil, err
		}
		add(SourceProject, path)
	}

	add(SourceExplicit, opts.ExplicitPath)

	return layers, nil
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(cmp.Or(os.Getenv("ProgramData"), `C:\ProgramData`), appName)
	}
	return filepath.Join("/etc", appName)
}

// UserConfigDir returns $XDG_CONFIG_HOME/textanalyzer, falling back to
// ~/.config/textanalyzer.
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// FindProjectConfig walks up from startDir and returns the first project
// config file it meets. The walk ends at a VCS root, the home directory or
// the filesystem root; "" means nothing was found.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	dir, err := filepath.Abs(cmp.Or(startDir, "."))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}

		if path := firstFile(dir, projectConfigFiles); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir || dir == home || hasVCSMarker(dir) {
			return "", nil
		}
		dir = parent
	}
}

func firstFile(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

func hasVCSMarker(dir string) bool {
	for _, marker := range vcsRootMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
