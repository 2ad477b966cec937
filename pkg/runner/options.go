// Package runner analyzes many files at once: it discovers them, resolves each
// to a language, runs an engine per file and collects the results.
package runner

import (
	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/strategy"
)

// Options controls discovery and analysis of a file set.
type Options struct {
	// Paths are the user-specified files or directories.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir resolves relative Paths and anchors glob matching.
	// If empty, the process working directory is used.
	WorkingDir string

	// Extensions restricts directory walks to these extensions (lowercase,
	// leading dot). Empty means DefaultExtensions(). Files named explicitly
	// in Paths are analyzed whatever their extension.
	Extensions []string

	// IncludeGlobs, when set, keep only files matching at least one glob.
	IncludeGlobs []string

	// ExcludeGlobs skip matching files and directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// IncludeVendored keeps files enry classifies as vendored (node_modules,
	// vendor/, third_party/ ...). They are skipped by default.
	IncludeVendored bool

	// Jobs bounds concurrent analyses. 0 or negative means runtime.NumCPU().
	Jobs int

	// Config is the resolved configuration for this run. Nil means defaults.
	Config *config.Config
}

// DefaultExtensions returns every extension claimed by a built-in language.
func DefaultExtensions() []string {
	return strategy.NewRegistry().Extensions()
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

func (o Options) effectiveConfig() *config.Config {
	if o.Config == nil {
		return config.NewConfig()
	}
	return o.Config
}
