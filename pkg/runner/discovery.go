package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/textanalyzer/pkg/langdetect"
)

// Discover finds the files opts selects. It returns sorted, deduplicated
// absolute paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := newDiscoverer(ctx, opts, workDir)

	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if info.IsDir() {
			if err := d.walk(abs); err != nil {
				return nil, err
			}
			continue
		}

		// Explicit files bypass the extension filter.
		if d.selected(abs, false) {
			d.add(abs)
		}
	}

	slices.Sort(d.files)

	return d.files, nil
}

type discoverer struct {
	ctx        context.Context //nolint:containedctx // scoped to one Discover call
	opts       Options
	workDir    string
	extensions map[string]struct{}
	seen       map[string]struct{}
	files      []string
}

func newDiscoverer(ctx context.Context, opts Options, workDir string) *discoverer {
	d := &discoverer{
		ctx:        ctx,
		opts:       opts,
		workDir:    workDir,
		extensions: make(map[string]struct{}),
		seen:       make(map[string]struct{}),
	}
	for _, ext := range opts.effectiveExtensions() {
		d.extensions[strings.ToLower(ext)] = struct{}{}
	}
	return d
}

// Matcher applies the selection rules of Discover to one path at a time,
// for callers such as file watchers that learn about files individually.
type Matcher struct {
	d *discoverer
}

// NewMatcher creates a Matcher for opts. Paths are ignored.
func NewMatcher(opts Options) (*Matcher, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return &Matcher{d: newDiscoverer(context.Background(), opts, workDir)}, nil
}

// Match reports whether a directory walk from the working directory would
// select path: extension, globs, hidden and vendored rules all apply.
func (m *Matcher) Match(path string) bool {
	rel := m.d.rel(path)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return m.d.selected(path, true)
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return m.d.selected(path, true) && !m.d.vendored(m.d.workDir, path, false)
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

func (d *discoverer) add(path string) {
	if _, ok := d.seen[path]; ok {
		return
	}
	d.seen[path] = struct{}{}
	d.files = append(d.files, path)
}

func (d *discoverer) rel(path string) string {
	rel, err := filepath.Rel(d.workDir, path)
	if err != nil {
		return path
	}
	return rel
}

// walk collects matching files below root. Hidden entries are skipped;
// directory symlinks are followed only with FollowSymlinks.
func (d *discoverer) walk(root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := d.ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		if path != root && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			if path == root {
				return nil
			}
			if matchesAny(d.rel(path), d.opts.ExcludeGlobs) || d.vendored(root, path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, err := os.Stat(target)
			if err != nil {
				return nil //nolint:nilerr // unreadable targets are skipped
			}
			if info.IsDir() {
				if !d.opts.FollowSymlinks {
					return nil
				}
				// Walk the target; WalkDir does not descend through a symlinked root.
				return d.walk(target)
			}
		}

		if d.selected(path, true) && !d.vendored(root, path, false) {
			d.add(path)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}

	return nil
}

// selected applies the extension filter (when checkExt) and the globs.
func (d *discoverer) selected(path string, checkExt bool) bool {
	if checkExt {
		if _, ok := d.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return false
		}
	}

	rel := d.rel(path)
	if matchesAny(rel, d.opts.ExcludeGlobs) {
		return false
	}
	if len(d.opts.IncludeGlobs) > 0 && !matchesAny(rel, d.opts.IncludeGlobs) {
		return false
	}

	return true
}

// vendored classifies path relative to the walk root.
func (d *discoverer) vendored(root, path string, isDir bool) bool {
	if d.opts.IncludeVendored {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if isDir {
		rel += "/"
	}
	return langdetect.IsVendored(rel)
}

func matchesAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(rel, pattern) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated relative path. Patterns without "**"
// match the whole path or its base name; "**" spans directories.
func matchGlob(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	if strings.Contains(pattern, "**") {
		return matchDoubleStar(path, pattern)
	}

	if ok, err := filepath.Match(pattern, path); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(pattern, filepath.Base(path))
	return err == nil && ok
}

func matchDoubleStar(path, pattern string) bool {
	prefix, suffix, _ := strings.Cut(pattern, "**")
	prefix = strings.TrimSuffix(prefix, "/")
	suffix = strings.TrimPrefix(suffix, "/")

	switch {
	case prefix == "" && suffix == "":
		return true

	case prefix == "":
		// "**/name": any trailing subpath or component.
		segments := strings.Split(path, "/")
		for i := range segments {
			if ok, err := filepath.Match(suffix, strings.Join(segments[i:], "/")); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(suffix, segments[i]); err == nil && ok {
				return true
			}
		}
		return false

	case suffix == "":
		// "dir/**": everything under dir.
		return path == prefix || strings.HasPrefix(path, prefix+"/")

	default:
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			return false
		}
		rest := strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
		return matchDoubleStar(rest, "**/"+suffix)
	}
}
