// Package strategy assembles the built-in analysis strategies and resolves
// files to the language (and strategy) that should analyze them.
package strategy

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/langdetect"
	"github.com/yaklabco/textanalyzer/pkg/strategy/lexer"
	"github.com/yaklabco/textanalyzer/pkg/strategy/markdown"
	"github.com/yaklabco/textanalyzer/pkg/strategy/treesitter"
)

// Strategy kinds.
const (
	KindMarkdown   = "markdown"
	KindLexer      = "lexer"
	KindTreeSitter = "treesitter"
	KindPlain      = "plain"
)

// Registry errors.
var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownKind     = errors.New("unknown strategy kind")
	ErrDisabled        = errors.New("language disabled")
)

// LanguageSpec describes how one language is analyzed.
type LanguageSpec struct {
	Name       string
	Kind       string
	Extensions []string
	Enabled    bool
}

// Defaults returns the built-in language table.
func Defaults() []LanguageSpec {
	return []LanguageSpec{
		{Name: langdetect.LangMarkdown, Kind: KindMarkdown, Extensions: []string{".md", ".markdown", ".mdown"}, Enabled: true},
		{Name: langdetect.LangGo, Kind: KindTreeSitter, Extensions: []string{".go"}, Enabled: true},
		{Name: langdetect.LangPython, Kind: KindTreeSitter, Extensions: []string{".py", ".pyi"}, Enabled: true},
		{Name: langdetect.LangJavaScript, Kind: KindTreeSitter, Extensions: []string{".js", ".mjs", ".cjs"}, Enabled: true},
		{Name: langdetect.LangJSON, Kind: KindLexer, Extensions: []string{".json"}, Enabled: true},
		{Name: langdetect.LangShell, Kind: KindLexer, Extensions: []string{".sh", ".bash"}, Enabled: true},
		{Name: langdetect.LangText, Kind: KindPlain, Extensions: []string{".txt"}, Enabled: true},
	}
}

// Registry maps languages to strategies. Built strategies are cached and
// shared; every built-in strategy is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	languages map[string]LanguageSpec
	byExt     map[string]string
	built     map[string]analyzer.Strategy
	flavor    string
}

// NewRegistry creates a registry seeded with Defaults.
func NewRegistry() *Registry {
	r := &Registry{
		languages: make(map[string]LanguageSpec),
		byExt:     make(map[string]string),
		built:     make(map[string]analyzer.Strategy),
		flavor:    markdown.FlavorCommonMark,
	}
	for _, spec := range Defaults() {
		r.setLocked(spec)
	}
	return r
}

// SetMarkdownFlavor selects the Markdown block parser flavor.
func (r *Registry) SetMarkdownFlavor(flavor string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flavor = flavor
	delete(r.built, langdetect.LangMarkdown)
}

// Configure adds or replaces a language. Extensions claimed by the new spec
// move to it.
func (r *Registry) Configure(spec LanguageSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownLanguage)
	}
	if !validKind(spec.Kind) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.languages[spec.Name]; ok {
		for _, ext := range old.Extensions {
			if r.byExt[normalizeExt(ext)] == spec.Name {
				delete(r.byExt, normalizeExt(ext))
			}
		}
	}
	r.setLocked(spec)
	delete(r.built, spec.Name)

	return nil
}

// Languages returns every configured language sorted by name.
func (r *Registry) Languages() []LanguageSpec {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LanguageSpec, 0, len(r.languages))
	for _, spec := range r.languages {
		out = append(out, spec)
	}
	slices.SortFunc(out, func(a, b LanguageSpec) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Extensions returns the sorted extensions claimed by enabled languages.
func (r *Registry) Extensions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	exts := make([]string, 0, len(r.byExt))
	for ext, name := range r.byExt {
		if r.languages[name].Enabled {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}

// Lookup returns the language spec for name.
func (r *Registry) Lookup(name string) (LanguageSpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spec, ok := r.languages[name]
	return spec, ok
}

// Resolve picks the language for a file: configured extensions first, then
// detection from the path and content, falling back to plain text. It fails
// with ErrDisabled when the resolved language is turned off.
func (r *Registry) Resolve(path string, content []byte) (analyzer.Language, error) {
	name := r.languageFor(path, content)

	strategy, err := r.Strategy(name)
	if err != nil {
		return analyzer.Language{}, err
	}

	return analyzer.Language{
		Name:     name,
		Strategy: strategy,
		File:     analyzer.FileContext{Path: path, LanguageID: name},
	}, nil
}

// Strategy returns the (cached) strategy for a configured language.
func (r *Registry) Strategy(name string) (analyzer.Strategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spec, ok := r.languages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	if !spec.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrDisabled, name)
	}

	if s, ok := r.built[name]; ok {
		return s, nil
	}

	s, err := r.build(spec)
	if err != nil {
		return nil, err
	}
	r.built[name] = s

	return s, nil
}

func (r *Registry) languageFor(path string, content []byte) string {
	r.mu.Lock()
	name, ok := r.byExt[normalizeExt(filepath.Ext(path))]
	r.mu.Unlock()
	if ok {
		return name
	}

	detected := langdetect.ForFile(path, content)
	if _, ok := r.Lookup(detected); ok {
		return detected
	}

	return langdetect.LangText
}

func (r *Registry) build(spec LanguageSpec) (analyzer.Strategy, error) {
	switch spec.Kind {
	case KindMarkdown:
		return markdown.New(r.flavor), nil

	case KindLexer:
		l, ok := lexer.Languages()[spec.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no lexer for %q", ErrUnknownLanguage, spec.Name)
		}
		return l, nil

	case KindTreeSitter:
		g, ok := treesitter.Grammars()[spec.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no grammar for %q", ErrUnknownLanguage, spec.Name)
		}
		s, err := treesitter.New(g)
		if err != nil {
			return nil, err
		}
		return s, nil

	case KindPlain:
		return Plain(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
}

func (r *Registry) setLocked(spec LanguageSpec) {
	r.languages[spec.Name] = spec
	for _, ext := range spec.Extensions {
		r.byExt[normalizeExt(ext)] = spec.Name
	}
}

// Kinds returns the strategy kinds available for name.
func Kinds(name string) []string {
	var kinds []string
	if name == langdetect.LangMarkdown {
		kinds = append(kinds, KindMarkdown)
	}
	if _, ok := lexer.Languages()[name]; ok {
		kinds = append(kinds, KindLexer)
	}
	if _, ok := treesitter.Grammars()[name]; ok {
		kinds = append(kinds, KindTreeSitter)
	}
	return append(kinds, KindPlain)
}

func validKind(kind string) bool {
	switch kind {
	case KindMarkdown, KindLexer, KindTreeSitter, KindPlain:
		return true
	}
	return false
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
