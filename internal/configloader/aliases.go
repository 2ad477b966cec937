package configloader

import (
	"slices"
	"strings"
)

// languageAliases maps common alternative spellings to registry language names.
//
//nolint:gochecknoglobals // Read-only lookup table.
var languageAliases = map[string]string{
	"golang":     "go",
	"py":         "python",
	"python3":    "python",
	"js":         "javascript",
	"node":       "javascript",
	"ecmascript": "javascript",
	"sh":         "shell",
	"bash":       "shell",
	"zsh":        "shell",
	"md":         "markdown",
	"gfm":        "markdown",
	"txt":        "text",
	"plaintext":  "text",
}

// NormalizeLanguage returns the canonical language name for key. Unknown
// names are lowercased and returned as-is.
func NormalizeLanguage(key string) string {
	lower := strings.ToLower(strings.TrimSpace(key))
	if canonical, ok := languageAliases[lower]; ok {
		return canonical
	}
	return lower
}

// AliasesFor returns the aliases that resolve to language, sorted.
func AliasesFor(language string) []string {
	var aliases []string
	for alias, canonical := range languageAliases {
		if canonical == language {
			aliases = append(aliases, alias)
		}
	}
	slices.Sort(aliases)
	return aliases
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
