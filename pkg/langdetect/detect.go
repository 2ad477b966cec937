// Package langdetect maps files and text snippets to the language names used
// by the strategy registry. It uses go-enry for extension, filename, shebang
// and classifier based detection.
package langdetect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names produced by detection.
const (
	LangGo         = "go"
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangJSON       = "json"
	LangShell      = "shell"
	LangMarkdown   = "markdown"
	LangYAML       = "yaml"
	LangText       = "text"
)

// classifierCandidates limits the enry classifier to languages worth telling apart.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"JSON", "YAML", "Markdown", "Ruby", "Rust", "C",
}

// known holds the names detection may settle on from an ambiguous extension.
var known = map[string]bool{
	LangGo: true, LangPython: true, LangJavaScript: true, LangJSON: true,
	LangShell: true, LangMarkdown: true, LangYAML: true,
}

// ForFile returns the language of a file. The path decides first
// (extension, then well-known file names); content is only consulted when
// the path is ambiguous.
func ForFile(path string, content []byte) string {
	base := filepath.Base(path)

	if lang, safe := enry.GetLanguageByExtension(base); safe && lang != "" {
		return normalize(lang)
	}

	// enry lists every language sharing an extension, e.g. JSON and its
	// dialects for .json.
	for _, lang := range enry.GetLanguagesByExtension(base, content, nil) {
		if name := normalize(lang); known[name] {
			return name
		}
	}

	if lang, safe := enry.GetLanguageByFilename(base); safe && lang != "" {
		return normalize(lang)
	}

	return Detect(content)
}

// Detect returns the language of a snippet, or "text" when unsure.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return LangText
	}

	// Shebang is the most reliable signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if lang := detectByPattern(content); lang != "" {
		return lang
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return LangText
}

// IsBinary reports whether content looks like a binary file.
func IsBinary(content []byte) bool {
	return enry.IsBinary(content)
}

// IsVendored reports whether path lies in a vendored or generated-dependency
// directory such as node_modules or vendor.
func IsVendored(path string) bool {
	return enry.IsVendor(filepath.ToSlash(path))
}

func detectByPattern(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	text := string(content)

	switch {
	case bytes.HasPrefix(trimmed, []byte("package ")):
		return LangGo
	case looksLikePython(text):
		return LangPython
	case looksLikeJSON(trimmed):
		return LangJSON
	case looksLikeMarkdown(trimmed):
		return LangMarkdown
	case looksLikeJavaScript(text):
		return LangJavaScript
	}

	return ""
}

func looksLikePython(text string) bool {
	if strings.Contains(text, "def ") && strings.Contains(text, "):") {
		return true
	}
	if strings.Contains(text, "__name__") || strings.Contains(text, "__main__") {
		return true
	}
	// Go uses "import (" and JavaScript "import x from"; Python imports stand alone.
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "import ") && !strings.Contains(text, "import (") &&
		!strings.Contains(text, " from '") && !strings.Contains(text, ` from "`)
}

func looksLikeJSON(trimmed []byte) bool {
	return (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.Contains(trimmed, []byte(`"`))
}

func looksLikeMarkdown(trimmed []byte) bool {
	return bytes.HasPrefix(trimmed, []byte("# ")) ||
		bytes.HasPrefix(trimmed, []byte("## ")) ||
		bytes.Contains(trimmed, []byte("\n```"))
}

func looksLikeJavaScript(text string) bool {
	return strings.Contains(text, "=>") ||
		strings.Contains(text, "const ") ||
		strings.Contains(text, "let ") ||
		strings.Contains(text, "console.log")
}

// normalize converts go-enry language names to registry names.
func normalize(lang string) string {
	switch lang {
	case "Shell":
		return LangShell
	case "Text":
		return LangText
	case "JSON with Comments":
		return LangJSON
	default:
		return strings.ToLower(lang)
	}
}
