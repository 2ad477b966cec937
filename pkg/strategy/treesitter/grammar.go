package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// Grammar maps the node types of a tree-sitter language onto styles,
// folds and labels.
type Grammar struct {
	// Name identifies the grammar, usually the language name.
	Name string

	// Language is the compiled tree-sitter language.
	Language *sitter.Language

	// Styles maps node types to the style of their whole text. Styled nodes
	// are not descended into. Anonymous node types (keywords) only match
	// leaves.
	Styles map[string]textmodel.Style

	// NameStyles styles the "name" field of the given node types.
	NameStyles map[string]textmodel.Style

	// Folds lists node types that become fold blocks when they span lines.
	Folds map[string]bool

	// Labels maps node types to label kinds; the label text is the node's
	// "name" field.
	Labels map[string]string
}

func keywords(style textmodel.Style, styles map[string]textmodel.Style, words ...string) map[string]textmodel.Style {
	for _, w := range words {
		styles[w] = style
	}
	return styles
}

func set(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

// Go returns the grammar for Go source.
func Go() *Grammar {
	styles := map[string]textmodel.Style{
		"comment":                    textmodel.StyleComment,
		"interpreted_string_literal": textmodel.StyleString,
		"raw_string_literal":         textmodel.StyleString,
		"rune_literal":               textmodel.StyleString,
		"int_literal":                textmodel.StyleNumber,
		"float_literal":              textmodel.StyleNumber,
		"imaginary_literal":          textmodel.StyleNumber,
		"true":                       textmodel.StyleLiteral,
		"false":                      textmodel.StyleLiteral,
		"nil":                        textmodel.StyleLiteral,
		"iota":                       textmodel.StyleLiteral,
		"type_identifier":            textmodel.StyleType,
	}
	keywords(textmodel.StyleKeyword, styles,
		"break", "case", "chan", "const", "continue", "default", "defer", "else",
		"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
		"map", "package", "range", "return", "select", "struct", "switch", "type", "var")

	return &Grammar{
		Name:     "go",
		Language: golang.GetLanguage(),
		Styles:   styles,
		NameStyles: map[string]textmodel.Style{
			"function_declaration": textmodel.StyleFunction,
			"method_declaration":   textmodel.StyleFunction,
		},
		Folds: set("block", "field_declaration_list", "interface_type",
			"import_spec_list", "literal_value", "const_declaration", "var_declaration"),
		Labels: map[string]string{
			"function_declaration": "function",
			"method_declaration":   "method",
			"type_spec":            "type",
		},
	}
}

// Python returns the grammar for Python source.
func Python() *Grammar {
	styles := map[string]textmodel.Style{
		"comment":   textmodel.StyleComment,
		"string":    textmodel.StyleString,
		"integer":   textmodel.StyleNumber,
		"float":     textmodel.StyleNumber,
		"true":      textmodel.StyleLiteral,
		"false":     textmodel.StyleLiteral,
		"none":      textmodel.StyleLiteral,
		"decorator": textmodel.StyleFunction,
	}
	keywords(textmodel.StyleKeyword, styles,
		"and", "as", "assert", "async", "await", "break", "class", "continue",
		"def", "del", "elif", "else", "except", "finally", "for", "from", "global",
		"if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass",
		"raise", "return", "try", "while", "with", "yield")

	return &Grammar{
		Name:     "python",
		Language: python.GetLanguage(),
		Styles:   styles,
		NameStyles: map[string]textmodel.Style{
			"function_definition": textmodel.StyleFunction,
			"class_definition":    textmodel.StyleType,
		},
		Folds: set("function_definition", "class_definition", "if_statement",
			"for_statement", "while_statement", "with_statement", "try_statement",
			"dictionary", "list"),
		Labels: map[string]string{
			"function_definition": "function",
			"class_definition":    "class",
		},
	}
}

// JavaScript returns the grammar for JavaScript source.
func JavaScript() *Grammar {
	styles := map[string]textmodel.Style{
		"comment":         textmodel.StyleComment,
		"string":          textmodel.StyleString,
		"template_string": textmodel.StyleString,
		"regex":           textmodel.StyleString,
		"number":          textmodel.StyleNumber,
		"true":            textmodel.StyleLiteral,
		"false":           textmodel.StyleLiteral,
		"null":            textmodel.StyleLiteral,
		"undefined":       textmodel.StyleLiteral,
		"this":            textmodel.StyleLiteral,
	}
	keywords(textmodel.StyleKeyword, styles,
		"async", "await", "break", "case", "catch", "class", "const", "continue",
		"default", "delete", "do", "else", "export", "extends", "finally", "for",
		"from", "function", "if", "import", "in", "instanceof", "let", "new", "of",
		"return", "switch", "throw", "try", "typeof", "var", "void", "while", "yield")

	return &Grammar{
		Name:     "javascript",
		Language: javascript.GetLanguage(),
		Styles:   styles,
		NameStyles: map[string]textmodel.Style{
			"function_declaration": textmodel.StyleFunction,
			"method_definition":    textmodel.StyleFunction,
			"class_declaration":    textmodel.StyleType,
		},
		Folds: set("statement_block", "class_body", "object", "array"),
		Labels: map[string]string{
			"function_declaration": "function",
			"method_definition":    "method",
			"class_declaration":    "class",
		},
	}
}

// Grammars returns every built-in grammar keyed by name.
func Grammars() map[string]*Grammar {
	all := []*Grammar{Go(), Python(), JavaScript()}

	byName := make(map[string]*Grammar, len(all))
	for _, g := range all {
		byName[g.Name] = g
	}
	return byName
}
