package lexer

import "github.com/yaklabco/textanalyzer/pkg/textmodel"

// Shared patterns.
const (
	doubleQuoted = `"(?:[^"\\]|\\.)*"`
	singleQuoted = `'(?:[^'\\]|\\.)*'`
	hexNumber    = `0[xX][0-9a-fA-F_]+\b`
	decNumber    = `\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?\b`
)

// Go returns a lexer for Go source.
func Go() *Lexer {
	return New("go").
		WithLineComment("//").
		AddMultiLine("/*", "*/", textmodel.StyleComment).
		AddMultiLine("`", "`", textmodel.StyleString).
		AddRule(doubleQuoted, textmodel.StyleString).
		AddRule(`'(?:[^'\\]|\\.)+'`, textmodel.StyleString).
		AddRule(hexNumber, textmodel.StyleNumber).
		AddRule(decNumber, textmodel.StyleNumber).
		AddKeywords(textmodel.StyleKeyword,
			"break", "case", "chan", "const", "continue", "default", "defer", "else",
			"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
			"map", "package", "range", "return", "select", "struct", "switch", "type", "var").
		AddKeywords(textmodel.StyleLiteral, "true", "false", "nil", "iota").
		AddKeywords(textmodel.StyleType,
			"bool", "byte", "complex64", "complex128", "error", "float32", "float64",
			"int", "int8", "int16", "int32", "int64", "rune", "string",
			"uint", "uint8", "uint16", "uint32", "uint64", "uintptr", "any").
		AddKeywords(textmodel.StyleFunction,
			"append", "cap", "clear", "close", "copy", "delete", "len", "make",
			"max", "min", "new", "panic", "print", "println", "recover").
		AddLabel(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`, "function").
		AddLabel(`^type\s+([A-Za-z_]\w*)`, "type")
}

// Python returns a lexer for Python source. Blocks fold by indentation.
func Python() *Lexer {
	return New("python").
		WithLineComment("#").
		WithFold(FoldIndent).
		AddMultiLine(`"""`, `"""`, textmodel.StyleString).
		AddMultiLine(`'''`, `'''`, textmodel.StyleString).
		AddRule(`[rbfuRBFU]{0,2}`+doubleQuoted, textmodel.StyleString).
		AddRule(`[rbfuRBFU]{0,2}`+singleQuoted, textmodel.StyleString).
		AddRule(`@[A-Za-z_][\w.]*`, textmodel.StyleFunction).
		AddRule(hexNumber, textmodel.StyleNumber).
		AddRule(decNumber, textmodel.StyleNumber).
		AddKeywords(textmodel.StyleKeyword,
			"and", "as", "assert", "async", "await", "break", "class", "continue",
			"def", "del", "elif", "else", "except", "finally", "for", "from", "global",
			"if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass",
			"raise", "return", "try", "while", "with", "yield").
		AddKeywords(textmodel.StyleLiteral, "True", "False", "None").
		AddKeywords(textmodel.StyleType,
			"bool", "bytes", "dict", "float", "int", "list", "object", "set", "str", "tuple").
		AddKeywords(textmodel.StyleFunction,
			"abs", "enumerate", "isinstance", "len", "open", "print", "range",
			"sorted", "super", "zip").
		AddLabel(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`, "function").
		AddLabel(`^\s*class\s+([A-Za-z_]\w*)`, "type")
}

// JSON returns a lexer for JSON documents. Object keys are styled as
// identifiers.
func JSON() *Lexer {
	return New("json").
		AddRule(doubleQuoted+`(?:\s*:)`, textmodel.StyleIdentifier).
		AddRule(doubleQuoted, textmodel.StyleString).
		AddRule(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`, textmodel.StyleNumber).
		AddKeywords(textmodel.StyleLiteral, "true", "false", "null")
}

// Shell returns a lexer for POSIX shell scripts.
func Shell() *Lexer {
	return New("shell").
		WithLineComment("#").
		AddRule(doubleQuoted, textmodel.StyleString).
		AddRule(`'[^']*'`, textmodel.StyleString).
		AddRule(`\$\{[^}]*\}|\$[A-Za-z_]\w*|\$[0-9@#?$!*-]`, textmodel.StyleIdentifier).
		AddRule(decNumber, textmodel.StyleNumber).
		AddKeywords(textmodel.StyleKeyword,
			"case", "do", "done", "elif", "else", "esac", "fi", "for", "function",
			"if", "in", "local", "return", "select", "then", "until", "while").
		AddKeywords(textmodel.StyleFunction,
			"cd", "echo", "eval", "exec", "exit", "export", "printf", "read",
			"set", "shift", "source", "test", "trap", "unset").
		AddLabel(`^\s*(?:function\s+)?([A-Za-z_][\w-]*)\s*\(\)`, "function")
}

// Languages returns every built-in lexer keyed by language name.
func Languages() map[string]*Lexer {
	all := []*Lexer{Go(), Python(), JSON(), Shell()}

	byName := make(map[string]*Lexer, len(all))
	for _, l := range all {
		byName[l.Language()] = l
	}
	return byName
}
