package textmodel

import "fmt"

// Style classifies a styled run within a line.
type Style uint16

// Styles shared by every strategy. Renderers map them to colors.
const (
	StyleNormal Style = iota
	StyleKeyword
	StyleIdentifier
	StyleFunction
	StyleType
	StyleString
	StyleNumber
	StyleComment
	StyleOperator
	StylePunctuation
	StyleLiteral // true, nil, None, ...

	StyleHeading    // '#' marker and heading text
	StyleEmphasis   // '*', '_' runs
	StyleCode       // code spans and fenced code
	StyleLink       // link and image brackets, destinations
	StyleListMarker // '-', '1.'
	StyleQuote      // '>'
	StyleHTML       // raw HTML
	StyleEscape     // '\' + char
	StyleRule       // thematic break

	StyleError

	styleCount
)

//nolint:gochecknoglobals // lookup table
var styleNames = [styleCount]string{
	StyleNormal:      "normal",
	StyleKeyword:     "keyword",
	StyleIdentifier:  "identifier",
	StyleFunction:    "function",
	StyleType:        "type",
	StyleString:      "string",
	StyleNumber:      "number",
	StyleComment:     "comment",
	StyleOperator:    "operator",
	StylePunctuation: "punctuation",
	StyleLiteral:     "literal",
	StyleHeading:     "heading",
	StyleEmphasis:    "emphasis",
	StyleCode:        "code",
	StyleLink:        "link",
	StyleListMarker:  "list-marker",
	StyleQuote:       "quote",
	StyleHTML:        "html",
	StyleEscape:      "escape",
	StyleRule:        "rule",
	StyleError:       "error",
}

// String returns the lower-case name of the style.
func (s Style) String() string {
	if s < styleCount {
		return styleNames[s]
	}
	return fmt.Sprintf("Style(%d)", uint16(s))
}

// MarshalText implements encoding.TextMarshaler so styles serialize by name.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStyle returns the style with the given name.
func ParseStyle(name string) (Style, error) {
	for i, n := range styleNames {
		if n == name {
			return Style(i), nil
		}
	}
	return StyleNormal, fmt.Errorf("unknown style %q", name)
}

// Styles returns every defined style in declaration order.
func Styles() []Style {
	out := make([]Style, 0, styleCount)
	for s := StyleNormal; s < styleCount; s++ {
		out = append(out, s)
	}
	return out
}
