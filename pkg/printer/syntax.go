// Package printer renders trees back to source text. The spelling of
// keywords and operators comes from a SyntaxTable and the layout from a
// FormatConfig, so one tree can be shown in whichever surface syntax the
// host parser accepts. Rendering never affects execution.
package printer

import "strings"

// SyntaxTable maps canonical keywords and operator symbols to the spelling
// a surface syntax uses. Missing entries render with their canonical form.
type SyntaxTable struct {
	Keywords  map[string]string
	Operators map[string]string
}

// DefaultSyntax spells every token canonically.
func DefaultSyntax() *SyntaxTable {
	return &SyntaxTable{}
}

func (s *SyntaxTable) keyword(k string) string {
	if s != nil {
		if spelled, ok := s.Keywords[k]; ok {
			return spelled
		}
	}
	return k
}

func (s *SyntaxTable) operator(sym string) string {
	if s != nil {
		if spelled, ok := s.Operators[sym]; ok {
			return spelled
		}
	}
	return sym
}

// FormatConfig controls layout.
type FormatConfig struct {
	// Indent is the number of spaces per level; zero means four.
	Indent int
	// Tabs indents with one tab per level instead of spaces.
	Tabs bool
	// BraceNewline puts the opening brace of a block on its own line.
	BraceNewline bool
	// OperatorSpacing surrounds binary and assignment operators with spaces.
	OperatorSpacing bool
}

// DefaultFormat is four-space indentation with spaced operators.
func DefaultFormat() FormatConfig {
	return FormatConfig{Indent: 4, OperatorSpacing: true}
}

func (c FormatConfig) unit() string {
	if c.Tabs {
		return "\t"
	}
	n := c.Indent
	if n <= 0 {
		n = 4
	}
	return strings.Repeat(" ", n)
}
