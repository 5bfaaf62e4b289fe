package directive

import "strings"

// Scanner is a byte cursor over a raw model response. It knows nothing
// about directive semantics; it only provides the character-level
// primitives the parser is built from.
type Scanner struct {
	input string
	pos   int // current position in input (points to next unread char)
	line  int // current line number (1-indexed)
}

// NewScanner creates a scanner positioned at the start of input.
func NewScanner(input string) *Scanner {
	return &Scanner{input: input, line: 1}
}

// EOF reports whether the cursor is past the end of the input.
func (s *Scanner) EOF() bool {
	return s.pos >= len(s.input)
}

// Peek returns the character under the cursor, or 0 at end of input.
func (s *Scanner) Peek() byte {
	if s.pos >= len(s.input) {
		return 0
	}
	return s.input[s.pos]
}

// Next consumes and returns the character under the cursor, or 0 at
// end of input.
func (s *Scanner) Next() byte {
	if s.pos >= len(s.input) {
		return 0
	}
	ch := s.input[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
	}
	return ch
}

// HasPrefix reports whether literal matches at the cursor without
// consuming anything.
func (s *Scanner) HasPrefix(literal string) bool {
	return strings.HasPrefix(s.input[s.pos:], literal)
}

// NextUntil consumes and returns characters up to (not including) the
// first character in delims, leaving the cursor on the delimiter. It
// consumes the rest of the input if no delimiter occurs.
func (s *Scanner) NextUntil(delims string) string {
	start := s.pos
	for s.pos < len(s.input) && !strings.ContainsRune(delims, rune(s.input[s.pos])) {
		if s.input[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
	return s.input[start:s.pos]
}

// SkipWhitespace consumes characters with code point <= 32.
func (s *Scanner) SkipWhitespace() {
	for s.pos < len(s.input) && s.input[s.pos] <= ' ' {
		if s.input[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
}

// Line returns the 1-indexed line number at the cursor.
func (s *Scanner) Line() int {
	return s.line
}

// Mark captures the cursor so a failed parse can rewind.
type Mark struct {
	pos  int
	line int
}

// Mark returns the current cursor state.
func (s *Scanner) Mark() Mark {
	return Mark{pos: s.pos, line: s.line}
}

// Reset rewinds the cursor to a previously captured mark.
func (s *Scanner) Reset(m Mark) {
	s.pos = m.pos
	s.line = m.line
}

// ParseArguments tokenizes a parenthesized argument list. The cursor
// must be on the opening '('. Each returned element is the raw
// substring of one argument, quotes and escape backslashes intact; no
// evaluation or unescaping happens here. Commas split arguments only
// at nesting depth zero, and quoted spans (double quote, backtick, or
// single quote, with backslash escaping the following character) are
// scanned verbatim.
//
// Returns ok=false when the list is unterminated (end of input before
// the closing ')'); the argument slice is empty in that case so a
// malformed directive degrades instead of aborting the parse.
func (s *Scanner) ParseArguments() (args []string, ok bool) {
	if s.Peek() != '(' {
		return nil, false
	}
	s.Next()
	s.SkipWhitespace()
	if s.Peek() == ')' {
		s.Next()
		return nil, true
	}

	depth := 0
	start := s.pos
	flush := func(end int) {
		arg := strings.TrimRight(s.input[start:end], " \t")
		args = append(args, arg)
	}

	for !s.EOF() {
		ch := s.Peek()
		switch ch {
		case '(':
			depth++
			s.Next()
		case ')':
			if depth == 0 {
				flush(s.pos)
				s.Next()
				return args, true
			}
			depth--
			s.Next()
		case ',':
			if depth == 0 {
				flush(s.pos)
				s.Next()
				s.SkipWhitespace()
				start = s.pos
			} else {
				s.Next()
			}
		case '"', '`', '\'':
			if !s.scanQuoted(ch) {
				return nil, false
			}
		default:
			s.Next()
		}
	}
	// Ran off the end before the closing paren.
	return nil, false
}

// scanQuoted consumes a quoted span verbatim, starting at the opening
// quote. A backslash escapes the following character (both are
// consumed, neither is interpreted). Returns false when the span never
// closes.
func (s *Scanner) scanQuoted(quote byte) bool {
	s.Next()
	for !s.EOF() {
		ch := s.Next()
		if ch == '\\' {
			if s.EOF() {
				return false
			}
			s.Next()
			continue
		}
		if ch == quote {
			return true
		}
	}
	return false
}
