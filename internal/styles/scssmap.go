package styles

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMapNotFound means the stylesheet has no `$name: (...)` declaration.
	ErrMapNotFound = errors.New("scss map not found")
	// ErrUnterminatedMap means the map's parentheses or strings never close.
	ErrUnterminatedMap = errors.New("scss map not terminated")
)

// MapKeys returns the top-level keys of the SCSS map variable $name in source
// order, without duplicates. Keys may be quoted or bare; nested maps,
// comments and url(...) values are skipped.
//
//	$people-themes: (
//	  'classic': (bg: #fff),   // -> "classic"
//	  "modern": $modern,       // -> "modern"
//	);
func MapKeys(src, name string) ([]string, error) {
	s := &scanner{src: src}
	if !s.seekMap(name) {
		return nil, fmt.Errorf("%w: $%s", ErrMapNotFound, name)
	}

	var keys []string
	seen := make(map[string]bool)
	add := func(key string) {
		if key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	depth := 1
	expectKey := true
	for {
		s.skipSpaceAndComments()
		if s.eof() {
			return keys, fmt.Errorf("%w: $%s", ErrUnterminatedMap, name)
		}

		c := s.src[s.pos]
		switch {
		case c == '(':
			depth++
			s.pos++
			expectKey = false
		case c == ')':
			depth--
			s.pos++
			if depth == 0 {
				return keys, nil
			}
		case c == ',':
			s.pos++
			if depth == 1 {
				expectKey = true
			}
		case c == '"' || c == '\'':
			str, ok := s.readString()
			if !ok {
				return keys, fmt.Errorf("%w: $%s", ErrUnterminatedMap, name)
			}
			if depth == 1 && expectKey && s.keyFollows() {
				add(str)
			}
			expectKey = false
		case s.atURL():
			if !s.skipURL() {
				return keys, fmt.Errorf("%w: $%s", ErrUnterminatedMap, name)
			}
			expectKey = false
		case depth == 1 && expectKey && isIdentByte(c):
			ident := s.readIdent()
			if s.keyFollows() {
				add(ident)
			}
			expectKey = false
		default:
			s.pos++
			if depth == 1 {
				expectKey = false
			}
		}
	}
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpaceAndComments() {
	for !s.eof() {
		switch {
		case strings.HasPrefix(s.src[s.pos:], "//"):
			if i := strings.IndexByte(s.src[s.pos:], '\n'); i >= 0 {
				s.pos += i + 1
			} else {
				s.pos = len(s.src)
			}
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			if i := strings.Index(s.src[s.pos+2:], "*/"); i >= 0 {
				s.pos += i + 4
			} else {
				s.pos = len(s.src)
			}
		case isSpace(s.src[s.pos]):
			s.pos++
		default:
			return
		}
	}
}

// seekMap moves past the opening parenthesis of `$name: (`.
func (s *scanner) seekMap(name string) bool {
	for {
		s.skipSpaceAndComments()
		if s.eof() {
			return false
		}
		switch c := s.src[s.pos]; {
		case c == '"' || c == '\'':
			if _, ok := s.readString(); !ok {
				return false
			}
		case c == '$':
			s.pos++
			if s.readIdent() != name {
				continue
			}
			s.skipSpaceAndComments()
			if s.peek() != ':' {
				continue
			}
			s.pos++
			s.skipSpaceAndComments()
			if s.peek() != '(' {
				continue
			}
			s.pos++
			return true
		default:
			s.pos++
		}
	}
}

// readString consumes a quoted string starting at the quote and returns its
// contents.
func (s *scanner) readString() (string, bool) {
	quote := s.src[s.pos]
	var b strings.Builder
	for i := s.pos + 1; i < len(s.src); i++ {
		switch c := s.src[i]; c {
		case '\\':
			if i+1 < len(s.src) {
				i++
				b.WriteByte(s.src[i])
			}
		case quote:
			s.pos = i + 1
			return b.String(), true
		default:
			b.WriteByte(c)
		}
	}
	s.pos = len(s.src)
	return "", false
}

func (s *scanner) readIdent() string {
	start := s.pos
	for !s.eof() && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// keyFollows consumes a ':' after optional space, reporting whether it was
// there.
func (s *scanner) keyFollows() bool {
	s.skipSpaceAndComments()
	if s.peek() != ':' {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) atURL() bool {
	return len(s.src)-s.pos >= 4 && strings.EqualFold(s.src[s.pos:s.pos+4], "url(")
}

// skipURL consumes an unquoted url(...) whose body may contain "//".
func (s *scanner) skipURL() bool {
	i := strings.IndexByte(s.src[s.pos:], ')')
	if i < 0 {
		s.pos = len(s.src)
		return false
	}
	s.pos += i + 1
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
