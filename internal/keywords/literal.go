package keywords

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidLiteral = errors.New("invalid list literal")

// ParseList parses a flat list of quoted strings such as ["a", 'b',]. Only
// single or double quoted strings separated by commas are accepted; any other
// token rejects the whole literal.
func ParseList(s string) ([]string, error) {
	p := &literalParser{src: s}
	return p.parse()
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrInvalidLiteral, p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) parse() ([]string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return nil, p.errorf("expected '['")
	}
	p.pos++

	items := []string{}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated list")
		}
		if p.src[p.pos] == ']' {
			p.pos++
			break
		}

		item, err := p.parseString()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated list")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			p.skipSpace()
			if p.pos != len(p.src) {
				return nil, p.errorf("unexpected trailing input")
			}
			return items, nil
		default:
			return nil, p.errorf("expected ',' or ']', found %q", p.src[p.pos])
		}
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return items, nil
}

func (p *literalParser) parseString() (string, error) {
	quote := p.src[p.pos]
	if quote != '"' && quote != '\'' {
		return "", p.errorf("expected quoted string, found %q", quote)
	}
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\n':
			return "", p.errorf("newline in string")
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			esc := p.src[p.pos+1]
			switch esc {
			case '\\', '\'', '"':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				return "", p.errorf("unsupported escape \\%c", esc)
			}
			p.pos += 2
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}
