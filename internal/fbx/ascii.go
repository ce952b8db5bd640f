package fbx

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokString
	tokNumber
	tokWord
	tokComma
	tokOpen
	tokClose
	tokStar
)

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	src  []byte
	off  int
	line int
}

func looksASCII(data []byte) bool {
	l := &lexer{src: data, line: 1}
	l.skipSpace()
	if l.off >= len(l.src) {
		return false
	}
	t, err := l.next()
	return err == nil && t.kind == tokName
}

func (l *lexer) skipSpace() {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == '\n':
			l.line++
			l.off++
		case c == ' ' || c == '\t' || c == '\r':
			l.off++
		case c == ';':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.off++
			}
		default:
			return
		}
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c == '|' || c == '-' || c == '+' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.off >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}
	line := l.line
	c := l.src[l.off]
	switch c {
	case ',':
		l.off++
		return token{tokComma, ",", line}, nil
	case '{':
		l.off++
		return token{tokOpen, "{", line}, nil
	case '}':
		l.off++
		return token{tokClose, "}", line}, nil
	case '*':
		l.off++
		start := l.off
		for l.off < len(l.src) && l.src[l.off] >= '0' && l.src[l.off] <= '9' {
			l.off++
		}
		return token{tokStar, string(l.src[start:l.off]), line}, nil
	case '"':
		l.off++
		start := l.off
		for l.off < len(l.src) && l.src[l.off] != '"' {
			if l.src[l.off] == '\n' {
				l.line++
			}
			l.off++
		}
		if l.off >= len(l.src) {
			return token{}, fmt.Errorf("fbx: line %d: unterminated string", line)
		}
		s := string(l.src[start:l.off])
		l.off++
		return token{tokString, unescapeASCII(s), line}, nil
	}
	if !isWordByte(c) {
		r, _ := utf8.DecodeRune(l.src[l.off:])
		return token{}, fmt.Errorf("fbx: line %d: unexpected %q", line, r)
	}
	start := l.off
	for l.off < len(l.src) && isWordByte(l.src[l.off]) {
		l.off++
	}
	text := string(l.src[start:l.off])
	if l.off < len(l.src) && l.src[l.off] == ':' {
		l.off++
		return token{tokName, text, line}, nil
	}
	if first, _ := utf8.DecodeRuneInString(text); unicode.IsDigit(first) || first == '-' || first == '+' || first == '.' {
		return token{tokNumber, text, line}, nil
	}
	return token{tokWord, text, line}, nil
}

// unescapeASCII undoes the &quot; style escaping some exporters emit.
func unescapeASCII(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return strings.NewReplacer("&quot;", `"`, "&cr;", "\r", "&lf;", "\n").Replace(s)
}

type parser struct {
	lex *lexer
	tok token
}

func decodeASCII(data []byte) (*Node, error) {
	p := &parser{lex: &lexer{src: data, line: 1}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root := &Node{}
	for p.tok.kind != tokEOF {
		n, err := p.node()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, n)
	}
	root.Properties = []Property{{'I', int32(Version(&Node{Children: root.Children}))}}
	return root, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("fbx: line %d: %s", p.tok.line, fmt.Sprintf(format, args...))
}

// node parses `Name: values {children}` with the current token on Name.
func (p *parser) node() (*Node, error) {
	if p.tok.kind != tokName {
		return nil, p.errorf("expected record name, got %q", p.tok.text)
	}
	n := &Node{Name: p.tok.text}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.kind == tokStar {
		arr, err := p.array()
		if err != nil {
			return nil, err
		}
		n.Properties = append(n.Properties, arr)
		return n, nil
	}

	if isValue(p.tok.kind) {
		for {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			n.Properties = append(n.Properties, v)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			if !isValue(p.tok.kind) {
				return nil, p.errorf("expected value after comma in %s", n.Name)
			}
		}
	}

	if p.tok.kind == tokOpen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.tok.kind != tokClose {
			if p.tok.kind == tokEOF {
				return nil, p.errorf("unterminated block %s", n.Name)
			}
			c, err := p.node()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func isValue(k tokenKind) bool {
	return k == tokString || k == tokNumber || k == tokWord
}

func (p *parser) value() (Property, error) {
	t := p.tok
	if err := p.advance(); err != nil {
		return Property{}, err
	}
	switch t.kind {
	case tokString:
		return Property{'S', t.text}, nil
	case tokWord:
		return Property{'S', t.text}, nil
	}
	if i, err := strconv.ParseInt(t.text, 10, 64); err == nil {
		return Property{'L', i}, nil
	}
	f, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		return Property{}, fmt.Errorf("fbx: line %d: bad number %q", t.line, t.text)
	}
	return Property{'D', f}, nil
}

// array parses `*N { a: v, v, ... }`. Integer-only arrays decode as int64,
// anything else as float64.
func (p *parser) array() (Property, error) {
	count, err := strconv.Atoi(p.tok.text)
	if err != nil || count < 0 {
		return Property{}, p.errorf("bad array length %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return Property{}, err
	}
	if p.tok.kind != tokOpen {
		return Property{}, p.errorf("expected { after *%d", count)
	}
	if err := p.advance(); err != nil {
		return Property{}, err
	}
	var ints []int64
	var floats []float64
	isFloat := false
	if p.tok.kind == tokName && p.tok.text == "a" {
		if err := p.advance(); err != nil {
			return Property{}, err
		}
		for p.tok.kind == tokNumber {
			t := p.tok.text
			if len(ints)+len(floats) >= count {
				return Property{}, p.errorf("array declares %d elements, has more", count)
			}
			if !isFloat {
				if i, err := strconv.ParseInt(t, 10, 64); err == nil {
					ints = append(ints, i)
				} else {
					isFloat = true
					floats = make([]float64, len(ints), len(ints)+1)
					for k, v := range ints {
						floats[k] = float64(v)
					}
					ints = nil
				}
			}
			if isFloat {
				f, err := strconv.ParseFloat(t, 64)
				if err != nil {
					return Property{}, p.errorf("bad number %q", t)
				}
				floats = append(floats, f)
			}
			if err := p.advance(); err != nil {
				return Property{}, err
			}
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return Property{}, err
			}
		}
	}
	if p.tok.kind != tokClose {
		return Property{}, p.errorf("expected } closing array, got %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return Property{}, err
	}
	if isFloat {
		if len(floats) != count {
			return Property{}, p.errorf("array declares %d elements, has %d", count, len(floats))
		}
		return Property{'d', floats}, nil
	}
	if len(ints) != count {
		return Property{}, p.errorf("array declares %d elements, has %d", count, len(ints))
	}
	if ints == nil {
		ints = []int64{}
	}
	return Property{'l', ints}, nil
}
