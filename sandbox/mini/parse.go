package mini

import (
	"fmt"
	"strconv"
	"strings"
)

// The snippet grammar is a small expression language with assignment:
//
//	snippet  = stmt { ("\n" | ";") stmt }
//	stmt     = IDENT "=" expr | "await" ... | expr
//	expr     = additive { ("=="|"!="|"<"|"<="|">"|">=") additive }
//	additive = term { ("+"|"-") term }
//	term     = unary { ("*"|"/"|"%") unary }
//	unary    = "-" unary | postfix
//	postfix  = primary { "(" args ")" | "." IDENT }
//	primary  = NUMBER | STRING | IDENT | "(" expr ")" | "[" args "]"
//
// Parse errors are compile failures: nothing executes.

type node any

type (
	intLit   struct{ v int64 }
	floatLit struct{ v float64 }
	strLit   struct{ v string }
	ident    struct{ name string }
	listLit  struct{ elems []node }
	unaryOp  struct {
		op string
		x  node
	}
	binaryOp struct {
		op   string
		x, y node
	}
	callExpr struct {
		fn   node
		args []node
	}
	attrExpr struct {
		x    node
		name string
	}
)

type stmtNode struct {
	assign string // target name, or "" for a bare expression
	await  bool   // statement began with the await keyword
	expr   node
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNewline
	tokNumber
	tokString
	tokIdent
	tokOp // operators and punctuation
)

type token struct {
	kind tokKind
	text string
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '\n' || c == ';':
			toks = append(toks, token{tokNewline, string(c)})
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.' || src[j] == '_') {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		case c == '"' || c == '\'':
			quote := c
			j := i + 1
			var b strings.Builder
			for {
				if j >= len(src) || src[j] == '\n' {
					return nil, fmt.Errorf("unterminated string literal")
				}
				if src[j] == '\\' && j+1 < len(src) {
					switch src[j+1] {
					case 'n':
						b.WriteByte('\n')
					case 't':
						b.WriteByte('\t')
					default:
						b.WriteByte(src[j+1])
					}
					j += 2
					continue
				}
				if src[j] == quote {
					break
				}
				b.WriteByte(src[j])
				j++
			}
			toks = append(toks, token{tokString, b.String()})
			i = j + 1
		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j
		default:
			switch {
			case hasAnyPrefix(src[i:], "==", "!=", "<=", ">="):
				toks = append(toks, token{tokOp, src[i : i+2]})
				i += 2
			case strings.ContainsRune("+-*/%()[]<>=,.", rune(c)):
				toks = append(toks, token{tokOp, string(c)})
				i++
			default:
				return nil, fmt.Errorf("unexpected character %q", string(c))
			}
		}
	}
	toks = append(toks, token{tokEOF, ""})
	return toks, nil
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

type parser struct {
	toks []token
	pos  int
}

func parse(src string) ([]stmtNode, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var stmts []stmtNode
	for {
		p.skipNewlines()
		if p.peek().kind == tokEOF {
			break
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		switch p.peek().kind {
		case tokNewline, tokEOF:
		default:
			return nil, fmt.Errorf("unexpected token %q after statement", p.peek().text)
		}
	}
	return stmts, nil
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) next() token  { t := p.toks[p.pos]; p.pos++; return t }
func (p *parser) skipNewlines() {
	for p.peek().kind == tokNewline {
		p.pos++
	}
}

func (p *parser) statement() (stmtNode, error) {
	if t := p.peek(); t.kind == tokIdent && t.text == "await" {
		// Consume the rest of the line so the failure is a statement-level one.
		for p.peek().kind != tokNewline && p.peek().kind != tokEOF {
			p.pos++
		}
		return stmtNode{await: true}, nil
	}
	// IDENT "=" not followed by "=" is an assignment.
	if t := p.peek(); t.kind == tokIdent &&
		p.toks[p.pos+1].kind == tokOp && p.toks[p.pos+1].text == "=" &&
		!(p.toks[p.pos+2].kind == tokOp && p.toks[p.pos+2].text == "=") {
		name := p.next().text
		p.next() // "="
		expr, err := p.expression()
		if err != nil {
			return stmtNode{}, err
		}
		return stmtNode{assign: name, expr: expr}, nil
	}
	expr, err := p.expression()
	if err != nil {
		return stmtNode{}, err
	}
	return stmtNode{expr: expr}, nil
}

func (p *parser) expression() (node, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			return left, nil
		}
		switch t.text {
		case "==", "!=", "<", "<=", ">", ">=":
			p.next()
			right, err := p.additive()
			if err != nil {
				return nil, err
			}
			left = binaryOp{op: t.text, x: left, y: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) additive() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind == tokOp && (t.text == "+" || t.text == "-") {
			p.next()
			right, err := p.term()
			if err != nil {
				return nil, err
			}
			left = binaryOp{op: t.text, x: left, y: right}
			continue
		}
		return left, nil
	}
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind == tokOp && (t.text == "*" || t.text == "/" || t.text == "%") {
			p.next()
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = binaryOp{op: t.text, x: left, y: right}
			continue
		}
		return left, nil
	}
}

func (p *parser) unary() (node, error) {
	if t := p.peek(); t.kind == tokOp && t.text == "-" {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryOp{op: "-", x: x}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			return x, nil
		}
		switch t.text {
		case "(":
			p.next()
			args, err := p.argList(")")
			if err != nil {
				return nil, err
			}
			x = callExpr{fn: x, args: args}
		case ".":
			p.next()
			name := p.next()
			if name.kind != tokIdent {
				return nil, fmt.Errorf("expected attribute name after '.'")
			}
			x = attrExpr{x: x, name: name.text}
		default:
			return x, nil
		}
	}
}

func (p *parser) argList(closer string) ([]node, error) {
	var args []node
	p.skipNewlines()
	if t := p.peek(); t.kind == tokOp && t.text == closer {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipNewlines()
		t := p.next()
		if t.kind != tokOp {
			return nil, fmt.Errorf("expected ',' or %q, got %q", closer, t.text)
		}
		switch t.text {
		case ",":
			p.skipNewlines()
		case closer:
			return args, nil
		default:
			return nil, fmt.Errorf("expected ',' or %q, got %q", closer, t.text)
		}
	}
}

func (p *parser) primary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		text := strings.ReplaceAll(t.text, "_", "")
		if strings.Contains(text, ".") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", t.text)
			}
			return floatLit{v: f}, nil
		}
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.text)
		}
		return intLit{v: i}, nil
	case tokString:
		return strLit{v: t.text}, nil
	case tokIdent:
		return ident{name: t.text}, nil
	case tokOp:
		switch t.text {
		case "(":
			p.skipNewlines()
			x, err := p.expression()
			if err != nil {
				return nil, err
			}
			p.skipNewlines()
			if c := p.next(); !(c.kind == tokOp && c.text == ")") {
				return nil, fmt.Errorf("expected ')', got %q", c.text)
			}
			return x, nil
		case "[":
			elems, err := p.argList("]")
			if err != nil {
				return nil, err
			}
			return listLit{elems: elems}, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %q", t.text)
}
