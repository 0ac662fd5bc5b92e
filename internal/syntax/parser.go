package syntax

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/iter"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

// Tree labels for productions and punctuation.
const (
	LabelValue    = "value"
	LabelDict     = "dict"
	LabelList     = "list"
	LabelPair     = "pair"
	LabelLBrace   = "{"
	LabelRBrace   = "}"
	LabelLBracket = "["
	LabelRBracket = "]"
	LabelComma    = ","
	LabelColon    = ":"
)

// Parser is a recursive descent parser over a lexed file. Syntax errors are
// reported and parsing continues without consuming the missing token.
// Semantic checks run inline and are written to the SemanticLog.
type Parser struct {
	reporter exc.Reporter
	log      *SemanticLog
}

// NewParser creates a parser. A nil log discards semantic errors after
// forwarding them to the reporter.
func NewParser(reporter exc.Reporter, log *SemanticLog) *Parser {
	if log == nil {
		log = NewSemanticLog(io.Discard, reporter)
	}
	return &Parser{reporter: reporter, log: log}
}

// PrepareParse drains the token stream of f into a parser cursor. An error
// closing the stream, such as a malformed token file, is returned.
func (self *Parser) PrepareParse(ctx context.Context, f lang.LexerFile) (*ParserTokens, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := iter.Collect(ctx, ft)
	if err != nil {
		return nil, err
	}
	return &ParserTokens{
		reporter: self.reporter,
		log:      self.log,
		uri:      f.Path(ctx),
		tokens:   tokens,
	}, nil
}

// ParserTokens is the cursor of one parse run.
type ParserTokens struct {
	reporter exc.Reporter
	log      *SemanticLog
	uri      string
	tokens   []*lang.Token
	// index is one past the position of current in tokens.
	index   int
	current *lang.Token
}

// bailout carries a fatal exception out of the recursive descent.
type bailout struct {
	e exc.Exception
}

// Parse parses one top-level value. A fatal token mismatch aborts the parse
// and is returned without a tree.
func (p *ParserTokens) Parse() (*lang.Node, error) {
	return p.parseWith(p.parseValue)
}

// parseWith runs production from the first token.
func (p *ParserTokens) parseWith(production func() *lang.Node) (*lang.Node, error) {
	var root *lang.Node
	err := p.guard(func() {
		p.advance()
		root = production()
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// ParseDocument parses top-level values until EOF. Semicolons between values
// are skipped. A token that cannot start a value is dropped after it has been
// reported.
func (p *ParserTokens) ParseDocument() ([]*lang.Node, error) {
	var roots []*lang.Node
	err := p.guard(func() {
		p.advance()
		for p.current.Kind != lang.TokenKindEOF {
			if p.current.Kind == lang.TokenKindSemicolon {
				p.advance()
				continue
			}
			index := p.index
			root := p.parseValue()
			if p.index == index && p.current.Kind != lang.TokenKindEOF {
				p.advance()
				continue
			}
			roots = append(roots, root)
		}
	})
	if err != nil {
		return nil, err
	}
	if len(roots) < 1 {
		roots = append(roots, lang.NewNode(LabelValue))
	}
	return roots, nil
}

// guard runs fn and turns the bailout raised by a fatal eat into an error.
func (p *ParserTokens) guard(fn func()) (err error) {
	defer func() {
		err = p.bail(recover())
	}()
	fn()
	return nil
}

func (p *ParserTokens) bail(r any) error {
	if r == nil {
		return nil
	}
	b, ok := r.(bailout)
	if !ok {
		panic(r)
	}
	return b.e
}

// advance moves to the next token. Past the end of the stream an EOF token is
// synthesized and the index stops moving.
func (p *ParserTokens) advance() {
	if p.index >= len(p.tokens) {
		var span *lang.Span
		if p.current != nil {
			span = p.current.Span
		}
		p.current = lang.NewToken(lang.TokenKindEOF, "", span)
		return
	}
	p.current = p.tokens[p.index]
	p.index = p.index + 1
}

// eat consumes the current token. Callers check the kind first so a mismatch
// means the cursor lost track of the grammar and the parse is aborted.
func (p *ParserTokens) eat(kind lang.TokenKind) {
	if p.current.Kind != kind {
		e := exc.New(
			exc.At(p.uri, p.current.Start()),
			exc.CodeTokenMismatch,
			fmt.Sprintf("Expected token %s, got %s", kind, p.current.Kind),
		)
		_ = p.reporter.Report(e)
		panic(bailout{e: e})
	}
	p.advance()
}

func (p *ParserTokens) syntaxError(production Production, code string, detail string) {
	_ = p.reporter.Report(&SyntaxError{
		Production: production,
		Token:      *p.current,
		Index:      p.index,
		Detail:     detail,
		URI:        p.uri,
		code:       code,
	})
}

func (p *ParserTokens) semantic(kind SemanticKind) {
	p.log.Log(&SemanticError{
		Kind:  kind,
		Token: *p.current,
		URI:   p.uri,
	})
}

// value := NUMBER | STRING | dict | list | TRUE | FALSE | NULL | EOF
func (p *ParserTokens) parseValue() *lang.Node {
	node := lang.NewNode(LabelValue)
	switch p.current.Kind {
	case lang.TokenKindNumber:
		node.AddChild(p.parseNumber())
	case lang.TokenKindString:
		node.AddChild(p.parseString())
	case lang.TokenKindLBrace:
		return p.parseDict()
	case lang.TokenKindLBracket:
		return p.parseList()
	case lang.TokenKindTrue, lang.TokenKindFalse, lang.TokenKindNull:
		node.AddChild(p.parseKeyword())
	case lang.TokenKindEOF:
		return node
	default:
		p.syntaxError(ProductionValue, exc.CodeUnexpectedToken, fmt.Sprintf(
			"Unexpected Token at position %d: %s. Datatype should start with opening brackets or should be a terminal",
			p.index, p.current,
		))
	}
	return node
}

// dict := '{' pair (',' pair)* '}'
func (p *ParserTokens) parseDict() *lang.Node {
	node := lang.NewNode(LabelDict)
	node.AddChild(lang.NewLeaf(LabelLBrace))
	p.eat(lang.TokenKindLBrace)
	node.AddChild(p.parsePair())
	for {
		if p.current.Kind == lang.TokenKindComma {
			node.AddChild(lang.NewLeaf(LabelComma))
			p.eat(lang.TokenKindComma)
			node.AddChild(p.parsePair())
			continue
		}
		if p.current.Kind != lang.TokenKindString {
			break
		}
		p.syntaxError(ProductionDict, exc.CodeMissingSeparator, fmt.Sprintf(
			"Missing <,> at %d in Token Stream or unexpected token: %s", p.index, p.current,
		))
		node.AddChild(lang.NewLeaf(LabelComma))
		node.AddChild(p.parsePair())
	}
	if p.current.Kind == lang.TokenKindRBrace {
		p.eat(lang.TokenKindRBrace)
	} else {
		p.syntaxError(ProductionDict, exc.CodeMissingClose, fmt.Sprintf(
			"Missing <}> at position %d in Token Stream or unexpected token: %s", p.index, p.current,
		))
	}
	node.AddChild(lang.NewLeaf(LabelRBrace))
	return node
}

// list := '[' value (',' value)* ']'
func (p *ParserTokens) parseList() *lang.Node {
	node := lang.NewNode(LabelList)
	node.AddChild(lang.NewLeaf(LabelLBracket))
	p.eat(lang.TokenKindLBracket)
	node.AddChild(p.parseValue())
	for {
		if p.current.Kind == lang.TokenKindComma {
			node.AddChild(lang.NewLeaf(LabelComma))
			p.eat(lang.TokenKindComma)
			node.AddChild(p.parseValue())
			continue
		}
		if !startsValue(p.current.Kind) {
			break
		}
		p.syntaxError(ProductionList, exc.CodeMissingSeparator, fmt.Sprintf(
			"Missing <,> at position %d in Token Stream or unexpected token: %s", p.index, p.current,
		))
		node.AddChild(lang.NewLeaf(LabelComma))
		node.AddChild(p.parseValue())
	}
	if p.current.Kind == lang.TokenKindRBracket {
		p.eat(lang.TokenKindRBracket)
	} else {
		p.syntaxError(ProductionList, exc.CodeMissingClose, fmt.Sprintf(
			"<]> Missing at position %d in Token Stream or unexpected token: %s", p.index, p.current,
		))
	}
	node.AddChild(lang.NewLeaf(LabelRBracket))
	return node
}

func startsValue(kind lang.TokenKind) bool {
	switch kind {
	case lang.TokenKindString, lang.TokenKindNumber, lang.TokenKindLBrace, lang.TokenKindLBracket,
		lang.TokenKindTrue, lang.TokenKindFalse, lang.TokenKindNull:
		return true
	default:
		return false
	}
}

// pair := STRING ':' value
func (p *ParserTokens) parsePair() *lang.Node {
	node := lang.NewNode(LabelPair)
	node.AddChild(p.parseKey())
	node.AddChild(lang.NewLeaf(LabelColon))
	if p.current.Kind == lang.TokenKindColon {
		p.eat(lang.TokenKindColon)
	} else {
		p.syntaxError(ProductionPair, exc.CodeMissingSeparator, fmt.Sprintf(
			"<:> missing at %d in Token Stream or unexpected token: %s", p.index, p.current,
		))
	}
	node.AddChild(p.parseValue())
	return node
}

// parseKey parses the STRING of a pair. Any other token is reported and consumed,
// except for closers and EOF which belong to an enclosing production.
func (p *ParserTokens) parseKey() *lang.Node {
	if p.current.Kind != lang.TokenKindString {
		tok := p.current
		p.syntaxError(ProductionPair, exc.CodeUnexpectedToken, fmt.Sprintf(
			"Unexpected Token at %d: %s", p.index, tok,
		))
		switch tok.Kind {
		case lang.TokenKindRBrace, lang.TokenKindRBracket, lang.TokenKindEOF:
		default:
			p.eat(tok.Kind)
		}
		return lang.NewLeaf("Invalid String: " + tok.Value)
	}
	v := p.current.Value
	if isReserved(v) {
		p.semantic(SemanticReservedString)
	}
	if isEmptyKey(v) {
		p.semantic(SemanticEmptyKey)
	}
	if isReserved(v) {
		p.semantic(SemanticReservedKey)
	}
	node := lang.NewLeaf("STRING: " + v)
	p.eat(lang.TokenKindString)
	return node
}

func (p *ParserTokens) parseString() *lang.Node {
	v := p.current.Value
	if isReserved(v) {
		p.semantic(SemanticReservedString)
	}
	node := lang.NewLeaf("STRING: " + v)
	p.eat(lang.TokenKindString)
	return node
}

func (p *ParserTokens) parseNumber() *lang.Node {
	v := p.current.Value
	if strings.Contains(v, ".") {
		if isInvalidDecimal(v) {
			p.semantic(SemanticInvalidDecimal)
		}
	} else if isInvalidInteger(v) {
		p.semantic(SemanticInvalidInteger)
	}
	node := lang.NewLeaf("NUMBER: " + v)
	p.eat(lang.TokenKindNumber)
	return node
}

func (p *ParserTokens) parseKeyword() *lang.Node {
	var label string
	switch p.current.Kind {
	case lang.TokenKindTrue:
		label = "BOOLEAN: TRUE"
	case lang.TokenKindFalse:
		label = "BOOLEAN: FALSE"
	default:
		label = "BOOLEAN: NULL"
	}
	p.eat(p.current.Kind)
	return lang.NewLeaf(label)
}
