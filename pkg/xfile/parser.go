package xfile

import "fmt"

// maxArrayCount bounds indirect array counts as a sanity check against
// corrupt documents.
const maxArrayCount = 1 << 24

// Parser is the recursive-descent document parser. It consumes tokens from
// either lexer and validates every object body against the template registry.
// Parsing is all-or-nothing: the first failure aborts the whole import.
type Parser struct {
	tr     TokenReader
	reg    *Registry
	peeked *Token
}

// NewParser returns a parser reading from tr, validating against reg.
func NewParser(tr TokenReader, reg *Registry) *Parser {
	return &Parser{tr: tr, reg: reg}
}

// ParseDocument parses the whole token stream into a DataObject tree.
func (p *Parser) ParseDocument() (*Document, error) {
	doc := &Document{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Kind == TokenEOF:
			return doc, nil
		case tok.Kind == TokenKeyword && tok.Text == "template":
			if err := p.parseTemplateDefinition(); err != nil {
				return nil, err
			}
		case tok.Kind == TokenName:
			obj, err := p.parseObject(tok)
			if err != nil {
				return nil, err
			}
			doc.Objects = append(doc.Objects, obj)
		case tok.Kind == TokenCloseBrace || tok.Kind == TokenSemicolon || tok.Kind == TokenComma:
			// stray delimiters from sloppy exporters
		default:
			return nil, p.errf("unexpected %s at top level", tok)
		}
	}
}

func (p *Parser) next() (Token, error) {
	if p.peeked != nil {
		tok := *p.peeked
		p.peeked = nil
		return tok, nil
	}
	return p.tr.Next()
}

func (p *Parser) peek() (Token, error) {
	if p.peeked == nil {
		tok, err := p.tr.Next()
		if err != nil {
			return tok, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Kind != kind {
		return tok, p.errf("expected %s, got %s", kind, tok)
	}
	return tok, nil
}

func (p *Parser) errf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", p.tr.Position(), fmt.Sprintf(format, args...))
}

// skipSeparators consumes any run of ';' and ',' tokens. Separator placement
// varies wildly between exporters and carries no information; it is never
// surfaced above the parser.
func (p *Parser) skipSeparators() error {
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.Kind != TokenSemicolon && tok.Kind != TokenComma {
			return nil
		}
		p.peeked = nil
	}
}

// parseObject parses a named data object whose template name token has
// already been consumed.
func (p *Parser) parseObject(nameTok Token) (*DataObject, error) {
	schema := p.reg.Resolve(nameTok.Text)
	if schema == nil {
		return nil, fmt.Errorf("%s: %w: %s", p.tr.Position(), ErrUnknownTemplate, nameTok.Text)
	}

	obj := &DataObject{Template: schema.Name, Offset: nameTok.Offset}

	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokenName {
		obj.Name = tok.Text
		if tok, err = p.next(); err != nil {
			return nil, err
		}
	}
	if tok.Kind != TokenOpenBrace {
		return nil, p.errf("object %s: expected '{', got %s", schema.Name, tok)
	}

	if tok, err := p.peek(); err != nil {
		return nil, err
	} else if tok.Kind == TokenGUID {
		obj.GUID = tok.Text
		p.peeked = nil
	}

	for i := range schema.Members {
		v, err := p.parseMember(obj, schema, &schema.Members[i])
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, MemberValue{Name: schema.Members[i].Name, Value: v})
	}

	if schema.Open {
		if err := p.parseOpenBody(obj, schema); err != nil {
			return nil, err
		}
		return obj, nil
	}

	if err := p.skipSeparators(); err != nil {
		return nil, err
	}
	tok, err = p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokenCloseBrace {
		return nil, fmt.Errorf("%s: %w: template %s: trailing %s",
			p.tr.Position(), ErrArityMismatch, schema.Name, tok)
	}
	return obj, nil
}

// parseOpenBody consumes the trailing child-object section of an open
// template until the closing brace.
func (p *Parser) parseOpenBody(obj *DataObject, schema *Template) error {
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokenCloseBrace:
			return nil
		case TokenSemicolon, TokenComma:
			// stray separators between children
		case TokenName:
			if len(schema.Restricted) > 0 && !contains(schema.Restricted, tok.Text) {
				return fmt.Errorf("%s: %w: template %s does not allow child %s",
					p.tr.Position(), ErrArityMismatch, schema.Name, tok.Text)
			}
			child, err := p.parseObject(tok)
			if err != nil {
				return err
			}
			obj.Children = append(obj.Children, child)
		case TokenOpenBrace:
			ref, err := p.parseReference(tok.Offset)
			if err != nil {
				return err
			}
			obj.Refs = append(obj.Refs, ref)
		case TokenEOF:
			return fmt.Errorf("%s: %w: unclosed %s", p.tr.Position(), ErrTruncated, schema.Name)
		default:
			return p.errf("object %s: unexpected %s", schema.Name, tok)
		}
	}
}

// parseReference reads the body of a `{ name-or-guid }` reference child; the
// opening brace has already been consumed. Resolution is deferred to the
// scene builder.
func (p *Parser) parseReference(offset int) (Reference, error) {
	ref := Reference{Offset: offset}
	for {
		tok, err := p.next()
		if err != nil {
			return ref, err
		}
		switch tok.Kind {
		case TokenName:
			ref.Name = tok.Text
		case TokenGUID:
			ref.GUID = tok.Text
		case TokenCloseBrace:
			if ref.Name == "" && ref.GUID == "" {
				return ref, p.errf("empty object reference")
			}
			return ref, nil
		default:
			return ref, p.errf("object reference: unexpected %s", tok)
		}
	}
}

func (p *Parser) parseMember(obj *DataObject, schema *Template, m *Member) (Value, error) {
	switch m.Kind {
	case MemberPrimitive:
		v, err := p.parsePrimitive(schema, m)
		if err != nil {
			return v, err
		}
		return v, p.skipSeparators()
	case MemberTemplate:
		nested, err := p.parseInline(m.Template)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueObject, Object: nested}, p.skipSeparators()
	case MemberArray:
		return p.parseArray(obj, schema, m)
	default:
		return Value{}, p.errf("template %s: unsupported member kind", schema.Name)
	}
}

// parseInline parses a template-typed member. Inline instances carry no name
// and no braces in the document; their members follow directly.
func (p *Parser) parseInline(name string) (*DataObject, error) {
	schema := p.reg.Resolve(name)
	if schema == nil {
		return nil, fmt.Errorf("%s: %w: %s", p.tr.Position(), ErrUnknownTemplate, name)
	}
	obj := &DataObject{Template: schema.Name}
	for i := range schema.Members {
		v, err := p.parseMember(obj, schema, &schema.Members[i])
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, MemberValue{Name: schema.Members[i].Name, Value: v})
	}
	return obj, nil
}

func (p *Parser) parsePrimitive(schema *Template, m *Member) (Value, error) {
	tok, err := p.next()
	if err != nil {
		return Value{}, err
	}
	switch m.Prim {
	case PrimInt:
		if tok.Kind != TokenInt {
			return Value{}, p.arityErr(schema, m, "integer", tok)
		}
		return Value{Kind: ValueInt, Int: tok.Int}, nil
	case PrimFloat:
		switch tok.Kind {
		case TokenFloat:
			return Value{Kind: ValueFloat, Float: tok.Float}, nil
		case TokenInt:
			return Value{Kind: ValueFloat, Float: float64(tok.Int)}, nil
		}
		return Value{}, p.arityErr(schema, m, "float", tok)
	case PrimString:
		if tok.Kind != TokenString {
			return Value{}, p.arityErr(schema, m, "string", tok)
		}
		return Value{Kind: ValueString, Str: tok.Text}, nil
	case PrimGUID:
		if tok.Kind != TokenGUID {
			return Value{}, p.arityErr(schema, m, "guid", tok)
		}
		return Value{Kind: ValueGUID, Str: tok.Text}, nil
	}
	return Value{}, p.errf("template %s: unsupported primitive", schema.Name)
}

func (p *Parser) arityErr(schema *Template, m *Member, want string, got Token) error {
	return fmt.Errorf("%s: %w: template %s member %s: expected %s, got %s",
		p.tr.Position(), ErrArityMismatch, schema.Name, m.Name, want, got)
}

func (p *Parser) parseArray(obj *DataObject, schema *Template, m *Member) (Value, error) {
	count := 1
	if m.CountFrom != "" {
		v, ok := obj.Member(m.CountFrom)
		if !ok || v.Kind != ValueInt {
			return Value{}, fmt.Errorf("%s: %w: template %s: array %s counted by unparsed member %s",
				p.tr.Position(), ErrArityMismatch, schema.Name, m.Name, m.CountFrom)
		}
		count = int(v.Int)
	} else {
		for _, d := range m.FixedDims {
			count *= d
		}
	}
	if count < 0 || count > maxArrayCount {
		return Value{}, fmt.Errorf("%s: %w: template %s: array %s count %d out of range",
			p.tr.Position(), ErrArityMismatch, schema.Name, m.Name, count)
	}

	values := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		v, err := p.parseMember(obj, schema, m.Elem)
		if err != nil {
			return Value{}, err
		}
		values = append(values, v)
	}
	return Value{Kind: ValueArray, Array: values}, p.skipSeparators()
}

// parseTemplateDefinition parses an inline `template Name { ... }` block and
// registers the schema before any instance of it can appear.
func (p *Parser) parseTemplateDefinition() error {
	nameTok, err := p.expect(TokenName)
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenOpenBrace); err != nil {
		return err
	}

	t := &Template{Name: nameTok.Text}
	if tok, err := p.peek(); err != nil {
		return err
	} else if tok.Kind == TokenGUID {
		t.GUID = tok.Text
		p.peeked = nil
	}

	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch {
		case tok.Kind == TokenCloseBrace:
			if err := p.reg.Register(t); err != nil {
				return fmt.Errorf("%s: %w", p.tr.Position(), err)
			}
			return nil
		case tok.Kind == TokenOpenBracket:
			if err := p.parseRestriction(t); err != nil {
				return err
			}
		case tok.Kind == TokenKeyword && tok.Text == "array":
			m, err := p.parseArrayMemberDef(t)
			if err != nil {
				return err
			}
			t.Members = append(t.Members, m)
		case tok.Kind == TokenKeyword || tok.Kind == TokenName:
			m, err := p.parseMemberDef(tok)
			if err != nil {
				return err
			}
			t.Members = append(t.Members, m)
		case tok.Kind == TokenEOF:
			return fmt.Errorf("%s: %w: unclosed template %s", p.tr.Position(), ErrTruncated, t.Name)
		default:
			return p.errf("template %s: unexpected %s", t.Name, tok)
		}
	}
}

// parseRestriction reads the `[...]` or `[Name, Name]` bracket of a template
// definition; the opening bracket has been consumed.
func (p *Parser) parseRestriction(t *Template) error {
	t.Open = true
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokenCloseBracket:
			return nil
		case TokenDot, TokenComma:
			// `...` arrives as dot tokens in the binary encoding
		case TokenName:
			t.Restricted = append(t.Restricted, tok.Text)
		case TokenGUID:
			// optional guid after a restricted name; ignored
		default:
			return p.errf("template %s: unexpected %s in restriction", t.Name, tok)
		}
	}
}

func (p *Parser) parseMemberDef(typeTok Token) (Member, error) {
	m := Member{}
	if typeTok.Kind == TokenKeyword {
		prim, ok := primitiveKeywords[typeTok.Text]
		if !ok {
			return m, p.errf("unexpected type keyword %s", typeTok.Text)
		}
		m.Kind = MemberPrimitive
		m.Prim = prim
	} else {
		m.Kind = MemberTemplate
		m.Template = typeTok.Text
	}

	nameTok, err := p.expect(TokenName)
	if err != nil {
		return m, err
	}
	m.Name = nameTok.Text
	_, err = p.expect(TokenSemicolon)
	return m, err
}

func (p *Parser) parseArrayMemberDef(t *Template) (Member, error) {
	typeTok, err := p.next()
	if err != nil {
		return Member{}, err
	}
	elem, err := p.parseElemType(typeTok)
	if err != nil {
		return Member{}, err
	}

	nameTok, err := p.expect(TokenName)
	if err != nil {
		return Member{}, err
	}
	m := Member{Name: nameTok.Text, Kind: MemberArray, Elem: &elem}

	for {
		tok, err := p.peek()
		if err != nil {
			return m, err
		}
		if tok.Kind != TokenOpenBracket {
			break
		}
		p.peeked = nil
		dim, err := p.next()
		if err != nil {
			return m, err
		}
		switch dim.Kind {
		case TokenInt:
			m.FixedDims = append(m.FixedDims, int(dim.Int))
		case TokenName:
			m.CountFrom = dim.Text
		default:
			return m, p.errf("template %s: array %s: unexpected dimension %s", t.Name, m.Name, dim)
		}
		if _, err := p.expect(TokenCloseBracket); err != nil {
			return m, err
		}
	}
	_, err = p.expect(TokenSemicolon)
	return m, err
}

func (p *Parser) parseElemType(typeTok Token) (Member, error) {
	if typeTok.Kind == TokenKeyword {
		prim, ok := primitiveKeywords[typeTok.Text]
		if !ok {
			return Member{}, p.errf("unexpected array element keyword %s", typeTok.Text)
		}
		return Member{Kind: MemberPrimitive, Prim: prim}, nil
	}
	if typeTok.Kind == TokenName {
		return Member{Kind: MemberTemplate, Template: typeTok.Text}, nil
	}
	return Member{}, p.errf("unexpected array element type %s", typeTok)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
