package classfile

import "fmt"

// AttributeInfo is a named, length-prefixed record whose payload shape is
// determined by its resolved name.
type AttributeInfo struct {
	NameIndex uint16
	Name      string
	Kind      AttributeKind
}

// AttributeKind is the decoded payload of an attribute. Known names decode
// into the typed variants below; any other name degrades to RawAttribute.
// The asymmetry with constant pool tags is deliberate: unknown tags are hard
// errors, unknown attribute names are not.
type AttributeKind interface {
	attributeKind()
}

// ConstantValueAttribute holds the pool index of a ConstantValue attribute.
type ConstantValueAttribute struct {
	ValueIndex uint16
}

// CodeAttribute holds a method's instruction bytes along with its stack and
// local sizing, exception table, and nested attributes.
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionRow
	Attributes     []AttributeInfo
}

// SourceFileAttribute names the source file, eagerly resolved.
type SourceFileAttribute struct {
	SourceFileIndex uint16
	SourceFile      string
}

// LineNumberTableAttribute maps instruction offsets to source lines.
type LineNumberTableAttribute struct {
	Table []LineNumber
}

// RawAttribute preserves the payload of an unrecognized attribute verbatim.
type RawAttribute struct {
	Bytes []byte
}

func (*ConstantValueAttribute) attributeKind()   {}
func (*CodeAttribute) attributeKind()            {}
func (*SourceFileAttribute) attributeKind()      {}
func (*LineNumberTableAttribute) attributeKind() {}
func (*RawAttribute) attributeKind()             {}

// ExceptionRow is one exception-table entry of a Code attribute.
type ExceptionRow struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// LineNumber is one row of a LineNumberTable attribute.
type LineNumber struct {
	StartPC    uint16
	LineNumber uint16
}

// parseAttribute reads one attribute: name index (resolved through the pool,
// fatal on failure since the name selects the payload shape), a u4 byte
// length, and exactly that many bytes into an isolated cursor for the
// variant's sub-parser. A known variant must consume the cursor exactly.
func parseAttribute(cp *ConstantPool, r *Reader) (AttributeInfo, error) {
	nameIndex, err := r.U2()
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("reading attribute name index: %w", err)
	}
	name, err := cp.Utf8At(nameIndex)
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("resolving attribute name: %w", err)
	}

	length, err := r.U4()
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("reading length of attribute %q: %w", name, err)
	}
	payload, err := r.Bytes(int(length))
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("reading payload of attribute %q: %w", name, err)
	}

	cur := NewCursor(payload)
	var kind AttributeKind

	switch name {
	case "ConstantValue":
		valueIndex, err := cur.U2()
		if err != nil {
			return AttributeInfo{}, fmt.Errorf("parsing ConstantValue: %w", err)
		}
		kind = &ConstantValueAttribute{ValueIndex: valueIndex}

	case "Code":
		code, err := parseCodeAttribute(cp, cur)
		if err != nil {
			return AttributeInfo{}, fmt.Errorf("parsing Code: %w", err)
		}
		kind = code

	case "SourceFile":
		sourceIndex, err := cur.U2()
		if err != nil {
			return AttributeInfo{}, fmt.Errorf("parsing SourceFile: %w", err)
		}
		source, err := cp.Utf8At(sourceIndex)
		if err != nil {
			return AttributeInfo{}, fmt.Errorf("resolving SourceFile name: %w", err)
		}
		kind = &SourceFileAttribute{SourceFileIndex: sourceIndex, SourceFile: source}

	case "LineNumberTable":
		table, err := parseLineNumberTable(cur)
		if err != nil {
			return AttributeInfo{}, fmt.Errorf("parsing LineNumberTable: %w", err)
		}
		kind = &LineNumberTableAttribute{Table: table}

	default:
		log.Noticef("unrecognized attribute %q (%d bytes), keeping raw payload", name, length)
		kind = &RawAttribute{Bytes: payload}
	}

	// The declared length must exactly bound the variant's sub-parse. Raw
	// payloads are whole by construction; everything else is checked.
	if _, raw := kind.(*RawAttribute); !raw && cur.Remaining() != 0 {
		return AttributeInfo{}, fmt.Errorf("%w: attribute %q declared %d bytes, consumed %d",
			ErrAttributeLength, name, length, cur.Consumed())
	}

	return AttributeInfo{NameIndex: nameIndex, Name: name, Kind: kind}, nil
}

func parseCodeAttribute(cp *ConstantPool, cur *Cursor) (*CodeAttribute, error) {
	maxStack, err := cur.U2()
	if err != nil {
		return nil, fmt.Errorf("reading max_stack: %w", err)
	}
	maxLocals, err := cur.U2()
	if err != nil {
		return nil, fmt.Errorf("reading max_locals: %w", err)
	}

	codeLength, err := cur.U4()
	if err != nil {
		return nil, fmt.Errorf("reading code length: %w", err)
	}
	code, err := cur.Bytes(int(codeLength))
	if err != nil {
		return nil, fmt.Errorf("reading code bytes: %w", err)
	}

	exceptionCount, err := cur.U2()
	if err != nil {
		return nil, fmt.Errorf("reading exception table length: %w", err)
	}
	exceptions := make([]ExceptionRow, exceptionCount)
	for i := range exceptions {
		if exceptions[i], err = parseExceptionRow(cur); err != nil {
			return nil, fmt.Errorf("reading exception row %d: %w", i, err)
		}
	}

	attrCount, err := cur.U2()
	if err != nil {
		return nil, fmt.Errorf("reading nested attribute count: %w", err)
	}
	attrs := make([]AttributeInfo, 0, attrCount)
	for i := uint16(0); i < attrCount; i++ {
		attr, err := parseAttribute(cp, &cur.Reader)
		if err != nil {
			return nil, fmt.Errorf("parsing nested attribute %d: %w", i, err)
		}
		attrs = append(attrs, attr)
	}

	return &CodeAttribute{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Code:           code,
		ExceptionTable: exceptions,
		Attributes:     attrs,
	}, nil
}

func parseExceptionRow(cur *Cursor) (ExceptionRow, error) {
	var row ExceptionRow
	var err error
	if row.StartPC, err = cur.U2(); err != nil {
		return row, err
	}
	if row.EndPC, err = cur.U2(); err != nil {
		return row, err
	}
	if row.HandlerPC, err = cur.U2(); err != nil {
		return row, err
	}
	row.CatchType, err = cur.U2()
	return row, err
}

func parseLineNumberTable(cur *Cursor) ([]LineNumber, error) {
	count, err := cur.U2()
	if err != nil {
		return nil, fmt.Errorf("reading table length: %w", err)
	}
	table := make([]LineNumber, count)
	for i := range table {
		if table[i].StartPC, err = cur.U2(); err != nil {
			return nil, fmt.Errorf("reading row %d: %w", i, err)
		}
		if table[i].LineNumber, err = cur.U2(); err != nil {
			return nil, fmt.Errorf("reading row %d: %w", i, err)
		}
	}
	return table, nil
}
