package classfile

import "fmt"

// Constant pool tags (JVM spec table 4.4-A).
const (
	TagUtf8               uint8 = 1
	TagInteger            uint8 = 3
	TagFloat              uint8 = 4
	TagLong               uint8 = 5
	TagDouble             uint8 = 6
	TagClass              uint8 = 7
	TagString             uint8 = 8
	TagFieldref           uint8 = 9
	TagMethodref          uint8 = 10
	TagInterfaceMethodref uint8 = 11
	TagNameAndType        uint8 = 12
	TagMethodHandle       uint8 = 15
	TagMethodType         uint8 = 16
	TagInvokeDynamic      uint8 = 18
)

// TagName returns a readable name for a constant pool tag, for diagnostics.
func TagName(tag uint8) string {
	switch tag {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldref:
		return "Fieldref"
	case TagMethodref:
		return "Methodref"
	case TagInterfaceMethodref:
		return "InterfaceMethodref"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	}
	return fmt.Sprintf("tag(%d)", tag)
}

// Entry is one constant pool entry. The concrete types below form a closed
// set keyed by tag; entries are immutable once parsed.
type Entry interface {
	Tag() uint8
}

type ClassEntry struct {
	NameIndex uint16
}

func (e *ClassEntry) Tag() uint8 { return TagClass }

type FieldrefEntry struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (e *FieldrefEntry) Tag() uint8 { return TagFieldref }

type MethodrefEntry struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (e *MethodrefEntry) Tag() uint8 { return TagMethodref }

type InterfaceMethodrefEntry struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (e *InterfaceMethodrefEntry) Tag() uint8 { return TagInterfaceMethodref }

type StringEntry struct {
	StringIndex uint16
}

func (e *StringEntry) Tag() uint8 { return TagString }

type IntegerEntry struct {
	Value int32
}

func (e *IntegerEntry) Tag() uint8 { return TagInteger }

type FloatEntry struct {
	Value float32
}

func (e *FloatEntry) Tag() uint8 { return TagFloat }

type LongEntry struct {
	Value int64
}

func (e *LongEntry) Tag() uint8 { return TagLong }

type DoubleEntry struct {
	Value float64
}

func (e *DoubleEntry) Tag() uint8 { return TagDouble }

type NameAndTypeEntry struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (e *NameAndTypeEntry) Tag() uint8 { return TagNameAndType }

type Utf8Entry struct {
	Value string
}

func (e *Utf8Entry) Tag() uint8 { return TagUtf8 }

type MethodHandleEntry struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}

func (e *MethodHandleEntry) Tag() uint8 { return TagMethodHandle }

type MethodTypeEntry struct {
	DescriptorIndex uint16
}

func (e *MethodTypeEntry) Tag() uint8 { return TagMethodType }

type InvokeDynamicEntry struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (e *InvokeDynamicEntry) Tag() uint8 { return TagInvokeDynamic }

// ConstantPool is the class file's symbol table. The format addresses
// entries with 1-based indices; entries are stored 0-indexed internally and
// the shift happens at the accessor boundary, so storage stays dense while
// the public contract keeps format fidelity.
type ConstantPool struct {
	entries []Entry
}

// NewConstantPool builds a pool from already-decoded entries, in order.
// Mainly useful for exercising resolution logic against hand-built pools.
func NewConstantPool(entries []Entry) *ConstantPool {
	return &ConstantPool{entries: entries}
}

// Size returns the number of entries in the pool.
func (cp *ConstantPool) Size() int {
	return len(cp.entries)
}

// At returns the entry at the given 1-based index. Index 0 is always
// invalid, as is any index past the end of the pool.
func (cp *ConstantPool) At(index uint16) (Entry, error) {
	if index == 0 || int(index) > len(cp.entries) {
		return nil, fmt.Errorf("%w: index %d, pool size %d", ErrPoolIndex, index, len(cp.entries))
	}
	return cp.entries[index-1], nil
}

// Utf8At resolves index directly to Utf8 text.
func (cp *ConstantPool) Utf8At(index uint16) (string, error) {
	e, err := cp.At(index)
	if err != nil {
		return "", err
	}
	u, ok := e.(*Utf8Entry)
	if !ok {
		return "", fmt.Errorf("%w: index %d is %s, want Utf8", ErrPoolType, index, TagName(e.Tag()))
	}
	return u.Value, nil
}

// ClassNameAt resolves index to a Class entry and then its name to Utf8
// text.
func (cp *ConstantPool) ClassNameAt(index uint16) (string, error) {
	e, err := cp.At(index)
	if err != nil {
		return "", err
	}
	c, ok := e.(*ClassEntry)
	if !ok {
		return "", fmt.Errorf("%w: index %d is %s, want Class", ErrPoolType, index, TagName(e.Tag()))
	}
	return cp.Utf8At(c.NameIndex)
}

// NameAndTypeAt resolves index to a NameAndType entry and returns the
// (name, descriptor) text pair.
func (cp *ConstantPool) NameAndTypeAt(index uint16) (name, descriptor string, err error) {
	e, err := cp.At(index)
	if err != nil {
		return "", "", err
	}
	nat, ok := e.(*NameAndTypeEntry)
	if !ok {
		return "", "", fmt.Errorf("%w: index %d is %s, want NameAndType", ErrPoolType, index, TagName(e.Tag()))
	}
	if name, err = cp.Utf8At(nat.NameIndex); err != nil {
		return "", "", fmt.Errorf("resolving name of NameAndType %d: %w", index, err)
	}
	if descriptor, err = cp.Utf8At(nat.DescriptorIndex); err != nil {
		return "", "", fmt.Errorf("resolving descriptor of NameAndType %d: %w", index, err)
	}
	return name, descriptor, nil
}

// SymbolRef is a fully resolved field or method reference.
type SymbolRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

func (s *SymbolRef) String() string {
	return s.ClassName + "." + s.Name + s.Descriptor
}

// FieldrefAt resolves index to a Fieldref entry and resolves its owning
// class name and (name, descriptor) pair.
func (cp *ConstantPool) FieldrefAt(index uint16) (*SymbolRef, error) {
	e, err := cp.At(index)
	if err != nil {
		return nil, err
	}
	f, ok := e.(*FieldrefEntry)
	if !ok {
		return nil, fmt.Errorf("%w: index %d is %s, want Fieldref", ErrPoolType, index, TagName(e.Tag()))
	}
	return cp.resolveRef(index, f.ClassIndex, f.NameAndTypeIndex)
}

// MethodrefAt resolves index to a Methodref entry and resolves its owning
// class name and (name, descriptor) pair.
func (cp *ConstantPool) MethodrefAt(index uint16) (*SymbolRef, error) {
	e, err := cp.At(index)
	if err != nil {
		return nil, err
	}
	m, ok := e.(*MethodrefEntry)
	if !ok {
		return nil, fmt.Errorf("%w: index %d is %s, want Methodref", ErrPoolType, index, TagName(e.Tag()))
	}
	return cp.resolveRef(index, m.ClassIndex, m.NameAndTypeIndex)
}

func (cp *ConstantPool) resolveRef(index, classIndex, natIndex uint16) (*SymbolRef, error) {
	className, err := cp.ClassNameAt(classIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving class of ref %d: %w", index, err)
	}
	name, descriptor, err := cp.NameAndTypeAt(natIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving name-and-type of ref %d: %w", index, err)
	}
	return &SymbolRef{ClassName: className, Name: name, Descriptor: descriptor}, nil
}

// parseConstantPool reads count-1 entries, mirroring the format's 1-based
// indexing convention. Long and Double entries are read sequentially like
// every other kind; the historical double-slot quirk for 8-byte constants is
// deliberately not replicated (see DESIGN.md).
func parseConstantPool(r *Reader, count uint16) (*ConstantPool, error) {
	var entries []Entry
	if count > 1 {
		entries = make([]Entry, 0, count-1)
	}
	for i := uint16(1); i < count; i++ {
		e, err := parseEntry(r)
		if err != nil {
			return nil, fmt.Errorf("constant pool entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return &ConstantPool{entries: entries}, nil
}

// parseEntry decodes one tag-dispatched entry. Unknown tags fail the whole
// parse and consume no further bytes.
func parseEntry(r *Reader) (Entry, error) {
	tag, err := r.U1()
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagClass:
		nameIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &ClassEntry{NameIndex: nameIndex}, nil

	case TagFieldref:
		classIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		natIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &FieldrefEntry{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil

	case TagMethodref:
		classIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		natIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &MethodrefEntry{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil

	case TagInterfaceMethodref:
		classIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		natIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &InterfaceMethodrefEntry{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil

	case TagString:
		stringIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &StringEntry{StringIndex: stringIndex}, nil

	case TagInteger:
		v, err := r.I32()
		if err != nil {
			return nil, err
		}
		return &IntegerEntry{Value: v}, nil

	case TagFloat:
		v, err := r.F32()
		if err != nil {
			return nil, err
		}
		return &FloatEntry{Value: v}, nil

	case TagLong:
		v, err := r.I64()
		if err != nil {
			return nil, err
		}
		return &LongEntry{Value: v}, nil

	case TagDouble:
		v, err := r.F64()
		if err != nil {
			return nil, err
		}
		return &DoubleEntry{Value: v}, nil

	case TagNameAndType:
		nameIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		descIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &NameAndTypeEntry{NameIndex: nameIndex, DescriptorIndex: descIndex}, nil

	case TagUtf8:
		length, err := r.U2()
		if err != nil {
			return nil, err
		}
		value, err := r.UTF8(int(length))
		if err != nil {
			return nil, err
		}
		return &Utf8Entry{Value: value}, nil

	case TagMethodHandle:
		kind, err := r.U1()
		if err != nil {
			return nil, err
		}
		refIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &MethodHandleEntry{ReferenceKind: kind, ReferenceIndex: refIndex}, nil

	case TagMethodType:
		descIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &MethodTypeEntry{DescriptorIndex: descIndex}, nil

	case TagInvokeDynamic:
		bootstrapIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		natIndex, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &InvokeDynamicEntry{BootstrapMethodAttrIndex: bootstrapIndex, NameAndTypeIndex: natIndex}, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrPoolTag, tag)
}
