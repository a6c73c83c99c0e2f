package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cafebabe.classfile")

// ParseFile opens and parses the class file at path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads one class file from r. The byte source is consumed strictly
// forward; the constant pool is built first and consulted while the rest of
// the file is still being parsed.
func Parse(r io.Reader) (*ClassFile, error) {
	br := NewReader(r)
	cf := &ClassFile{}

	magic, err := br.Bytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	copy(cf.Magic[:], magic)
	if binary.BigEndian.Uint32(magic) != ClassMagic {
		return nil, fmt.Errorf("%w: got 0x%08X", ErrBadMagic, binary.BigEndian.Uint32(magic))
	}

	if cf.MinorVersion, err = br.U2(); err != nil {
		return nil, fmt.Errorf("reading minor version: %w", err)
	}
	if cf.MajorVersion, err = br.U2(); err != nil {
		return nil, fmt.Errorf("reading major version: %w", err)
	}

	cpCount, err := br.U2()
	if err != nil {
		return nil, fmt.Errorf("reading constant pool count: %w", err)
	}
	if cf.ConstantPool, err = parseConstantPool(br, cpCount); err != nil {
		return nil, fmt.Errorf("parsing constant pool: %w", err)
	}
	log.Debugf("parsed constant pool: %d entries", cf.ConstantPool.Size())

	flagMask, err := br.U2()
	if err != nil {
		return nil, fmt.Errorf("reading access flags: %w", err)
	}
	cf.AccessFlags = DecodeClassFlags(flagMask)

	if cf.ThisClass, err = br.U2(); err != nil {
		return nil, fmt.Errorf("reading this_class: %w", err)
	}
	if cf.SuperClass, err = br.U2(); err != nil {
		return nil, fmt.Errorf("reading super_class: %w", err)
	}

	// Both indices must dereference, through one level of indirection, to
	// Utf8 text. Checked here so the returned ClassFile holds the invariant.
	if _, err = cf.ThisClassName(); err != nil {
		return nil, fmt.Errorf("resolving this_class: %w", err)
	}
	if _, err = cf.SuperClassName(); err != nil {
		return nil, fmt.Errorf("resolving super_class: %w", err)
	}

	interfacesCount, err := br.U2()
	if err != nil {
		return nil, fmt.Errorf("reading interfaces count: %w", err)
	}
	if interfacesCount != 0 {
		return nil, fmt.Errorf("%w: %d interfaces declared", ErrUnsupported, interfacesCount)
	}

	fieldsCount, err := br.U2()
	if err != nil {
		return nil, fmt.Errorf("reading fields count: %w", err)
	}
	if fieldsCount != 0 {
		return nil, fmt.Errorf("%w: %d fields declared", ErrUnsupported, fieldsCount)
	}

	methodsCount, err := br.U2()
	if err != nil {
		return nil, fmt.Errorf("reading methods count: %w", err)
	}
	cf.Methods = make([]MethodInfo, 0, methodsCount)
	for i := uint16(0); i < methodsCount; i++ {
		m, err := parseMethod(cf.ConstantPool, br)
		if err != nil {
			return nil, fmt.Errorf("parsing method %d: %w", i, err)
		}
		log.Debugf("parsed method %s%s", m.Name, m.Descriptor)
		cf.Methods = append(cf.Methods, m)
	}

	attrCount, err := br.U2()
	if err != nil {
		return nil, fmt.Errorf("reading attributes count: %w", err)
	}
	cf.Attributes = make([]AttributeInfo, 0, attrCount)
	for i := uint16(0); i < attrCount; i++ {
		attr, err := parseAttribute(cf.ConstantPool, br)
		if err != nil {
			return nil, fmt.Errorf("parsing class attribute %d: %w", i, err)
		}
		cf.Attributes = append(cf.Attributes, attr)
	}

	return cf, nil
}

func parseMethod(cp *ConstantPool, r *Reader) (MethodInfo, error) {
	var m MethodInfo

	flagMask, err := r.U2()
	if err != nil {
		return m, fmt.Errorf("reading access flags: %w", err)
	}
	m.AccessFlags = DecodeMethodFlags(flagMask)

	if m.NameIndex, err = r.U2(); err != nil {
		return m, fmt.Errorf("reading name index: %w", err)
	}
	if m.Name, err = cp.Utf8At(m.NameIndex); err != nil {
		return m, fmt.Errorf("resolving method name: %w", err)
	}

	if m.DescriptorIndex, err = r.U2(); err != nil {
		return m, fmt.Errorf("reading descriptor index: %w", err)
	}
	if m.Descriptor, err = cp.Utf8At(m.DescriptorIndex); err != nil {
		return m, fmt.Errorf("resolving method descriptor: %w", err)
	}

	attrCount, err := r.U2()
	if err != nil {
		return m, fmt.Errorf("reading attribute count: %w", err)
	}
	m.Attributes = make([]AttributeInfo, 0, attrCount)
	for i := uint16(0); i < attrCount; i++ {
		attr, err := parseAttribute(cp, r)
		if err != nil {
			return m, fmt.Errorf("parsing attribute %d: %w", i, err)
		}
		m.Attributes = append(m.Attributes, attr)
	}

	return m, nil
}
