package classfile

import (
	"errors"
	"testing"
)

func testPool() *ConstantPool {
	return NewConstantPool([]Entry{
		&Utf8Entry{Value: "java/lang/Object"},                      // 1
		&ClassEntry{NameIndex: 1},                                  // 2
		&Utf8Entry{Value: "out"},                                   // 3
		&Utf8Entry{Value: "Ljava/io/PrintStream;"},                 // 4
		&NameAndTypeEntry{NameIndex: 3, DescriptorIndex: 4},        // 5
		&FieldrefEntry{ClassIndex: 2, NameAndTypeIndex: 5},         // 6
		&MethodrefEntry{ClassIndex: 2, NameAndTypeIndex: 5},        // 7
		&IntegerEntry{Value: 42},                                   // 8
	})
}

func TestPoolOneBasedIndexing(t *testing.T) {
	cp := testPool()

	// Position 1 is retrievable via index 1, not 0.
	e, err := cp.At(1)
	if err != nil {
		t.Fatalf("At(1): %v", err)
	}
	if u, ok := e.(*Utf8Entry); !ok || u.Value != "java/lang/Object" {
		t.Fatalf("At(1) = %#v, want Utf8 java/lang/Object", e)
	}

	if _, err := cp.At(0); !errors.Is(err, ErrPoolIndex) {
		t.Errorf("At(0): err = %v, want ErrPoolIndex", err)
	}
	if _, err := cp.At(uint16(cp.Size() + 1)); !errors.Is(err, ErrPoolIndex) {
		t.Errorf("At(size+1): err = %v, want ErrPoolIndex", err)
	}
}

func TestUtf8At(t *testing.T) {
	cp := testPool()

	if s, err := cp.Utf8At(3); err != nil || s != "out" {
		t.Fatalf("Utf8At(3) = %q, %v", s, err)
	}
	if _, err := cp.Utf8At(2); !errors.Is(err, ErrPoolType) {
		t.Errorf("Utf8At(Class entry): err = %v, want ErrPoolType", err)
	}
	if _, err := cp.Utf8At(0); !errors.Is(err, ErrPoolIndex) {
		t.Errorf("Utf8At(0): err = %v, want ErrPoolIndex", err)
	}
}

func TestClassNameAt(t *testing.T) {
	cp := testPool()

	if s, err := cp.ClassNameAt(2); err != nil || s != "java/lang/Object" {
		t.Fatalf("ClassNameAt(2) = %q, %v", s, err)
	}
	if _, err := cp.ClassNameAt(1); !errors.Is(err, ErrPoolType) {
		t.Errorf("ClassNameAt(Utf8 entry): err = %v, want ErrPoolType", err)
	}

	// Class whose name index points at a non-Utf8 entry.
	cp2 := NewConstantPool([]Entry{
		&IntegerEntry{Value: 7}, // 1
		&ClassEntry{NameIndex: 1}, // 2
	})
	if _, err := cp2.ClassNameAt(2); !errors.Is(err, ErrPoolType) {
		t.Errorf("ClassNameAt with non-Utf8 name: err = %v, want ErrPoolType", err)
	}
}

func TestNameAndTypeAt(t *testing.T) {
	cp := testPool()

	name, desc, err := cp.NameAndTypeAt(5)
	if err != nil {
		t.Fatalf("NameAndTypeAt(5): %v", err)
	}
	if name != "out" || desc != "Ljava/io/PrintStream;" {
		t.Errorf("NameAndTypeAt(5) = (%q, %q)", name, desc)
	}

	if _, _, err := cp.NameAndTypeAt(6); !errors.Is(err, ErrPoolType) {
		t.Errorf("NameAndTypeAt(Fieldref): err = %v, want ErrPoolType", err)
	}
}

func TestFieldrefAt(t *testing.T) {
	cp := testPool()

	ref, err := cp.FieldrefAt(6)
	if err != nil {
		t.Fatalf("FieldrefAt(6): %v", err)
	}
	want := SymbolRef{ClassName: "java/lang/Object", Name: "out", Descriptor: "Ljava/io/PrintStream;"}
	if *ref != want {
		t.Errorf("FieldrefAt(6) = %+v, want %+v", *ref, want)
	}

	if _, err := cp.FieldrefAt(7); !errors.Is(err, ErrPoolType) {
		t.Errorf("FieldrefAt(Methodref): err = %v, want ErrPoolType", err)
	}
}

func TestMethodrefAt(t *testing.T) {
	cp := testPool()

	ref, err := cp.MethodrefAt(7)
	if err != nil {
		t.Fatalf("MethodrefAt(7): %v", err)
	}
	if ref.String() != "java/lang/Object.outLjava/io/PrintStream;" {
		t.Errorf("MethodrefAt(7).String() = %q", ref.String())
	}

	if _, err := cp.MethodrefAt(6); !errors.Is(err, ErrPoolType) {
		t.Errorf("MethodrefAt(Fieldref): err = %v, want ErrPoolType", err)
	}
	if _, err := cp.MethodrefAt(8); !errors.Is(err, ErrPoolType) {
		t.Errorf("MethodrefAt(Integer): err = %v, want ErrPoolType", err)
	}
}

func TestParseEntryWidths(t *testing.T) {
	// Each valid tag must consume exactly its fixed or variable width and
	// produce the matching variant.
	tests := []struct {
		name  string
		data  []byte
		width int
		check func(Entry) bool
	}{
		{"Utf8", []byte{TagUtf8, 0x00, 0x03, 'a', 'b', 'c'}, 6, func(e Entry) bool {
			u, ok := e.(*Utf8Entry)
			return ok && u.Value == "abc"
		}},
		{"Integer", []byte{TagInteger, 0x00, 0x00, 0x00, 0x2A}, 5, func(e Entry) bool {
			v, ok := e.(*IntegerEntry)
			return ok && v.Value == 42
		}},
		{"Float", []byte{TagFloat, 0x3F, 0xC0, 0x00, 0x00}, 5, func(e Entry) bool {
			v, ok := e.(*FloatEntry)
			return ok && v.Value == 1.5
		}},
		{"Long", []byte{TagLong, 0, 0, 0, 0, 0, 0, 0, 0x07}, 9, func(e Entry) bool {
			v, ok := e.(*LongEntry)
			return ok && v.Value == 7
		}},
		{"Double", []byte{TagDouble, 0x40, 0x02, 0, 0, 0, 0, 0, 0}, 9, func(e Entry) bool {
			v, ok := e.(*DoubleEntry)
			return ok && v.Value == 2.25
		}},
		{"Class", []byte{TagClass, 0x00, 0x05}, 3, func(e Entry) bool {
			v, ok := e.(*ClassEntry)
			return ok && v.NameIndex == 5
		}},
		{"String", []byte{TagString, 0x00, 0x09}, 3, func(e Entry) bool {
			v, ok := e.(*StringEntry)
			return ok && v.StringIndex == 9
		}},
		{"Fieldref", []byte{TagFieldref, 0x00, 0x02, 0x00, 0x05}, 5, func(e Entry) bool {
			v, ok := e.(*FieldrefEntry)
			return ok && v.ClassIndex == 2 && v.NameAndTypeIndex == 5
		}},
		{"Methodref", []byte{TagMethodref, 0x00, 0x02, 0x00, 0x05}, 5, func(e Entry) bool {
			_, ok := e.(*MethodrefEntry)
			return ok
		}},
		{"InterfaceMethodref", []byte{TagInterfaceMethodref, 0x00, 0x02, 0x00, 0x05}, 5, func(e Entry) bool {
			_, ok := e.(*InterfaceMethodrefEntry)
			return ok
		}},
		{"NameAndType", []byte{TagNameAndType, 0x00, 0x03, 0x00, 0x04}, 5, func(e Entry) bool {
			v, ok := e.(*NameAndTypeEntry)
			return ok && v.NameIndex == 3 && v.DescriptorIndex == 4
		}},
		{"MethodHandle", []byte{TagMethodHandle, 0x06, 0x00, 0x0A}, 4, func(e Entry) bool {
			v, ok := e.(*MethodHandleEntry)
			return ok && v.ReferenceKind == 6 && v.ReferenceIndex == 10
		}},
		{"MethodType", []byte{TagMethodType, 0x00, 0x0B}, 3, func(e Entry) bool {
			v, ok := e.(*MethodTypeEntry)
			return ok && v.DescriptorIndex == 11
		}},
		{"InvokeDynamic", []byte{TagInvokeDynamic, 0x00, 0x01, 0x00, 0x0C}, 5, func(e Entry) bool {
			v, ok := e.(*InvokeDynamicEntry)
			return ok && v.BootstrapMethodAttrIndex == 1 && v.NameAndTypeIndex == 12
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Trailing padding proves the parser stops at the variant's width.
			cur := NewCursor(append(append([]byte{}, tt.data...), 0xEE, 0xEE))
			e, err := parseEntry(&cur.Reader)
			if err != nil {
				t.Fatalf("parseEntry: %v", err)
			}
			if cur.Consumed() != tt.width {
				t.Errorf("consumed %d bytes, want %d", cur.Consumed(), tt.width)
			}
			if !tt.check(e) {
				t.Errorf("unexpected entry %#v", e)
			}
		})
	}
}

func TestParseEntryUnknownTag(t *testing.T) {
	// Tag 2 is unassigned; the parse must fail without consuming operand
	// bytes.
	cur := NewCursor([]byte{0x02, 0xAA, 0xBB})
	_, err := parseEntry(&cur.Reader)
	if !errors.Is(err, ErrPoolTag) {
		t.Fatalf("err = %v, want ErrPoolTag", err)
	}
	if cur.Consumed() != 1 {
		t.Errorf("consumed %d bytes after unknown tag, want 1", cur.Consumed())
	}
}
