package classfile

// ClassMagic is the fixed 4-byte signature every class file starts with.
const ClassMagic uint32 = 0xCAFEBABE

// ClassAccessFlag is one named modifier from the class-level access_flags
// bitmask.
type ClassAccessFlag uint16

const (
	ClassPublic     ClassAccessFlag = 0x0001
	ClassFinal      ClassAccessFlag = 0x0010
	ClassSuper      ClassAccessFlag = 0x0020
	ClassInterface  ClassAccessFlag = 0x0200
	ClassAbstract   ClassAccessFlag = 0x0400
	ClassSynthetic  ClassAccessFlag = 0x1000
	ClassAnnotation ClassAccessFlag = 0x2000
	ClassEnum       ClassAccessFlag = 0x4000
)

// classFlagOrder fixes the canonical enumeration order used when decoding a
// bitmask into a flag set.
var classFlagOrder = []ClassAccessFlag{
	ClassPublic, ClassFinal, ClassSuper, ClassInterface,
	ClassAbstract, ClassSynthetic, ClassAnnotation, ClassEnum,
}

func (f ClassAccessFlag) String() string {
	switch f {
	case ClassPublic:
		return "public"
	case ClassFinal:
		return "final"
	case ClassSuper:
		return "super"
	case ClassInterface:
		return "interface"
	case ClassAbstract:
		return "abstract"
	case ClassSynthetic:
		return "synthetic"
	case ClassAnnotation:
		return "annotation"
	case ClassEnum:
		return "enum"
	}
	return "unknown"
}

// DecodeClassFlags decodes an access_flags bitmask into the set of named
// flags whose bit values intersect it, in canonical enumeration order.
func DecodeClassFlags(mask uint16) []ClassAccessFlag {
	var flags []ClassAccessFlag
	for _, f := range classFlagOrder {
		if mask&uint16(f) != 0 {
			flags = append(flags, f)
		}
	}
	return flags
}

// MethodAccessFlag is one named modifier from a method's access_flags
// bitmask.
type MethodAccessFlag uint16

const (
	MethodPublic       MethodAccessFlag = 0x0001
	MethodPrivate      MethodAccessFlag = 0x0002
	MethodProtected    MethodAccessFlag = 0x0004
	MethodStatic       MethodAccessFlag = 0x0008
	MethodFinal        MethodAccessFlag = 0x0010
	MethodSynchronized MethodAccessFlag = 0x0020
	MethodBridge       MethodAccessFlag = 0x0040
	MethodVarArgs      MethodAccessFlag = 0x0080
	MethodNative       MethodAccessFlag = 0x0100
	MethodAbstract     MethodAccessFlag = 0x0400
	MethodStrict       MethodAccessFlag = 0x0800
	MethodSynthetic    MethodAccessFlag = 0x1000
)

var methodFlagOrder = []MethodAccessFlag{
	MethodPublic, MethodPrivate, MethodProtected, MethodStatic,
	MethodFinal, MethodSynchronized, MethodBridge, MethodVarArgs,
	MethodNative, MethodAbstract, MethodStrict, MethodSynthetic,
}

func (f MethodAccessFlag) String() string {
	switch f {
	case MethodPublic:
		return "public"
	case MethodPrivate:
		return "private"
	case MethodProtected:
		return "protected"
	case MethodStatic:
		return "static"
	case MethodFinal:
		return "final"
	case MethodSynchronized:
		return "synchronized"
	case MethodBridge:
		return "bridge"
	case MethodVarArgs:
		return "varargs"
	case MethodNative:
		return "native"
	case MethodAbstract:
		return "abstract"
	case MethodStrict:
		return "strict"
	case MethodSynthetic:
		return "synthetic"
	}
	return "unknown"
}

// DecodeMethodFlags decodes a method access_flags bitmask, in canonical
// enumeration order.
func DecodeMethodFlags(mask uint16) []MethodAccessFlag {
	var flags []MethodAccessFlag
	for _, f := range methodFlagOrder {
		if mask&uint16(f) != 0 {
			flags = append(flags, f)
		}
	}
	return flags
}

// ClassFile is the fully parsed representation of one class file.
type ClassFile struct {
	Magic        [4]byte
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  []ClassAccessFlag
	ThisClass    uint16 // constant pool index of a Class entry
	SuperClass   uint16 // constant pool index of a Class entry
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// ThisClassName resolves this_class through the constant pool.
func (cf *ClassFile) ThisClassName() (string, error) {
	return cf.ConstantPool.ClassNameAt(cf.ThisClass)
}

// SuperClassName resolves super_class through the constant pool.
func (cf *ClassFile) SuperClassName() (string, error) {
	return cf.ConstantPool.ClassNameAt(cf.SuperClass)
}

// FindMethod returns the first method matching name and descriptor, or nil.
func (cf *ClassFile) FindMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name && cf.Methods[i].Descriptor == descriptor {
			return &cf.Methods[i]
		}
	}
	return nil
}

// FindMethodByName returns the first method with the given name, or nil.
func (cf *ClassFile) FindMethodByName(name string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name {
			return &cf.Methods[i]
		}
	}
	return nil
}

// MethodInfo is one parsed method, with name and descriptor already
// resolved through the constant pool.
type MethodInfo struct {
	AccessFlags     []MethodAccessFlag
	NameIndex       uint16
	Name            string
	DescriptorIndex uint16
	Descriptor      string
	Attributes      []AttributeInfo
}

// Code returns the method's Code attribute, or nil if it has none.
func (m *MethodInfo) Code() *CodeAttribute {
	for i := range m.Attributes {
		if code, ok := m.Attributes[i].Kind.(*CodeAttribute); ok {
			return code
		}
	}
	return nil
}
